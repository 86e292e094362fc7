package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/imgcrawl/internal/config"
	ilog "github.com/nao1215/imgcrawl/internal/log"
)

// NewRootCmd creates the root command for imgcrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imgcrawl",
		Short: "Collect image references from a website up to a link depth",
		Long: `imgcrawl starts at a seed URL, follows hyperlinks up to a maximum depth,
and records every image referenced on each visited page together with the
page it was found on and that page's depth.

Results are written to results.json by default. Runs are also stored in a
local history database so that past crawls can be listed later.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("log-format", config.LogFormatText, "Log format: text or json")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getLogFormatFlag retrieves the log format from the command or its parent.
func getLogFormatFlag(cmd *cobra.Command) string {
	format, err := cmd.Flags().GetString("log-format")
	if err != nil {
		format, err = cmd.Root().PersistentFlags().GetString("log-format")
		if err != nil {
			return config.LogFormatText
		}
	}
	return format
}

// setupLogger builds the redacting logger for the chosen format.
func setupLogger(w io.Writer, format string, verbose bool) *slog.Logger {
	if format == config.LogFormatJSON {
		return ilog.NewJSONLogger(w, verbose)
	}
	return ilog.NewLogger(w, verbose)
}
