package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/nao1215/imgcrawl/internal/config"
	"github.com/nao1215/imgcrawl/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List past crawl runs",
		Long: `History lists crawl runs recorded in the local history database, most
recent first. With a run ID it prints that run's images and failed pages.

Examples:
  # Show the last 20 runs
  imgcrawl history

  # Show the last 5 runs
  imgcrawl history -n 5

  # Show the images of one run
  imgcrawl history 0b6f3c1e-6a0e-4d0b-9d3c-2f1e8a7b9c10`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", config.DefaultHistoryLimit,
		"Maximum number of runs to list (0 for all)")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if _, err := os.Stat(filepath.Join(dbDir, database.DBFileName)); os.IsNotExist(err) {
		fmt.Fprintln(out, "No crawl history found.")
		return nil
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	if len(args) == 1 {
		return printRun(cmd, db, args[0])
	}

	runs, err := db.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No crawl history found.")
		return nil
	}

	tbl := table.New("Run ID", "Seed", "Depth", "Pages", "Images", "Failures", "Finished").WithWriter(out)
	for _, r := range runs {
		tbl.AddRow(r.RunID, r.SeedURL, r.MaxDepth, r.PagesFetched, r.ImageCount, r.FailureCount, formatTime(r.FinishedAt))
	}
	tbl.Print()

	return nil
}

// printRun prints one run's details, images and failures.
func printRun(cmd *cobra.Command, db *database.HistoryDB, runID string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	run, err := db.GetRun(ctx, runID)
	if err != nil {
		if errors.Is(err, database.ErrRunNotFound) {
			return fmt.Errorf("no run with ID %s", runID)
		}
		return err
	}

	images, err := db.GetRunImages(ctx, runID)
	if err != nil {
		return err
	}
	failures, err := db.GetRunFailures(ctx, runID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Run %s\n", run.RunID)
	fmt.Fprintf(out, "  seed:     %s (max depth %d)\n", run.SeedURL, run.MaxDepth)
	fmt.Fprintf(out, "  started:  %s\n", formatTime(run.StartedAt))
	fmt.Fprintf(out, "  elapsed:  %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(out, "  pages:    %d\n\n", run.PagesFetched)

	if len(images) == 0 {
		fmt.Fprintln(out, "No images recorded.")
	} else {
		tbl := table.New("Image", "Source", "Depth").WithWriter(out)
		for _, img := range images {
			tbl.AddRow(img.ImageURL, img.SourceURL, img.Depth)
		}
		tbl.Print()
	}

	if len(failures) > 0 {
		fmt.Fprintln(out)
		tbl := table.New("Failed URL", "Depth", "Kind", "Status", "Message").WithWriter(out)
		for _, f := range failures {
			status := "-"
			if f.StatusCode != 0 {
				status = strconv.Itoa(f.StatusCode)
			}
			tbl.AddRow(f.URL, f.Depth, f.Kind, status, f.Message)
		}
		tbl.Print()
	}

	return nil
}

// formatTime renders a stored timestamp in local time.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
