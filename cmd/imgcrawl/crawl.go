package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/imgcrawl/internal/config"
	"github.com/nao1215/imgcrawl/internal/crawler"
	"github.com/nao1215/imgcrawl/internal/fetcher"
	"github.com/nao1215/imgcrawl/internal/pipeline"
)

// crawlUsage is appended to argument errors.
const crawlUsage = "usage: imgcrawl crawl <url> <depth>"

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <url> <depth>",
		Short: "Crawl a site and collect image references",
		Long: `Crawl starts at <url> (depth 0) and follows hyperlinks up to <depth> hops,
recording every <img src> found on each visited page.

Each URL is fetched at most once. Pages that fail to load are logged and
skipped; the crawl continues with the rest of the site. When the crawl
finishes, the results are written to a single file.

Examples:
  # Crawl two levels deep and write results.json
  imgcrawl crawl https://example.com/ 2

  # Only the seed page
  imgcrawl crawl https://example.com/ 0

  # CSV output, four parallel fetches, with a per-depth summary
  imgcrawl crawl -f csv -o images.csv -C 4 --summary https://example.com/ 3

  # Through a SOCKS5 proxy
  imgcrawl crawl -x socks5://127.0.0.1:1080 https://example.com/ 1

Output (JSON):
  {
    "results": [
      { "imageUrl": "https://example.com/logo.png", "sourceUrl": "https://example.com/", "depth": 0 }
    ]
  }`,
		Args: validateCrawlArgs,
		RunE: runCrawlCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultOutputPath,
		"Write results to the specified file path (creates directories if needed)")
	cmd.Flags().StringP("format", "f", config.DefaultOutputFormat,
		"Output format: json, csv or markdown")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each page fetch")
	cmd.Flags().IntP("concurrency", "C", config.DefaultConcurrency,
		"Number of pages fetched in parallel (1 keeps results in crawl order)")
	cmd.Flags().StringP("user-agent", "U", config.DefaultUserAgent,
		"User-Agent header sent with each request")
	cmd.Flags().StringP("proxy", "x", "",
		"Proxy URL (http://, https://, socks5:// or socks5h://)")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum response body size in bytes")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .imgcrawl in current or home directory, then $XDG_CONFIG_HOME/imgcrawl/config.yaml)")
	cmd.Flags().Bool("no-db", false,
		"Do not record this run in the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")
	cmd.Flags().Bool("summary", false,
		"Print a per-depth summary table after the crawl")

	return cmd
}

// validateCrawlArgs requires exactly a seed URL and a non-negative depth.
func validateCrawlArgs(_ *cobra.Command, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("expected 2 arguments, got %d\n%s", len(args), crawlUsage)
	}
	if _, err := config.ParseSeedURL(args[0]); err != nil {
		return fmt.Errorf("%w\n%s", err, crawlUsage)
	}
	if _, err := config.ParseDepth(args[1]); err != nil {
		return fmt.Errorf("%w\n%s", err, crawlUsage)
	}
	return nil
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.LogFormat, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runCrawl(ctx, cmd, cfg, logger)
}

// buildConfig creates a Config from cobra command flags and arguments.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	seed, err := config.ParseSeedURL(args[0])
	if err != nil {
		return nil, err
	}
	cfg.SeedURL = seed.String()
	cfg.MaxDepth, err = config.ParseDepth(args[1])
	if err != nil {
		return nil, err
	}

	cfg.OutputPath, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.OutputFormat, err = cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.ProxyURL, err = cmd.Flags().GetString("proxy")
	if err != nil {
		return nil, err
	}

	cfg.MaxBodySize, err = cmd.Flags().GetInt64("max-body-size")
	if err != nil {
		return nil, err
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB

	cfg.DBDir, err = cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}

	cfg.Summary, err = cmd.Flags().GetBool("summary")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.LogFormat = getLogFormatFlag(cmd)

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit --config must exist; otherwise a missing file means no
	// per-host settings.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.HostConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	return cfg, nil
}

// newFetcher builds the HTTP fetcher for cfg, wiring per-host settings.
func newFetcher(cfg *config.Config) (*fetcher.HTTPFetcher, error) {
	hosts := cfg.HostConfigs
	return fetcher.NewHTTPFetcher(fetcher.Options{
		UserAgent:   cfg.UserAgent,
		Timeout:     cfg.Timeout,
		MaxBodySize: cfg.MaxBodySize,
		ProxyURL:    cfg.ProxyURL,
		HostSettings: func(host string) (map[string]string, string) {
			hc := hosts.ForHost(host)
			return hc.Headers, hc.UserAgent
		},
	})
}

// newCrawlPipeline assembles the steps of one crawl run.
func newCrawlPipeline(cmd *cobra.Command, cfg *config.Config, spider pipeline.Crawler, logger *slog.Logger) *pipeline.Pipeline {
	p := pipeline.New(pipeline.WithLogger(logger))

	p.AddStep(pipeline.NewCrawlStep(spider, logger))
	p.AddStep(pipeline.NewWriteReportStep(cfg.OutputPath, cfg.OutputFormat, logger))
	if cfg.Summary {
		p.AddStep(pipeline.NewSummaryStep(cmd.OutOrStdout()))
	}
	if cfg.SaveToDB {
		p.AddStep(pipeline.NewSaveHistoryStep(cfg.DBDir, logger))
	}

	return p
}

// runCrawl performs the crawl and writes its outputs.
func runCrawl(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	f, err := newFetcher(cfg)
	if err != nil {
		return fmt.Errorf("failed to create fetcher: %w", err)
	}

	spider := crawler.NewSpider(f,
		crawler.WithConcurrency(cfg.Concurrency),
		crawler.WithLogger(logger),
	)

	logger.Info("starting crawl",
		"seed", cfg.SeedURL,
		"maxDepth", cfg.MaxDepth,
		"concurrency", cfg.Concurrency,
		"output", cfg.OutputPath,
		"saveToDB", cfg.SaveToDB,
	)

	run := pipeline.NewRun(cfg.SeedURL, cfg.MaxDepth)
	if err := newCrawlPipeline(cmd, cfg, spider, logger).Execute(ctx, run); err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("crawl interrupted, no results written: %w", err)
		}
		return err
	}

	rep := run.Report
	fmt.Fprintf(cmd.OutOrStdout(), "Found %d images on %d pages (%d failed). Results written to %s\n",
		rep.Results.Len(), rep.PagesFetched(), len(rep.Failures()), cfg.OutputPath)

	return nil
}
