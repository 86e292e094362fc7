package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/nao1215/imgcrawl/internal/database"
	"github.com/nao1215/imgcrawl/internal/model"
	"github.com/nao1215/imgcrawl/internal/report"
)

// ErrNoReport is returned by output steps that run before the crawl step.
var ErrNoReport = errors.New("no crawl report available")

// Crawler runs one crawl. *crawler.Spider satisfies it.
type Crawler interface {
	Crawl(ctx context.Context, seedURL string, maxDepth int) (*model.CrawlReport, error)
}

// CrawlStep walks the site and stores the report in the run.
type CrawlStep struct {
	crawler Crawler
	logger  *slog.Logger
}

// NewCrawlStep creates a crawl step backed by c.
func NewCrawlStep(c Crawler, logger *slog.Logger) *CrawlStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &CrawlStep{crawler: c, logger: logger}
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl. Page-level failures are recorded in the report
// and never surface here; only invalid input or cancellation do.
func (s *CrawlStep) Do(ctx context.Context, run *Run) error {
	rep, err := s.crawler.Crawl(ctx, run.SeedURL, run.MaxDepth)
	run.Report = rep
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	s.logger.Info("crawl complete",
		"run_id", rep.RunID,
		"pages", rep.PagesFetched(),
		"images", rep.Results.Len(),
		"failures", len(rep.Failures()),
	)
	return nil
}

// WriteReportStep writes the result file. Its errors are fatal: the file
// is the primary output of a run.
type WriteReportStep struct {
	path   string
	format string
	logger *slog.Logger
}

// NewWriteReportStep creates a step that writes the report to path in format.
func NewWriteReportStep(path, format string, logger *slog.Logger) *WriteReportStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &WriteReportStep{path: path, format: format, logger: logger}
}

// Name returns the step name.
func (s *WriteReportStep) Name() string {
	return "write_report"
}

// Do writes the file.
func (s *WriteReportStep) Do(_ context.Context, run *Run) error {
	if run.Report == nil {
		return ErrNoReport
	}
	if err := report.WriteFile(s.path, s.format, run.Report); err != nil {
		return err
	}
	s.logger.Info("report written", "path", s.path, "format", s.format)
	return nil
}

// SummaryStep prints the per-depth summary table.
type SummaryStep struct {
	output io.Writer
}

// NewSummaryStep creates a step that prints the summary to output.
func NewSummaryStep(output io.Writer) *SummaryStep {
	return &SummaryStep{output: output}
}

// Name returns the step name.
func (s *SummaryStep) Name() string {
	return "summary"
}

// Do prints the summary.
func (s *SummaryStep) Do(_ context.Context, run *Run) error {
	if run.Report == nil {
		return ErrNoReport
	}
	_, err := report.NewSummaryWriter(s.output).Write(run.Report)
	return err
}

// SaveHistoryStep stores the run in the history database. Database errors
// are logged at WARN and do not fail the run.
type SaveHistoryStep struct {
	dbDir  string
	logger *slog.Logger
}

// NewSaveHistoryStep creates a step that saves runs to the database in dbDir.
func NewSaveHistoryStep(dbDir string, logger *slog.Logger) *SaveHistoryStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SaveHistoryStep{dbDir: dbDir, logger: logger}
}

// Name returns the step name.
func (s *SaveHistoryStep) Name() string {
	return "save_history"
}

// Do saves the run.
func (s *SaveHistoryStep) Do(ctx context.Context, run *Run) error {
	if run.Report == nil {
		return ErrNoReport
	}

	db, err := database.Open(s.dbDir, database.DefaultOptions())
	if err != nil {
		s.logger.Warn("history database unavailable", "dir", s.dbDir, "error", err)
		return nil
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			s.logger.Warn("failed to close history database", "error", cerr)
		}
	}()

	if err := db.SaveCrawlReport(ctx, run.Report); err != nil {
		s.logger.Warn("failed to save run history", "run_id", run.Report.RunID, "error", err)
		return nil
	}

	s.logger.Debug("run saved to history", "run_id", run.Report.RunID, "db", db.Path())
	return nil
}
