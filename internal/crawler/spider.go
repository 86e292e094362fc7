package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/nao1215/imgcrawl/internal/fetcher"
	"github.com/nao1215/imgcrawl/internal/model"
)

// Spider walks the link graph from a seed page and collects every image it
// sees within a depth bound.
//
// A Spider holds configuration only. All traversal state lives in a crawlRun
// created per Crawl call, so one Spider can serve any number of runs,
// including concurrent ones.
type Spider struct {
	// fetcher retrieves page bodies.
	fetcher fetcher.Fetcher

	// concurrency is the number of pages fetched in parallel.
	// 1 selects the sequential depth-first walk.
	concurrency int

	// logger receives per-page progress and failure records.
	logger *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithConcurrency sets how many pages may be fetched at the same time.
// Values below 1 are treated as 1.
func WithConcurrency(n int) SpiderOption {
	return func(s *Spider) {
		if n < 1 {
			n = 1
		}
		s.concurrency = n
	}
}

// WithLogger sets the logger used for progress and skipped pages.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSpider creates a Spider that retrieves pages through f.
func NewSpider(f fetcher.Fetcher, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:     f,
		concurrency: 1,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Crawl visits seedURL at depth 0 and follows hyperlinks until maxDepth.
//
// Every URL is fetched at most once per run. A page that cannot be fetched
// or parsed is recorded as a failure in the report and the walk continues;
// such failures never make Crawl return an error. Crawl returns an error
// only for invalid input or when ctx is cancelled, in which case the partial
// report is returned alongside ctx.Err().
//
// With the default concurrency of 1 pages are visited depth-first in
// document order and the result order is deterministic. With higher
// concurrency the order is not stable, and a page reachable at several
// depths is recorded at whichever depth reaches it first.
func (s *Spider) Crawl(ctx context.Context, seedURL string, maxDepth int) (*model.CrawlReport, error) {
	if err := validateSeed(seedURL); err != nil {
		return nil, err
	}
	if maxDepth < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDepth, maxDepth)
	}

	run := &crawlRun{
		spider:   s,
		ctx:      ctx,
		maxDepth: maxDepth,
		visited:  model.NewVisitedSet(),
		report:   model.NewCrawlReport(seedURL, maxDepth),
	}

	s.logger.Debug("crawl started",
		"run_id", run.report.RunID,
		"seed", seedURL,
		"max_depth", maxDepth,
		"concurrency", s.concurrency,
	)

	if s.concurrency > 1 {
		run.sem = semaphore.NewWeighted(int64(s.concurrency))
		run.schedule(seedURL, 0)
		_ = run.group.Wait() // goroutines never return errors
	} else {
		run.visit(seedURL, 0)
	}

	run.report.Finish()

	s.logger.Debug("crawl finished",
		"run_id", run.report.RunID,
		"visited", run.visited.Len(),
		"pages", run.report.PagesFetched(),
		"images", run.report.Results.Len(),
		"failures", len(run.report.Failures()),
		"elapsed", run.report.Elapsed(),
	)

	if err := ctx.Err(); err != nil {
		return run.report, err
	}
	return run.report, nil
}

// crawlRun is the mutable state of a single Crawl call.
type crawlRun struct {
	spider   *Spider
	ctx      context.Context //nolint:containedctx // scoped to one run
	maxDepth int
	visited  *model.VisitedSet
	report   *model.CrawlReport

	// group and sem are used only in concurrent mode.
	group errgroup.Group
	sem   *semaphore.Weighted
}

// visit is the sequential depth-first walk. Children are fully explored in
// document order before the next sibling.
func (r *crawlRun) visit(pageURL string, depth int) {
	if depth > r.maxDepth || r.ctx.Err() != nil {
		return
	}
	if !r.visited.TryAdd(pageURL) {
		return
	}

	links, ok := r.explore(pageURL, depth)
	if !ok {
		return
	}
	for _, link := range links {
		r.visit(link, depth+1)
	}
}

// schedule is the concurrent walk. The URL is claimed in the visited set
// before the goroutine starts, so two workers can never fetch the same page.
// The semaphore bounds in-flight fetches, not goroutines, so a worker may
// schedule children without waiting for a free slot.
func (r *crawlRun) schedule(pageURL string, depth int) {
	if depth > r.maxDepth || r.ctx.Err() != nil {
		return
	}
	if !r.visited.TryAdd(pageURL) {
		return
	}

	r.group.Go(func() error {
		if err := r.sem.Acquire(r.ctx, 1); err != nil {
			return nil
		}
		links, ok := r.explore(pageURL, depth)
		r.sem.Release(1)
		if !ok {
			return nil
		}
		for _, link := range links {
			r.schedule(link, depth+1)
		}
		return nil
	})
}

// explore fetches and extracts one page, records its images, and returns
// its frontier. It reports false when the page failed and nothing below it
// should be followed.
func (r *crawlRun) explore(pageURL string, depth int) ([]string, bool) {
	logger := r.spider.logger
	logger.Info("crawling", "url", pageURL, "depth", depth)

	body, err := r.spider.fetcher.Fetch(r.ctx, pageURL)
	if err != nil {
		if r.ctx.Err() != nil {
			return nil, false
		}
		r.fail(pageURL, depth, model.FailureTransport, err)
		return nil, false
	}

	extraction, err := Extract(bytes.NewReader(body), pageURL)
	if err != nil {
		r.fail(pageURL, depth, model.FailureParse, err)
		return nil, false
	}

	records := make([]model.ImageRecord, 0, len(extraction.Images))
	for _, img := range extraction.Images {
		records = append(records, model.ImageRecord{
			ImageURL:  img,
			SourceURL: pageURL,
			Depth:     depth,
		})
	}
	r.report.Results.Append(records...)
	r.report.RecordPage()

	logger.Debug("page extracted",
		"url", pageURL,
		"depth", depth,
		"images", len(extraction.Images),
		"links", len(extraction.Links),
	)

	return extraction.Links, true
}

// fail records a skipped page and logs it at WARN.
func (r *crawlRun) fail(pageURL string, depth int, kind model.FailureKind, err error) {
	failure := model.CrawlFailure{
		URL:     pageURL,
		Depth:   depth,
		Kind:    kind,
		Message: err.Error(),
	}
	var te *fetcher.TransportError
	if errors.As(err, &te) {
		failure.StatusCode = te.StatusCode
	}
	r.report.RecordFailure(failure)

	attrs := []any{"url", pageURL, "depth", depth, "kind", string(kind), "error", err}
	if failure.StatusCode != 0 {
		attrs = append(attrs, "status", failure.StatusCode)
	}
	r.spider.logger.Warn("page skipped", attrs...)
}

// validateSeed checks that raw is an absolute http(s) URL with a host.
func validateSeed(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}
	if !isHTTPURL(u) {
		return fmt.Errorf("%w: %q", ErrInvalidSeed, raw)
	}
	return nil
}
