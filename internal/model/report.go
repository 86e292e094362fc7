package model

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FailureKind classifies why a page contributed nothing to a crawl.
type FailureKind string

const (
	// FailureTransport covers network errors, timeouts, DNS and TLS
	// failures, and non-2xx HTTP responses.
	FailureTransport FailureKind = "transport"

	// FailureParse means the page was fetched but could not be parsed as markup.
	FailureParse FailureKind = "parse"
)

// CrawlFailure describes a single page that could not be explored.
type CrawlFailure struct {
	// URL is the page that failed.
	URL string `json:"url"`

	// Depth is the depth at which the page was visited.
	Depth int `json:"depth"`

	// Kind is the failure category.
	Kind FailureKind `json:"kind"`

	// StatusCode is the HTTP status for HTTP-level failures, 0 otherwise.
	StatusCode int `json:"statusCode,omitempty"`

	// Message is a human-readable cause.
	Message string `json:"message"`
}

// CrawlReport is everything one crawl run produced.
// The crawler fills it in while the run is active; afterwards it is handed
// to report writers and the history database and treated as read-only.
type CrawlReport struct {
	// RunID uniquely identifies the run in the history database.
	RunID string `json:"runId"`

	// SeedURL is the URL the crawl started from.
	SeedURL string `json:"seedUrl"`

	// MaxDepth is the depth bound the crawl ran with.
	MaxDepth int `json:"maxDepth"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"startedAt"`

	// FinishedAt is when the crawl completed. Zero while running.
	FinishedAt time.Time `json:"finishedAt"`

	// Results holds the collected image records.
	Results *ResultCollection `json:"-"`

	mu           sync.Mutex
	pagesFetched int
	failures     []CrawlFailure
}

// NewCrawlReport creates an empty report for a crawl of seedURL.
func NewCrawlReport(seedURL string, maxDepth int) *CrawlReport {
	return &CrawlReport{
		RunID:     uuid.NewString(),
		SeedURL:   seedURL,
		MaxDepth:  maxDepth,
		StartedAt: time.Now(),
		Results:   NewResultCollection(),
		failures:  make([]CrawlFailure, 0),
	}
}

// RecordPage counts one successfully fetched and parsed page.
func (r *CrawlReport) RecordPage() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pagesFetched++
}

// RecordFailure appends a failure.
func (r *CrawlReport) RecordFailure(f CrawlFailure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, f)
}

// PagesFetched returns the number of pages that were fetched and parsed.
func (r *CrawlReport) PagesFetched() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pagesFetched
}

// Failures returns a copy of the recorded failures.
func (r *CrawlReport) Failures() []CrawlFailure {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CrawlFailure, len(r.failures))
	copy(out, r.failures)
	return out
}

// Finish stamps the completion time.
func (r *CrawlReport) Finish() {
	r.FinishedAt = time.Now()
}

// Elapsed returns how long the crawl ran. It is zero until Finish is called.
func (r *CrawlReport) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// DepthSummary aggregates a report's records at one depth.
type DepthSummary struct {
	// Depth is the crawl depth.
	Depth int

	// Pages is the number of distinct source pages with at least one image.
	Pages int

	// Images is the number of image records.
	Images int

	// Failures is the number of pages that failed at this depth.
	Failures int
}

// SummarizeByDepth groups records and failures by depth, in ascending order.
func (r *CrawlReport) SummarizeByDepth() []DepthSummary {
	byDepth := make(map[int]*DepthSummary)
	pages := make(map[int]map[string]struct{})

	get := func(depth int) *DepthSummary {
		s, ok := byDepth[depth]
		if !ok {
			s = &DepthSummary{Depth: depth}
			byDepth[depth] = s
			pages[depth] = make(map[string]struct{})
		}
		return s
	}

	for _, rec := range r.Results.Records() {
		s := get(rec.Depth)
		s.Images++
		pages[rec.Depth][rec.SourceURL] = struct{}{}
	}
	for _, f := range r.Failures() {
		get(f.Depth).Failures++
	}

	out := make([]DepthSummary, 0, len(byDepth))
	for depth, s := range byDepth {
		s.Pages = len(pages[depth])
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Depth < out[j].Depth })
	return out
}
