// Package crawler walks a link graph from a seed page and collects image
// references within a depth bound.
//
// # Components
//
//   - Extract: parses one document and returns its image URLs and its
//     http(s) hyperlink frontier, both resolved to absolute form.
//   - Spider: the traversal engine. It owns no per-run state; each Crawl
//     call builds its own visited set and report.
//
// # Traversal
//
// The seed is depth 0 and a page linked from depth d is depth d+1. Pages
// deeper than the maximum are never fetched. A URL is claimed in the visited
// set before it is fetched, so it is fetched at most once per run even when
// it is reachable along several paths or through a cycle.
//
// By default the walk is sequential and depth-first, in document order. With
// WithConcurrency(n) up to n fetches run at once and result order is not
// stable. A page reachable at several depths is recorded at whichever depth
// claims it first, so only graphs where every page has a single depth give
// the same result set as the sequential walk.
//
// # Failures
//
// A page that returns a transport error, a non-2xx status or unparseable
// content is recorded as a model.CrawlFailure, logged at WARN, and skipped.
// Its siblings and the rest of the crawl continue. There are no retries.
//
// # Usage
//
//	f, _ := fetcher.NewHTTPFetcher(fetcher.Options{Timeout: 30 * time.Second})
//	spider := crawler.NewSpider(f, crawler.WithLogger(logger))
//	report, err := spider.Crawl(ctx, "https://example.com/", 2)
package crawler
