// Package model defines the data structures shared across imgcrawl.
//
// This package contains the following main types:
//   - ImageRecord: one image found on one page at one depth
//   - ResultCollection: the append-only, concurrency-safe list of records
//   - VisitedSet: the per-run set of URLs already dispatched for fetching
//   - CrawlReport: everything a crawl run produced, including failures
//
// The crawler, report writers, and history database all depend on these
// types, so they live in their own package to avoid import cycles.
package model
