// Package report writes finished crawl reports.
//
// This package contains writers for different output formats:
//   - JSONWriter: the result document, {"results": [...]}
//   - CSVWriter: one row per image record
//   - MarkdownWriter: a shareable report with per-depth counts and failures
//   - SummaryWriter: a terminal table for quick inspection
//
// Report data structures live in the model package; this package only
// renders them. The file formats implement the Writer interface and are
// selected by NewWriter. WriteFile is the entry point used by the crawl
// command to produce the result file.
package report
