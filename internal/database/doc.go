// Package database provides SQLite-based run history for imgcrawl.
//
// This package implements HistoryDB, which stores:
//   - One row per finished crawl run (seed, depth, counts, timestamps)
//   - The run's image records in collection order
//   - The pages that were skipped, with their failure kind and status
//
// The database lives in the XDG data directory and uses modernc.org/sqlite,
// a CGO-free driver, so the binary cross-compiles without a C toolchain.
// The result file remains the primary output; the history is a secondary
// sink and callers treat its errors as non-fatal.
package database
