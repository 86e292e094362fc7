// Package log provides imgcrawl's structured logger, built on log/slog.
//
// Every logger returned by this package wraps its handler in a
// SecureHandler, which:
//   - Masks attributes whose key names a credential (cookie, authorization, token)
//   - Masks string values that look like bearer tokens or private keys
//   - Redacts credential-like query parameters inside URL values
//
// The last point matters for a crawler: image and page URLs often carry
// signed query strings (?X-Amz-Signature=..., ?token=...), and those URLs
// are logged on every visit and every failure.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Warn("fetch failed", "url", pageURL, "error", err)
package log
