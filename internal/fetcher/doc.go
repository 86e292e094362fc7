// Package fetcher retrieves raw page content over HTTP for the crawler.
//
// HTTPFetcher performs a single GET per call: no retries and no redirect
// limits beyond net/http's defaults. Any outcome other than a 2xx response
// with a readable body is returned as a *TransportError, so the crawler can
// treat every failure the same way.
//
// Responses compressed with gzip, deflate or brotli are decoded, and bodies
// are capped at a configurable size.
//
// Requests can be routed through an HTTP(S) proxy or, via
// golang.org/x/net/proxy, a SOCKS5 proxy.
package fetcher
