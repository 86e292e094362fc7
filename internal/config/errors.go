package config

import "errors"

// Configuration and invocation errors.
// Validate and the argument parsers return these so callers can use errors.Is.
var (
	// ErrNoSeed is returned when no seed URL is given.
	ErrNoSeed = errors.New("no seed URL specified")

	// ErrInvalidSeedURL is returned when the seed is not an absolute http(s) URL.
	ErrInvalidSeedURL = errors.New("invalid seed URL: must be an absolute http or https URL")

	// ErrInvalidDepth is returned when the depth is not a non-negative integer.
	ErrInvalidDepth = errors.New("invalid depth: must be a non-negative integer")

	// ErrInvalidTimeout is returned when the fetch timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to fall back to the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrUnknownOutputFormat is returned for a --format other than json, csv or markdown.
	ErrUnknownOutputFormat = errors.New("unknown output format: must be json, csv or markdown")

	// ErrUnknownLogFormat is returned for a --log-format other than text or json.
	ErrUnknownLogFormat = errors.New("unknown log format: must be text or json")

	// ErrNoOutputPath is returned when the output path is empty.
	ErrNoOutputPath = errors.New("no output path specified")

	// ErrInvalidProxyURL is returned when the proxy URL cannot be used.
	ErrInvalidProxyURL = errors.New("invalid proxy URL: must be http, https or socks5 with a host")
)
