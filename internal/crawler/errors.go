package crawler

import "errors"

var (
	// ErrMalformedDocument is returned by Extract when content cannot be
	// parsed as markup at all, or when the page URL itself is unusable.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrInvalidSeed is returned by Crawl when the seed is not an absolute
	// http(s) URL.
	ErrInvalidSeed = errors.New("invalid seed URL")

	// ErrInvalidDepth is returned by Crawl for a negative maximum depth.
	ErrInvalidDepth = errors.New("invalid maximum depth")
)
