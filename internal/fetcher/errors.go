package fetcher

import (
	"errors"
	"fmt"
)

// ErrBodyTooLarge is returned when a response body exceeds the size limit.
var ErrBodyTooLarge = errors.New("response body exceeds size limit")

// ErrUnsupportedProxy is returned for a proxy URL scheme the fetcher cannot dial.
var ErrUnsupportedProxy = errors.New("unsupported proxy scheme")

// TransportError describes a failed fetch of one URL.
// StatusCode is set for HTTP-level failures and is 0 for network, DNS,
// TLS and timeout failures.
type TransportError struct {
	URL        string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d: %s", e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// newTransportError wraps err for url.
func newTransportError(url string, err error) *TransportError {
	return &TransportError{URL: url, Message: err.Error(), Err: err}
}
