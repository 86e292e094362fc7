package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/net/proxy"
)

// Default fetcher settings.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxBodySize = 5 * 1024 * 1024
	defaultDialTimeout = 10 * time.Second
)

// Fetcher retrieves the raw content of a page.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}

// HeaderFunc returns per-request settings for a host: extra headers and an
// optional User-Agent override. It may return nil headers and an empty agent.
type HeaderFunc func(host string) (headers map[string]string, userAgent string)

// Options controls HTTP fetching behaviour.
type Options struct {
	// UserAgent is the default User-Agent header.
	UserAgent string

	// Timeout bounds a whole request, including reading the body.
	Timeout time.Duration

	// MaxBodySize caps the decoded body length in bytes.
	MaxBodySize int64

	// ProxyURL is an optional http, https, socks5 or socks5h proxy URL.
	ProxyURL string

	// HostSettings supplies per-host headers. May be nil.
	HostSettings HeaderFunc

	// Transport overrides the round tripper. Used by tests; ProxyURL is
	// ignored when set.
	Transport http.RoundTripper
}

// HTTPFetcher implements Fetcher with net/http.
type HTTPFetcher struct {
	client       *http.Client
	userAgent    string
	maxBodySize  int64
	hostSettings HeaderFunc
}

// NewHTTPFetcher constructs an HTTPFetcher from opts.
func NewHTTPFetcher(opts Options) (*HTTPFetcher, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = DefaultMaxBodySize
	}

	transport := opts.Transport
	if transport == nil {
		t, err := newTransport(opts.ProxyURL)
		if err != nil {
			return nil, err
		}
		transport = t
	}

	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		userAgent:    opts.UserAgent,
		maxBodySize:  opts.MaxBodySize,
		hostSettings: opts.HostSettings,
	}, nil
}

// newTransport builds an http.Transport, optionally routed through a proxy.
func newTransport(proxyURL string) (*http.Transport, error) {
	dialer := &net.Dialer{Timeout: defaultDialTimeout, KeepAlive: 30 * time.Second}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if strings.TrimSpace(proxyURL) == "" {
		return transport, nil
	}

	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		transport.Proxy = http.ProxyURL(u)
	case "socks5", "socks5h":
		var auth *proxy.Auth
		if u.User != nil {
			password, _ := u.User.Password()
			auth = &proxy.Auth{User: u.User.Username(), Password: password}
		}
		socks, err := proxy.SOCKS5("tcp", u.Host, auth, dialer)
		if err != nil {
			return nil, fmt.Errorf("create SOCKS5 dialer: %w", err)
		}
		contextDialer, ok := socks.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("%w: %s dialer lacks context support", ErrUnsupportedProxy, u.Scheme)
		}
		transport.DialContext = contextDialer.DialContext
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProxy, u.Scheme)
	}
	return transport, nil
}

// Fetch downloads pageURL and returns its decoded body.
// Every failure is a *TransportError.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, newTransportError(pageURL, err)
	}

	userAgent := f.userAgent
	var extra map[string]string
	if f.hostSettings != nil {
		var ua string
		extra, ua = f.hostSettings(req.URL.Host)
		if ua != "" {
			userAgent = ua
		}
	}

	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	for k, v := range extra {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, newTransportError(pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // best effort
		return nil, &TransportError{
			URL:        pageURL,
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	body, err := f.readBody(resp)
	if err != nil {
		return nil, newTransportError(pageURL, err)
	}
	return body, nil
}

// readBody decodes the response body according to Content-Encoding and
// enforces the size limit on the decoded bytes.
func (f *HTTPFetcher) readBody(resp *http.Response) ([]byte, error) {
	reader := io.Reader(resp.Body)

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		reader = fl
	}

	body, err := io.ReadAll(io.LimitReader(reader, f.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, fmt.Errorf("%w (%d bytes)", ErrBodyTooLarge, f.maxBodySize)
	}
	return body, nil
}
