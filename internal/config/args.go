package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ParseSeedURL parses a seed argument and requires an absolute http(s) URL
// with a host.
func ParseSeedURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrNoSeed
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeedURL, raw)
	}
	scheme := strings.ToLower(u.Scheme)
	if (scheme != "http" && scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeedURL, raw)
	}
	return u, nil
}

// ParseDepth parses a depth argument. Only base-10 non-negative integers
// are accepted; "3.5", "-1" and "three" are all rejected.
func ParseDepth(raw string) (int, error) {
	depth, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || depth < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDepth, raw)
	}
	return depth, nil
}

// validateProxyURL checks a proxy URL's scheme and host.
func validateProxyURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidProxyURL, raw)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "socks5", "socks5h":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidProxyURL, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidProxyURL, raw)
	}
	return nil
}
