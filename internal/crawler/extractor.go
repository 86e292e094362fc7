package crawler

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Extraction is what Extract finds on one page.
type Extraction struct {
	// Images are absolute image URLs in document order.
	Images []string

	// Links are absolute http(s) hyperlink targets in document order.
	// This is the page's frontier.
	Links []string
}

// Extract parses content and returns the images and links it references,
// resolved against pageURL.
//
// Images come from <img src>; an absent, empty or unparseable src is skipped.
// Links come from <a href> and are kept only when the resolved URL has an
// http or https scheme and a host. Fragment-only hrefs ("#top") point back
// at the page itself and are dropped. A <base> element is ignored.
//
// Extract has no side effects. It fails with ErrMalformedDocument only when
// the markup cannot be read at all or pageURL is not absolute; bad attribute
// values never fail the page.
func Extract(content io.Reader, pageURL string) (*Extraction, error) {
	base, err := url.Parse(pageURL)
	if err != nil || !base.IsAbs() {
		return nil, fmt.Errorf("%w: page URL %q is not absolute", ErrMalformedDocument, pageURL)
	}

	root, err := html.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	doc := goquery.NewDocumentFromNode(root)

	result := &Extraction{
		Images: make([]string, 0),
		Links:  make([]string, 0),
	}

	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if resolved, ok := resolve(base, src); ok {
			result.Images = append(result.Images, resolved.String())
		}
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if strings.HasPrefix(strings.TrimSpace(href), "#") {
			return
		}
		resolved, ok := resolve(base, href)
		if !ok || !isHTTPURL(resolved) {
			return
		}
		result.Links = append(result.Links, resolved.String())
	})

	return result, nil
}

// resolve resolves ref against base using RFC 3986 reference resolution.
// Empty and unparseable references report false.
func resolve(base *url.URL, ref string) (*url.URL, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return nil, false
	}
	return base.ResolveReference(u), true
}

// isHTTPURL reports whether u is an absolute http or https URL with a host.
// The check is on the parsed scheme, so "foo:http://bar" is rejected.
func isHTTPURL(u *url.URL) bool {
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.Host != ""
	default:
		return false
	}
}
