package scrape

import (
	"context"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultTimeout   = 15 * time.Second
	defaultMaxBody   = 1024 * 1024
)

// HTTPFetcher fetches HTML via net/http with a browser-like user agent and
// rejects blocked or non-2xx responses.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithTimeout overrides the whole-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithMaxBody caps the number of body bytes read.
func WithMaxBody(n int64) Option {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxBody = n
		}
	}
}

// NewHTTPFetcher creates an HTTPFetcher with sensible defaults.
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		userAgent: defaultUserAgent,
		maxBody:   defaultMaxBody,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fetch GETs a URL and returns its HTML.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: create request")
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: fetch %s", targetURL)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return nil, eris.Wrap(err, "scrape: read body")
	}

	if blocked, blockType := DetectBlock(resp, body); blocked {
		return nil, eris.Errorf("scrape: blocked (%s) %s", blockType, targetURL)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, eris.Errorf("scrape: status %d %s", resp.StatusCode, targetURL)
	}

	return &Page{
		URL:        targetURL,
		StatusCode: resp.StatusCode,
		Title:      extractTitle(body),
		HTML:       body,
	}, nil
}

var titleRe = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

func extractTitle(body []byte) string {
	m := titleRe.FindSubmatch(body)
	if len(m) > 1 {
		return strings.TrimSpace(string(m[1]))
	}
	return ""
}
