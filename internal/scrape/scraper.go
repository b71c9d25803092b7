// Package scrape fetches facility web pages as raw HTML.
package scrape

import (
	"context"
)

// Page is a fetched HTML document.
type Page struct {
	URL        string
	StatusCode int
	Title      string
	HTML       []byte
}

// Fetcher retrieves a single URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}
