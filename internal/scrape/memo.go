package scrape

import (
	"context"
	"sync"
)

// Memo wraps a Fetcher and remembers every result, including failures, for
// its lifetime. Create one per facility so shared paths are fetched once.
type Memo struct {
	next Fetcher

	mu    sync.Mutex
	pages map[string]memoEntry
}

type memoEntry struct {
	page *Page
	err  error
}

// NewMemo wraps next.
func NewMemo(next Fetcher) *Memo {
	return &Memo{next: next, pages: make(map[string]memoEntry)}
}

func (m *Memo) Fetch(ctx context.Context, url string) (*Page, error) {
	m.mu.Lock()
	e, ok := m.pages[url]
	m.mu.Unlock()
	if ok {
		return e.page, e.err
	}

	page, err := m.next.Fetch(ctx, url)
	if ctx.Err() != nil {
		// Cancellation is not a property of the URL.
		return page, err
	}

	m.mu.Lock()
	m.pages[url] = memoEntry{page: page, err: err}
	m.mu.Unlock()
	return page, err
}

// Len reports how many distinct URLs were fetched.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pages)
}
