package resource

import (
	"context"
	"fmt"
	"sync"
)

// MapFetcher serves resources from memory. It is used by tests and for
// documents whose resources are known up front. Requests are recorded.
type MapFetcher struct {
	mu        sync.Mutex
	resources map[string]*Resource
	requests  []string
}

// NewMapFetcher returns a fetcher serving bodies keyed by URL. Content
// types follow the URL's extension.
func NewMapFetcher(bodies map[string]string) *MapFetcher {
	m := &MapFetcher{resources: make(map[string]*Resource, len(bodies))}
	for uri, body := range bodies {
		m.Set(uri, contentTypeByExt(uri), []byte(body))
	}
	return m
}

// Set adds or replaces a resource.
func (m *MapFetcher) Set(uri, contentType string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resources[uri] = &Resource{URL: uri, ContentType: contentType, Body: body}
}

// Fetch implements Fetcher.
func (m *MapFetcher) Fetch(ctx context.Context, uri string) (*Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, uri)
	res, ok := m.resources[uri]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	return res, nil
}

// Requests returns the URLs fetched so far, in order.
func (m *MapFetcher) Requests() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.requests...)
}
