package docbot

import (
	"context"
	"net/url"
	"strings"
)

// Resource is a fetched document body.
type Resource struct {
	URL         string
	Body        string
	ContentType string
}

// IsMarkdown reports whether the resource holds Markdown, judged by its
// content type or, failing that, by the URL path extension.
func (r *Resource) IsMarkdown() bool {
	if r == nil {
		return false
	}
	if strings.Contains(strings.ToLower(r.ContentType), "markdown") {
		return true
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return false
	}
	p := strings.ToLower(u.Path)
	return strings.HasSuffix(p, ".md") || strings.HasSuffix(p, ".markdown")
}

// Fetcher retrieves document bodies from URLs.
type Fetcher interface {
	// Fetch retrieves the URL. Responses that cannot be indexed (non-200
	// status, non-text content) return an ENOCONTENT error.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (*Resource, error)

	// Close releases resources held by the fetcher.
	Close() error
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
