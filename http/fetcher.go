// Package http provides HTTP-based implementations of docbot.Fetcher and
// docbot.SitemapService for static documentation sites.
package http

import (
	"context"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/docbot"
)

// Fetch defaults.
const (
	DefaultFetchTimeout = 20 * time.Second
	DefaultUserAgent    = docbot.DefaultUserAgent
	DefaultMaxBodyBytes = 10 << 20
)

// indexableTypes are the media types whose bodies can be indexed.
var indexableTypes = map[string]bool{
	"text/html":             true,
	"application/xhtml+xml": true,
	"application/xml":       true,
	"text/xml":              true,
	"text/markdown":         true,
	"text/x-markdown":       true,
	"text/plain":            true,
}

// Ensure Fetcher implements docbot.Fetcher at compile time.
var _ docbot.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves documents with plain HTTP GET requests. It does not
// execute JavaScript; use rod.Fetcher for client-rendered sites.
type Fetcher struct {
	client       *http.Client
	timeout      time.Duration
	userAgent    string
	maxBodyBytes int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodyBytes caps how much of a response body is read.
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodyBytes = n
		}
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		userAgent:    DefaultUserAgent,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves url. Non-200 responses and bodies that are not text
// return ENOCONTENT errors.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*docbot.Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, docbot.Errorf(docbot.EINVALID, "invalid URL %q: %v", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, docbot.Errorf(docbot.ENOCONTENT, "HTTP %d for %s", resp.StatusCode, url)
	}

	contentType := resp.Header.Get("Content-Type")
	if !indexable(contentType) {
		return nil, docbot.Errorf(docbot.ENOCONTENT, "unsupported content type %q for %s", contentType, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return nil, err
	}

	return &docbot.Resource{
		URL:         resp.Request.URL.String(),
		Body:        string(body),
		ContentType: contentType,
	}, nil
}

// indexable reports whether contentType names a text format. A missing
// content type is treated as HTML.
func indexable(contentType string) bool {
	if strings.TrimSpace(contentType) == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return indexableTypes[mediaType]
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}
