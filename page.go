package docbot

import (
	"context"
	"time"
)

// Page is the indexed record for one crawled URL. Every field other than
// URL is derived from the fetched body and is overwritten on re-crawl.
type Page struct {
	URL         string    `json:"url"`
	Language    string    `json:"language"`
	Title       string    `json:"title"`
	HeadingPath string    `json:"headingPath"`
	Lead        string    `json:"lead"`
	Headings    string    `json:"headings"`
	BodyPrefix  string    `json:"bodyPrefix"`
	Terms       string    `json:"terms"`
	ContentHash string    `json:"contentHash"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// Validate returns an error if the page contains invalid fields.
func (p *Page) Validate() error {
	if p.URL == "" {
		return Errorf(EINVALID, "page URL required")
	}
	if p.Language == "" {
		return Errorf(EINVALID, "page language required")
	}
	return nil
}

// PageWriter writes pages to the index.
type PageWriter interface {
	// UpsertPage inserts the page or replaces the existing page with the
	// same URL. The full-text index reflects the page when it returns.
	// The bool reports whether any indexed content differs from the
	// previous version.
	UpsertPage(ctx context.Context, page *Page) (changed bool, err error)
}

// MatchQuery is a full-text match against the index.
type MatchQuery struct {
	// Expression is passed verbatim to the index's match operator.
	// Build it with QueryExpression or MatchAllExpression.
	Expression string

	// Language restricts results to one language tag when non-empty.
	Language string

	Limit int
}

// ContainsQuery is a literal substring search against the indexed text
// fields, used when a query cannot be turned into a match expression.
type ContainsQuery struct {
	Text     string
	Language string
	Limit    int
}

// Stats summarizes the index.
type Stats struct {
	Pages      int            `json:"pages"`
	ByLanguage map[string]int `json:"byLanguage"`
}

// PageService represents a service for managing indexed pages.
type PageService interface {
	PageWriter

	// FindPageByURL retrieves a page by URL.
	// Returns ENOTFOUND if the page does not exist.
	FindPageByURL(ctx context.Context, url string) (*Page, error)

	// MatchPages returns pages matching q ordered by native relevance,
	// best first. Hit.Score is nil.
	MatchPages(ctx context.Context, q MatchQuery) ([]*Hit, error)

	// ContainsPages returns pages whose text fields contain q.Text.
	ContainsPages(ctx context.Context, q ContainsQuery) ([]*Hit, error)

	// PageStats counts indexed pages overall and per language.
	PageStats(ctx context.Context) (*Stats, error)
}
