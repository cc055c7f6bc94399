package docbot

import "context"

// DefaultSearchLimit is used when SearchOptions.Limit is not positive.
const DefaultSearchLimit = 10

// Hit is a search result: a read-only projection of a Page plus its rank.
type Hit struct {
	URL         string `json:"url"`
	Language    string `json:"language"`
	Title       string `json:"title"`
	HeadingPath string `json:"headingPath"`
	Lead        string `json:"lead"`
	Headings    string `json:"headings"`
	BodyPrefix  string `json:"bodyPrefix"`

	// Rank is the native full-text rank; lower is better.
	Rank float64 `json:"-"`

	// Score is set only by strategies that rescore candidates.
	Score *float64 `json:"score"`
}

// SearchOptions narrows a search.
type SearchOptions struct {
	// Language selects the ranking strategy and filters results.
	// Empty searches all languages with native ranking.
	Language string

	Limit int
}

// Searcher runs ranked searches over the index.
type Searcher interface {
	Search(ctx context.Context, query string, opts SearchOptions) ([]*Hit, error)
}

// Citation is a quotable excerpt from an indexed page.
type Citation struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Heading string `json:"heading"`
	Quote   string `json:"quote"`
}
