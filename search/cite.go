package search

import (
	"context"
	"slices"

	"github.com/fwojciec/docbot"
)

// Citation defaults.
const (
	DefaultCitePages           = 6
	DefaultCiteSectionsPerPage = 10
	MaxQuoteLen                = 900
	MaxCitations               = 25

	minCiteCandidates = 30
)

// CiteOptions narrows citation gathering.
type CiteOptions struct {
	Language        string
	Pages           int
	SectionsPerPage int
}

// Citer gathers quotable sections from the pages that best match a
// question. Sections are extracted from a fresh fetch since they are never
// stored.
type Citer struct {
	searcher   docbot.Searcher
	fetcher    docbot.Fetcher
	extractors docbot.ExtractorSet
}

// NewCiter creates a Citer.
func NewCiter(searcher docbot.Searcher, fetcher docbot.Fetcher, extractors docbot.ExtractorSet) *Citer {
	return &Citer{searcher: searcher, fetcher: fetcher, extractors: extractors}
}

// Cite searches for question and returns citations from the top pages
// along with the hits they were drawn from. Pages that cannot be fetched are
// skipped.
func (c *Citer) Cite(ctx context.Context, question string, opts CiteOptions) ([]*docbot.Citation, []*docbot.Hit, error) {
	if opts.Pages <= 0 {
		opts.Pages = DefaultCitePages
	}
	if opts.SectionsPerPage <= 0 {
		opts.SectionsPerPage = DefaultCiteSectionsPerPage
	}

	hits, err := c.searcher.Search(ctx, question, docbot.SearchOptions{
		Language: opts.Language,
		Limit:    max(minCiteCandidates, opts.Pages*5),
	})
	if err != nil {
		return nil, nil, err
	}
	hits = truncate(hits, opts.Pages)

	var citations []*docbot.Citation
	for _, hit := range hits {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		res, err := c.fetcher.Fetch(ctx, hit.URL)
		if err != nil {
			continue
		}
		for _, s := range longestSections(c.extractors.For(res).Sections(res.Body), opts.SectionsPerPage) {
			citations = append(citations, &docbot.Citation{
				URL:     hit.URL,
				Title:   hit.Title,
				Heading: s.Heading,
				Quote:   docbot.Truncate(s.Text, MaxQuoteLen),
			})
			if len(citations) == MaxCitations {
				return citations, hits, nil
			}
		}
	}

	return citations, hits, nil
}

// longestSections returns the n sections with the longest text, keeping
// document order among equal lengths.
func longestSections(sections []docbot.Section, n int) []docbot.Section {
	sorted := slices.Clone(sections)
	slices.SortStableFunc(sorted, func(a, b docbot.Section) int {
		return len([]rune(b.Text)) - len([]rune(a.Text))
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
