package search

import (
	"context"
	"slices"
	"strings"
	"unicode"

	"github.com/fwojciec/docbot"
)

// DefaultStrategy requires every query word and keeps native ranking.
type DefaultStrategy struct {
	pages docbot.PageService
}

// NewDefaultStrategy creates a DefaultStrategy.
func NewDefaultStrategy(pages docbot.PageService) *DefaultStrategy {
	return &DefaultStrategy{pages: pages}
}

func (s *DefaultStrategy) Search(ctx context.Context, query, language string, limit int) ([]*docbot.Hit, error) {
	return matchOrContains(ctx, s.pages, docbot.MatchAllExpression(query), query, language, limit)
}

// LatinStrategy ranks like DefaultStrategy but moves anchor-only hits after
// all others. It over-fetches so demoted hits can be replaced by ones
// further down the native ranking.
type LatinStrategy struct {
	pages          docbot.PageService
	candidateLimit int
}

// NewLatinStrategy creates a LatinStrategy fetching at least candidateLimit
// hits before demotion. A non-positive candidateLimit selects
// docbot.DefaultLatinCandidateLimit.
func NewLatinStrategy(pages docbot.PageService, candidateLimit int) *LatinStrategy {
	if candidateLimit <= 0 {
		candidateLimit = docbot.DefaultLatinCandidateLimit
	}
	return &LatinStrategy{pages: pages, candidateLimit: candidateLimit}
}

func (s *LatinStrategy) Search(ctx context.Context, query, language string, limit int) ([]*docbot.Hit, error) {
	hits, err := matchOrContains(ctx, s.pages, docbot.MatchAllExpression(query), query, language, max(limit, s.candidateLimit))
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	slices.SortStableFunc(hits, func(a, b *docbot.Hit) int {
		an, bn := AnchorNoise(a, q), AnchorNoise(b, q)
		switch {
		case an == bn:
			return 0
		case an:
			return 1
		default:
			return -1
		}
	})

	return truncate(hits, limit), nil
}

// AnchorNoise reports whether hit appears to match q only through a URL
// fragment: the URL carries "#q" (or q hyphenated) while neither title nor
// lead contains the words of q, hyphens and spaces treated alike. q must already be lower-cased and trimmed.
func AnchorNoise(hit *docbot.Hit, q string) bool {
	if q == "" {
		return false
	}
	u := strings.ToLower(hit.URL)
	anchor := strings.Contains(u, "#"+q) || strings.HasSuffix(u, "#"+strings.ReplaceAll(q, " ", "-"))
	if !anchor {
		return false
	}
	phrase := words(q)
	content := strings.Contains(words(hit.Title), phrase) || strings.Contains(words(hit.Lead), phrase)
	return !content
}

// words lower-cases s and rejoins its hyphen- or space-separated words with
// single spaces, so "Helm-Chart" and "helm  chart" compare equal.
func words(s string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == '-' || unicode.IsSpace(r)
	}), " ")
}

// CJKStrategy retrieves a fixed number of n-gram candidates and reorders
// them with additive rescoring.
type CJKStrategy struct {
	pages            docbot.PageService
	weights          docbot.RankWeights
	candidateLimit   int
	queryTermLimit   int
	rescoreTermLimit int
}

// NewCJKStrategy creates a CJKStrategy. Zero limits select the package
// defaults from docbot.
func NewCJKStrategy(pages docbot.PageService, cfg docbot.SearchConfig, weights docbot.RankWeights) *CJKStrategy {
	s := &CJKStrategy{
		pages:            pages,
		weights:          weights,
		candidateLimit:   cfg.CandidateLimit,
		queryTermLimit:   cfg.QueryTermLimit,
		rescoreTermLimit: cfg.RescoreTermLimit,
	}
	if s.candidateLimit <= 0 {
		s.candidateLimit = docbot.DefaultCandidateLimit
	}
	if s.queryTermLimit <= 0 {
		s.queryTermLimit = docbot.DefaultQueryTermLimit
	}
	if s.rescoreTermLimit <= 0 {
		s.rescoreTermLimit = docbot.DefaultRescoreTermLimit
	}
	return s
}

func (s *CJKStrategy) Search(ctx context.Context, query, language string, limit int) ([]*docbot.Hit, error) {
	expr, _ := docbot.QueryExpression(query, s.queryTermLimit)
	hits, err := matchOrContains(ctx, s.pages, expr, query, language, s.candidateLimit)
	if err != nil {
		return nil, err
	}

	r := NewRescorer(query, s.weights, s.rescoreTermLimit)
	for _, h := range hits {
		score := r.Score(h)
		h.Score = &score
	}
	slices.SortStableFunc(hits, func(a, b *docbot.Hit) int {
		switch {
		case *a.Score > *b.Score:
			return -1
		case *a.Score < *b.Score:
			return 1
		}
		return 0
	})

	return truncate(hits, limit), nil
}

// matchOrContains runs expr against the index, or a literal substring
// search for the trimmed query when expr is empty.
func matchOrContains(ctx context.Context, pages docbot.PageService, expr, query, language string, limit int) ([]*docbot.Hit, error) {
	if expr == "" {
		text := strings.TrimSpace(query)
		if text == "" {
			return nil, nil
		}
		return pages.ContainsPages(ctx, docbot.ContainsQuery{Text: text, Language: language, Limit: limit})
	}
	return pages.MatchPages(ctx, docbot.MatchQuery{Expression: expr, Language: language, Limit: limit})
}

func truncate(hits []*docbot.Hit, n int) []*docbot.Hit {
	if len(hits) > n {
		return hits[:n]
	}
	return hits
}
