// Package search ranks full-text matches from the page index. Each script
// family gets its own strategy: native ranking for space-delimited text with
// anchor-noise demotion, and n-gram candidate retrieval followed by
// additive rescoring for CJK text.
package search

import (
	"context"
	"strings"

	"github.com/fwojciec/docbot"
)

// Ensure Engine implements docbot.Searcher at compile time.
var _ docbot.Searcher = (*Engine)(nil)

// Strategy runs one ranked query. Language is the filter to apply and may
// be empty; limit is always positive.
type Strategy interface {
	Search(ctx context.Context, query, language string, limit int) ([]*docbot.Hit, error)
}

// Engine dispatches searches to the strategy registered for the script of
// the requested language.
type Engine struct {
	languages  docbot.Languages
	fallback   Strategy
	strategies map[docbot.Script]Strategy
}

// NewEngine creates an Engine over pages with the Latin and CJK strategies
// registered, tuned by cfg.
func NewEngine(pages docbot.PageService, cfg docbot.Config) *Engine {
	e := &Engine{
		languages:  cfg.Languages,
		fallback:   NewDefaultStrategy(pages),
		strategies: make(map[docbot.Script]Strategy),
	}
	if e.languages == nil {
		e.languages = docbot.DefaultLanguages()
	}
	e.Register(docbot.ScriptLatin, NewLatinStrategy(pages, cfg.Search.LatinCandidateLimit))
	e.Register(docbot.ScriptCJK, NewCJKStrategy(pages, cfg.Search, cfg.Ranking))
	return e
}

// Register installs strategy for script, replacing any previous one.
func (e *Engine) Register(script docbot.Script, strategy Strategy) {
	e.strategies[script] = strategy
}

// Search returns up to opts.Limit hits for query. An empty query returns no
// hits.
func (e *Engine) Search(ctx context.Context, query string, opts docbot.SearchOptions) ([]*docbot.Hit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = docbot.DefaultSearchLimit
	}
	return e.strategyFor(opts.Language).Search(ctx, query, opts.Language, limit)
}

func (e *Engine) strategyFor(language string) Strategy {
	if language == "" {
		return e.fallback
	}
	if s, ok := e.strategies[e.languages.Script(language)]; ok {
		return s
	}
	return e.fallback
}
