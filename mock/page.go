package mock

import (
	"context"

	"github.com/fwojciec/docbot"
)

// Compile-time interface verification.
var (
	_ docbot.PageService = (*PageService)(nil)
	_ docbot.Searcher    = (*Searcher)(nil)
)

// PageService is a mock implementation of docbot.PageService.
type PageService struct {
	UpsertPageFn    func(ctx context.Context, page *docbot.Page) (bool, error)
	FindPageByURLFn func(ctx context.Context, url string) (*docbot.Page, error)
	MatchPagesFn    func(ctx context.Context, q docbot.MatchQuery) ([]*docbot.Hit, error)
	ContainsPagesFn func(ctx context.Context, q docbot.ContainsQuery) ([]*docbot.Hit, error)
	PageStatsFn     func(ctx context.Context) (*docbot.Stats, error)
}

func (s *PageService) UpsertPage(ctx context.Context, page *docbot.Page) (bool, error) {
	return s.UpsertPageFn(ctx, page)
}

func (s *PageService) FindPageByURL(ctx context.Context, url string) (*docbot.Page, error) {
	return s.FindPageByURLFn(ctx, url)
}

func (s *PageService) MatchPages(ctx context.Context, q docbot.MatchQuery) ([]*docbot.Hit, error) {
	return s.MatchPagesFn(ctx, q)
}

func (s *PageService) ContainsPages(ctx context.Context, q docbot.ContainsQuery) ([]*docbot.Hit, error) {
	return s.ContainsPagesFn(ctx, q)
}

func (s *PageService) PageStats(ctx context.Context) (*docbot.Stats, error) {
	return s.PageStatsFn(ctx)
}

// Searcher is a mock implementation of docbot.Searcher.
type Searcher struct {
	SearchFn func(ctx context.Context, query string, opts docbot.SearchOptions) ([]*docbot.Hit, error)
}

func (s *Searcher) Search(ctx context.Context, query string, opts docbot.SearchOptions) ([]*docbot.Hit, error) {
	return s.SearchFn(ctx, query, opts)
}
