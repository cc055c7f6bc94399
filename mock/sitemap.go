package mock

import (
	"context"

	"github.com/fwojciec/docbot"
)

var _ docbot.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of docbot.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, sitemapURL string, scope *docbot.Scope) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, sitemapURL string, scope *docbot.Scope) ([]string, error) {
	return s.DiscoverURLsFn(ctx, sitemapURL, scope)
}
