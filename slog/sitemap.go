package slog

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/fwojciec/docbot"
)

// Ensure LoggingSitemapService implements docbot.SitemapService.
var _ docbot.SitemapService = (*LoggingSitemapService)(nil)

// LoggingSitemapService wraps a SitemapService with logging. When a scope
// is given, the discovered URLs are also counted per language.
type LoggingSitemapService struct {
	next   docbot.SitemapService
	logger *slog.Logger
}

// NewLoggingSitemapService creates a new LoggingSitemapService.
func NewLoggingSitemapService(next docbot.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

// DiscoverURLs delegates to the wrapped service and logs the operation.
func (s *LoggingSitemapService) DiscoverURLs(ctx context.Context, sitemapURL string, scope *docbot.Scope) (urls []string, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"url", sitemapURL,
			"count", len(urls),
		}
		if scope != nil && len(urls) > 0 {
			attrs = append(attrs, languageGroup(scope, urls))
		}
		attrs = append(attrs, "duration", time.Since(begin), "err", err)
		s.logger.Info("sitemap discovery", attrs...)
	}(time.Now())
	return s.next.DiscoverURLs(ctx, sitemapURL, scope)
}

// languageGroup counts urls by the language the scope assigns them, in
// tag order.
func languageGroup(scope *docbot.Scope, urls []string) slog.Attr {
	counts := make(map[string]int)
	for _, u := range urls {
		counts[scope.Language(u)]++
	}
	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	slices.Sort(tags)

	attrs := make([]any, 0, len(tags))
	for _, tag := range tags {
		attrs = append(attrs, slog.Int(tag, counts[tag]))
	}
	return slog.Group("languages", attrs...)
}
