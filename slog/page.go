package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docbot"
)

// Ensure LoggingPageService implements docbot.PageService.
var _ docbot.PageService = (*LoggingPageService)(nil)

// LoggingPageService wraps a PageService with logging. Writes are logged at
// debug level since a crawl produces one per page.
type LoggingPageService struct {
	next   docbot.PageService
	logger *slog.Logger
}

// NewLoggingPageService creates a new LoggingPageService.
func NewLoggingPageService(next docbot.PageService, logger *slog.Logger) *LoggingPageService {
	return &LoggingPageService{next: next, logger: logger}
}

func (s *LoggingPageService) UpsertPage(ctx context.Context, page *docbot.Page) (changed bool, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("upsert page",
			"url", page.URL,
			"language", page.Language,
			"changed", changed,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.UpsertPage(ctx, page)
}

func (s *LoggingPageService) FindPageByURL(ctx context.Context, url string) (page *docbot.Page, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find page",
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindPageByURL(ctx, url)
}

func (s *LoggingPageService) MatchPages(ctx context.Context, q docbot.MatchQuery) (hits []*docbot.Hit, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("match pages",
			"expression", q.Expression,
			"language", q.Language,
			"limit", q.Limit,
			"count", len(hits),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.MatchPages(ctx, q)
}

func (s *LoggingPageService) ContainsPages(ctx context.Context, q docbot.ContainsQuery) (hits []*docbot.Hit, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("contains pages",
			"text", q.Text,
			"language", q.Language,
			"limit", q.Limit,
			"count", len(hits),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.ContainsPages(ctx, q)
}

func (s *LoggingPageService) PageStats(ctx context.Context) (stats *docbot.Stats, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("page stats",
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.PageStats(ctx)
}
