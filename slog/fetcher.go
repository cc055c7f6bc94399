// Package slog provides logging decorators for docbot services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docbot"
)

// Ensure LoggingFetcher implements docbot.Fetcher.
var _ docbot.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging. Successful fetches log at
// info level, failures at warn level with their docbot error code.
type LoggingFetcher struct {
	next   docbot.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next docbot.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the outcome. A redirected
// fetch also logs the final URL.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (res *docbot.Resource, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", url, "duration", time.Since(begin)}
		if err != nil || res == nil {
			f.logger.Warn("fetch", append(attrs, "code", docbot.ErrorCode(err), "err", err)...)
			return
		}
		attrs = append(attrs, "bytes", len(res.Body), "content_type", res.ContentType)
		if res.URL != "" && res.URL != url {
			attrs = append(attrs, "final_url", res.URL)
		}
		f.logger.Info("fetch", attrs...)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
