package prometheus

import (
	"context"
	"strconv"
	"time"

	"github.com/fwojciec/docbot"
)

var (
	_ docbot.Fetcher     = (*Fetcher)(nil)
	_ docbot.PageService = (*PageService)(nil)
	_ docbot.Searcher    = (*Searcher)(nil)
)

// Fetcher counts fetches by result.
type Fetcher struct {
	next    docbot.Fetcher
	metrics *Metrics
}

// NewFetcher wraps next.
func NewFetcher(next docbot.Fetcher, m *Metrics) *Fetcher {
	return &Fetcher{next: next, metrics: m}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*docbot.Resource, error) {
	res, err := f.next.Fetch(ctx, url)
	result := ResultOK
	if err != nil {
		result = ResultFailed
	}
	f.metrics.FetchTotal.WithLabelValues(result).Inc()
	return res, err
}

func (f *Fetcher) Close() error {
	return f.next.Close()
}

// PageService counts successful upserts. Reads pass through.
type PageService struct {
	docbot.PageService
	metrics *Metrics
}

// NewPageService wraps next.
func NewPageService(next docbot.PageService, m *Metrics) *PageService {
	return &PageService{PageService: next, metrics: m}
}

func (s *PageService) UpsertPage(ctx context.Context, page *docbot.Page) (bool, error) {
	changed, err := s.PageService.UpsertPage(ctx, page)
	if err == nil {
		s.metrics.PagesUpsertedTotal.WithLabelValues(page.Language, strconv.FormatBool(changed)).Inc()
	}
	return changed, err
}

// Searcher counts searches and observes their latency by language.
type Searcher struct {
	next    docbot.Searcher
	metrics *Metrics
}

// NewSearcher wraps next.
func NewSearcher(next docbot.Searcher, m *Metrics) *Searcher {
	return &Searcher{next: next, metrics: m}
}

func (s *Searcher) Search(ctx context.Context, query string, opts docbot.SearchOptions) ([]*docbot.Hit, error) {
	defer func(begin time.Time) {
		s.metrics.SearchTotal.WithLabelValues(opts.Language).Inc()
		s.metrics.SearchDuration.WithLabelValues(opts.Language).Observe(time.Since(begin).Seconds())
	}(time.Now())
	return s.next.Search(ctx, query, opts)
}
