// Package crawl provides breadth-first crawling of a documentation site.
// It coordinates seeding, bounded-concurrency fetching, extraction and
// indexing of documentation pages.
package crawl

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/fwojciec/docbot"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Frontier configuration.
const (
	// frontierExpectedURLs is the expected number of URLs for Bloom filter sizing.
	frontierExpectedURLs = 10000
	// frontierFalsePositiveRate is the acceptable false positive rate for the filter stage.
	frontierFalsePositiveRate = 0.01
)

// Crawler crawls a documentation site and writes every fetched page to the
// index. A Crawler runs one crawl at a time; concurrent runs against the
// same index must be serialized by the caller.
type Crawler struct {
	Fetcher     docbot.Fetcher
	Extractors  docbot.ExtractorSet
	Pages       docbot.PageWriter
	Sitemaps    docbot.SitemapService
	RateLimiter docbot.DomainLimiter

	// Now returns the fetch timestamp. Defaults to time.Now.
	Now func() time.Time
}

// Result holds the outcome of a crawl run.
type Result struct {
	RunID string

	// Indexed counts pages written to the index; Unchanged counts the
	// subset whose indexed content was identical to the stored version.
	Indexed   int
	Unchanged int

	// Failed counts fetches that produced no content.
	Failed int

	// Skipped counts harvested links rejected by the scope.
	Skipped int

	// Visited counts distinct URLs taken from the frontier.
	Visited int

	Bytes int
}

// ProgressEvent reports progress during a crawl run.
type ProgressEvent struct {
	Type    ProgressType
	URL     string
	Depth   int
	Indexed int
	Error   error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressIndexed
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// fetchResult holds the outcome of fetching a single frontier entry.
type fetchResult struct {
	res *docbot.Resource
	err error
}

// Crawl runs a breadth-first crawl from the configured seeds.
//
// Each iteration drains up to Concurrency unvisited entries, fetches them
// in parallel and then processes the results in order: successful fetches
// are extracted and upserted, and their in-scope links are queued one level
// deeper while that level does not exceed MaxDepth. The run ends when the
// frontier empties or MaxPages fetches have been attempted.
//
// Fetch failures are counted and reported, never returned. An index error
// aborts the run. When ctx is canceled no further batch is dispatched and
// the partial result is returned with the context error.
func (c *Crawler) Crawl(ctx context.Context, cfg docbot.Config, progress ProgressFunc) (*Result, error) {
	cc := cfg.Crawl
	if err := cc.Validate(); err != nil {
		return nil, err
	}
	scope, err := cc.Scope()
	if err != nil {
		return nil, err
	}
	if progress == nil {
		progress = func(ProgressEvent) {}
	}

	result := &Result{RunID: uuid.New().String()}
	frontier := NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)
	for _, seed := range c.seeds(ctx, cc, scope) {
		frontier.Push(Entry{URL: seed})
	}

	progress(ProgressEvent{Type: ProgressStarted})

	attempted := 0
	for frontier.Len() > 0 && attempted < cc.MaxPages {
		if err := ctx.Err(); err != nil {
			result.Visited = frontier.VisitedCount()
			return result, err
		}

		batch := frontier.NextBatch(min(cc.Concurrency, cc.MaxPages-attempted))
		if len(batch) == 0 {
			break
		}
		attempted += len(batch)

		fetched := c.fetchBatch(ctx, batch, cc.Concurrency)
		if err := ctx.Err(); err != nil {
			result.Visited = frontier.VisitedCount()
			return result, err
		}

		for i, entry := range batch {
			links, err := c.index(ctx, cfg, scope.Language(entry.URL), entry, fetched[i], result, progress)
			if err != nil {
				result.Visited = frontier.VisitedCount()
				return result, err
			}
			if entry.Depth+1 > cc.MaxDepth {
				continue
			}
			for _, link := range links {
				if !scope.Allowed(link) {
					result.Skipped++
					continue
				}
				frontier.Push(Entry{URL: link, Depth: entry.Depth + 1})
			}
		}
	}

	if err := c.indexMarkdownSources(ctx, cfg, result, progress); err != nil {
		result.Visited = frontier.VisitedCount()
		return result, err
	}

	result.Visited = frontier.VisitedCount()
	progress(ProgressEvent{Type: ProgressFinished, Indexed: result.Indexed})
	return result, nil
}

// seeds returns the admitted seeds followed by admitted sitemap URLs.
// Sitemap discovery is best-effort.
func (c *Crawler) seeds(ctx context.Context, cc docbot.CrawlConfig, scope *docbot.Scope) []string {
	var seeds []string
	for _, s := range cc.Seeds {
		if scope.Allowed(s) {
			seeds = append(seeds, s)
		}
	}
	if !cc.UseSitemap || c.Sitemaps == nil {
		return seeds
	}

	sitemapURL := cc.SitemapURL
	if sitemapURL == "" {
		u, err := url.Parse(cc.Seeds[0])
		if err != nil {
			return seeds
		}
		sitemapURL = u.Scheme + "://" + u.Host
	}
	urls, err := c.Sitemaps.DiscoverURLs(ctx, sitemapURL, scope)
	if err != nil {
		return seeds
	}
	return append(seeds, urls...)
}

// fetchBatch fetches all entries with at most limit requests in flight.
// Results are positionally aligned with batch.
func (c *Crawler) fetchBatch(ctx context.Context, batch []Entry, limit int) []fetchResult {
	results := make([]fetchResult, len(batch))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, entry := range batch {
		g.Go(func() error {
			results[i] = c.fetch(ctx, entry.URL)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (c *Crawler) fetch(ctx context.Context, rawURL string) fetchResult {
	if c.RateLimiter != nil {
		u, err := url.Parse(rawURL)
		if err != nil {
			return fetchResult{err: docbot.Errorf(docbot.EINVALID, "invalid URL %q", rawURL)}
		}
		if err := c.RateLimiter.Wait(ctx, u.Host); err != nil {
			return fetchResult{err: err}
		}
	}
	res, err := c.Fetcher.Fetch(ctx, rawURL)
	return fetchResult{res: res, err: err}
}

// index writes one fetched entry under language lang and returns its
// outbound links, resolved against the final URL after redirects.
// Only index errors are returned.
func (c *Crawler) index(ctx context.Context, cfg docbot.Config, lang string, entry Entry, fr fetchResult, result *Result, progress ProgressFunc) ([]string, error) {
	if fr.err != nil || fr.res == nil {
		err := fr.err
		if err == nil {
			err = docbot.Errorf(docbot.ENOCONTENT, "no content for %s", entry.URL)
		}
		result.Failed++
		progress(ProgressEvent{Type: ProgressFailed, URL: entry.URL, Depth: entry.Depth, Error: err})
		return nil, nil
	}

	extractor := c.Extractors.For(fr.res)
	page := c.buildPage(cfg, extractor, entry.URL, lang, fr.res)

	changed, err := c.Pages.UpsertPage(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", entry.URL, err)
	}
	result.Indexed++
	if !changed {
		result.Unchanged++
	}
	result.Bytes += len(fr.res.Body)
	progress(ProgressEvent{Type: ProgressIndexed, URL: entry.URL, Depth: entry.Depth, Indexed: result.Indexed})

	base := fr.res.URL
	if base == "" {
		base = entry.URL
	}
	return extractor.Links(fr.res.Body, base), nil
}
