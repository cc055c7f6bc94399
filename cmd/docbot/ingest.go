package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/docbot"
	"github.com/fwojciec/docbot/crawl"
)

// Run executes the ingest command.
func (c *IngestCmd) Run(deps *Dependencies) error {
	if deps.Crawler == nil {
		return docbot.Errorf(docbot.EINTERNAL, "crawler not configured")
	}

	cfg := deps.Config
	cfg.Crawl.Seeds = append([]string(nil), cfg.Crawl.Seeds...)
	if c.MaxPages > 0 {
		cfg.Crawl.MaxPages = c.MaxPages
	}
	if c.MaxDepth >= 0 {
		cfg.Crawl.MaxDepth = c.MaxDepth
	}
	if c.Concurrency > 0 {
		cfg.Crawl.Concurrency = c.Concurrency
	}
	if c.Sitemap {
		cfg.Crawl.UseSitemap = true
	}

	progress := func(event crawl.ProgressEvent) {
		switch event.Type {
		case crawl.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "Crawling %d seeds (max %d pages, depth %d)\n",
				len(cfg.Crawl.Seeds), cfg.Crawl.MaxPages, cfg.Crawl.MaxDepth)
		case crawl.ProgressIndexed:
			fmt.Fprintf(deps.Stdout, "  [%d] %s\n", event.Indexed, crawl.DisplayURL(event.URL, 100))
		case crawl.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", crawl.DisplayURL(event.URL, 100), event.Error)
		case crawl.ProgressFinished:
			// Summary printed after crawl completes
		}
	}

	start := time.Now()
	result, err := deps.Crawler.Crawl(deps.Ctx, cfg, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error crawling: %v\n", err)
		if result != nil {
			fmt.Fprintf(deps.Stderr, "partial run %s: %s\n", result.RunID, result.Summary(time.Since(start)))
		}
		return err
	}

	fmt.Fprintf(deps.Stdout, "Run %s: %s\n", result.RunID, result.Summary(time.Since(start)))
	if l, ok := deps.Crawler.RateLimiter.(*crawl.DomainLimiter); ok && l.Throttled() > 0 {
		fmt.Fprintf(deps.Stdout, "Rate limit waits: %s\n", l.Throttled().Round(time.Millisecond))
	}
	return nil
}
