package crawl

import (
	"context"

	"github.com/fwojciec/docbot"
)

// indexMarkdownSources indexes the Markdown pages listed by each configured
// source. Sources live outside the crawl scope, so their pages are neither
// filtered nor followed, and they do not count toward MaxPages. A source
// whose index document cannot be fetched is skipped.
func (c *Crawler) indexMarkdownSources(ctx context.Context, cfg docbot.Config, result *Result, progress ProgressFunc) error {
	if c.Extractors.Markdown == nil {
		return nil
	}
	for _, src := range cfg.Crawl.MarkdownSources {
		if err := ctx.Err(); err != nil {
			return err
		}

		index := c.fetch(ctx, src.IndexURL)
		if index.err != nil || index.res == nil {
			result.Failed++
			progress(ProgressEvent{Type: ProgressFailed, URL: src.IndexURL, Error: index.err})
			continue
		}

		var pages docbot.LinkSet
		for _, link := range c.Extractors.Markdown.Links(index.res.Body, src.IndexURL) {
			if (&docbot.Resource{URL: link}).IsMarkdown() {
				pages.Add(link)
			}
		}
		for _, link := range src.Include {
			pages.Add(link)
		}

		lang := src.Language
		if lang == "" {
			lang = docbot.UnknownLanguage
		}
		if err := c.indexMarkdownPages(ctx, cfg, lang, pages.Links(), result, progress); err != nil {
			return err
		}
	}
	return nil
}

func (c *Crawler) indexMarkdownPages(ctx context.Context, cfg docbot.Config, lang string, urls []string, result *Result, progress ProgressFunc) error {
	concurrency := max(cfg.Crawl.Concurrency, 1)
	for start := 0; start < len(urls); start += concurrency {
		batch := make([]Entry, 0, concurrency)
		for _, u := range urls[start:min(start+concurrency, len(urls))] {
			batch = append(batch, Entry{URL: u, Depth: 1})
		}

		fetched := c.fetchBatch(ctx, batch, concurrency)
		if err := ctx.Err(); err != nil {
			return err
		}
		for i, entry := range batch {
			if _, err := c.index(ctx, cfg, lang, entry, fetched[i], result, progress); err != nil {
				return err
			}
		}
	}
	return nil
}
