package crawl

import (
	"strings"
	"time"

	"github.com/fwojciec/docbot"
)

// buildPage derives the index record for a fetched resource. Headings and
// body prefix are extracted for n-gram indexed languages, whose short
// fields alone give the n-grams too little text, and for Markdown, where
// they are cheap. Terms are generated only for n-gram indexed languages.
func (c *Crawler) buildPage(cfg docbot.Config, extractor docbot.Extractor, pageURL, lang string, res *docbot.Resource) *docbot.Page {
	fields := extractor.IndexFields(res.Body)
	page := &docbot.Page{
		URL:         pageURL,
		Language:    lang,
		Title:       fields.Title,
		HeadingPath: fields.HeadingPath,
		Lead:        fields.Lead,
		FetchedAt:   c.now(),
	}

	ngrams := cfg.Languages.NGramIndexed(lang)
	if ngrams || res.IsMarkdown() {
		page.Headings, page.BodyPrefix = extractor.HeadingsAndBodyPrefix(res.Body, cfg.Crawl.BodyPrefixLen)
	}
	if ngrams {
		page.Terms = indexTerms(page, cfg.Crawl.IndexTermLimit)
	}
	return page
}

// indexTerms generates the n-gram terms over every derived text field.
func indexTerms(page *docbot.Page, limit int) string {
	if limit <= 0 {
		limit = docbot.DefaultIndexTermLimit
	}
	source := strings.Join([]string{
		page.Title,
		page.HeadingPath,
		page.Lead,
		page.Headings,
		page.BodyPrefix,
	}, "\n")
	return strings.Join(docbot.IndexTerms(source, docbot.IndexOrders, limit), " ")
}

func (c *Crawler) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
