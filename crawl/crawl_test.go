package crawl_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/docbot"
	"github.com/fwojciec/docbot/crawl"
	"github.com/fwojciec/docbot/goldmark"
	"github.com/fwojciec/docbot/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base = "https://docs.example.com/v/1"

// site maps each page URL to the links found on it. The fetched body of a
// page is its own URL, so the mock extractor can look links up by body.
type site map[string][]string

// harness wires a Crawler to an in-memory site.
type harness struct {
	mu      sync.Mutex
	fetched []string
	pages   []*docbot.Page
	crawler *crawl.Crawler
}

func newHarness(t *testing.T, s site) *harness {
	t.Helper()

	h := &harness{}
	extractor := &mock.Extractor{
		IndexFieldsFn: func(body string) docbot.IndexFields {
			return docbot.IndexFields{Title: "title " + body, Lead: "lead"}
		},
		HeadingsAndBodyPrefixFn: func(body string, prefixLen int) (string, string) {
			return "見出し", "本文の先頭"
		},
		LinksFn: func(body, baseURL string) []string {
			return s[body]
		},
	}
	h.crawler = &crawl.Crawler{
		Fetcher: &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*docbot.Resource, error) {
				h.mu.Lock()
				h.fetched = append(h.fetched, url)
				h.mu.Unlock()
				if _, ok := s[url]; !ok {
					return nil, docbot.Errorf(docbot.ENOCONTENT, "HTTP 404 for %s", url)
				}
				return &docbot.Resource{URL: url, Body: url, ContentType: "text/html"}, nil
			},
		},
		Extractors: docbot.ExtractorSet{HTML: extractor, Markdown: goldmark.NewExtractor()},
		Pages: &mock.PageService{
			UpsertPageFn: func(_ context.Context, page *docbot.Page) (bool, error) {
				h.pages = append(h.pages, page)
				return true, nil
			},
		},
		Now: func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
	return h
}

func (h *harness) indexed() []string {
	urls := make([]string, len(h.pages))
	for i, p := range h.pages {
		urls[i] = p.URL
	}
	return urls
}

func testConfig(seeds ...string) docbot.Config {
	cfg := docbot.DefaultConfig()
	cfg.Crawl.Allow = `https://docs\.example\.com/v/[^/]+/[^/]+`
	cfg.Crawl.Seeds = seeds
	cfg.Crawl.MaxDepth = 8
	cfg.Crawl.Concurrency = 2
	cfg.Crawl.MarkdownSources = nil
	return cfg
}

func page(lang, name string) string {
	return base + "/" + lang + "/" + name
}

func TestCrawler_Crawl(t *testing.T) {
	t.Parallel()

	t.Run("stops following links past max depth", func(t *testing.T) {
		t.Parallel()

		a, b, c, d := page("en-us", "a"), page("en-us", "b"), page("en-us", "c"), page("en-us", "d")
		h := newHarness(t, site{
			a: {b, c},
			b: {d},
			c: {},
			d: {},
		})
		cfg := testConfig(a)
		cfg.Crawl.MaxDepth = 1

		result, err := h.crawler.Crawl(context.Background(), cfg, nil)

		require.NoError(t, err)
		assert.ElementsMatch(t, []string{a, b, c}, h.indexed())
		assert.NotContains(t, h.fetched, d)
		assert.Equal(t, 3, result.Indexed)
		assert.Equal(t, 3, result.Visited)
		assert.NotEmpty(t, result.RunID)
	})

	t.Run("never fetches beyond max depth on a deeper graph", func(t *testing.T) {
		t.Parallel()

		// Chain p0 -> p1 -> ... -> p9, where pN is at depth N.
		s := site{}
		for i := 0; i < 10; i++ {
			next := []string{}
			if i < 9 {
				next = []string{page("en-us", fmt.Sprintf("p%d", i+1))}
			}
			s[page("en-us", fmt.Sprintf("p%d", i))] = next
		}
		h := newHarness(t, s)
		cfg := testConfig(page("en-us", "p0"))
		cfg.Crawl.MaxDepth = 4

		_, err := h.crawler.Crawl(context.Background(), cfg, nil)

		require.NoError(t, err)
		assert.Len(t, h.fetched, 5)
		assert.NotContains(t, h.fetched, page("en-us", "p5"))
	})

	t.Run("fetches at most max pages", func(t *testing.T) {
		t.Parallel()

		s := site{}
		var links []string
		for i := 0; i < 20; i++ {
			links = append(links, page("en-us", fmt.Sprintf("n%d", i)))
		}
		s[page("en-us", "hub")] = links
		for _, l := range links {
			s[l] = []string{}
		}
		h := newHarness(t, s)
		cfg := testConfig(page("en-us", "hub"))
		cfg.Crawl.MaxPages = 5
		cfg.Crawl.Concurrency = 3

		result, err := h.crawler.Crawl(context.Background(), cfg, nil)

		require.NoError(t, err)
		assert.Len(t, h.fetched, 5)
		assert.Equal(t, 5, result.Indexed)
	})

	t.Run("processes pages breadth first", func(t *testing.T) {
		t.Parallel()

		a, b, c := page("en-us", "a"), page("en-us", "b"), page("en-us", "c")
		b1, c1 := page("en-us", "b1"), page("en-us", "c1")
		h := newHarness(t, site{
			a:  {b, c},
			b:  {b1},
			c:  {c1},
			b1: {},
			c1: {},
		})
		cfg := testConfig(a)
		cfg.Crawl.Concurrency = 1

		_, err := h.crawler.Crawl(context.Background(), cfg, nil)

		require.NoError(t, err)
		assert.Equal(t, []string{a, b, c, b1, c1}, h.indexed())
	})

	t.Run("fetch failures are recorded and skipped", func(t *testing.T) {
		t.Parallel()

		a, missing, b := page("en-us", "a"), page("en-us", "missing"), page("en-us", "b")
		h := newHarness(t, site{a: {missing, b}, b: {}})

		var failed []string
		progress := func(e crawl.ProgressEvent) {
			if e.Type == crawl.ProgressFailed {
				failed = append(failed, e.URL)
			}
		}
		result, err := h.crawler.Crawl(context.Background(), testConfig(a), progress)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, []string{missing}, failed)
		assert.ElementsMatch(t, []string{a, b}, h.indexed())
	})

	t.Run("fetches each URL at most once", func(t *testing.T) {
		t.Parallel()

		a, b := page("en-us", "a"), page("en-us", "b")
		h := newHarness(t, site{a: {b, b, a}, b: {a, b}})

		_, err := h.crawler.Crawl(context.Background(), testConfig(a, a), nil)

		require.NoError(t, err)
		assert.Equal(t, []string{a, b}, h.fetched)
	})

	t.Run("skips links outside the scope", func(t *testing.T) {
		t.Parallel()

		a := page("en-us", "a")
		h := newHarness(t, site{a: {
			"https://other.example.com/v/1/en-us/x",
			page("en-us", "logo.png"),
		}})

		result, err := h.crawler.Crawl(context.Background(), testConfig(a, "https://other.example.com/seed"), nil)

		require.NoError(t, err)
		assert.Equal(t, []string{a}, h.fetched)
		assert.Equal(t, 2, result.Skipped)
	})

	t.Run("generates n-gram terms only for n-gram languages", func(t *testing.T) {
		t.Parallel()

		ja, en := page("ja-jp", "a"), page("en-us", "a")
		h := newHarness(t, site{ja: {en}, en: {}})

		_, err := h.crawler.Crawl(context.Background(), testConfig(ja), nil)

		require.NoError(t, err)
		require.Len(t, h.pages, 2)

		jaPage, enPage := h.pages[0], h.pages[1]
		assert.Equal(t, "ja-jp", jaPage.Language)
		assert.Equal(t, "見出し", jaPage.Headings)
		assert.Equal(t, "本文の先頭", jaPage.BodyPrefix)
		assert.Contains(t, jaPage.Terms, "見出")
		assert.Contains(t, jaPage.Terms, "本文の")
		assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), jaPage.FetchedAt)

		assert.Equal(t, "en-us", enPage.Language)
		assert.Empty(t, enPage.Headings)
		assert.Empty(t, enPage.BodyPrefix)
		assert.Empty(t, enPage.Terms)
	})

	t.Run("index errors abort the run", func(t *testing.T) {
		t.Parallel()

		a, b := page("en-us", "a"), page("en-us", "b")
		h := newHarness(t, site{a: {b}, b: {}})
		h.crawler.Pages = &mock.PageService{
			UpsertPageFn: func(_ context.Context, _ *docbot.Page) (bool, error) {
				return false, errors.New("disk I/O error")
			},
		}

		result, err := h.crawler.Crawl(context.Background(), testConfig(a), nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk I/O error")
		require.NotNil(t, result)
		assert.Equal(t, 0, result.Indexed)
		assert.NotContains(t, h.fetched, b)
	})

	t.Run("counts unchanged pages", func(t *testing.T) {
		t.Parallel()

		a := page("en-us", "a")
		h := newHarness(t, site{a: {}})
		h.crawler.Pages = &mock.PageService{
			UpsertPageFn: func(_ context.Context, _ *docbot.Page) (bool, error) {
				return false, nil
			},
		}

		result, err := h.crawler.Crawl(context.Background(), testConfig(a), nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Indexed)
		assert.Equal(t, 1, result.Unchanged)
	})

	t.Run("canceled context returns partial result", func(t *testing.T) {
		t.Parallel()

		a := page("en-us", "a")
		h := newHarness(t, site{a: {}})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := h.crawler.Crawl(ctx, testConfig(a), nil)

		require.ErrorIs(t, err, context.Canceled)
		require.NotNil(t, result)
		assert.Empty(t, h.pages)
	})

	t.Run("rejects invalid configuration", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, site{})
		cfg := testConfig()

		_, err := h.crawler.Crawl(context.Background(), cfg, nil)

		require.Error(t, err)
		assert.Equal(t, docbot.EINVALID, docbot.ErrorCode(err))
	})

	t.Run("reports progress", func(t *testing.T) {
		t.Parallel()

		a := page("en-us", "a")
		h := newHarness(t, site{a: {}})

		var types []crawl.ProgressType
		progress := func(e crawl.ProgressEvent) { types = append(types, e.Type) }
		_, err := h.crawler.Crawl(context.Background(), testConfig(a), progress)

		require.NoError(t, err)
		assert.Equal(t, []crawl.ProgressType{crawl.ProgressStarted, crawl.ProgressIndexed, crawl.ProgressFinished}, types)
	})
}

func TestCrawler_Crawl_Sitemap(t *testing.T) {
	t.Parallel()

	t.Run("adds sitemap URLs as seeds", func(t *testing.T) {
		t.Parallel()

		a, b := page("en-us", "a"), page("en-us", "b")
		h := newHarness(t, site{a: {}, b: {}})

		var gotSitemapURL string
		h.crawler.Sitemaps = &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, sitemapURL string, scope *docbot.Scope) ([]string, error) {
				gotSitemapURL = sitemapURL
				require.NotNil(t, scope)
				return []string{b}, nil
			},
		}
		cfg := testConfig(a)
		cfg.Crawl.UseSitemap = true

		_, err := h.crawler.Crawl(context.Background(), cfg, nil)

		require.NoError(t, err)
		assert.Equal(t, "https://docs.example.com", gotSitemapURL)
		assert.Equal(t, []string{a, b}, h.indexed())
	})

	t.Run("ignores sitemap errors", func(t *testing.T) {
		t.Parallel()

		a := page("en-us", "a")
		h := newHarness(t, site{a: {}})
		h.crawler.Sitemaps = &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, _ string, _ *docbot.Scope) ([]string, error) {
				return nil, errors.New("sitemap unavailable")
			},
		}
		cfg := testConfig(a)
		cfg.Crawl.UseSitemap = true

		result, err := h.crawler.Crawl(context.Background(), cfg, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Indexed)
	})
}

func TestCrawler_Crawl_MarkdownSources(t *testing.T) {
	t.Parallel()

	const (
		sidebar = "https://notes.example.org/_sidebar.md"
		notes   = "https://notes.example.org/pages/3_7_5.md"
		readme  = "https://notes.example.org/README.md"
	)
	bodies := map[string]string{
		sidebar: "* [v3.7.5](/pages/3_7_5.md)\n* [Home](https://notes.example.org/)\n",
		notes:   "# v3.7.5\n\nFixes.\n\n## Upgrade\nRun helm upgrade.\n",
		readme:  "# Dify Helm\n\nChart docs.\n",
	}

	var pages []*docbot.Page
	c := &crawl.Crawler{
		Fetcher: &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*docbot.Resource, error) {
				body, ok := bodies[url]
				if !ok {
					return nil, docbot.Errorf(docbot.ENOCONTENT, "HTTP 404 for %s", url)
				}
				return &docbot.Resource{URL: url, Body: body, ContentType: "text/plain"}, nil
			},
		},
		Extractors: docbot.ExtractorSet{Markdown: goldmark.NewExtractor()},
		Pages: &mock.PageService{
			UpsertPageFn: func(_ context.Context, page *docbot.Page) (bool, error) {
				pages = append(pages, page)
				return true, nil
			},
		},
	}

	cfg := testConfig("https://outside.example.org/")
	cfg.Crawl.MarkdownSources = []docbot.MarkdownSource{{
		IndexURL: sidebar,
		Language: "en-us",
		Include:  []string{readme},
	}}

	result, err := c.Crawl(context.Background(), cfg, nil)

	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, 2, result.Indexed)

	assert.Equal(t, notes, pages[0].URL)
	assert.Equal(t, "en-us", pages[0].Language)
	assert.Equal(t, "v3.7.5", pages[0].Title)
	assert.Equal(t, "Upgrade", pages[0].Headings)
	assert.Contains(t, pages[0].BodyPrefix, "Run helm upgrade.")
	assert.Empty(t, pages[0].Terms)

	assert.Equal(t, readme, pages[1].URL)
	assert.Equal(t, "Dify Helm", pages[1].Title)
}

func TestCrawler_Crawl_RateLimit(t *testing.T) {
	t.Parallel()

	a := page("en-us", "a")
	h := newHarness(t, site{a: {}})

	var mu sync.Mutex
	var domains []string
	h.crawler.RateLimiter = &mock.DomainLimiter{
		WaitFn: func(_ context.Context, domain string) error {
			mu.Lock()
			defer mu.Unlock()
			domains = append(domains, domain)
			return nil
		},
	}

	_, err := h.crawler.Crawl(context.Background(), testConfig(a), nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"docs.example.com"}, domains)
}

func TestCrawler_Crawl_Redirect(t *testing.T) {
	t.Parallel()

	seed := page("en-us", "guide/old")
	final := page("en-us", "manual/intro")
	next := page("en-us", "manual/next")

	var mu sync.Mutex
	var fetched []string
	c := &crawl.Crawler{
		Fetcher: &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*docbot.Resource, error) {
				mu.Lock()
				fetched = append(fetched, url)
				mu.Unlock()
				switch url {
				case seed:
					return &docbot.Resource{URL: final, Body: "# Intro\n\n[next](next)\n", ContentType: "text/markdown"}, nil
				case next:
					return &docbot.Resource{URL: next, Body: "# Next\n", ContentType: "text/markdown"}, nil
				}
				return nil, docbot.Errorf(docbot.ENOCONTENT, "HTTP 404 for %s", url)
			},
		},
		Extractors: docbot.ExtractorSet{Markdown: goldmark.NewExtractor()},
		Pages: &mock.PageService{
			UpsertPageFn: func(context.Context, *docbot.Page) (bool, error) {
				return true, nil
			},
		},
	}

	result, err := c.Crawl(context.Background(), testConfig(seed), nil)

	require.NoError(t, err)
	assert.Equal(t, []string{seed, next}, fetched, "relative links resolve against the redirected URL")
	assert.NotContains(t, fetched, page("en-us", "guide/next"))
	assert.Equal(t, 2, result.Indexed)
}
