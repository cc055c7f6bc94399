package docbot

import "time"

// Config is the complete configuration of an indexing deployment. It is
// passed explicitly to the crawler and the search engine.
type Config struct {
	DBPath    string
	Crawl     CrawlConfig
	Search    SearchConfig
	Ranking   RankWeights
	Languages Languages
}

// CrawlConfig bounds and scopes one crawl run.
type CrawlConfig struct {
	Allow           string
	DenyExtensions  []string
	LanguageSegment int
	Seeds           []string

	// MaxPages caps fetch attempts across the run.
	MaxPages    int
	MaxDepth    int
	Concurrency int

	BodyPrefixLen  int
	IndexTermLimit int

	// UseSitemap adds sitemap URLs as extra depth-0 seeds. SitemapURL
	// defaults to the host of the first seed.
	UseSitemap bool
	SitemapURL string

	// MarkdownSources are Markdown index documents whose linked Markdown
	// pages are indexed after the crawl, bypassing the scope.
	MarkdownSources []MarkdownSource

	// Extractor selects main-content extraction: "readability" or "trafilatura".
	Extractor string

	// Fetcher selects "http", "browser" or "auto". Auto renders the first
	// seed both ways and uses the browser only when it adds content.
	Fetcher string

	// BrowserRecycleAfter restarts the browser fetcher after this many
	// rendered pages.
	BrowserRecycleAfter int

	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// MarkdownSource is a Markdown document listing further Markdown pages,
// such as a release-notes sidebar.
type MarkdownSource struct {
	IndexURL string
	Language string

	// Include lists pages indexed in addition to the linked ones.
	Include []string
}

// SearchConfig tunes query execution.
type SearchConfig struct {
	// CandidateLimit is the stage-one candidate count for rescored languages.
	CandidateLimit int

	// LatinCandidateLimit is the minimum fetch size before anchor demotion.
	LatinCandidateLimit int

	QueryTermLimit   int
	RescoreTermLimit int

	CacheSize int
	CacheTTL  time.Duration
}

// Crawl defaults.
const (
	DefaultDBPath      = "data/index.db"
	DefaultMaxPages    = 2500
	DefaultMaxDepth    = 8
	DefaultConcurrency = 10
	DefaultUserAgent   = "docbot/0.1 (+local)"
	DefaultTimeout     = 20 * time.Second

	DefaultBrowserRecycleAfter = 75
)

// Search defaults.
const (
	DefaultCandidateLimit      = 80
	DefaultLatinCandidateLimit = 80
	DefaultCacheSize           = 256
	DefaultCacheTTL            = 5 * time.Minute
)

// DefaultConfig returns the configuration for the Dify Enterprise
// documentation site.
func DefaultConfig() Config {
	return Config{
		DBPath: DefaultDBPath,
		Crawl: CrawlConfig{
			Allow:           `https://enterprise-docs\.dify\.ai/versions/[^/]+/[^/]+`,
			DenyExtensions:  append([]string(nil), DefaultDenyExtensions...),
			LanguageSegment: DefaultLanguageSegment,
			Seeds: []string{
				"https://enterprise-docs.dify.ai/versions/3-0-x/ja-jp/introduction",
				"https://enterprise-docs.dify.ai/versions/3-0-x/en-us/introduction",
				"https://enterprise-docs.dify.ai/versions/3-0-x/zh-cn/introduction",
				"https://enterprise-docs.dify.ai/versions/2-8-x/zh-cn/introduction",
				"https://enterprise-docs.dify.ai/versions/3-1-x/zh-cn/introduction",
				"https://enterprise-docs.dify.ai/versions/3-2-x/zh-cn/introduction",
				"https://enterprise-docs.dify.ai/versions/3-5-x/zh-cn/introduction",
				"https://enterprise-docs.dify.ai/versions/3-6-x/zh-cn/introduction",
				"https://enterprise-docs.dify.ai/versions/3-7-x/zh-cn/introduction",
			},
			MaxPages:       DefaultMaxPages,
			MaxDepth:       DefaultMaxDepth,
			Concurrency:    DefaultConcurrency,
			BodyPrefixLen:  DefaultBodyPrefixLen,
			IndexTermLimit: DefaultIndexTermLimit,
			MarkdownSources: []MarkdownSource{{
				IndexURL: "https://langgenius.github.io/dify-helm/_sidebar.md",
				Language: "en-us",
				Include:  []string{"https://langgenius.github.io/dify-helm/README.md"},
			}},
			Extractor: "readability",
			Fetcher:   "http",
			UserAgent: DefaultUserAgent,
			Timeout:   DefaultTimeout,

			BrowserRecycleAfter: DefaultBrowserRecycleAfter,
		},
		Search: SearchConfig{
			CandidateLimit:      DefaultCandidateLimit,
			LatinCandidateLimit: DefaultLatinCandidateLimit,
			QueryTermLimit:      DefaultQueryTermLimit,
			RescoreTermLimit:    DefaultRescoreTermLimit,
			CacheSize:           DefaultCacheSize,
			CacheTTL:            DefaultCacheTTL,
		},
		Ranking:   DefaultRankWeights(),
		Languages: DefaultLanguages(),
	}
}

// Scope compiles the crawl's admission filter.
func (c CrawlConfig) Scope() (*Scope, error) {
	return NewScope(c.Allow, c.DenyExtensions, c.LanguageSegment)
}

// Validate returns an error if the crawl bounds are unusable.
func (c CrawlConfig) Validate() error {
	if c.Allow == "" {
		return Errorf(EINVALID, "crawl allow pattern required")
	}
	if len(c.Seeds) == 0 {
		return Errorf(EINVALID, "at least one crawl seed required")
	}
	if c.MaxPages <= 0 {
		return Errorf(EINVALID, "crawl max pages must be positive")
	}
	if c.MaxDepth < 0 {
		return Errorf(EINVALID, "crawl max depth must not be negative")
	}
	if c.Concurrency <= 0 {
		return Errorf(EINVALID, "crawl concurrency must be positive")
	}
	if c.BrowserRecycleAfter < 0 {
		return Errorf(EINVALID, "browser recycle count must not be negative")
	}
	return nil
}
