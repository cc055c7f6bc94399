// Package yaml loads docbot configuration from YAML files.
package yaml

import (
	"bytes"
	"errors"
	"io"
	"os"
	"slices"
	"time"

	"github.com/fwojciec/docbot"
	"gopkg.in/yaml.v3"
)

// DBPathEnv overrides the database path from the file.
const DBPathEnv = "DOCBOT_DB"

// Recognized CrawlConfig.Extractor and CrawlConfig.Fetcher values.
var (
	Extractors = []string{"readability", "trafilatura"}
	Fetchers   = []string{"http", "browser", "auto"}
)

// file mirrors docbot.Config with every field optional. Nil pointers keep
// the default.
type file struct {
	DBPath    *string           `yaml:"db_path"`
	Crawl     crawlFile         `yaml:"crawl"`
	Search    searchFile        `yaml:"search"`
	Ranking   rankingFile       `yaml:"ranking"`
	Languages map[string]string `yaml:"languages"`
}

type crawlFile struct {
	Allow             *string          `yaml:"allow"`
	DenyExtensions    []string         `yaml:"deny_ext"`
	LanguageSegment   *int             `yaml:"language_segment"`
	Seeds             []string         `yaml:"seeds"`
	MaxPages          *int             `yaml:"max_pages"`
	MaxDepth          *int             `yaml:"max_depth"`
	Concurrency       *int             `yaml:"concurrency"`
	BodyPrefixLen     *int             `yaml:"body_prefix_len"`
	IndexTermLimit    *int             `yaml:"index_term_limit"`
	UseSitemap        *bool            `yaml:"use_sitemap"`
	SitemapURL        *string          `yaml:"sitemap_url"`
	MarkdownSources   []markdownSource `yaml:"markdown_sources"`
	Extractor         *string          `yaml:"extractor"`
	Fetcher           *string          `yaml:"fetcher"`
	UserAgent         *string          `yaml:"user_agent"`
	Timeout           *time.Duration   `yaml:"timeout"`
	RequestsPerSecond *float64         `yaml:"requests_per_second"`

	BrowserRecycleAfter *int `yaml:"browser_recycle_after"`
}

type markdownSource struct {
	IndexURL string   `yaml:"index_url"`
	Language string   `yaml:"language"`
	Include  []string `yaml:"include"`
}

type searchFile struct {
	CandidateLimit      *int           `yaml:"candidate_limit"`
	LatinCandidateLimit *int           `yaml:"latin_candidate_limit"`
	QueryTermLimit      *int           `yaml:"query_term_limit"`
	RescoreTermLimit    *int           `yaml:"rescore_term_limit"`
	CacheSize           *int           `yaml:"cache_size"`
	CacheTTL            *time.Duration `yaml:"cache_ttl"`
}

type rankingFile struct {
	Title         *float64 `yaml:"title"`
	Headings      *float64 `yaml:"headings"`
	HeadingPath   *float64 `yaml:"heading_path"`
	Lead          *float64 `yaml:"lead"`
	BodyPrefix    *float64 `yaml:"body_prefix"`
	NearTerm      *float64 `yaml:"near_term"`
	FarTerm       *float64 `yaml:"far_term"`
	ContiguousCap *int     `yaml:"contiguous_cap"`
}

// LoadConfig reads the YAML file at path over docbot.DefaultConfig. An
// empty path loads the defaults. DOCBOT_DB, when set, replaces db_path.
func LoadConfig(path string) (docbot.Config, error) {
	cfg := docbot.DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return docbot.Config{}, docbot.Errorf(docbot.EINVALID, "reading config: %v", err)
		}
		if cfg, err = Parse(data); err != nil {
			return docbot.Config{}, err
		}
	}
	if p := os.Getenv(DBPathEnv); p != "" {
		cfg.DBPath = p
	}
	return cfg, nil
}

// Parse decodes YAML over docbot.DefaultConfig and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (docbot.Config, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return docbot.Config{}, docbot.Errorf(docbot.EINVALID, "parsing config: %v", err)
	}

	cfg := docbot.DefaultConfig()
	f.apply(&cfg)
	if err := validate(cfg); err != nil {
		return docbot.Config{}, err
	}
	return cfg, nil
}

func (f *file) apply(cfg *docbot.Config) {
	set(&cfg.DBPath, f.DBPath)

	c := &cfg.Crawl
	set(&c.Allow, f.Crawl.Allow)
	if f.Crawl.DenyExtensions != nil {
		c.DenyExtensions = f.Crawl.DenyExtensions
	}
	set(&c.LanguageSegment, f.Crawl.LanguageSegment)
	if f.Crawl.Seeds != nil {
		c.Seeds = f.Crawl.Seeds
	}
	set(&c.MaxPages, f.Crawl.MaxPages)
	set(&c.MaxDepth, f.Crawl.MaxDepth)
	set(&c.Concurrency, f.Crawl.Concurrency)
	set(&c.BodyPrefixLen, f.Crawl.BodyPrefixLen)
	set(&c.IndexTermLimit, f.Crawl.IndexTermLimit)
	set(&c.UseSitemap, f.Crawl.UseSitemap)
	set(&c.SitemapURL, f.Crawl.SitemapURL)
	if f.Crawl.MarkdownSources != nil {
		c.MarkdownSources = make([]docbot.MarkdownSource, len(f.Crawl.MarkdownSources))
		for i, src := range f.Crawl.MarkdownSources {
			c.MarkdownSources[i] = docbot.MarkdownSource(src)
		}
	}
	set(&c.Extractor, f.Crawl.Extractor)
	set(&c.Fetcher, f.Crawl.Fetcher)
	set(&c.UserAgent, f.Crawl.UserAgent)
	set(&c.Timeout, f.Crawl.Timeout)
	set(&c.RequestsPerSecond, f.Crawl.RequestsPerSecond)
	set(&c.BrowserRecycleAfter, f.Crawl.BrowserRecycleAfter)

	s := &cfg.Search
	set(&s.CandidateLimit, f.Search.CandidateLimit)
	set(&s.LatinCandidateLimit, f.Search.LatinCandidateLimit)
	set(&s.QueryTermLimit, f.Search.QueryTermLimit)
	set(&s.RescoreTermLimit, f.Search.RescoreTermLimit)
	set(&s.CacheSize, f.Search.CacheSize)
	set(&s.CacheTTL, f.Search.CacheTTL)

	r := &cfg.Ranking
	set(&r.Title, f.Ranking.Title)
	set(&r.Headings, f.Ranking.Headings)
	set(&r.HeadingPath, f.Ranking.HeadingPath)
	set(&r.Lead, f.Ranking.Lead)
	set(&r.BodyPrefix, f.Ranking.BodyPrefix)
	set(&r.NearTerm, f.Ranking.NearTerm)
	set(&r.FarTerm, f.Ranking.FarTerm)
	set(&r.ContiguousCap, f.Ranking.ContiguousCap)

	if f.Languages != nil {
		cfg.Languages = make(docbot.Languages, len(f.Languages))
		for tag, script := range f.Languages {
			cfg.Languages[tag] = docbot.Script(script)
		}
	}
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func validate(cfg docbot.Config) error {
	if cfg.DBPath == "" {
		return docbot.Errorf(docbot.EINVALID, "db_path must not be empty")
	}
	if err := cfg.Crawl.Validate(); err != nil {
		return err
	}
	if _, err := cfg.Crawl.Scope(); err != nil {
		return err
	}
	if !slices.Contains(Extractors, cfg.Crawl.Extractor) {
		return docbot.Errorf(docbot.EINVALID, "unknown extractor %q", cfg.Crawl.Extractor)
	}
	if !slices.Contains(Fetchers, cfg.Crawl.Fetcher) {
		return docbot.Errorf(docbot.EINVALID, "unknown fetcher %q", cfg.Crawl.Fetcher)
	}
	if cfg.Crawl.RequestsPerSecond < 0 {
		return docbot.Errorf(docbot.EINVALID, "requests_per_second must not be negative")
	}
	for _, src := range cfg.Crawl.MarkdownSources {
		if src.IndexURL == "" || src.Language == "" {
			return docbot.Errorf(docbot.EINVALID, "markdown source requires index_url and language")
		}
	}
	for tag, script := range cfg.Languages {
		if tag == "" || script == docbot.ScriptUnknown {
			return docbot.Errorf(docbot.EINVALID, "language %q requires a script", tag)
		}
	}
	return nil
}
