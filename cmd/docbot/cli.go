package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/docbot"
	"github.com/fwojciec/docbot/crawl"
	"github.com/fwojciec/docbot/search"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     *slog.Logger
	Config     docbot.Config
	Pages      docbot.PageService
	Searcher   docbot.Searcher
	Fetcher    docbot.Fetcher
	Extractors docbot.ExtractorSet
	Crawler    *crawl.Crawler
	Citer      *search.Citer
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `short:"C" env:"DOCBOT_CONFIG" type:"path" help:"YAML configuration file"`
	Verbose bool   `short:"v" help:"Log service calls to stderr"`

	Ingest   IngestCmd   `cmd:"" help:"Crawl the configured site into the index"`
	Search   SearchCmd   `cmd:"" help:"Search the index"`
	Stats    StatsCmd    `cmd:"" help:"Show index statistics"`
	Sections SectionsCmd `cmd:"" help:"Fetch a page and print its sections"`
	Cite     CiteCmd     `cmd:"" help:"Gather quotable sections for a question"`
}

// IngestCmd is the "ingest" subcommand.
type IngestCmd struct {
	MaxPages    int    `help:"Override crawl.max_pages"`
	MaxDepth    int    `default:"-1" help:"Override crawl.max_depth (negative keeps the configured depth)"`
	Concurrency int    `short:"c" help:"Override crawl.concurrency"`
	Sitemap     bool   `help:"Seed the crawl from the site's sitemap"`
	MetricsAddr string `help:"Serve Prometheus metrics on this address during the crawl"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query []string `arg:"" help:"Query words, or - to read one query per line from stdin"`
	Lang  string   `short:"l" help:"Language tag (e.g. en-us, ja-jp)"`
	Limit int      `short:"n" default:"10" help:"Maximum number of hits"`
	JSON  bool     `help:"Print hits as JSON lines"`
}

// StatsCmd is the "stats" subcommand.
type StatsCmd struct {
	JSON bool `help:"Print statistics as JSON"`
}

// SectionsCmd is the "sections" subcommand.
type SectionsCmd struct {
	URL  string `arg:"" help:"Page URL"`
	JSON bool   `help:"Print sections as JSON"`
}

// CiteCmd is the "cite" subcommand.
type CiteCmd struct {
	Question string `arg:"" help:"Question to gather citations for"`
	Lang     string `short:"l" help:"Language tag (e.g. en-us, ja-jp)"`
	Pages    int    `default:"6" help:"Number of pages to quote from"`
	Sections int    `default:"10" help:"Sections quoted per page"`
	JSON     bool   `help:"Print citations as JSON"`
}
