package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docbot"
	"github.com/fwojciec/docbot/crawl"
	"github.com/fwojciec/docbot/goldmark"
	"github.com/fwojciec/docbot/goquery"
	docbothttp "github.com/fwojciec/docbot/http"
	"github.com/fwojciec/docbot/lru"
	docbotprom "github.com/fwojciec/docbot/prometheus"
	"github.com/fwojciec/docbot/readability"
	"github.com/fwojciec/docbot/rod"
	"github.com/fwojciec/docbot/search"
	docbotslog "github.com/fwojciec/docbot/slog"
	"github.com/fwojciec/docbot/sqlite"
	"github.com/fwojciec/docbot/trafilatura"
	"github.com/fwojciec/docbot/yaml"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Config is loaded from CLI.Config when nil. Set before calling Run()
	// to bypass file loading.
	Config *docbot.Config

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// NewFetcher builds the fetcher for commands that need one. Defaults
	// to newFetcher.
	NewFetcher func(ctx context.Context, cfg docbot.CrawlConfig, logger *slog.Logger) (docbot.Fetcher, error)
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{NewFetcher: newFetcher}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docbot"),
		kong.Description("Crawl a documentation site into a local full-text index and search it."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docbot --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd = strings.Fields(kongCtx.Command())[0]

	deps.Logger = newLogger(stderr, cli.Verbose)

	cfg, err := m.loadConfig(cli.Config)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", docbot.ErrorMessage(err))
		return err
	}
	deps.Config = cfg

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	m.DB = sqlite.NewDB(cfg.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set %s to use a different database path\n", yaml.DBPathEnv)
		return fmt.Errorf("failed to open database at %q: %w", cfg.DBPath, err)
	}
	defer m.Close()

	var pages docbot.PageService = docbotslog.NewLoggingPageService(sqlite.NewPageService(m.DB), deps.Logger)

	var metrics *docbotprom.Metrics
	if cmd == "ingest" && cli.Ingest.MetricsAddr != "" {
		metrics = docbotprom.NewMetrics(nil)
		pages = docbotprom.NewPageService(pages, metrics)
		shutdown := serveMetrics(cli.Ingest.MetricsAddr, metrics, stderr)
		defer shutdown()
	}
	deps.Pages = pages

	var searcher docbot.Searcher = docbotslog.NewLoggingSearcher(search.NewEngine(pages, cfg), deps.Logger)
	if cmd == "search" {
		searcher = lru.NewSearcher(searcher, cfg.Search.CacheSize, cfg.Search.CacheTTL)
	}
	deps.Searcher = searcher

	deps.Extractors = docbot.ExtractorSet{
		HTML:     goquery.NewExtractor(newContentExtractor(cfg.Crawl.Extractor)),
		Markdown: goldmark.NewExtractor(),
	}

	if needsFetcher(cmd) {
		fetcher, err := m.NewFetcher(ctx, cfg.Crawl, deps.Logger)
		if err != nil {
			if cfg.Crawl.Fetcher == "browser" {
				fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			}
			return fmt.Errorf("failed to create fetcher: %w", err)
		}
		defer fetcher.Close()

		fetcher = docbotslog.NewLoggingFetcher(fetcher, deps.Logger)
		if metrics != nil {
			fetcher = docbotprom.NewFetcher(fetcher, metrics)
		}
		deps.Fetcher = fetcher
		deps.Citer = search.NewCiter(searcher, fetcher, deps.Extractors)
	}

	if cmd == "ingest" {
		crawler := &crawl.Crawler{
			Fetcher:    deps.Fetcher,
			Extractors: deps.Extractors,
			Pages:      pages,
			Sitemaps: docbotslog.NewLoggingSitemapService(
				docbothttp.NewSitemapService(nil).WithUserAgent(cfg.Crawl.UserAgent), deps.Logger),
		}
		if cfg.Crawl.RequestsPerSecond > 0 {
			crawler.RateLimiter = crawl.NewDomainLimiter(cfg.Crawl)
		}
		deps.Crawler = crawler
	}

	return kongCtx.Run(deps)
}

func (m *Main) loadConfig(path string) (docbot.Config, error) {
	if m.Config != nil {
		return *m.Config, nil
	}
	return yaml.LoadConfig(path)
}

func needsFetcher(cmd string) bool {
	switch cmd {
	case "ingest", "sections", "cite":
		return true
	}
	return false
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newContentExtractor(name string) docbot.ContentExtractor {
	if name == "trafilatura" {
		return trafilatura.NewExtractor()
	}
	return readability.NewExtractor()
}

func newFetcher(ctx context.Context, cfg docbot.CrawlConfig, logger *slog.Logger) (docbot.Fetcher, error) {
	plain := docbothttp.NewFetcher(
		docbothttp.WithTimeout(cfg.Timeout),
		docbothttp.WithUserAgent(cfg.UserAgent),
	)
	if cfg.Fetcher == "http" {
		return plain, nil
	}

	browser, err := rod.NewFetcher(cfg, rod.WithRecycleHook(logRecycle(logger)))
	if err != nil {
		if cfg.Fetcher == "auto" {
			logger.Info("choose fetcher", "browser", false, "err", err)
			return plain, nil
		}
		return nil, err
	}
	if cfg.Fetcher == "browser" || len(cfg.Seeds) == 0 {
		return browser, nil
	}

	useBrowser, err := crawl.NeedsBrowser(ctx, cfg.Seeds[0], plain, browser, newContentExtractor(cfg.Extractor))
	logger.Info("choose fetcher", "seed", cfg.Seeds[0], "browser", useBrowser, "err", err)
	if useBrowser {
		return browser, nil
	}
	_ = browser.Close()
	return plain, nil
}

// logRecycle reports browser restarts of the rod fetcher.
func logRecycle(logger *slog.Logger) func(rod.RecycleEvent) {
	return func(ev rod.RecycleEvent) {
		logger.Info("recycle browser",
			"rendered", ev.Rendered,
			"old_pid", ev.OldPID,
			"new_pid", ev.NewPID,
			"err", ev.Err,
		)
	}
}

// serveMetrics exposes metrics on addr until the returned function is
// called.
func serveMetrics(addr string, m *docbotprom.Metrics, stderr io.Writer) func() {
	srv := &http.Server{Addr: addr, Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(stderr, "metrics server: %v\n", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
