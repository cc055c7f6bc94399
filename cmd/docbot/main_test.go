package main_test

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/docbot"
	main "github.com/fwojciec/docbot/cmd/docbot"
	"github.com/fwojciec/docbot/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const siteBase = "https://docs.example.com/versions/1-0-x"

var sitePages = map[string]string{
	siteBase + "/en-us/intro": `<!DOCTYPE html><html><head><title>Introduction</title></head><body>
<nav><a href="/versions/1-0-x/en-us/workflow">Workflow</a><a href="/versions/1-0-x/ja-jp/workflow">日本語</a></nav>
<main><h1>Introduction</h1><p>This platform lets teams build applications with language models and deploy them on their own infrastructure.</p></main>
</body></html>`,
	siteBase + "/en-us/workflow": `<!DOCTYPE html><html><head><title>Workflow orchestration</title></head><body>
<main><h1>Workflow orchestration</h1><p>A workflow orchestrates nodes that call models, tools and code, passing variables between them.</p>
<h2>Nodes</h2><p>Each node has typed inputs and outputs.</p></main>
</body></html>`,
	siteBase + "/ja-jp/workflow": `<!DOCTYPE html><html><head><title>ワークフローの作成</title></head><body>
<main><h1>ワークフローの作成</h1><p>ワークフローはノードを接続してアプリケーションを構築する仕組みです。</p>
<h2>ノード</h2><p>各ノードには入力と出力があります。</p></main>
</body></html>`,
}

func siteFetcher() *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (*docbot.Resource, error) {
			body, ok := sitePages[url]
			if !ok {
				return nil, docbot.Errorf(docbot.ENOCONTENT, "HTTP 404 for %s", url)
			}
			return &docbot.Resource{URL: url, Body: body, ContentType: "text/html"}, nil
		},
		CloseFn: func() error { return nil },
	}
}

func newTestMain(t *testing.T) *main.Main {
	t.Helper()

	cfg := docbot.DefaultConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "index.db")
	cfg.Crawl.Allow = `https://docs\.example\.com/versions/[^/]+/[^/]+`
	cfg.Crawl.Seeds = []string{siteBase + "/en-us/intro"}
	cfg.Crawl.MarkdownSources = nil
	cfg.Crawl.Concurrency = 2

	m := main.NewMain()
	m.Config = &cfg
	m.NewFetcher = func(context.Context, docbot.CrawlConfig, *slog.Logger) (docbot.Fetcher, error) {
		return siteFetcher(), nil
	}
	return m
}

func run(t *testing.T, m *main.Main, stdin string, args ...string) (string, string) {
	t.Helper()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	err := m.Run(context.Background(), args, strings.NewReader(stdin), stdout, stderr)
	require.NoError(t, err, "stderr: %s", stderr.String())
	return stdout.String(), stderr.String()
}

func TestMain_Run_EndToEnd(t *testing.T) {
	t.Parallel()

	m := newTestMain(t)

	out, _ := run(t, m, "", "ingest")
	assert.Contains(t, out, "indexed 3 pages")

	out, _ = run(t, m, "", "stats")
	assert.Contains(t, out, "Pages: 3")
	assert.Contains(t, out, "en-us    2")
	assert.Contains(t, out, "ja-jp    1")

	out, _ = run(t, m, "", "search", "--lang", "en-us", "workflow")
	assert.Contains(t, out, "1. Workflow orchestration")
	assert.Contains(t, out, siteBase+"/en-us/workflow")
	assert.NotContains(t, out, "/ja-jp/")

	out, _ = run(t, m, "", "search", "--lang", "ja-jp", "ワークフロー")
	assert.Contains(t, out, "1. ワークフローの作成 (")
	assert.Contains(t, out, siteBase+"/ja-jp/workflow")

	out, _ = run(t, m, "workflow\nワークフロー\n", "search", "-")
	assert.Contains(t, out, "> workflow")
	assert.Contains(t, out, "> ワークフロー")

	out, _ = run(t, m, "", "sections", siteBase+"/en-us/workflow")
	assert.Contains(t, out, "## Nodes\nEach node has typed inputs and outputs.")

	out, _ = run(t, m, "", "cite", "--lang", "en-us", "workflow")
	assert.Contains(t, out, "Workflow orchestration ›")
}

func TestMain_Run_ReingestCountsUnchanged(t *testing.T) {
	t.Parallel()

	m := newTestMain(t)

	run(t, m, "", "ingest")
	out, _ := run(t, m, "", "ingest")

	assert.Contains(t, out, "indexed 3 pages (3 unchanged")
}

func TestMain_Run_VerboseLogsToStderr(t *testing.T) {
	t.Parallel()

	m := newTestMain(t)

	_, errOut := run(t, m, "", "--verbose", "ingest", "--max-pages", "1")

	assert.Contains(t, errOut, "msg=fetch")
	assert.Contains(t, errOut, "upsert page")
}
