package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/docbot"
	"github.com/fwojciec/docbot/sqlite"
	"github.com/stretchr/testify/require"
)

// BenchmarkUpsertPage simulates the crawl write path: one upsert per fetched page.
func BenchmarkUpsertPage(b *testing.B) {
	b.Run("memory", func(b *testing.B) {
		benchmarkUpserts(b, ":memory:")
	})

	b.Run("file_wal", func(b *testing.B) {
		benchmarkUpserts(b, filepath.Join(b.TempDir(), "bench.db"))
	})
}

func benchmarkUpserts(b *testing.B, path string) {
	b.Helper()

	db := sqlite.NewDB(path)
	require.NoError(b, db.Open())
	defer db.Close()

	ctx := context.Background()
	svc := sqlite.NewPageService(db)
	terms := docbot.IndexTerms("ナレッジベースの作成とドキュメントの取り込み", docbot.IndexOrders, docbot.DefaultIndexTermLimit)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		page := &docbot.Page{
			URL:        fmt.Sprintf("https://docs.example.com/v/1/ja-jp/page%d", i),
			Language:   "ja-jp",
			Title:      fmt.Sprintf("ページ %d", i),
			Lead:       "ナレッジベースの作成とドキュメントの取り込み",
			BodyPrefix: "Lorem ipsum dolor sit amet, consectetur adipiscing elit.",
			Terms:      strings.Join(terms, " "),
		}
		if _, err := svc.UpsertPage(ctx, page); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkMatchPages measures stage-one candidate retrieval.
func BenchmarkMatchPages(b *testing.B) {
	db := sqlite.NewDB(":memory:")
	require.NoError(b, db.Open())
	defer db.Close()

	ctx := context.Background()
	svc := sqlite.NewPageService(db)
	for i := 0; i < 500; i++ {
		page := &docbot.Page{
			URL:      fmt.Sprintf("https://docs.example.com/v/1/en-us/page%d", i),
			Language: "en-us",
			Title:    fmt.Sprintf("Workflow node %d", i),
			Lead:     "Nodes connect inputs to outputs in a workflow.",
		}
		_, err := svc.UpsertPage(ctx, page)
		require.NoError(b, err)
	}
	q := docbot.MatchQuery{Expression: docbot.MatchAllExpression("workflow node"), Language: "en-us", Limit: 80}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.MatchPages(ctx, q); err != nil {
			b.Fatal(err)
		}
	}
}
