package search_test

import (
	"context"
	"testing"

	"github.com/fwojciec/docbot"
	"github.com/fwojciec/docbot/mock"
	"github.com/fwojciec/docbot/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hitURLs(hits []*docbot.Hit) []string {
	urls := make([]string, len(hits))
	for i, h := range hits {
		urls[i] = h.URL
	}
	return urls
}

// recordingPages returns a PageService whose MatchPages and ContainsPages
// return hits and record the queries they received.
func recordingPages(hits []*docbot.Hit, matches *[]docbot.MatchQuery, contains *[]docbot.ContainsQuery) *mock.PageService {
	return &mock.PageService{
		MatchPagesFn: func(ctx context.Context, q docbot.MatchQuery) ([]*docbot.Hit, error) {
			*matches = append(*matches, q)
			return hits, nil
		},
		ContainsPagesFn: func(ctx context.Context, q docbot.ContainsQuery) ([]*docbot.Hit, error) {
			*contains = append(*contains, q)
			return hits, nil
		},
	}
}

func TestEngine_Search(t *testing.T) {
	t.Parallel()

	t.Run("empty query returns no hits without touching the index", func(t *testing.T) {
		t.Parallel()

		e := search.NewEngine(&mock.PageService{}, docbot.DefaultConfig())

		hits, err := e.Search(context.Background(), "   ", docbot.SearchOptions{Language: "en-us"})

		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("no language searches all pages with every word required", func(t *testing.T) {
		t.Parallel()

		var matches []docbot.MatchQuery
		var contains []docbot.ContainsQuery
		e := search.NewEngine(recordingPages(nil, &matches, &contains), docbot.DefaultConfig())

		_, err := e.Search(context.Background(), "helm chart: values", docbot.SearchOptions{})

		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, `"helm" "chart" "values"`, matches[0].Expression)
		assert.Empty(t, matches[0].Language)
		assert.Equal(t, docbot.DefaultSearchLimit, matches[0].Limit)
	})

	t.Run("latin language over-fetches candidates", func(t *testing.T) {
		t.Parallel()

		var matches []docbot.MatchQuery
		var contains []docbot.ContainsQuery
		e := search.NewEngine(recordingPages(nil, &matches, &contains), docbot.DefaultConfig())

		_, err := e.Search(context.Background(), "workflow", docbot.SearchOptions{Language: "en-us", Limit: 5})

		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "en-us", matches[0].Language)
		assert.Equal(t, 80, matches[0].Limit)
	})

	t.Run("cjk language retrieves n-gram candidates", func(t *testing.T) {
		t.Parallel()

		var matches []docbot.MatchQuery
		var contains []docbot.ContainsQuery
		e := search.NewEngine(recordingPages(nil, &matches, &contains), docbot.DefaultConfig())

		_, err := e.Search(context.Background(), "ワークフロー", docbot.SearchOptions{Language: "ja-jp", Limit: 3})

		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "ja-jp", matches[0].Language)
		assert.Equal(t, 80, matches[0].Limit)
		assert.Contains(t, matches[0].Expression, `"ワーク"`)
		assert.Contains(t, matches[0].Expression, " OR ")
	})

	t.Run("unknown language keeps the filter with native ranking", func(t *testing.T) {
		t.Parallel()

		var matches []docbot.MatchQuery
		var contains []docbot.ContainsQuery
		e := search.NewEngine(recordingPages(nil, &matches, &contains), docbot.DefaultConfig())

		_, err := e.Search(context.Background(), "workflow", docbot.SearchOptions{Language: "de-de", Limit: 4})

		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "de-de", matches[0].Language)
		assert.Equal(t, 4, matches[0].Limit)
	})

	t.Run("query without words falls back to substring search", func(t *testing.T) {
		t.Parallel()

		var matches []docbot.MatchQuery
		var contains []docbot.ContainsQuery
		e := search.NewEngine(recordingPages(nil, &matches, &contains), docbot.DefaultConfig())

		_, err := e.Search(context.Background(), " --- ", docbot.SearchOptions{})

		require.NoError(t, err)
		assert.Empty(t, matches)
		require.Len(t, contains, 1)
		assert.Equal(t, "---", contains[0].Text)
	})

	t.Run("registered strategy replaces the built in one", func(t *testing.T) {
		t.Parallel()

		e := search.NewEngine(&mock.PageService{}, docbot.DefaultConfig())
		e.Register(docbot.ScriptLatin, strategyFunc(func(ctx context.Context, query, language string, limit int) ([]*docbot.Hit, error) {
			return []*docbot.Hit{{URL: "custom:" + language}}, nil
		}))

		hits, err := e.Search(context.Background(), "workflow", docbot.SearchOptions{Language: "en-us"})

		require.NoError(t, err)
		assert.Equal(t, []string{"custom:en-us"}, hitURLs(hits))
	})

	t.Run("returns index errors", func(t *testing.T) {
		t.Parallel()

		pages := &mock.PageService{
			MatchPagesFn: func(ctx context.Context, q docbot.MatchQuery) ([]*docbot.Hit, error) {
				return nil, docbot.Errorf(docbot.EINVALID, "invalid match expression")
			},
		}
		e := search.NewEngine(pages, docbot.DefaultConfig())

		_, err := e.Search(context.Background(), "workflow", docbot.SearchOptions{Language: "en-us"})

		assert.Equal(t, docbot.EINVALID, docbot.ErrorCode(err))
	})
}

type strategyFunc func(ctx context.Context, query, language string, limit int) ([]*docbot.Hit, error)

func (f strategyFunc) Search(ctx context.Context, query, language string, limit int) ([]*docbot.Hit, error) {
	return f(ctx, query, language, limit)
}
