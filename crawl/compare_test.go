package crawl_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fwojciec/docbot"
	"github.com/fwojciec/docbot/crawl"
	"github.com/fwojciec/docbot/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lengthExtractor returns the input itself as content, so comparisons
// depend only on the HTML lengths.
func lengthExtractor() *mock.ContentExtractor {
	return &mock.ContentExtractor{
		ExtractFn: func(html string) (*docbot.ExtractResult, error) {
			if html == "broken" {
				return nil, docbot.Errorf(docbot.ENOCONTENT, "no article")
			}
			return &docbot.ExtractResult{ContentHTML: html}, nil
		},
	}
}

func TestContentDiffers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		plain    string
		rendered string
		want     bool
	}{
		{"rendered more than half again longer", "<p>short</p>", "<p>short</p><p>sidebar and article body</p>", true},
		{"similar lengths", "<p>same size</p>", "<p>same-size</p>", false},
		{"exactly half again longer", strings.Repeat("a", 10), strings.Repeat("a", 15), false},
		{"empty plain content with rendered content", "", "<p>app</p>", true},
		{"both empty", "", "", false},
		{"plain extraction fails", "broken", "<p>x</p>", true},
		{"rendered extraction fails", "<p>x</p>", "broken", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, crawl.ContentDiffers(tt.plain, tt.rendered, lengthExtractor()))
		})
	}
}

func TestNeedsBrowser(t *testing.T) {
	t.Parallel()

	const seed = "https://docs.example.com/versions/3-0-x/en-us/intro"

	serve := func(body string, err error) *mock.Fetcher {
		return &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*docbot.Resource, error) {
				if err != nil {
					return nil, err
				}
				return &docbot.Resource{URL: url, Body: body, ContentType: "text/html"}, nil
			},
		}
	}
	shell := `<div id="root"></div>`
	rendered := `<div id="root"><h1>Introduction</h1><p>The enterprise edition adds SSO and audit logs.</p></div>`

	t.Run("chooses the browser for client-rendered pages", func(t *testing.T) {
		t.Parallel()

		got, err := crawl.NeedsBrowser(context.Background(), seed, serve(shell, nil), serve(rendered, nil), lengthExtractor())

		require.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("keeps plain HTTP for server-rendered pages", func(t *testing.T) {
		t.Parallel()

		got, err := crawl.NeedsBrowser(context.Background(), seed, serve(rendered, nil), serve(rendered, nil), lengthExtractor())

		require.NoError(t, err)
		assert.False(t, got)
	})

	t.Run("uses whichever fetcher succeeds", func(t *testing.T) {
		t.Parallel()

		failed := docbot.Errorf(docbot.ENOCONTENT, "HTTP 403")

		got, err := crawl.NeedsBrowser(context.Background(), seed, serve("", failed), serve(rendered, nil), lengthExtractor())
		require.NoError(t, err)
		assert.True(t, got)

		got, err = crawl.NeedsBrowser(context.Background(), seed, serve(rendered, nil), serve("", errors.New("chrome crashed")), lengthExtractor())
		require.NoError(t, err)
		assert.False(t, got)
	})

	t.Run("returns both errors when neither fetch succeeds", func(t *testing.T) {
		t.Parallel()

		plainErr := errors.New("dns failure")
		browserErr := errors.New("navigation failed")

		_, err := crawl.NeedsBrowser(context.Background(), seed, serve("", plainErr), serve("", browserErr), lengthExtractor())

		require.ErrorIs(t, err, plainErr)
		require.ErrorIs(t, err, browserErr)
	})

	t.Run("stops when the context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := crawl.NeedsBrowser(ctx, seed, serve(shell, nil), serve(rendered, nil), lengthExtractor())

		require.ErrorIs(t, err, context.Canceled)
	})
}
