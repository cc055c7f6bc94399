package crawl_test

import (
	"testing"
	"time"

	"github.com/fwojciec/docbot/crawl"
	"github.com/stretchr/testify/assert"
)

func TestDisplayURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		url    string
		maxLen int
		want   string
	}{
		{"short URL unchanged", "https://d/v/1/en-us/a", 50, "https://d/v/1/en-us/a"},
		{"keeps the tail", "https://docs.example.com/versions/3-0-x/en-us/install/helm", 20, "...n-us/install/helm"},
		{"decodes localized path", "https://d/ja-jp/%E3%82%A4%E3%83%B3%E3%82%B9%E3%83%88%E3%83%BC%E3%83%AB", 50, "https://d/ja-jp/インストール"},
		{"counts runes not bytes", "https://d/ja-jp/%E3%82%A4%E3%83%B3%E3%82%B9%E3%83%88%E3%83%BC%E3%83%AB", 9, "...インストール"},
		{"invalid escape left as is", "https://d/en-us/100%", 50, "https://d/en-us/100%"},
		{"tiny limit takes a prefix", "https://d/a", 3, "htt"},
		{"zero limit", "https://d/a", 0, ""},
		{"negative limit", "https://d/a", -1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, crawl.DisplayURL(tt.url, tt.maxLen))
		})
	}
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "512 B", crawl.FormatBytes(512))
	assert.Equal(t, "1.5 KB", crawl.FormatBytes(1536))
	assert.Equal(t, "2.0 MB", crawl.FormatBytes(2<<20))
	assert.Equal(t, "3.0 GB", crawl.FormatBytes(3<<30))
}

func TestResult_Summary(t *testing.T) {
	t.Parallel()

	r := &crawl.Result{Indexed: 12, Unchanged: 4, Failed: 2, Skipped: 7, Visited: 14, Bytes: 2048}

	assert.Equal(t,
		"indexed 12 pages (4 unchanged, 2 failed, 7 skipped links, 2.0 KB) from 14 visited URLs in 1.5s",
		r.Summary(1500*time.Millisecond))
}
