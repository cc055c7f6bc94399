package crawl

import (
	"fmt"
	"net/url"
	"time"
)

// DisplayURL renders rawURL for progress output. Percent-encoded paths are
// decoded so localized pages stay readable, and URLs longer than maxLen
// runes keep their tail behind a "..." prefix.
func DisplayURL(rawURL string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if s, err := url.PathUnescape(rawURL); err == nil {
		rawURL = s
	}
	r := []rune(rawURL)
	if len(r) <= maxLen {
		return rawURL
	}
	if maxLen < 4 {
		return string(r[:maxLen])
	}
	return "..." + string(r[len(r)-maxLen+3:])
}

var byteUnits = []string{"KB", "MB", "GB"}

// FormatBytes formats n in binary units with one decimal.
func FormatBytes(n int) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	v := float64(n) / 1024
	unit := 0
	for v >= 1024 && unit < len(byteUnits)-1 {
		v /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s", v, byteUnits[unit])
}

// Summary renders a one-line report of a finished run.
func (r *Result) Summary(elapsed time.Duration) string {
	return fmt.Sprintf("indexed %d pages (%d unchanged, %d failed, %d skipped links, %s) from %d visited URLs in %s",
		r.Indexed, r.Unchanged, r.Failed, r.Skipped, FormatBytes(r.Bytes), r.Visited, elapsed.Round(time.Millisecond))
}
