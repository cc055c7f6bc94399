package crawl

import (
	"context"
	"errors"

	"github.com/fwojciec/docbot"
)

// ContentDiffers reports whether the browser-rendered HTML yields
// significantly more main content (over 50% longer) than the plain HTTP
// HTML, suggesting the site builds its content with JavaScript. A failed
// extraction of either side counts as a difference.
func ContentDiffers(plainHTML, renderedHTML string, extractor docbot.ContentExtractor) bool {
	plain, err := extractor.Extract(plainHTML)
	if err != nil {
		return true
	}
	rendered, err := extractor.Extract(renderedHTML)
	if err != nil {
		return true
	}

	plainLen := len(plain.ContentHTML)
	renderedLen := len(rendered.ContentHTML)
	if plainLen == 0 {
		return renderedLen > 0
	}
	return float64(renderedLen) > float64(plainLen)*1.5
}

// NeedsBrowser fetches seed with both fetchers and reports whether the
// crawl should use the browser. When only one fetch succeeds that fetcher
// wins; when both fail the joined error is returned.
func NeedsBrowser(ctx context.Context, seed string, plain, browser docbot.Fetcher, extractor docbot.ContentExtractor) (bool, error) {
	plainRes, plainErr := plain.Fetch(ctx, seed)
	if err := ctx.Err(); err != nil {
		return false, err
	}
	renderedRes, renderedErr := browser.Fetch(ctx, seed)
	if err := ctx.Err(); err != nil {
		return false, err
	}

	switch {
	case plainErr != nil && renderedErr != nil:
		return false, errors.Join(plainErr, renderedErr)
	case plainErr != nil:
		return true, nil
	case renderedErr != nil:
		return false, nil
	}
	if plainRes.IsMarkdown() {
		return false, nil
	}
	return ContentDiffers(plainRes.Body, renderedRes.Body, extractor), nil
}
