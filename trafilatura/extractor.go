// Package trafilatura finds the main content of HTML pages with go-trafilatura.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/docbot"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements docbot.ContentExtractor at compile time.
var _ docbot.ContentExtractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct {
	opts trafilatura.Options
}

// NewExtractor creates a new Extractor. The fallback extractors are enabled
// because documentation pages are often too short for trafilatura alone.
func NewExtractor() *Extractor {
	return &Extractor{opts: trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
	}}
}

// Extract returns the page title and main content. Pages without a content
// node return ENOCONTENT.
func (e *Extractor) Extract(rawHTML string) (*docbot.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, docbot.Errorf(docbot.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), e.opts)
	if err != nil {
		return nil, err
	}
	if result.ContentNode == nil {
		return nil, docbot.Errorf(docbot.ENOCONTENT, "no main content")
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, result.ContentNode); err != nil {
		return nil, err
	}

	return &docbot.ExtractResult{
		Title:       strings.TrimSpace(result.Metadata.Title),
		ContentHTML: buf.String(),
	}, nil
}
