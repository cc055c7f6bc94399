// Package readability finds the main content of HTML pages with go-readability.
package readability

import (
	"strings"

	"github.com/fwojciec/docbot"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// Ensure Extractor implements docbot.ContentExtractor at compile time.
var _ docbot.ContentExtractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the article title and content. Pages where readability
// finds no article return ENOCONTENT.
func (e *Extractor) Extract(rawHTML string) (*docbot.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, docbot.Errorf(docbot.EINVALID, "empty HTML input")
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, docbot.Errorf(docbot.EINVALID, "failed to parse HTML: %v", err)
	}

	article, err := readability.FromDocument(doc, nil)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(article.Content) == "" {
		return nil, docbot.Errorf(docbot.ENOCONTENT, "no readable content")
	}

	return &docbot.ExtractResult{
		Title:       strings.TrimSpace(article.Title),
		ContentHTML: article.Content,
	}, nil
}
