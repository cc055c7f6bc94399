package mock

import "github.com/fwojciec/docbot"

var (
	_ docbot.ContentExtractor = (*ContentExtractor)(nil)
	_ docbot.Extractor        = (*Extractor)(nil)
)

// ContentExtractor is a mock implementation of docbot.ContentExtractor.
type ContentExtractor struct {
	ExtractFn func(html string) (*docbot.ExtractResult, error)
}

func (e *ContentExtractor) Extract(html string) (*docbot.ExtractResult, error) {
	return e.ExtractFn(html)
}

// Extractor is a mock implementation of docbot.Extractor.
type Extractor struct {
	IndexFieldsFn           func(body string) docbot.IndexFields
	HeadingsAndBodyPrefixFn func(body string, prefixLen int) (string, string)
	SectionsFn              func(body string) []docbot.Section
	LinksFn                 func(body, baseURL string) []string
}

func (e *Extractor) IndexFields(body string) docbot.IndexFields {
	return e.IndexFieldsFn(body)
}

func (e *Extractor) HeadingsAndBodyPrefix(body string, prefixLen int) (string, string) {
	return e.HeadingsAndBodyPrefixFn(body, prefixLen)
}

func (e *Extractor) Sections(body string) []docbot.Section {
	return e.SectionsFn(body)
}

func (e *Extractor) Links(body, baseURL string) []string {
	return e.LinksFn(body, baseURL)
}
