package docbot

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML.
	// Boilerplate (nav, footer, sidebar, ads) has been removed.
	ContentHTML string
}

// ContentExtractor extracts main content from HTML pages, removing boilerplate.
type ContentExtractor interface {
	// Extract processes raw HTML and returns the main content.
	// The title comes from page metadata (meta tags, JSON+LD, etc.).
	// The content HTML has boilerplate removed but preserves structure.
	Extract(html string) (*ExtractResult, error)
}

// IndexFields are the always-indexed fields of a page.
type IndexFields struct {
	Title       string
	HeadingPath string
	Lead        string
}

// Extractor distills a document body into index fields. HTML and Markdown
// implementations share this contract. Extraction never fails: malformed
// input yields empty fields.
type Extractor interface {
	// IndexFields returns the title, up to MaxHeadings level 1-3 headings
	// joined with HeadingSeparator, and the first text block truncated to
	// MaxLeadLen.
	IndexFields(body string) IndexFields

	// HeadingsAndBodyPrefix returns level 2-3 headings and body text
	// accumulated up to prefixLen characters.
	HeadingsAndBodyPrefix(body string, prefixLen int) (headings, bodyPrefix string)

	// Sections splits the body at level 1-3 headings.
	Sections(body string) []Section

	// Links returns absolute outbound HTTP(S) links in document order,
	// without duplicates.
	Links(body, baseURL string) []string
}

// ExtractorSet selects an Extractor by document format.
type ExtractorSet struct {
	HTML     Extractor
	Markdown Extractor
}

// For returns the extractor for res. Markdown is used when the resource is
// Markdown and a Markdown extractor is configured.
func (s ExtractorSet) For(res *Resource) Extractor {
	if s.Markdown != nil && res.IsMarkdown() {
		return s.Markdown
	}
	return s.HTML
}
