// Package goldmark implements Markdown field extraction for docbot using
// the goldmark CommonMark parser.
package goldmark

import (
	"net/url"
	"strings"

	"github.com/fwojciec/docbot"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Ensure Extractor implements docbot.Extractor at compile time.
var _ docbot.Extractor = (*Extractor)(nil)

// Lead limits.
const (
	maxLeadLines   = 3
	maxLeadLineLen = 300
)

// Extractor derives index fields from Markdown documents. ATX and setext
// headings are recognized; fenced and indented code is body text and never
// a heading.
type Extractor struct {
	md goldmark.Markdown
}

// NewExtractor creates an Extractor that parses GitHub Flavored Markdown.
func NewExtractor() *Extractor {
	return &Extractor{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

// line is one non-empty line of document text. level is the heading
// level, or 0 for text.
type line struct {
	level int
	text  string
	code  bool
}

// lines flattens the document into headings and text lines in order.
// Paragraphs yield one line per source line, table rows one line each.
func (e *Extractor) lines(body string) []line {
	src := []byte(body)
	doc := e.md.Parser().Parse(text.NewReader(src))

	var out []line
	emit := func(l line) {
		if l.text = strings.TrimSpace(l.text); l.text != "" {
			out = append(out, l)
		}
	}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			emit(line{level: n.Level, text: inlineText(n, src)})
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.TextBlock:
			for _, s := range strings.Split(inlineText(n, src), "\n") {
				emit(line{text: s})
			}
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			segs := n.Lines()
			for i := range segs.Len() {
				seg := segs.At(i)
				emit(line{text: string(seg.Value(src)), code: true})
			}
			return ast.WalkSkipChildren, nil
		case *east.TableHeader, *east.TableRow:
			var cells []string
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				if t := strings.TrimSpace(inlineText(c, src)); t != "" {
					cells = append(cells, t)
				}
			}
			emit(line{text: strings.Join(cells, " | ")})
			return ast.WalkSkipChildren, nil
		case *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return out
}

// inlineText renders the inline content of n as plain text. Link and
// image destinations are dropped, their labels kept. Soft and hard line
// breaks become newlines.
func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(src))
			if c.SoftLineBreak() || c.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(c.Value)
		case *ast.AutoLink:
			b.Write(c.Label(src))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// IndexFields returns the first level-1 heading as title, level 2-3
// headings as heading path, and up to three leading text lines as lead.
func (e *Extractor) IndexFields(body string) docbot.IndexFields {
	var fields docbot.IndexFields
	var headings, lead []string
	for _, l := range e.lines(body) {
		switch {
		case l.level == 1:
			if fields.Title == "" {
				fields.Title = docbot.Truncate(l.text, docbot.MaxTitleLen)
			}
		case l.level == 2 || l.level == 3:
			headings = append(headings, l.text)
		case l.level == 0 && !l.code:
			if len(lead) < maxLeadLines && len([]rune(strings.Join(lead, " "))) < docbot.MaxLeadLen {
				lead = append(lead, docbot.Truncate(l.text, maxLeadLineLen))
			}
		}
	}
	fields.HeadingPath = docbot.JoinHeadings(headings)
	fields.Lead = docbot.Truncate(strings.Join(lead, " "), docbot.MaxLeadLen)
	return fields
}

// HeadingsAndBodyPrefix returns level 2-3 headings and the leading body
// text, code included.
func (e *Extractor) HeadingsAndBodyPrefix(body string, prefixLen int) (string, string) {
	var headings []string
	prefix := docbot.BodyPrefix{Budget: prefixLen}
	for _, l := range e.lines(body) {
		switch {
		case l.level == 2 || l.level == 3:
			headings = append(headings, l.text)
		case l.level == 0:
			prefix.Add(l.text)
		}
	}
	return docbot.JoinHeadings(headings), prefix.String()
}

// Sections splits the document at level 1-3 headings. Deeper headings are
// kept as text of the enclosing section.
func (e *Extractor) Sections(body string) []docbot.Section {
	var b docbot.SectionBuilder
	for _, l := range e.lines(body) {
		if l.level >= 1 && l.level <= 3 {
			b.Heading(l.text)
			continue
		}
		b.Text(l.text)
	}
	return b.Sections()
}

// Links returns the targets of inline, reference and autolinks resolved
// against baseURL, in document order.
func (e *Extractor) Links(body, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}
	src := []byte(body)
	doc := e.md.Parser().Parse(text.NewReader(src))

	var set docbot.LinkSet
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Link:
			set.Add(docbot.ResolveLink(base, string(n.Destination)))
		case *ast.AutoLink:
			if n.AutoLinkType == ast.AutoLinkURL {
				set.Add(docbot.ResolveLink(base, string(n.URL(src))))
			}
		}
		return ast.WalkContinue, nil
	})
	return set.Links()
}
