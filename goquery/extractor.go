// Package goquery implements HTML field extraction for docbot using goquery.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docbot"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Ensure Extractor implements docbot.Extractor at compile time.
var _ docbot.Extractor = (*Extractor)(nil)

// Extractor derives index fields from HTML pages.
//
// Field extraction runs over the main content returned by Content. When
// Content fails or finds nothing, the page chrome is stripped and the
// framework's content area is used instead. Links are always taken from
// the whole page so navigation stays crawlable.
type Extractor struct {
	Content  docbot.ContentExtractor
	Detector *Detector
}

// NewExtractor creates an Extractor that finds main content with content.
func NewExtractor(content docbot.ContentExtractor) *Extractor {
	return &Extractor{Content: content, Detector: NewDetector()}
}

// IndexFields returns the title, the h1-h3 heading path and the first
// p/li text of the main content.
func (e *Extractor) IndexFields(body string) docbot.IndexFields {
	title, main := e.mainContent(body)

	var headings []string
	main.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		if t := text(s); t != "" {
			headings = append(headings, t)
		}
	})

	var lead string
	main.Find("p, li").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		lead = text(s)
		return lead == ""
	})

	return docbot.IndexFields{
		Title:       docbot.Truncate(title, docbot.MaxTitleLen),
		HeadingPath: docbot.JoinHeadings(headings),
		Lead:        docbot.Truncate(lead, docbot.MaxLeadLen),
	}
}

// HeadingsAndBodyPrefix returns the h2/h3 headings and the leading
// p/li/td/th text of the main content.
func (e *Extractor) HeadingsAndBodyPrefix(body string, prefixLen int) (string, string) {
	_, main := e.mainContent(body)

	var headings []string
	main.Find("h2, h3").Each(func(_ int, s *goquery.Selection) {
		if t := text(s); t != "" {
			headings = append(headings, t)
		}
	})

	prefix := docbot.BodyPrefix{Budget: prefixLen}
	main.Find("p, li, td, th").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		return prefix.Add(text(s))
	})

	return docbot.JoinHeadings(headings), prefix.String()
}

// Sections splits the main content at h1-h3 headings. Code inside pre is
// taken once, from the pre element.
func (e *Extractor) Sections(body string) []docbot.Section {
	_, main := e.mainContent(body)

	var b docbot.SectionBuilder
	main.Find("h1, h2, h3, p, li, pre, code").Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "h1", "h2", "h3":
			b.Heading(text(s))
		case "code":
			if s.ParentsFiltered("pre").Length() == 0 {
				b.Text(text(s))
			}
		default:
			b.Text(text(s))
		}
	})
	return b.Sections()
}

// Links returns the page's a[href] targets resolved against baseURL.
func (e *Extractor) Links(body, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}
	var links docbot.LinkSet
	parse(body).Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		links.Add(docbot.ResolveLink(base, href))
	})
	return links.Links()
}

// mainContent returns the page title and the main content selection.
func (e *Extractor) mainContent(body string) (string, *goquery.Selection) {
	if e.Content != nil {
		if res, err := e.Content.Extract(body); err == nil && res != nil && strings.TrimSpace(res.ContentHTML) != "" {
			return strings.TrimSpace(res.Title), parse(res.ContentHTML).Selection
		}
	}

	doc := parse(body)
	title := text(doc.Find("title").First())
	if title == "" {
		title = text(doc.Find("h1").First())
	}
	doc.Find(chromeSelector).Remove()

	detector := e.Detector
	if detector == nil {
		detector = NewDetector()
	}
	return title, detector.ContentRoot(doc)
}

// parse parses s leniently. Unparseable input yields an empty document.
func parse(s string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return goquery.NewDocumentFromNode(&html.Node{Type: html.DocumentNode})
	}
	return doc
}

// text joins the trimmed text nodes under s with single spaces, so adjacent
// inline elements stay separate words.
func text(s *goquery.Selection) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			if t := strings.Join(strings.Fields(n.Data), " "); t != "" {
				parts = append(parts, t)
			}
			return
		case n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style):
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}
