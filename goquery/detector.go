package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Framework identifies a documentation site generator.
type Framework string

// Supported frameworks.
const (
	FrameworkUnknown    Framework = ""
	FrameworkDocusaurus Framework = "docusaurus"
	FrameworkMkDocs     Framework = "mkdocs"
	FrameworkSphinx     Framework = "sphinx"
	FrameworkVuePress   Framework = "vuepress"
	FrameworkVitePress  Framework = "vitepress"
	FrameworkGitBook    Framework = "gitbook"
	FrameworkNextra     Framework = "nextra"
)

// contentSelectors locate the article body of each framework's page layout.
var contentSelectors = map[Framework]string{
	FrameworkDocusaurus: "article",
	FrameworkMkDocs:     ".md-content",
	FrameworkSphinx:     "[role='main'], div.body",
	FrameworkVitePress:  ".vp-doc",
	FrameworkVuePress:   ".theme-default-content",
	FrameworkGitBook:    "main",
	FrameworkNextra:     "article",
}

// genericContentSelector is tried when the framework is unknown or its
// selector matches nothing.
const genericContentSelector = "main, article, [role='main']"

// chromeSelector matches page chrome that never carries document text.
const chromeSelector = "script, style, noscript, template, nav, header, footer, aside"

// Detector identifies documentation frameworks from HTML content.
// It checks for framework-specific CSS classes, data attributes, meta tags,
// and structural markers that are unique to each documentation generator.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns the framework that generated doc, or FrameworkUnknown.
func (d *Detector) Detect(doc *goquery.Document) Framework {
	if framework := d.detectFromMetaGenerator(doc); framework != FrameworkUnknown {
		return framework
	}

	switch {
	case has(doc, "#__docusaurus_skipToContent_fallback"),
		has(doc, ".theme-doc-sidebar-container"),
		has(doc, "[data-rh]") && has(doc, "[data-theme]"):
		return FrameworkDocusaurus
	case has(doc, "[data-md-color-scheme]"),
		has(doc, "[data-md-component]"),
		has(doc, ".md-nav--primary"):
		return FrameworkMkDocs
	case has(doc, ".toctree-wrapper"),
		has(doc, ".wy-nav-side"),
		has(doc, ".sphinxsidebar"):
		return FrameworkSphinx
	// VitePress before VuePress: it reuses some VuePress markup.
	case has(doc, "#VPContent"), has(doc, ".VPDoc"):
		return FrameworkVitePress
	case has(doc, ".theme-default-content"), has(doc, ".vuepress-navbar"):
		return FrameworkVuePress
	case has(doc, "[data-testid='space.sidebar']"), d.hasGitBookClasses(doc):
		return FrameworkGitBook
	case has(doc, ".nextra-navbar"), has(doc, ".nextra-sidebar"), has(doc, ".nextra-toc"):
		return FrameworkNextra
	}
	return FrameworkUnknown
}

// ContentRoot returns the element holding the document text: the detected
// framework's content area, a generic main/article element, or the body.
func (d *Detector) ContentRoot(doc *goquery.Document) *goquery.Selection {
	if sel, ok := contentSelectors[d.Detect(doc)]; ok {
		if root := doc.Find(sel).First(); root.Length() > 0 {
			return root
		}
	}
	if root := doc.Find(genericContentSelector).First(); root.Length() > 0 {
		return root
	}
	return doc.Find("body")
}

func (d *Detector) detectFromMetaGenerator(doc *goquery.Document) Framework {
	generator, _ := doc.Find("meta[name='generator']").Last().Attr("content")
	generator = strings.ToLower(generator)
	if generator == "" {
		return FrameworkUnknown
	}

	// vitepress before vuepress for the same reason as in Detect.
	for _, f := range []Framework{
		FrameworkSphinx,
		FrameworkGitBook,
		FrameworkDocusaurus,
		FrameworkMkDocs,
		FrameworkVitePress,
		FrameworkVuePress,
		FrameworkNextra,
	} {
		if strings.Contains(generator, string(f)) {
			return f
		}
	}
	return FrameworkUnknown
}

// hasGitBookClasses requires at least two of GitBook's html element classes.
func (d *Detector) hasGitBookClasses(doc *goquery.Document) bool {
	class, _ := doc.Find("html").Attr("class")
	count := 0
	for _, c := range []string{"circular-corners", "theme-clean", "tint"} {
		if strings.Contains(class, c) {
			count++
		}
	}
	return count >= 2
}

func has(doc *goquery.Document, selector string) bool {
	return doc.Find(selector).Length() > 0
}
