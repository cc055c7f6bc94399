package docbot

import (
	"net/url"
	"strings"
)

// ResolveLink resolves href against base and returns the absolute URL.
// It returns "" for links that cannot be crawled: unparsable hrefs,
// non-HTTP schemes, and anchors pointing back into the base document.
// Fragments on links to other documents are kept, since a fragment names
// a distinct indexed target.
func ResolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || isNonHTTPLink(href) {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}

	self := *base
	self.Fragment = ""
	target := *resolved
	target.Fragment = ""
	if target.String() == self.String() {
		return ""
	}
	return resolved.String()
}

// LinkSet collects resolved links in first-seen order.
type LinkSet struct {
	seen  map[string]struct{}
	links []string
}

// Add records link unless it is empty or already present.
func (s *LinkSet) Add(link string) {
	if link == "" {
		return
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[link]; ok {
		return
	}
	s.seen[link] = struct{}{}
	s.links = append(s.links, link)
}

// Links returns the collected links.
func (s *LinkSet) Links() []string {
	return s.links
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(href)
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
