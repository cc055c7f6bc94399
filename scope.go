package docbot

import (
	"net/url"
	"regexp"
	"strings"
)

// UnknownLanguage is returned by Scope.Language when a URL carries no
// language segment.
const UnknownLanguage = "unknown"

// DefaultLanguageSegment is the index of the language tag among the
// slash-separated elements of a URL path. For "/versions/3-0-x/ja-jp/intro"
// the elements are "", "versions", "3-0-x", "ja-jp", "intro".
const DefaultLanguageSegment = 3

// DefaultDenyExtensions lists asset extensions that are never crawled.
var DefaultDenyExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp",
	".zip", ".tar", ".gz", ".pdf",
}

// Scope decides whether a URL belongs to the crawl and which language it is
// written in. A Scope is immutable after construction and safe for
// concurrent use.
type Scope struct {
	allow           *regexp.Regexp
	denyExt         []string
	languageSegment int
}

// NewScope compiles the allow pattern. The pattern is anchored at the start
// of the URL. Deny extensions are compared case-insensitively against the
// end of the URL path, so query strings and fragments do not hide them.
// A languageSegment below 1 selects DefaultLanguageSegment.
func NewScope(allowPattern string, denyExt []string, languageSegment int) (*Scope, error) {
	if allowPattern == "" {
		return nil, Errorf(EINVALID, "scope allow pattern required")
	}
	re, err := regexp.Compile(`^(?:` + allowPattern + `)`)
	if err != nil {
		return nil, Errorf(EINVALID, "invalid allow pattern %q: %v", allowPattern, err)
	}
	if languageSegment < 1 {
		languageSegment = DefaultLanguageSegment
	}
	exts := make([]string, 0, len(denyExt))
	for _, ext := range denyExt {
		if ext = strings.ToLower(strings.TrimSpace(ext)); ext != "" {
			exts = append(exts, ext)
		}
	}
	return &Scope{allow: re, denyExt: exts, languageSegment: languageSegment}, nil
}

// Allowed reports whether rawURL is in scope. Malformed URLs are never in
// scope.
func (s *Scope) Allowed(rawURL string) bool {
	if s == nil || rawURL == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if !s.allow.MatchString(rawURL) {
		return false
	}
	low := strings.ToLower(u.Path)
	for _, ext := range s.denyExt {
		if strings.HasSuffix(low, ext) {
			return false
		}
	}
	return true
}

// Language returns the language tag found at the configured path segment,
// or UnknownLanguage if the path is too short.
func (s *Scope) Language(rawURL string) string {
	segment := DefaultLanguageSegment
	if s != nil {
		segment = s.languageSegment
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return UnknownLanguage
	}
	parts := strings.Split(u.Path, "/")
	if len(parts) <= segment || parts[segment] == "" {
		return UnknownLanguage
	}
	return parts[segment]
}
