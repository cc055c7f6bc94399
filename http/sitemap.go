package http

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/docbot"
)

// Ensure SitemapService implements docbot.SitemapService.
var _ docbot.SitemapService = (*SitemapService)(nil)

// SitemapService discovers URLs from website sitemaps via HTTP.
type SitemapService struct {
	client    *http.Client
	userAgent string
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, a client with DefaultFetchTimeout is used.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	return &SitemapService{client: client, userAgent: DefaultUserAgent}
}

// WithUserAgent sets the User-Agent header sent with sitemap requests.
func (s *SitemapService) WithUserAgent(ua string) *SitemapService {
	if ua != "" {
		s.userAgent = ua
	}
	return s
}

// DiscoverURLs finds all URLs listed by the sitemap at sitemapURL.
// Returns an empty slice (not nil) if no sitemaps are found.
//
// A sitemapURL ending in .xml is read directly. Otherwise robots.txt of its
// host is consulted, falling back to /sitemap.xml, and when sitemapURL has
// a non-root path (e.g., https://example.com/docs/) only URLs under that
// path are returned.
func (s *SitemapService) DiscoverURLs(ctx context.Context, sitemapURL string, scope *docbot.Scope) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(sitemapURL)
	if err != nil || base.Host == "" {
		return nil, docbot.Errorf(docbot.EINVALID, "invalid sitemap URL %q", sitemapURL)
	}

	var sitemapURLs []string
	pathPrefix := ""
	if strings.HasSuffix(strings.ToLower(base.Path), ".xml") {
		sitemapURLs = []string{base.String()}
	} else {
		if base.Path != "/" {
			pathPrefix = base.Path
		}
		root := *base
		root.Path = ""
		root.RawQuery = ""
		root.Fragment = ""
		if sitemapURLs, err = s.findSitemapURLs(ctx, &root); err != nil {
			return nil, err
		}
	}

	allURLs := []string{}
	seenSitemaps := make(map[string]bool)
	seenURLs := make(map[string]bool)

	for _, u := range sitemapURLs {
		urls, err := s.processSitemap(ctx, u, seenSitemaps)
		if err != nil {
			return nil, err
		}
		for _, u := range urls {
			if seenURLs[u] {
				continue
			}
			seenURLs[u] = true
			if pathPrefix != "" && !matchesPathPrefix(u, pathPrefix) {
				continue
			}
			if scope != nil && !scope.Allowed(u) {
				continue
			}
			allURLs = append(allURLs, u)
		}
	}

	return allURLs, nil
}

// matchesPathPrefix reports whether a URL's path is under prefix, respecting
// path boundaries: /docs matches /docs, /docs/ and /docs/intro but not
// /documentation.
func matchesPathPrefix(rawURL, prefix string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	dir := strings.TrimSuffix(prefix, "/")
	return parsed.Path == dir || strings.HasPrefix(parsed.Path, dir+"/")
}

// maxSitemapDepth bounds sitemap index nesting.
const maxSitemapDepth = 3

// findSitemapURLs returns the Sitemap: directives of robots.txt, or
// /sitemap.xml when there are none.
func (s *SitemapService) findSitemapURLs(ctx context.Context, base *url.URL) ([]string, error) {
	robotsURL := base.ResolveReference(&url.URL{Path: "/robots.txt"})
	sitemaps, err := s.parseSitemapsFromRobots(ctx, robotsURL.String())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err == nil && len(sitemaps) > 0 {
		return sitemaps, nil
	}
	return []string{base.ResolveReference(&url.URL{Path: "/sitemap.xml"}).String()}, nil
}

// parseSitemapsFromRobots extracts Sitemap: directives from robots.txt.
func (s *SitemapService) parseSitemapsFromRobots(ctx context.Context, robotsURL string) ([]string, error) {
	body, err := s.fetchURL(ctx, robotsURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	const directive = "sitemap:"
	var sitemaps []string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(strings.ToLower(line), directive) {
			continue
		}
		if u := strings.TrimSpace(line[len(directive):]); u != "" {
			sitemaps = append(sitemaps, u)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading robots.txt: %w", err)
	}

	return sitemaps, nil
}

// processSitemap fetches and parses a sitemap. A <sitemapindex> is followed
// up to maxSitemapDepth levels; any other root is read as a <urlset>.
// A missing sitemap yields no URLs.
func (s *SitemapService) processSitemap(ctx context.Context, sitemapURL string, seen map[string]bool) ([]string, error) {
	return s.walkSitemap(ctx, sitemapURL, seen, 0)
}

func (s *SitemapService) walkSitemap(ctx context.Context, sitemapURL string, seen map[string]bool, depth int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if seen[sitemapURL] || depth > maxSitemapDepth {
		return nil, nil
	}
	seen[sitemapURL] = true

	body, err := s.fetchURL(ctx, sitemapURL)
	if docbot.ErrorCode(err) == docbot.ENOCONTENT {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var r io.Reader = body
	if strings.HasSuffix(strings.ToLower(sitemapURL), ".gz") {
		gz, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("decompressing sitemap: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("parsing sitemap XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty sitemap XML")
	}

	if root.Tag != "sitemapindex" {
		return locs(root, "url"), nil
	}

	var urls []string
	for _, child := range locs(root, "sitemap") {
		found, err := s.walkSitemap(ctx, child, seen, depth+1)
		if err != nil {
			return nil, err
		}
		urls = append(urls, found...)
	}
	return urls, nil
}

// locs returns the non-empty <loc> texts of root's entry elements.
func locs(root *etree.Element, entry string) []string {
	var out []string
	for _, el := range root.SelectElements(entry) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// fetchURL fetches a URL and returns the response body.
func (s *SitemapService) fetchURL(ctx context.Context, targetURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, docbot.Errorf(docbot.ENOCONTENT, "HTTP %d for %s", resp.StatusCode, targetURL)
	}

	return resp.Body, nil
}
