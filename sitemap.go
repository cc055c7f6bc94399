package docbot

import "context"

// SitemapService discovers URLs from website sitemaps.
type SitemapService interface {
	// DiscoverURLs finds all URLs from the sitemap at sitemapURL.
	// When sitemapURL has no path, robots.txt is checked for sitemap
	// directives before falling back to /sitemap.xml. Sitemap indexes are
	// resolved recursively.
	//
	// If scope is non-nil only URLs it allows are returned.
	DiscoverURLs(ctx context.Context, sitemapURL string, scope *Scope) ([]string, error)
}
