// Package lru caches search results in memory.
package lru

import (
	"context"
	"strconv"
	"time"

	"github.com/fwojciec/docbot"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// Ensure Searcher implements docbot.Searcher at compile time.
var _ docbot.Searcher = (*Searcher)(nil)

// Searcher caches the hits of a wrapped Searcher by language, limit and
// query. Concurrent identical searches share one call to the wrapped
// Searcher. Errors are not cached.
type Searcher struct {
	next  docbot.Searcher
	cache *expirable.LRU[string, []*docbot.Hit]
	group singleflight.Group
}

// NewSearcher wraps next with a cache of size entries that expire after
// ttl. Non-positive values select docbot.DefaultCacheSize and
// docbot.DefaultCacheTTL.
func NewSearcher(next docbot.Searcher, size int, ttl time.Duration) *Searcher {
	if size <= 0 {
		size = docbot.DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = docbot.DefaultCacheTTL
	}
	return &Searcher{
		next:  next,
		cache: expirable.NewLRU[string, []*docbot.Hit](size, nil, ttl),
	}
}

// Search returns cached hits when present and otherwise delegates.
func (s *Searcher) Search(ctx context.Context, query string, opts docbot.SearchOptions) ([]*docbot.Hit, error) {
	key := cacheKey(query, opts)
	if hits, ok := s.cache.Get(key); ok {
		return clone(hits), nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		hits, err := s.next.Search(ctx, query, opts)
		if err != nil {
			return nil, err
		}
		s.cache.Add(key, hits)
		return hits, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(v.([]*docbot.Hit)), nil
}

// Len returns the number of cached entries.
func (s *Searcher) Len() int {
	return s.cache.Len()
}

func cacheKey(query string, opts docbot.SearchOptions) string {
	return opts.Language + "\x00" + strconv.Itoa(opts.Limit) + "\x00" + query
}

// clone copies hits so callers cannot modify cached entries.
func clone(hits []*docbot.Hit) []*docbot.Hit {
	if hits == nil {
		return nil
	}
	out := make([]*docbot.Hit, len(hits))
	for i, h := range hits {
		c := *h
		if h.Score != nil {
			score := *h.Score
			c.Score = &score
		}
		out[i] = &c
	}
	return out
}
