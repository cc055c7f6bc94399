package crawl

import (
	"context"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/docbot"
	"golang.org/x/time/rate"
)

var _ docbot.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter paces requests to each host at CrawlConfig.RequestsPerSecond
// with no bursting. Hosts are compared case-insensitively and without their
// scheme's default port, so "Docs.example.com:443" and "docs.example.com"
// share one budget.
type DomainLimiter struct {
	limit rate.Limit

	mu    sync.Mutex
	hosts map[string]*rate.Limiter

	throttled atomic.Int64
}

// NewDomainLimiter returns a limiter for the crawl. A non-positive
// RequestsPerSecond disables limiting.
func NewDomainLimiter(cfg docbot.CrawlConfig) *DomainLimiter {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &DomainLimiter{limit: limit, hosts: make(map[string]*rate.Limiter)}
}

// Wait blocks until a request to host is allowed.
// Returns an error if ctx is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, host string) error {
	if d.limit == rate.Inf {
		return ctx.Err()
	}

	key := hostKey(host)
	d.mu.Lock()
	limiter, ok := d.hosts[key]
	if !ok {
		limiter = rate.NewLimiter(d.limit, 1)
		d.hosts[key] = limiter
	}
	d.mu.Unlock()

	begin := time.Now()
	err := limiter.Wait(ctx)
	d.throttled.Add(int64(time.Since(begin)))
	return err
}

// Throttled returns the total time callers have spent waiting.
func (d *DomainLimiter) Throttled() time.Duration {
	return time.Duration(d.throttled.Load())
}

func hostKey(host string) string {
	host = strings.ToLower(host)
	if h, port, err := net.SplitHostPort(host); err == nil && (port == "80" || port == "443") {
		return h
	}
	return host
}
