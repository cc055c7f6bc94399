package mock

import (
	"context"

	"github.com/fwojciec/docbot"
)

var (
	_ docbot.Fetcher       = (*Fetcher)(nil)
	_ docbot.DomainLimiter = (*DomainLimiter)(nil)
)

// Fetcher is a mock implementation of docbot.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*docbot.Resource, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*docbot.Resource, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

// DomainLimiter is a mock implementation of docbot.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
