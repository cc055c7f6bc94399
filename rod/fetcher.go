// Package rod provides a docbot.Fetcher that renders pages in headless
// Chrome for documentation sites that build their content client side.
package rod

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/docbot"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds a single page render.
const DefaultFetchTimeout = 20 * time.Second

// serializeJS returns the document HTML with open shadow roots inlined as
// declarative shadow DOM. Browsers without Element.getHTML fall back to
// outerHTML.
const serializeJS = `() => {
  const roots = [];
  const collect = (node) => {
    for (const el of node.querySelectorAll('*')) {
      if (el.shadowRoot) {
        roots.push(el.shadowRoot);
        collect(el.shadowRoot);
      }
    }
  };
  collect(document);
  const el = document.documentElement;
  const doctype = document.doctype ? '<!DOCTYPE ' + document.doctype.name + '>' : '';
  if (typeof el.getHTML !== 'function') {
    return doctype + el.outerHTML;
  }
  const inner = el.getHTML({ serializableShadowRoots: true, shadowRoots: roots });
  const attrs = Array.from(el.attributes).map(a => ' ' + a.name + '="' + a.value.replace(/"/g, '&quot;') + '"').join('');
  return doctype + '<html' + attrs + '>' + inner + '</html>';
}`

// Ensure Fetcher implements docbot.Fetcher at compile time.
var _ docbot.Fetcher = (*Fetcher)(nil)

// DefaultRecycleAfter is the number of rendered pages after which Chrome
// is restarted when CrawlConfig.BrowserRecycleAfter is not set. Chrome's
// resident memory grows with every page and never returns to baseline.
const DefaultRecycleAfter = docbot.DefaultBrowserRecycleAfter

// RecycleEvent describes one browser restart. On a failed restart Err is
// set, NewPID is zero and the old browser stays in use.
type RecycleEvent struct {
	Rendered int64
	OldPID   int
	NewPID   int
	Err      error
}

// Fetcher renders pages in headless Chrome.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	timeout      time.Duration
	userAgent    string
	recycleAfter int64
	onRecycle    func(RecycleEvent)

	mu       sync.Mutex
	current  *session
	rendered int64
	closed   atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithRecycleHook registers fn to be called after every browser restart.
func WithRecycleHook(fn func(RecycleEvent)) Option {
	return func(f *Fetcher) {
		f.onRecycle = fn
	}
}

// NewFetcher launches Chrome and returns a Fetcher configured from the
// crawl's timeout, user agent and BrowserRecycleAfter. Close must be called
// when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(cfg docbot.CrawlConfig, opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		userAgent:    cfg.UserAgent,
		recycleAfter: DefaultRecycleAfter,
		onRecycle:    func(RecycleEvent) {},
	}
	if cfg.Timeout > 0 {
		f.timeout = cfg.Timeout
	}
	if cfg.BrowserRecycleAfter > 0 {
		f.recycleAfter = int64(cfg.BrowserRecycleAfter)
	}
	for _, opt := range opts {
		opt(f)
	}

	s, err := launch()
	if err != nil {
		return nil, err
	}
	f.current = s
	return f, nil
}

// Fetch navigates to the URL and returns the rendered HTML. Resource.URL
// is the address the browser ended on after redirects.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*docbot.Resource, error) {
	if f.closed.Load() {
		return nil, docbot.Errorf(docbot.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	browser := f.browser()
	if browser == nil {
		return nil, docbot.Errorf(docbot.EINVALID, "fetcher is closed")
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}
	defer page.Close()
	page = page.Context(ctx)

	if f.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.userAgent}); err != nil {
			return nil, contextErr(ctx, err)
		}
	}
	if err := page.Navigate(url); err != nil {
		return nil, contextErr(ctx, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, contextErr(ctx, err)
	}

	html, err := serialize(page)
	if err != nil {
		return nil, contextErr(ctx, err)
	}

	f.mu.Lock()
	f.rendered++
	f.mu.Unlock()

	finalURL := url
	if info, err := page.Info(); err == nil && info.URL != "" {
		finalURL = info.URL
	}

	return &docbot.Resource{URL: finalURL, Body: html, ContentType: "text/html"}, nil
}

// browser returns the live browser, first restarting Chrome when the
// rendered page count has reached the recycle threshold. Pages already open
// on the old browser are closed with it.
func (f *Fetcher) browser() *rod.Browser {
	f.mu.Lock()
	if f.current == nil {
		f.mu.Unlock()
		return nil
	}
	if f.rendered < f.recycleAfter {
		b := f.current.browser
		f.mu.Unlock()
		return b
	}

	ev := RecycleEvent{Rendered: f.rendered, OldPID: f.current.pid()}
	next, err := launch()
	if err != nil {
		ev.Err = err
	} else {
		_ = f.current.close()
		f.current = next
		f.rendered = 0
		ev.NewPID = next.pid()
	}
	b := f.current.browser
	f.mu.Unlock()

	f.onRecycle(ev)
	return b
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	err := f.current.close()
	f.current = nil
	return err
}

// LauncherPID returns the process ID of the current browser launcher, or
// zero once the Fetcher is closed.
func (f *Fetcher) LauncherPID() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current.pid()
}

// serialize renders the page including open shadow roots, falling back to
// the plain document HTML when script evaluation fails.
func serialize(page *rod.Page) (string, error) {
	res, err := page.Eval(serializeJS)
	if err == nil && res != nil {
		if s := res.Value.Str(); s != "" {
			return s, nil
		}
	}
	return page.HTML()
}

// contextErr prefers the context's error so callers can match
// context.DeadlineExceeded and context.Canceled.
func contextErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
