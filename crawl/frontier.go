package crawl

import (
	"sync"

	"github.com/fwojciec/docbot/bloom"
)

// Entry is a URL awaiting fetch together with its breadth-first depth.
type Entry struct {
	URL   string
	Depth int
}

// Frontier is an in-memory FIFO crawl queue with a visited set.
// URLs are marked visited when they are drained into a batch, not when they
// are queued, so a URL queued twice before its first fetch is fetched once.
// It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu      sync.Mutex
	visited *bloom.Set
	queue   []Entry
	head    int
}

// NewFrontier creates a new Frontier sized for n expected URLs
// with the given false positive rate for the visited-set filter.
func NewFrontier(n uint, fpRate float64) *Frontier {
	return &Frontier{visited: bloom.NewSet(n, fpRate)}
}

// Push appends e to the queue.
// Returns false if the URL has already been visited.
func (f *Frontier) Push(e Entry) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.visited.Contains(e.URL) {
		return false
	}
	f.queue = append(f.queue, e)
	return true
}

// NextBatch removes up to n entries from the front of the queue, skipping
// URLs already visited, and marks each returned URL visited.
func (f *Frontier) NextBatch(n int) []Entry {
	f.mu.Lock()
	defer f.mu.Unlock()

	var batch []Entry
	for len(batch) < n && f.head < len(f.queue) {
		e := f.queue[f.head]
		f.queue[f.head] = Entry{}
		f.head++
		if !f.visited.Add(e.URL) {
			continue
		}
		batch = append(batch, e)
	}

	// Reclaim the consumed prefix once it dominates the backing array.
	if f.head > 0 && f.head*2 >= len(f.queue) {
		f.queue = append(f.queue[:0], f.queue[f.head:]...)
		f.head = 0
	}
	return batch
}

// Len returns the number of queued entries, including entries whose URL
// will turn out to be visited already.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue) - f.head
}

// Visited returns true if the URL has been drained into a batch.
func (f *Frontier) Visited(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visited.Contains(url)
}

// VisitedCount returns the number of distinct URLs drained so far.
func (f *Frontier) VisitedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visited.Len()
}
