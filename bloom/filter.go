// Package bloom provides exact URL membership sets backed by a Bloom filter.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Set records URLs. Lookups consult the Bloom filter first, so misses never
// touch the exact set; hits are confirmed against it, so a false positive
// can never cause a URL to be skipped.
type Set struct {
	f     *bloom.BloomFilter
	exact map[string]struct{}
}

// NewSet creates a Set sized for n expected URLs with the given false
// positive rate for the filter stage.
func NewSet(n uint, fpRate float64) *Set {
	return &Set{
		f:     bloom.NewWithEstimates(n, fpRate),
		exact: make(map[string]struct{}, n),
	}
}

// Add records url and reports whether it was not already present.
func (s *Set) Add(url string) bool {
	if s.Contains(url) {
		return false
	}
	s.f.AddString(url)
	s.exact[url] = struct{}{}
	return true
}

// Contains reports whether url has been added.
func (s *Set) Contains(url string) bool {
	if !s.f.TestString(url) {
		return false
	}
	_, ok := s.exact[url]
	return ok
}

// Len returns the number of URLs in the set.
func (s *Set) Len() int {
	return len(s.exact)
}

// EstimatedCount returns the filter's approximation of Len.
func (s *Set) EstimatedCount() uint {
	return uint(s.f.ApproximatedSize())
}
