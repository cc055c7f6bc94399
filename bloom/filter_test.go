package bloom_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/docbot/bloom"
	"github.com/stretchr/testify/assert"
)

func TestSet_Add(t *testing.T) {
	t.Parallel()

	s := bloom.NewSet(1000, 0.01)

	assert.False(t, s.Contains("https://example.com/page1"))
	assert.True(t, s.Add("https://example.com/page1"))
	assert.False(t, s.Add("https://example.com/page1"), "second add reports existing URL")
	assert.True(t, s.Contains("https://example.com/page1"))
	assert.False(t, s.Contains("https://example.com/page2"))
	assert.Equal(t, 1, s.Len())
}

func TestSet_NoFalsePositives(t *testing.T) {
	t.Parallel()

	// A tiny, saturated filter answers "maybe" for almost everything.
	s := bloom.NewSet(1, 0.5)
	for i := 0; i < 200; i++ {
		s.Add(fmt.Sprintf("https://example.com/page%d", i))
	}

	for i := 200; i < 400; i++ {
		assert.False(t, s.Contains(fmt.Sprintf("https://example.com/page%d", i)))
	}
	assert.Equal(t, 200, s.Len())
}

func TestSet_EstimatedCount(t *testing.T) {
	t.Parallel()

	s := bloom.NewSet(1000, 0.01)
	assert.Equal(t, uint(0), s.EstimatedCount())

	s.Add("https://example.com/page1")
	s.Add("https://example.com/page2")
	s.Add("https://example.com/page3")

	count := s.EstimatedCount()
	assert.GreaterOrEqual(t, count, uint(2))
	assert.LessOrEqual(t, count, uint(4))
}
