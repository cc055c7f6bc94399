package docbot

import (
	"strings"
	"unicode"
)

// N-gram widths used when indexing and when querying. Queries try the
// wider window first so the most specific terms survive the term cap.
var (
	IndexOrders = []int{2, 3}
	QueryOrders = []int{3, 2}
)

// Default caps on generated terms.
const (
	DefaultIndexTermLimit   = 4000
	DefaultQueryTermLimit   = 180
	DefaultRescoreTermLimit = 60
)

// IndexTerms removes all whitespace from text and emits every n-gram for
// each width in orders, in the order given. Generation stops once limit
// terms have been produced; a limit of zero or less means no cap. When
// orders is empty IndexOrders is used.
func IndexTerms(text string, orders []int, limit int) []string {
	if len(orders) == 0 {
		orders = IndexOrders
	}
	runes := []rune(strings.Join(strings.Fields(text), ""))

	var terms []string
	for _, n := range orders {
		if n <= 0 || len(runes) < n {
			continue
		}
		for i := 0; i+n <= len(runes); i++ {
			terms = append(terms, string(runes[i:i+n]))
			if limit > 0 && len(terms) >= limit {
				return terms
			}
		}
	}
	return terms
}

// NormalizeText strips whitespace and punctuation from s, keeping letters,
// numbers, underscores and the Hiragana, Katakana and CJK unified ideograph
// blocks.
func NormalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if keepRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func keepRune(r rune) bool {
	switch {
	case unicode.IsSpace(r):
		return false
	case unicode.IsLetter(r), unicode.IsNumber(r), r == '_':
		return true
	case r >= 0x3040 && r <= 0x309f, r >= 0x30a0 && r <= 0x30ff, r >= 0x4e00 && r <= 0x9fff:
		return true
	}
	return false
}

// QueryTerms normalizes query and returns its distinct n-grams using
// QueryOrders, at most limit of them (no cap when limit <= 0).
func QueryTerms(query string, limit int) []string {
	runes := []rune(NormalizeText(query))
	seen := make(map[string]struct{})

	var terms []string
	for _, n := range QueryOrders {
		if len(runes) < n {
			continue
		}
		for i := 0; i+n <= len(runes); i++ {
			t := string(runes[i : i+n])
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			terms = append(terms, t)
			if limit > 0 && len(terms) >= limit {
				return terms
			}
		}
	}
	return terms
}

// QueryExpression builds a full-text match expression that accepts any of
// the query's n-grams. Each n-gram is a quoted phrase with embedded quotes
// doubled, so the result is always valid match syntax. The bool is false
// when the query is too short to produce any n-gram, in which case the
// caller should fall back to substring matching.
func QueryExpression(query string, limit int) (string, bool) {
	terms := QueryTerms(query, limit)
	if len(terms) == 0 {
		return "", false
	}
	for i, t := range terms {
		terms[i] = quotePhrase(t)
	}
	return strings.Join(terms, " OR "), true
}

// MatchAllExpression builds a full-text match expression requiring every
// word of query. Words are runs of letters and numbers; anything else acts
// as a separator, which keeps reserved match syntax out of the expression.
// It returns "" when query contains no words.
func MatchAllExpression(query string) string {
	words := strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for i, w := range words {
		words[i] = quotePhrase(w)
	}
	return strings.Join(words, " ")
}

func quotePhrase(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
