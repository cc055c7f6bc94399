package search

import (
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/docbot"
)

// Rescorer scores candidates against one query. Create one per query so the
// normalized query and its n-grams are computed once.
type Rescorer struct {
	weights docbot.RankWeights
	query   string
	terms   []string
}

// NewRescorer prepares query for scoring. termLimit caps the query n-grams
// counted toward the term components.
func NewRescorer(query string, weights docbot.RankWeights, termLimit int) *Rescorer {
	return &Rescorer{
		weights: weights,
		query:   docbot.NormalizeText(query),
		terms:   docbot.QueryTerms(query, termLimit),
	}
}

// Score returns the additive relevance of hit; higher is better.
func (r *Rescorer) Score(hit *docbot.Hit) float64 {
	title := docbot.NormalizeText(hit.Title)
	headings := docbot.NormalizeText(hit.Headings)
	hpath := docbot.NormalizeText(hit.HeadingPath)
	lead := docbot.NormalizeText(hit.Lead)
	body := docbot.NormalizeText(hit.BodyPrefix)

	var score float64
	if r.query != "" {
		fields := []struct {
			text   string
			weight float64
		}{
			{title, r.weights.Title},
			{headings, r.weights.Headings},
			{hpath, r.weights.HeadingPath},
			{lead, r.weights.Lead},
			{body, r.weights.BodyPrefix},
		}
		for _, f := range fields {
			if strings.Contains(f.text, r.query) {
				score += f.weight
			}
		}
	}

	near := title + " " + headings
	far := lead + " " + body
	var nearHits, farHits int
	for _, t := range r.terms {
		if strings.Contains(near, t) {
			nearHits++
		}
		if strings.Contains(far, t) {
			farHits++
		}
	}
	score += r.weights.NearTerm*float64(nearHits) + r.weights.FarTerm*float64(farHits)

	if r.query != "" {
		for _, f := range []string{title, headings, lead} {
			if strings.Contains(f, r.query) {
				score += float64(min(r.weights.ContiguousCap, utf8.RuneCountInString(r.query)))
				break
			}
		}
	}

	return score
}
