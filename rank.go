package docbot

// RankWeights tunes the additive rescoring applied to candidates in
// languages indexed by n-grams. A candidate earns each field weight when the
// normalized query occurs literally in that field, NearTerm and FarTerm per
// query n-gram found in title-or-headings and lead-or-body respectively,
// and a one-time bonus of min(ContiguousCap, query length) for the first of
// title, headings, lead holding the whole query.
type RankWeights struct {
	Title         float64 `json:"title"`
	Headings      float64 `json:"headings"`
	HeadingPath   float64 `json:"headingPath"`
	Lead          float64 `json:"lead"`
	BodyPrefix    float64 `json:"bodyPrefix"`
	NearTerm      float64 `json:"nearTerm"`
	FarTerm       float64 `json:"farTerm"`
	ContiguousCap int     `json:"contiguousCap"`
}

// DefaultRankWeights returns the empirically tuned weights.
func DefaultRankWeights() RankWeights {
	return RankWeights{
		Title:         80,
		Headings:      50,
		HeadingPath:   25,
		Lead:          18,
		BodyPrefix:    10,
		NearTerm:      0.8,
		FarTerm:       0.2,
		ContiguousCap: 20,
	}
}
