// Package ranking scores candidate games against a search context and orders them.
package ranking

// Weights are the composite blend coefficients. They need not sum to one; the
// composite is normalized by their sum.
type Weights struct {
	Relevance  float64
	Legitimacy float64
	Canonical  float64
	Quality    float64
	Popularity float64
	Recency    float64
}

// DefaultWeights returns the production blend.
func DefaultWeights() Weights {
	return Weights{
		Relevance:  0.30,
		Legitimacy: 0.25,
		Canonical:  0.15,
		Quality:    0.20,
		Popularity: 0.06,
		Recency:    0.04,
	}
}

func (w Weights) sum() float64 {
	return w.Relevance + w.Legitimacy + w.Canonical + w.Quality + w.Popularity + w.Recency
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
