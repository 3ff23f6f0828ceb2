package core

// ScorerWeights holds the per-signal weights of the productivity score.
// They are tunable via configuration; the defaults are the calibrated
// values the service ships with.
type ScorerWeights struct {
	BusinessRelevance float64
	Urgency           float64
	ActionRequest     float64
	Sentiment         float64
}

// DefaultWeights returns the shipped weighting constants
func DefaultWeights() ScorerWeights {
	return ScorerWeights{
		BusinessRelevance: 0.4,
		Urgency:           0.3,
		ActionRequest:     0.2,
		Sentiment:         0.1,
	}
}

// DefaultThreshold is the productivity score at or above which an email
// is considered productive.
const DefaultThreshold = 0.6

// Scorer turns a feature vector into a category and confidence. It is a
// pure deterministic function of its inputs.
type Scorer struct {
	weights   ScorerWeights
	threshold float64
}

// NewScorer creates a scorer with the given weights and decision threshold
func NewScorer(weights ScorerWeights, threshold float64) *Scorer {
	return &Scorer{weights: weights, threshold: threshold}
}

// Score computes the weighted productivity score, clipped to [0,1]
func (s *Scorer) Score(fv FeatureVector) float64 {
	score := s.weights.BusinessRelevance*fv.BusinessRelevance +
		s.weights.Urgency*fv.Urgency +
		s.weights.ActionRequest*fv.ActionRequest +
		s.weights.Sentiment*fv.Sentiment
	return clip01(score)
}

// Classify decides the category and its confidence. A score exactly at
// the threshold is productive. Confidence is the distance from the side
// that was not chosen: the score itself when productive, 1-score when
// unproductive, so it always lands in [0,1].
func (s *Scorer) Classify(fv FeatureVector) (Category, float64) {
	score := s.Score(fv)
	if score >= s.threshold {
		return CategoryProductive, score
	}
	return CategoryUnproductive, 1 - score
}

// Threshold exposes the configured decision boundary
func (s *Scorer) Threshold() float64 {
	return s.threshold
}
