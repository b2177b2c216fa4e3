package models

// Complexity levels describe the length of the input, not the strategy.
const (
	ComplexityLow    = "low"
	ComplexityMedium = "medium"
	ComplexityHigh   = "high"
)

// ScoreResult is the heuristic fit of one strategy to one input.
type ScoreResult struct {
	// Suitability is in [0, 100].
	Suitability int `json:"suitability"`
	// Complexity is the numeric band (30, 50 or 80) of ComplexityLevel.
	Complexity      int      `json:"complexity"`
	ComplexityLevel string   `json:"complexity_level"`
	Strengths       []string `json:"strengths"`
}

// CandidateScore is a scored entry in a comparison.
type CandidateScore struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	// Rank is 1 for the recommendation; ties keep evaluation order.
	Rank int `json:"rank"`
	ScoreResult
}

// ComparisonResult ranks a set of candidate strategies for an input.
// Candidates keep evaluation order. When no candidate survives filtering,
// HasRecommendation is false and Recommendation is empty.
type ComparisonResult struct {
	Input             string           `json:"input_prompt"`
	Candidates        []CandidateScore `json:"comparisons"`
	Recommendation    string           `json:"recommendation"`
	HasRecommendation bool             `json:"has_recommendation"`
	Reasoning         string           `json:"reasoning"`
}

// Winner returns the recommended candidate, if any.
func (c *ComparisonResult) Winner() (CandidateScore, bool) {
	if !c.HasRecommendation {
		return CandidateScore{}, false
	}
	for _, cand := range c.Candidates {
		if cand.Key == c.Recommendation {
			return cand, true
		}
	}
	return CandidateScore{}, false
}
