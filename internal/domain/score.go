package domain

// ScoreWeights controls the contribution of each sub-score to the total.
// The engine does not validate that the components sum to 1.0; callers that
// pass custom weights own that invariant. Weights are echoed back unchanged
// on every score result for auditability.
type ScoreWeights struct {
	Economic      float64 `json:"economic"`
	Environmental float64 `json:"environmental"`
	Social        float64 `json:"social"`
}

// IsZero reports whether no weights were supplied.
func (w ScoreWeights) IsZero() bool {
	return w.Economic == 0 && w.Environmental == 0 && w.Social == 0
}

// ScoreBreakdown holds the three sub-scores, each in [0,1].
type ScoreBreakdown struct {
	Economic      float64 `json:"economic"`
	Environmental float64 `json:"environmental"`
	Social        float64 `json:"social"`
}

// SustainabilityScore is the composite [0,1] score for a product.
// Derived on demand, never persisted.
type SustainabilityScore struct {
	Total     float64        `json:"total"`
	Breakdown ScoreBreakdown `json:"breakdown"`
	Weights   ScoreWeights   `json:"weights"`
}
