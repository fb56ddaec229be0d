package domain

// Recommendation types for substitute candidates. At most one candidate per
// type appears in a result set, except balanced which fills remaining slots.
const (
	RecommendationEconomic      = "economic"
	RecommendationEnvironmental = "environmental"
	RecommendationSocial        = "social"
	RecommendationBalanced      = "balanced"
)

// DietaryRestrictions optionally narrows substitution candidates.
type DietaryRestrictions struct {
	Vegan      bool `json:"vegan"`
	GlutenFree bool `json:"glutenFree"`
}

// SubstitutionCriteria tunes a substitute search. Omitted fields fall back
// to the service defaults (minScoreImprovement 0.1, sameCategory true,
// maxPriceIncrease 0.2, maxResults 5).
type SubstitutionCriteria struct {
	MinScoreImprovement *float64             `json:"minScoreImprovement,omitempty"`
	SameCategory        *bool                `json:"sameCategory,omitempty"`
	MaxPriceIncrease    *float64             `json:"maxPriceIncrease,omitempty"`
	MaxResults          int                  `json:"maxResults,omitempty"`
	DietaryRestrictions *DietaryRestrictions `json:"dietaryRestrictions,omitempty"`
}

// SubstituteCandidate is a product recommended as a replacement, annotated
// with its per-dimension improvements over the original.
type SubstituteCandidate struct {
	Product                  Product `json:"product"`
	EconomicImprovement      float64 `json:"economicImprovement"`
	EnvironmentalImprovement float64 `json:"environmentalImprovement"`
	SocialImprovement        float64 `json:"socialImprovement"`
	PriceDifference          float64 `json:"priceDifference"`
	RecommendationType       string  `json:"recommendationType"`
	RecommendationLabel      string  `json:"recommendationLabel"`
}

// BestSubstituteWeights controls the composite used by the single-best
// substitute search. The zero value selects score 0.5, price 0.3, carbon 0.2.
type BestSubstituteWeights struct {
	Score  float64 `json:"score"`
	Price  float64 `json:"price"`
	Carbon float64 `json:"carbon"`
}

// IsZero reports whether no weights were supplied.
func (w BestSubstituteWeights) IsZero() bool {
	return w.Score == 0 && w.Price == 0 && w.Carbon == 0
}
