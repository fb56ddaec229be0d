package usecase

import (
	"math"
	"strings"

	"github.com/greenbasket/backend/internal/domain"
)

// Sub-score baselines and ceilings
const (
	neutralBase   = 0.5  // fallback when a field is missing
	priceCeiling  = 50.0 // price at or above this maps the economic base to 0
	carbonCeiling = 5.0  // kg CO2e considered the "bad" end of the scale
	ecoBlend      = 0.7  // eco-label share when blending with carbon
	carbonBlend   = 0.3
)

// Scoring bonuses and penalties
const (
	nutritionBonus    = 0.1  // nutrition grade A or B
	packagingBonus    = 0.1  // recyclable/biodegradable packaging
	localOriginBonus  = 0.05 // origin stated and not imported
	fairTradeBonus    = 0.3
	organicBonus      = 0.2
	rainforestBonus   = 0.1
	traceabilityBonus = 0.1 // any origin stated
	additivePenalty   = 0.1
	additiveThreshold = 5
)

// ecoGradeScores maps eco-label grades to their environmental base score.
var ecoGradeScores = map[string]float64{
	"a": 1.0, "b": 0.8, "c": 0.6, "d": 0.4, "e": 0.2,
}

// Marker tables carry both English and Croatian terms since catalog data
// mixes locales. All matching is case-insensitive substring.
var (
	recyclableMarkers = []string{"recycl", "biodegrad", "reciklir", "reciklaž", "biorazgrad", "kompostab"}
	importMarkers     = []string{"import", "uvoz"}
	fairTradeMarkers  = []string{"fair trade", "fairtrade", "fair-trade", "pravedna trgovina"}
	organicMarkers    = []string{"organic", "organsk", "bio", "eko"}
	rainforestMarkers = []string{"rainforest"}
)

// DefaultScoreWeights returns the standard weighting: economic 0.4,
// environmental 0.4, social 0.2.
func DefaultScoreWeights() domain.ScoreWeights {
	return domain.ScoreWeights{Economic: 0.4, Environmental: 0.4, Social: 0.2}
}

// ScoringService computes sustainability scores for products. It is
// stateless and safe for concurrent use.
type ScoringService struct{}

// NewScoringService creates a new scoring service
func NewScoringService() *ScoringService {
	return &ScoringService{}
}

// Score computes the composite sustainability score for a product. Missing
// fields degrade to neutral defaults; this never fails. Zero-value weights
// select the defaults, anything else is used as-is and echoed back.
func (s *ScoringService) Score(product domain.Product, weights domain.ScoreWeights) domain.SustainabilityScore {
	if weights.IsZero() {
		weights = DefaultScoreWeights()
	}

	economic := s.economicScore(product)
	environmental := s.environmentalScore(product)
	social := s.socialScore(product)

	total := economic*weights.Economic + environmental*weights.Environmental + social*weights.Social

	return domain.SustainabilityScore{
		Total: round2(clamp01(total)),
		Breakdown: domain.ScoreBreakdown{
			Economic:      round2(economic),
			Environmental: round2(environmental),
			Social:        round2(social),
		},
		Weights: weights,
	}
}

// ScoreAll scores every product and returns annotated copies in input order.
// The input slice is not mutated.
func (s *ScoringService) ScoreAll(products []domain.Product, weights domain.ScoreWeights) []domain.Product {
	scored := make([]domain.Product, len(products))
	for i, p := range products {
		score := s.Score(p, weights)
		p.Score = &score
		scored[i] = p
	}
	return scored
}

// economicScore rewards affordability and decent nutrition.
func (s *ScoringService) economicScore(p domain.Product) float64 {
	score := neutralBase
	if p.Price != nil {
		score = 1 - math.Min(*p.Price/priceCeiling, 1)
	}

	grade := strings.ToLower(strings.TrimSpace(p.NutritionGrade))
	if grade == "a" || grade == "b" {
		score += nutritionBonus
	}

	return clamp01(score)
}

// environmentalScore starts from the eco-label grade, blends in the carbon
// footprint when estimated, and rewards packaging and local origin.
func (s *ScoringService) environmentalScore(p domain.Product) float64 {
	score := neutralBase
	if base, ok := ecoGradeScores[strings.ToLower(strings.TrimSpace(p.EcoGrade))]; ok {
		score = base
	}

	if p.CarbonFootprint != nil {
		carbonScore := math.Max(0, 1-*p.CarbonFootprint/carbonCeiling)
		score = score*ecoBlend + carbonScore*carbonBlend
	}

	if containsAnyMarker(p.Packaging, recyclableMarkers) {
		score += packagingBonus
	}

	if p.Origin != "" && !containsAnyMarker(p.Origin, importMarkers) {
		score += localOriginBonus
	}

	return clamp01(score)
}

// socialScore rewards certification labels, traceability, and few additives.
func (s *ScoringService) socialScore(p domain.Product) float64 {
	score := neutralBase
	labels := p.LabelText()

	if containsAnyMarker(labels, fairTradeMarkers) {
		score += fairTradeBonus
	}
	if containsAnyMarker(labels, organicMarkers) {
		score += organicBonus
	}
	if containsAnyMarker(labels, rainforestMarkers) {
		score += rainforestBonus
	}

	if p.Origin != "" {
		score += traceabilityBonus
	}

	if len(p.Additives) > additiveThreshold {
		score -= additivePenalty
	}

	return clamp01(score)
}

// containsAnyMarker checks text against a marker list, case-insensitive.
func containsAnyMarker(text string, markers []string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// clamp01 clamps a value to [0,1]
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// round2 rounds to 2 decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
