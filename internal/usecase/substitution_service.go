package usecase

import (
	"log"
	"strings"

	"github.com/greenbasket/backend/internal/domain"
)

// Substitution defaults applied when criteria fields are omitted.
const (
	defaultMinScoreImprovement = 0.1
	defaultMaxPriceIncrease    = 0.2 // 20%
	defaultMaxResults          = 5
)

// Adaptive score-tolerance constants. Relevance outweighs a small score
// regression: a candidate in the same category may score slightly below the
// original and still pass. Empirically tuned, kept as-is.
const (
	relaxedImprovementFactor = 0.2  // share of minScoreImprovement required with any relevance
	sharedCategoryTolerance  = 0.05 // max regression with a category-level signal
	namePrefixTolerance      = 0.03 // max regression with only a name-prefix signal
)

// backfillTolerance bounds how far below the original a balanced backfill
// candidate may score.
const backfillTolerance = 0.02

// dimensionTieMargin is the per-dimension margin within which two candidates
// are considered tied and the cheaper one wins.
const dimensionTieMargin = 0.05

// recommendationLabels maps recommendation types to user-facing labels.
var recommendationLabels = map[string]string{
	domain.RecommendationEconomic:      "More affordable choice",
	domain.RecommendationEnvironmental: "Greener choice",
	domain.RecommendationSocial:        "Fairer choice",
	domain.RecommendationBalanced:      "Balanced alternative",
}

// Animal-derived ingredient keywords for the vegan filter, English and
// Croatian. Checked against the ingredient text by substring.
var animalIngredientKeywords = []string{
	"milk", "cream", "butter", "cheese", "egg", "honey", "gelatin", "meat",
	"chicken", "beef", "pork", "fish", "lard", "whey", "casein",
	"mlijeko", "vrhnje", "maslac", "sir", "jaj", "med", "želatina", "meso",
	"piletina", "govedina", "svinjetina", "riba", "sirutka",
}

// Gluten-bearing ingredient keywords for the gluten-free filter.
var glutenIngredientKeywords = []string{
	"wheat", "barley", "rye", "oat", "malt", "spelt", "gluten",
	"pšenica", "psenica", "ječam", "jecam", "raž", "zob", "slad", "pir",
}

var (
	veganLabelMarkers      = []string{"vegan", "vegansk"}
	glutenFreeLabelMarkers = []string{"gluten-free", "gluten free", "bez glutena"}
)

// SubstitutionConfig holds configuration for the substitution service
type SubstitutionConfig struct {
	MinScoreImprovement float64
	MaxPriceIncrease    float64
	MaxResults          int
	EnableDebugLogging  bool
}

// SubstitutionService finds same-purpose alternatives for a product with
// equal-or-better sustainability within a bounded price increase.
type SubstitutionService struct {
	scoring             *ScoringService
	minScoreImprovement float64
	maxPriceIncrease    float64
	maxResults          int
	enableDebugLogging  bool
}

// NewSubstitutionService creates a new substitution service with the given
// configuration, falling back to defaults for unset values.
func NewSubstitutionService(scoring *ScoringService, config SubstitutionConfig) *SubstitutionService {
	minImprovement := config.MinScoreImprovement
	if minImprovement <= 0 {
		minImprovement = defaultMinScoreImprovement
	}
	maxIncrease := config.MaxPriceIncrease
	if maxIncrease <= 0 {
		maxIncrease = defaultMaxPriceIncrease
	}
	maxResults := config.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	return &SubstitutionService{
		scoring:             scoring,
		minScoreImprovement: minImprovement,
		maxPriceIncrease:    maxIncrease,
		maxResults:          maxResults,
		enableDebugLogging:  config.EnableDebugLogging,
	}
}

// resolvedCriteria is a SubstitutionCriteria with defaults applied.
type resolvedCriteria struct {
	minScoreImprovement float64
	sameCategory        bool
	maxPriceIncrease    float64
	maxResults          int
	dietary             *domain.DietaryRestrictions
}

func (s *SubstitutionService) resolve(criteria domain.SubstitutionCriteria) resolvedCriteria {
	r := resolvedCriteria{
		minScoreImprovement: s.minScoreImprovement,
		sameCategory:        true,
		maxPriceIncrease:    s.maxPriceIncrease,
		maxResults:          s.maxResults,
		dietary:             criteria.DietaryRestrictions,
	}
	if criteria.MinScoreImprovement != nil {
		r.minScoreImprovement = *criteria.MinScoreImprovement
	}
	if criteria.SameCategory != nil {
		r.sameCategory = *criteria.SameCategory
	}
	if criteria.MaxPriceIncrease != nil {
		r.maxPriceIncrease = *criteria.MaxPriceIncrease
	}
	if criteria.MaxResults > 0 {
		r.maxResults = criteria.MaxResults
	}
	return r
}

// FindSubstitutes returns up to maxResults ranked substitute candidates for
// a product from the candidate pool. An empty result means no candidate
// survived the filters; it is never an error.
func (s *SubstitutionService) FindSubstitutes(product domain.Product, pool []domain.Product, criteria domain.SubstitutionCriteria) []domain.SubstituteCandidate {
	c := s.resolve(criteria)
	product = s.ensureScored(product)

	if s.enableDebugLogging {
		log.Printf("[SUBST] Searching substitutes for %q (score %.2f) among %d candidates",
			product.Name, product.Score.Total, len(pool))
	}

	var survivors []domain.Product
	for _, candidate := range pool {
		candidate = s.ensureScored(candidate)
		if s.passesFilters(product, candidate, c) {
			survivors = append(survivors, candidate)
		}
	}

	if len(survivors) == 0 {
		if s.enableDebugLogging {
			log.Printf("[SUBST] No substitutes survived filtering for %q", product.Name)
		}
		return nil
	}

	return s.assembleResults(product, survivors, c)
}

// passesFilters applies the six-stage rejection pipeline in order.
func (s *SubstitutionService) passesFilters(product, candidate domain.Product, c resolvedCriteria) bool {
	// 1. Identity exclusion: id, catalog code, or name.
	if sameIdentity(product, candidate) {
		return false
	}

	match := compareCategories(product, candidate)

	// 2. Category relevance: permissive, a single weak signal suffices.
	if c.sameCategory && match.strength == noMatch {
		return false
	}

	// 3. Incompatible category families are vetoed regardless of score.
	if categoriesIncompatible(product, candidate) {
		if s.enableDebugLogging {
			log.Printf("[SUBST] Vetoed %q for %q: incompatible categories", candidate.Name, product.Name)
		}
		return false
	}

	// 4. Score-improvement threshold, adaptive by relevance strength.
	if !s.passesScoreThreshold(product, candidate, match, c) {
		return false
	}

	// 5. Price ceiling, only when currencies are confirmed to match.
	if !s.passesPriceCeiling(product, candidate, c) {
		return false
	}

	// 6. Optional dietary filters.
	if c.dietary != nil {
		if c.dietary.Vegan && !isVeganSafe(candidate) {
			return false
		}
		if c.dietary.GlutenFree && !isGlutenFreeSafe(candidate) {
			return false
		}
	}

	return true
}

// passesScoreThreshold compares candidate and original scores. With any
// shared relevance signal the improvement requirement drops to a fifth of
// minScoreImprovement (the category bonus counts toward it) and a small raw
// regression is tolerated; without one the full improvement is required.
func (s *SubstitutionService) passesScoreThreshold(product, candidate domain.Product, match categoryMatch, c resolvedCriteria) bool {
	original := product.Score.Total
	raw := candidate.Score.Total
	adjusted := raw + match.bonus()

	switch match.strength {
	case strongMatch:
		return adjusted >= original+relaxedImprovementFactor*c.minScoreImprovement &&
			raw >= original-sharedCategoryTolerance
	case weakMatch:
		return adjusted >= original+relaxedImprovementFactor*c.minScoreImprovement &&
			raw >= original-namePrefixTolerance
	default:
		return raw >= original+c.minScoreImprovement
	}
}

// passesPriceCeiling rejects candidates costing more than the allowed
// increase over the original. A currency mismatch is a data-quality issue,
// not a rejection reason: logged and skipped.
func (s *SubstitutionService) passesPriceCeiling(product, candidate domain.Product, c resolvedCriteria) bool {
	if product.Price == nil || candidate.Price == nil {
		return true
	}
	if product.Currency != "" && candidate.Currency != "" && product.Currency != candidate.Currency {
		log.Printf("[SUBST] Currency mismatch for %q (%s) vs %q (%s), skipping price check",
			product.Name, product.Currency, candidate.Name, candidate.Currency)
		return true
	}
	return *candidate.Price <= *product.Price*(1+c.maxPriceIncrease)
}

// assembleResults picks the best candidate per dimension, dedupes, and
// backfills with balanced alternatives up to maxResults.
func (s *SubstitutionService) assembleResults(product domain.Product, survivors []domain.Product, c resolvedCriteria) []domain.SubstituteCandidate {
	if len(survivors) == 1 {
		only := survivors[0]
		return []domain.SubstituteCandidate{s.annotate(product, only, dominantDimension(only))}
	}

	originalTotal := product.Score.Total

	picks := make([]domain.SubstituteCandidate, 0, c.maxResults)
	pickedIDs := make(map[string]bool)

	for _, dim := range []string{
		domain.RecommendationEconomic,
		domain.RecommendationEnvironmental,
		domain.RecommendationSocial,
	} {
		best := bestForDimension(survivors, originalTotal, dim)
		if best == nil || pickedIDs[best.ID] {
			continue
		}
		pickedIDs[best.ID] = true
		picks = append(picks, s.annotate(product, *best, dim))
	}

	// Backfill with balanced alternatives close to the original's score,
	// those meeting-or-exceeding it first.
	if len(picks) < c.maxResults {
		var backfill []domain.Product
		for _, cand := range survivors {
			if pickedIDs[cand.ID] {
				continue
			}
			if cand.Score.Total >= originalTotal-backfillTolerance {
				backfill = append(backfill, cand)
			}
		}
		sortBackfill(backfill, originalTotal)

		for _, cand := range backfill {
			if len(picks) >= c.maxResults {
				break
			}
			pickedIDs[cand.ID] = true
			picks = append(picks, s.annotate(product, cand, domain.RecommendationBalanced))
		}
	}

	if len(picks) > c.maxResults {
		picks = picks[:c.maxResults]
	}
	return picks
}

// bestForDimension scans for the best candidate along one breakdown
// dimension. Candidates whose total meets the original's are preferred over
// any that don't; within a tier a higher dimension score wins, with
// near-ties (within the margin) broken by lower price.
func bestForDimension(survivors []domain.Product, originalTotal float64, dim string) *domain.Product {
	var best *domain.Product
	for i := range survivors {
		cand := &survivors[i]
		if best == nil {
			best = cand
			continue
		}
		if betterForDimension(cand, best, originalTotal, dim) {
			best = cand
		}
	}
	return best
}

func betterForDimension(cand, best *domain.Product, originalTotal float64, dim string) bool {
	candMeets := cand.Score.Total >= originalTotal
	bestMeets := best.Score.Total >= originalTotal
	if candMeets != bestMeets {
		return candMeets
	}

	diff := dimensionScore(cand, dim) - dimensionScore(best, dim)
	if diff > dimensionTieMargin {
		return true
	}
	if diff < -dimensionTieMargin {
		return false
	}
	return cand.PriceOrZero() < best.PriceOrZero()
}

func dimensionScore(p *domain.Product, dim string) float64 {
	switch dim {
	case domain.RecommendationEconomic:
		return p.Score.Breakdown.Economic
	case domain.RecommendationEnvironmental:
		return p.Score.Breakdown.Environmental
	default:
		return p.Score.Breakdown.Social
	}
}

// dominantDimension labels a lone survivor by its strongest breakdown axis.
func dominantDimension(p domain.Product) string {
	b := p.Score.Breakdown
	switch {
	case b.Economic >= b.Environmental && b.Economic >= b.Social:
		return domain.RecommendationEconomic
	case b.Environmental >= b.Social:
		return domain.RecommendationEnvironmental
	default:
		return domain.RecommendationSocial
	}
}

// sortBackfill orders backfill candidates: those meeting-or-exceeding the
// original total first, then by total descending. Insertion sort keeps the
// original pool order stable among equals; backfill sets are small.
func sortBackfill(candidates []domain.Product, originalTotal float64) {
	less := func(a, b domain.Product) bool {
		aMeets := a.Score.Total >= originalTotal
		bMeets := b.Score.Total >= originalTotal
		if aMeets != bMeets {
			return aMeets
		}
		return a.Score.Total > b.Score.Total
	}
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && less(candidates[j], candidates[j-1]); j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}
}

// annotate builds a SubstituteCandidate with per-dimension improvements.
func (s *SubstitutionService) annotate(product, candidate domain.Product, recommendationType string) domain.SubstituteCandidate {
	origBreakdown := product.Score.Breakdown
	candBreakdown := candidate.Score.Breakdown

	return domain.SubstituteCandidate{
		Product:                  candidate,
		EconomicImprovement:      round2(candBreakdown.Economic - origBreakdown.Economic),
		EnvironmentalImprovement: round2(candBreakdown.Environmental - origBreakdown.Environmental),
		SocialImprovement:        round2(candBreakdown.Social - origBreakdown.Social),
		PriceDifference:          round2(candidate.PriceOrZero() - product.PriceOrZero()),
		RecommendationType:       recommendationType,
		RecommendationLabel:      recommendationLabels[recommendationType],
	}
}

// Relaxed search parameters for FindBestSubstitute.
const (
	bestSearchMinImprovement = 0.05
	bestSearchMaxResults     = 10
)

// FindBestSubstitute runs a relaxed substitute search and picks the single
// candidate with the highest weighted composite of score improvement,
// inverted price ratio, and carbon improvement (centered at 0.5). Returns
// nil when nothing survives.
func (s *SubstitutionService) FindBestSubstitute(product domain.Product, pool []domain.Product, weights domain.BestSubstituteWeights) *domain.SubstituteCandidate {
	if weights.IsZero() {
		weights = domain.BestSubstituteWeights{Score: 0.5, Price: 0.3, Carbon: 0.2}
	}

	minImprovement := bestSearchMinImprovement
	sameCategory := false
	candidates := s.FindSubstitutes(product, pool, domain.SubstitutionCriteria{
		MinScoreImprovement: &minImprovement,
		SameCategory:        &sameCategory,
		MaxResults:          bestSearchMaxResults,
	})
	if len(candidates) == 0 {
		return nil
	}

	product = s.ensureScored(product)

	var best *domain.SubstituteCandidate
	bestComposite := -1.0
	for i := range candidates {
		composite := s.compositeScore(product, &candidates[i], weights)
		if composite > bestComposite {
			bestComposite = composite
			best = &candidates[i]
		}
	}

	if s.enableDebugLogging && best != nil {
		log.Printf("[SUBST] Best substitute for %q: %q (composite %.3f)",
			product.Name, best.Product.Name, bestComposite)
	}
	return best
}

// compositeScore blends three [0,1] terms: score improvement and carbon
// improvement both centered at 0.5 (no change scores 0.5), and the price
// term as the inverted price ratio.
func (s *SubstitutionService) compositeScore(product domain.Product, candidate *domain.SubstituteCandidate, w domain.BestSubstituteWeights) float64 {
	scoreTerm := clamp01(0.5 + (candidate.Product.Score.Total - product.Score.Total))

	priceTerm := 0.5
	if product.Price != nil && *product.Price > 0 && candidate.Product.Price != nil {
		priceTerm = clamp01(1 - *candidate.Product.Price / *product.Price)
	}

	carbonTerm := 0.5
	if product.CarbonFootprint != nil && candidate.Product.CarbonFootprint != nil {
		carbonTerm = clamp01(0.5 + (*product.CarbonFootprint-*candidate.Product.CarbonFootprint)/(2*carbonCeiling))
	}

	return w.Score*scoreTerm + w.Price*priceTerm + w.Carbon*carbonTerm
}

// ensureScored computes a score with default weights when one is missing.
func (s *SubstitutionService) ensureScored(p domain.Product) domain.Product {
	if p.Score == nil {
		score := s.scoring.Score(p, domain.ScoreWeights{})
		p.Score = &score
	}
	return p
}

// sameIdentity checks id, external catalog code, and trimmed
// case-insensitive name equality.
func sameIdentity(a, b domain.Product) bool {
	if a.ID != "" && a.ID == b.ID {
		return true
	}
	if a.Code != "" && a.Code == b.Code {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(a.Name), strings.TrimSpace(b.Name))
}

// isVeganSafe accepts explicitly vegan-labeled products, otherwise requires
// the ingredient text to be free of animal-derived keywords.
func isVeganSafe(p domain.Product) bool {
	if containsAnyMarker(p.LabelText(), veganLabelMarkers) {
		return true
	}
	return !containsAnyMarker(p.IngredientsText, animalIngredientKeywords)
}

// isGlutenFreeSafe accepts explicitly gluten-free-labeled products,
// otherwise requires ingredients free of gluten-bearing keywords.
func isGlutenFreeSafe(p domain.Product) bool {
	if containsAnyMarker(p.LabelText(), glutenFreeLabelMarkers) {
		return true
	}
	return !containsAnyMarker(p.IngredientsText, glutenIngredientKeywords)
}
