package usecase

import (
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/greenbasket/backend/internal/domain"
)

// defaultDPItemThreshold bounds the exact knapsack: above this item count the
// O(n*budgetCents) table gets expensive, so the optimizer falls back to the
// greedy strategy. A performance guard, not a correctness requirement.
const defaultDPItemThreshold = 20

// noValidProductsMessage is emitted when nothing survives the eligibility
// filter. This is a well-formed empty result, not an error.
const noValidProductsMessage = "no valid products to optimize"

// OptimizerConfig holds configuration for the budget optimizer
type OptimizerConfig struct {
	DPItemThreshold    int
	EnableDebugLogging bool
}

// OptimizerService selects the subset of products that maximizes aggregate
// sustainability score within a budget. Stateless, safe for concurrent use.
type OptimizerService struct {
	dpItemThreshold    int
	enableDebugLogging bool
}

// NewOptimizerService creates a new optimizer with the given configuration
func NewOptimizerService(config OptimizerConfig) *OptimizerService {
	threshold := config.DPItemThreshold
	if threshold <= 0 {
		threshold = defaultDPItemThreshold
	}

	return &OptimizerService{
		dpItemThreshold:    threshold,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Optimize selects products within maxBudget. With sustainability
// prioritized (the default) it runs the greedy score-per-cost strategy;
// otherwise it runs the exact 0/1 knapsack, guarded by the item threshold.
// The input slice is never mutated.
func (s *OptimizerService) Optimize(products []domain.Product, maxBudget float64, opts domain.OptimizeOptions) (*domain.OptimizationResult, error) {
	if math.IsNaN(maxBudget) || math.IsInf(maxBudget, 0) || maxBudget < 0 {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidBudget, maxBudget)
	}

	eligible := eligibleProducts(products)
	if len(eligible) == 0 {
		result := s.buildResult(nil, products, maxBudget)
		result.Message = noValidProductsMessage
		return result, nil
	}

	var selected []domain.Product
	strategy := domain.StrategyGreedy

	switch {
	case opts.SustainabilityFirst():
		selected = s.optimizeGreedy(eligible, maxBudget, opts.MinScore)
	case len(eligible) <= s.dpItemThreshold:
		strategy = domain.StrategyDP
		selected = s.optimizeDP(eligible, maxBudget, opts.MinScore)
	default:
		if s.enableDebugLogging {
			log.Printf("[OPTIMIZE] %d items exceed DP threshold %d, using greedy", len(eligible), s.dpItemThreshold)
		}
		selected = s.optimizeGreedy(eligible, maxBudget, opts.MinScore)
	}

	result := s.buildResult(selected, products, maxBudget)
	result.Strategy = strategy
	result.Message = fmt.Sprintf("selected %d of %d products using %s strategy", len(selected), len(products), strategy)

	if s.enableDebugLogging {
		log.Printf("[OPTIMIZE] budget=%.2f strategy=%s selected=%d cost=%.2f score=%.2f",
			maxBudget, strategy, len(result.Selected), result.TotalCost, result.TotalScore)
	}

	return result, nil
}

// eligibleProducts keeps items with a positive price and a computed score.
// Everything else is silently excluded, per the total-function contract.
func eligibleProducts(products []domain.Product) []domain.Product {
	var eligible []domain.Product
	for _, p := range products {
		if _, ok := p.ScoreTotal(); ok && p.HasPrice() {
			eligible = append(eligible, p)
		}
	}
	return eligible
}

// optimizeGreedy sorts by score-per-currency-unit descending (stable, so
// input order breaks ties) and accepts items while they fit the remaining
// budget. O(n log n), deterministic, not optimal.
func (s *OptimizerService) optimizeGreedy(eligible []domain.Product, maxBudget, minScore float64) []domain.Product {
	ranked := make([]domain.Product, len(eligible))
	copy(ranked, eligible)

	sort.SliceStable(ranked, func(i, j int) bool {
		ri := ranked[i].Score.Total / *ranked[i].Price
		rj := ranked[j].Score.Total / *ranked[j].Price
		return ri > rj
	})

	var selected []domain.Product
	remaining := maxBudget
	for _, p := range ranked {
		if p.Score.Total < minScore {
			continue
		}
		if cost := p.Cost(); cost <= remaining {
			selected = append(selected, p)
			remaining -= cost
		}
	}
	return selected
}

// optimizeDP runs the exact 0/1 knapsack over a budget axis discretized to
// integer cents via floor truncation. Items near cent boundaries can land in
// adjacent buckets; that approximation is accepted rather than corrected.
func (s *OptimizerService) optimizeDP(eligible []domain.Product, maxBudget, minScore float64) []domain.Product {
	var items []domain.Product
	for _, p := range eligible {
		if p.Score.Total >= minScore {
			items = append(items, p)
		}
	}
	if len(items) == 0 {
		return nil
	}

	budgetCents := int(math.Floor(maxBudget * 100))
	costs := make([]int, len(items))
	for i, p := range items {
		costs[i] = int(math.Floor(p.Cost() * 100))
	}

	n := len(items)
	dp := make([][]float64, n+1)
	take := make([][]bool, n+1)
	for i := 0; i <= n; i++ {
		dp[i] = make([]float64, budgetCents+1)
		take[i] = make([]bool, budgetCents+1)
	}

	for i := 1; i <= n; i++ {
		score := items[i-1].Score.Total
		cost := costs[i-1]
		for w := 0; w <= budgetCents; w++ {
			dp[i][w] = dp[i-1][w]
			if cost <= w && dp[i-1][w-cost]+score > dp[i][w] {
				dp[i][w] = dp[i-1][w-cost] + score
				take[i][w] = true
			}
		}
	}

	// Walk the choice table backward to reconstruct the selection,
	// then restore input order.
	var picked []int
	w := budgetCents
	for i := n; i >= 1; i-- {
		if take[i][w] {
			picked = append(picked, i-1)
			w -= costs[i-1]
		}
	}

	selected := make([]domain.Product, 0, len(picked))
	for i := len(picked) - 1; i >= 0; i-- {
		selected = append(selected, items[picked[i]])
	}
	return selected
}

// buildResult assembles totals, savings against the unfiltered input list,
// and the budget-used ratio.
func (s *OptimizerService) buildResult(selected []domain.Product, original []domain.Product, maxBudget float64) *domain.OptimizationResult {
	result := &domain.OptimizationResult{
		Selected: make([]domain.SelectedItem, 0, len(selected)),
	}

	var totalCost, totalScore, totalCarbon float64
	for _, p := range selected {
		result.Selected = append(result.Selected, domain.SelectedItem{
			Product:  p,
			Quantity: p.QuantityOrOne(),
		})
		totalCost += p.Cost()
		totalScore += p.Score.Total
		totalCarbon += p.CarbonOrZero()
	}

	var originalCost, originalCarbon float64
	for _, p := range original {
		originalCost += p.Cost()
		originalCarbon += p.CarbonOrZero()
	}

	result.TotalCost = round2(totalCost)
	result.TotalScore = round2(totalScore)
	result.TotalCarbon = round2(totalCarbon)
	result.Savings = domain.Savings{
		Economic: round2(math.Max(0, originalCost-totalCost)),
		Carbon:   round2(math.Max(0, originalCarbon-totalCarbon)),
	}
	if originalCost > 0 {
		result.Savings.Percentage = round2((originalCost - totalCost) / originalCost * 100)
	}
	if maxBudget > 0 {
		result.BudgetUsed = round2(totalCost / maxBudget)
	}

	return result
}
