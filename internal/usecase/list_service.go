package usecase

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/greenbasket/backend/internal/domain"
)

// defaultMaxConcurrentSearches bounds the substitution fan-out per list.
const defaultMaxConcurrentSearches = 4

// ListServiceConfig holds configuration for the list optimization service
type ListServiceConfig struct {
	MaxConcurrentSearches int
	EnableDebugLogging    bool
}

// ListService orchestrates whole-list optimization: one substitution search
// per item, then a sequential swap-or-keep pass against the running budget.
type ListService struct {
	scoring               *ScoringService
	substitution          *SubstitutionService
	maxConcurrentSearches int
	enableDebugLogging    bool
}

// NewListService creates a new list optimization service with dependencies
func NewListService(scoring *ScoringService, substitution *SubstitutionService, config ListServiceConfig) *ListService {
	maxConcurrent := config.MaxConcurrentSearches
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrentSearches
	}

	return &ListService{
		scoring:               scoring,
		substitution:          substitution,
		maxConcurrentSearches: maxConcurrent,
		enableDebugLogging:    config.EnableDebugLogging,
	}
}

// OptimizeList searches a substitute for every list item concurrently (the
// searches are independent), then walks the list in order applying a
// swap-or-keep decision per item. The budget counter is read and written
// sequentially: each acceptance changes the remaining budget consumed by
// later decisions, so that pass is not parallelized.
func (s *ListService) OptimizeList(ctx context.Context, items []domain.Product, pool []domain.Product, maxBudget float64) (*domain.ListOptimizationResult, error) {
	if math.IsNaN(maxBudget) || math.IsInf(maxBudget, 0) || maxBudget < 0 {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidBudget, maxBudget)
	}

	scoredItems := s.scoring.ScoreAll(items, domain.ScoreWeights{})
	scoredPool := s.scoring.ScoreAll(pool, domain.ScoreWeights{})

	substitutes := s.searchSubstitutes(ctx, scoredItems, scoredPool)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &domain.ListOptimizationResult{
		Items: make([]domain.ListDecision, 0, len(scoredItems)),
	}

	remaining := maxBudget
	swapped := 0
	var totalCost, totalScore, totalCarbon float64
	for i, item := range scoredItems {
		decision := domain.ListDecision{Original: item}

		chosen := item
		if sub := substitutes[i]; sub != nil && s.shouldSwap(item, sub, remaining) {
			chosen = sub.Product
			decision.Substituted = true
			swapped++
		}

		if cost := chosen.Cost(); cost <= remaining {
			remaining -= cost
			chosenCopy := chosen
			decision.Chosen = &chosenCopy
			totalCost += cost
			totalScore += chosen.Score.Total
			totalCarbon += chosen.CarbonOrZero()
		} else {
			decision.Dropped = true
			decision.Substituted = false
		}

		result.Items = append(result.Items, decision)
	}

	var originalCost, originalCarbon float64
	for _, item := range scoredItems {
		originalCost += item.Cost()
		originalCarbon += item.CarbonOrZero()
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
	result.Message = fmt.Sprintf("optimized %d items, %d substituted", len(result.Items), swapped)

	if s.enableDebugLogging {
		log.Printf("[LIST] budget=%.2f items=%d swapped=%d cost=%.2f", maxBudget, len(items), swapped, result.TotalCost)
	}

	return result, nil
}

// searchSubstitutes fans out one best-substitute search per item, bounded by
// maxConcurrentSearches, and fans results back in at the item's index.
func (s *ListService) searchSubstitutes(ctx context.Context, items []domain.Product, pool []domain.Product) []*domain.SubstituteCandidate {
	substitutes := make([]*domain.SubstituteCandidate, len(items))

	sem := make(chan struct{}, s.maxConcurrentSearches)
	var wg sync.WaitGroup
	for i := range items {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			substitutes[idx] = s.substitution.FindBestSubstitute(items[idx], pool, domain.BestSubstituteWeights{})
		}(i)
	}
	wg.Wait()

	return substitutes
}

// shouldSwap keeps the original unless the substitute fits the remaining
// budget and is at least as sustainable, or strictly cheaper at equal score.
func (s *ListService) shouldSwap(item domain.Product, sub *domain.SubstituteCandidate, remaining float64) bool {
	if sub.Product.Cost() > remaining {
		return false
	}
	if sub.Product.Score.Total > item.Score.Total {
		return true
	}
	return sub.Product.Score.Total == item.Score.Total && sub.Product.Cost() < item.Cost()
}
