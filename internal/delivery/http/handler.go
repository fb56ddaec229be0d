package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/greenbasket/backend/internal/domain"
	"github.com/greenbasket/backend/internal/usecase"
)

// catalogCacheTTL bounds how long catalog search results are reused.
const catalogCacheTTL = 24 * time.Hour

// Handler holds dependencies for HTTP handlers
type Handler struct {
	scoring      *usecase.ScoringService
	optimizer    *usecase.OptimizerService
	substitution *usecase.SubstitutionService
	lists        *usecase.ListService
	catalog      domain.CatalogClient
	cache        domain.ProductCache
}

// NewHandler creates a new HTTP handler with its usecase dependencies
func NewHandler(
	scoring *usecase.ScoringService,
	optimizer *usecase.OptimizerService,
	substitution *usecase.SubstitutionService,
	lists *usecase.ListService,
	catalog domain.CatalogClient,
	cache domain.ProductCache,
) *Handler {
	return &Handler{
		scoring:      scoring,
		optimizer:    optimizer,
		substitution: substitution,
		lists:        lists,
		catalog:      catalog,
		cache:        cache,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "greenbasket-backend",
		"version": "1.0.0",
	})
}

// ScoreRequest carries products to score with optional custom weights
type ScoreRequest struct {
	Products []domain.Product     `json:"products" binding:"required,min=1"`
	Weights  *domain.ScoreWeights `json:"weights,omitempty"`
}

// ScoreProducts scores a batch of products
func (h *Handler) ScoreProducts(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidRequest.Error()})
		return
	}

	weights := domain.ScoreWeights{}
	if req.Weights != nil {
		weights = *req.Weights
	}

	c.JSON(http.StatusOK, gin.H{
		"products": h.scoring.ScoreAll(req.Products, weights),
	})
}

// OptimizeRequest carries an optimization call
type OptimizeRequest struct {
	Products  []domain.Product       `json:"products" binding:"required"`
	MaxBudget float64                `json:"maxBudget"`
	Options   domain.OptimizeOptions `json:"options"`
}

// OptimizeBudget selects products within a budget
func (h *Handler) OptimizeBudget(c *gin.Context) {
	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidRequest.Error()})
		return
	}

	scored := h.scoring.ScoreAll(req.Products, domain.ScoreWeights{})

	result, err := h.optimizer.Optimize(scored, req.MaxBudget, req.Options)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidBudget) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// SubstitutesRequest carries a substitute search
type SubstitutesRequest struct {
	Product    domain.Product               `json:"product" binding:"required"`
	Candidates []domain.Product             `json:"candidates" binding:"required"`
	Criteria   domain.SubstitutionCriteria  `json:"criteria"`
	Weights    domain.BestSubstituteWeights `json:"weights"`
}

// FindSubstitutes returns ranked substitutes for a product. No survivors is
// a well-formed empty result, not an error.
func (h *Handler) FindSubstitutes(c *gin.Context) {
	var req SubstitutesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidRequest.Error()})
		return
	}

	substitutes := h.substitution.FindSubstitutes(req.Product, req.Candidates, req.Criteria)

	message := ""
	if len(substitutes) == 0 {
		message = "no suitable substitutes found"
		substitutes = []domain.SubstituteCandidate{}
	}

	c.JSON(http.StatusOK, gin.H{
		"substitutes": substitutes,
		"message":     message,
	})
}

// FindBestSubstitute returns the single best substitute or 404
func (h *Handler) FindBestSubstitute(c *gin.Context) {
	var req SubstitutesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidRequest.Error()})
		return
	}

	best := h.substitution.FindBestSubstitute(req.Product, req.Candidates, req.Weights)
	if best == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrNoSubstitutesFound.Error()})
		return
	}

	c.JSON(http.StatusOK, best)
}

// OptimizeListRequest carries a whole-list optimization call
type OptimizeListRequest struct {
	Items         []domain.Product `json:"items" binding:"required,min=1"`
	CandidatePool []domain.Product `json:"candidatePool"`
	MaxBudget     float64          `json:"maxBudget"`
}

// OptimizeList runs substitution and swap-or-keep over a shopping list
func (h *Handler) OptimizeList(c *gin.Context) {
	var req OptimizeListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidRequest.Error()})
		return
	}

	result, err := h.lists.OptimizeList(c.Request.Context(), req.Items, req.CandidatePool, req.MaxBudget)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidBudget) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// SearchProducts proxies a catalog search, cached and scored
func (h *Handler) SearchProducts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	cacheKey := "catalog:" + strings.ToLower(query)

	if cached, err := h.cache.Get(c.Request.Context(), cacheKey); err == nil {
		c.JSON(http.StatusOK, gin.H{"products": cached, "source": "cache"})
		return
	}

	products, err := h.catalog.SearchProducts(c.Request.Context(), query)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": domain.ErrCatalogAPIFailure.Error()})
		return
	}

	scored := h.scoring.ScoreAll(products, domain.ScoreWeights{})

	// Best effort: a failed cache write never fails the request
	_ = h.cache.Set(c.Request.Context(), cacheKey, scored, catalogCacheTTL)

	c.JSON(http.StatusOK, gin.H{"products": scored, "source": "catalog"})
}
