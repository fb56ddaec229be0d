package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbasket/backend/config"
	"github.com/greenbasket/backend/internal/domain"
	"github.com/greenbasket/backend/internal/infrastructure/cache"
	"github.com/greenbasket/backend/internal/usecase"
)

// stubCatalog is a canned catalog client for handler tests.
type stubCatalog struct {
	products []domain.Product
	err      error
	calls    int
}

func (s *stubCatalog) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.products, nil
}

func (s *stubCatalog) GetProductByCode(ctx context.Context, code string) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.products) == 0 {
		return nil, domain.ErrProductNotFound
	}
	return &s.products[0], nil
}

func newTestRouter(catalog domain.CatalogClient) *gin.Engine {
	gin.SetMode(gin.TestMode)

	scoring := usecase.NewScoringService()
	optimizer := usecase.NewOptimizerService(usecase.OptimizerConfig{})
	substitution := usecase.NewSubstitutionService(scoring, usecase.SubstitutionConfig{})
	lists := usecase.NewListService(scoring, substitution, usecase.ListServiceConfig{})

	handler := NewHandler(scoring, optimizer, substitution, lists, catalog, cache.NewMemoryCache())

	cfg := &config.Config{}
	cfg.Server.Environment = "test"
	cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}

	return SetupRouter(cfg, handler)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(&stubCatalog{})

	w := doJSON(t, router, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "greenbasket-backend", body["service"])
}

func TestScoreProducts(t *testing.T) {
	router := newTestRouter(&stubCatalog{})

	t.Run("scores a batch", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/score", gin.H{
			"products": []gin.H{
				{"id": "1", "name": "Organic Apples", "price": 3.5, "ecoGrade": "a"},
				{"id": "2", "name": "Instant Noodles", "price": 1.2, "ecoGrade": "e"},
			},
		})

		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Products []domain.Product `json:"products"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Products, 2)
		for _, p := range body.Products {
			require.NotNil(t, p.Score, "product %s must be scored", p.ID)
			assert.GreaterOrEqual(t, p.Score.Total, 0.0)
			assert.LessOrEqual(t, p.Score.Total, 1.0)
		}
		assert.Greater(t, body.Products[0].Score.Total, body.Products[1].Score.Total)
	})

	t.Run("empty product list is a bad request", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/score", gin.H{"products": []gin.H{}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/score", bytes.NewReader([]byte("{not json")))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOptimizeBudget(t *testing.T) {
	router := newTestRouter(&stubCatalog{})

	t.Run("selects within budget", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/optimize", gin.H{
			"products": []gin.H{
				{"id": "1", "name": "Milk", "price": 2.5},
				{"id": "2", "name": "Bread", "price": 1.8},
				{"id": "3", "name": "Cheese", "price": 9.0},
			},
			"maxBudget": 5,
		})

		require.Equal(t, http.StatusOK, w.Code)

		var result domain.OptimizationResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.LessOrEqual(t, result.TotalCost, 5.0)
		assert.NotEmpty(t, result.Selected)
		assert.NotEmpty(t, result.Strategy)
	})

	t.Run("negative budget is a bad request", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/optimize", gin.H{
			"products":  []gin.H{{"id": "1", "name": "Milk", "price": 2.5}},
			"maxBudget": -5,
		})

		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeBody(t, w)
		assert.Contains(t, body["error"], "budget")
	})
}

func TestFindSubstitutesEndpoint(t *testing.T) {
	router := newTestRouter(&stubCatalog{})

	t.Run("returns ranked substitutes", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/substitutes", gin.H{
			"product": gin.H{"id": "orig", "name": "Plain Milk", "category": "milk", "price": 2.0, "ecoGrade": "e"},
			"candidates": []gin.H{
				{"id": "better", "name": "Organic Milk", "category": "milk", "price": 2.2, "ecoGrade": "a", "labelTags": []string{"organic"}},
			},
		})

		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Substitutes []domain.SubstituteCandidate `json:"substitutes"`
			Message     string                       `json:"message"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Substitutes, 1)
		assert.Equal(t, "better", body.Substitutes[0].Product.ID)
		assert.NotEmpty(t, body.Substitutes[0].RecommendationType)
		assert.Empty(t, body.Message)
	})

	t.Run("no survivors is an empty 200, not an error", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/substitutes", gin.H{
			"product":    gin.H{"id": "orig", "name": "Plain Milk", "category": "milk", "price": 2.0},
			"candidates": []gin.H{{"id": "soap", "name": "Dish Soap", "category": "household", "price": 2.0}},
		})

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "no suitable substitutes found", body["message"])
		assert.Empty(t, body["substitutes"])
	})
}

func TestFindBestSubstituteEndpoint(t *testing.T) {
	router := newTestRouter(&stubCatalog{})

	t.Run("returns the single best candidate", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/substitutes/best", gin.H{
			"product": gin.H{"id": "orig", "name": "Plain Milk", "category": "milk", "price": 2.0, "ecoGrade": "e"},
			"candidates": []gin.H{
				{"id": "better", "name": "Organic Milk", "category": "milk", "price": 2.2, "ecoGrade": "a", "labelTags": []string{"organic"}},
			},
		})

		require.Equal(t, http.StatusOK, w.Code)

		var best domain.SubstituteCandidate
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &best))
		assert.Equal(t, "better", best.Product.ID)
	})

	t.Run("nothing suitable is a 404", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/substitutes/best", gin.H{
			"product":    gin.H{"id": "orig", "name": "Plain Milk", "category": "milk", "price": 2.0},
			"candidates": []gin.H{},
		})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestOptimizeListEndpoint(t *testing.T) {
	router := newTestRouter(&stubCatalog{})

	w := doJSON(t, router, http.MethodPost, "/api/v1/lists/optimize", gin.H{
		"items": []gin.H{
			{"id": "1", "name": "Plain Milk Drink", "category": "milk", "price": 2.0, "ecoGrade": "e"},
			{"id": "2", "name": "White Bread", "category": "bread", "price": 1.5},
		},
		"candidatePool": []gin.H{
			{"id": "sub", "name": "Organic Milk Drink", "category": "milk", "price": 2.1, "ecoGrade": "a", "labelTags": []string{"organic"}},
		},
		"maxBudget": 10,
	})

	require.Equal(t, http.StatusOK, w.Code)

	var result domain.ListOptimizationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Items, 2)
	assert.True(t, result.Items[0].Substituted, "milk item should be swapped for the greener option")
	assert.False(t, result.Items[1].Substituted)
	assert.LessOrEqual(t, result.TotalCost, 10.0)
}

func TestSearchProductsEndpoint(t *testing.T) {
	t.Run("missing query is a bad request", func(t *testing.T) {
		router := newTestRouter(&stubCatalog{})
		w := doJSON(t, router, http.MethodGet, "/api/v1/products/search", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("first hit goes to the catalog, second to the cache", func(t *testing.T) {
		stub := &stubCatalog{products: []domain.Product{
			{ID: "3850001", Code: "3850001", Name: "Zagorsko mlijeko", EcoGrade: "b"},
		}}
		router := newTestRouter(stub)

		first := doJSON(t, router, http.MethodGet, "/api/v1/products/search?q=mlijeko", nil)
		require.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, "catalog", decodeBody(t, first)["source"])

		second := doJSON(t, router, http.MethodGet, "/api/v1/products/search?q=MLIJEKO", nil)
		require.Equal(t, http.StatusOK, second.Code)
		assert.Equal(t, "cache", decodeBody(t, second)["source"])

		assert.Equal(t, 1, stub.calls, "cache hit must not reach the catalog")

		var body struct {
			Products []domain.Product `json:"products"`
		}
		require.NoError(t, json.Unmarshal(second.Body.Bytes(), &body))
		require.Len(t, body.Products, 1)
		assert.NotNil(t, body.Products[0].Score, "cached results are stored scored")
	})

	t.Run("unknown product is a 404", func(t *testing.T) {
		router := newTestRouter(&stubCatalog{err: domain.ErrProductNotFound})
		w := doJSON(t, router, http.MethodGet, "/api/v1/products/search?q=xyzzy", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("catalog outage is a bad gateway", func(t *testing.T) {
		router := newTestRouter(&stubCatalog{err: domain.ErrCatalogAPIFailure})
		w := doJSON(t, router, http.MethodGet, "/api/v1/products/search?q=mlijeko", nil)
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}
