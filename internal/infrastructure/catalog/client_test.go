package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/greenbasket/backend/internal/domain"
)

func TestNewClient_RateLimit(t *testing.T) {
	t.Run("zero selects the default rate", func(t *testing.T) {
		client := NewClient("https://catalog.example.com", "GreenBasket-Test/1.0", 0)
		assert.Equal(t, rate.Limit(100.0/60.0), client.rateLimiter.Limit())
		assert.Equal(t, requestBurst, client.rateLimiter.Burst())
	})

	t.Run("configured rate is applied", func(t *testing.T) {
		client := NewClient("https://catalog.example.com", "GreenBasket-Test/1.0", 600)
		assert.Equal(t, rate.Limit(10), client.rateLimiter.Limit())
	})
}

const searchPayload = `{
	"count": 2,
	"page": 1,
	"page_size": 20,
	"products": [
		{
			"code": "3850001",
			"product_name": "Zagorsko mlijeko",
			"brands": "Vindija",
			"categories": "Dairy, Milk",
			"categories_tags": ["en:dairies", "en:milks"],
			"labels_tags": ["en:organic"],
			"ecoscore_grade": "b",
			"nutriscore_grade": "a",
			"origins": "Hrvatska",
			"nutriments": {"carbon-footprint_100g": 1.2}
		},
		{
			"code": "3850002",
			"product_name": "Zobeno piće",
			"ecoscore_grade": "unknown"
		}
	]
}`

func TestSearchProducts(t *testing.T) {
	var gotQuery, gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cgi/search.pl", r.URL.Path)
		gotQuery = r.URL.Query().Get("search_terms")
		gotUserAgent = r.Header.Get("User-Agent")
		w.Write([]byte(searchPayload))
	}))
	defer server.Close()

	client := NewClient(server.URL, "GreenBasket-Test/1.0", 0)

	products, err := client.SearchProducts(context.Background(), "mlijeko")
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "mlijeko", gotQuery)
	assert.Equal(t, "GreenBasket-Test/1.0", gotUserAgent)

	first := products[0]
	assert.Equal(t, "3850001", first.ID)
	assert.Equal(t, "3850001", first.Code)
	assert.Equal(t, "Zagorsko mlijeko", first.Name)
	assert.Equal(t, "Vindija", first.Brand)
	assert.Equal(t, "Dairy, Milk", first.Category)
	assert.Equal(t, []string{"en:dairies", "en:milks"}, first.CategoryTags)
	assert.Equal(t, "b", first.EcoGrade)
	assert.Equal(t, "a", first.NutritionGrade)
	assert.Equal(t, "Hrvatska", first.Origin)
	require.NotNil(t, first.CarbonFootprint)
	assert.Equal(t, 1.2, *first.CarbonFootprint)
	assert.Nil(t, first.Price, "catalog results carry no pricing")

	// Unknown grade is dropped so the scorer uses its neutral default
	assert.Equal(t, "", products[1].EcoGrade)
}

func TestSearchProducts_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "GreenBasket-Test/1.0", 0)

	_, err := client.SearchProducts(context.Background(), "nepostojeci")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestSearchProducts_EmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count": 0, "products": []}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "GreenBasket-Test/1.0", 0)

	_, err := client.SearchProducts(context.Background(), "xyzzy")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestSearchProducts_RetriesTransientErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(searchPayload))
	}))
	defer server.Close()

	client := NewClient(server.URL, "GreenBasket-Test/1.0", 0)

	products, err := client.SearchProducts(context.Background(), "mlijeko")
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, 3, attempts)
}

func TestSearchProducts_GivesUpAfterRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, "GreenBasket-Test/1.0", 0)

	_, err := client.SearchProducts(context.Background(), "mlijeko")
	assert.ErrorIs(t, err, domain.ErrCatalogAPIFailure)
	assert.Equal(t, 3, attempts)
}

func TestGetProductByCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/product/3850001.json", r.URL.Path)
		w.Write([]byte(`{
			"status": 1,
			"code": "3850001",
			"product": {
				"code": "3850001",
				"product_name": "Zagorsko mlijeko",
				"ecoscore_grade": "B",
				"additives_tags": ["en:e330", "en:e410"]
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "GreenBasket-Test/1.0", 0)

	product, err := client.GetProductByCode(context.Background(), "3850001")
	require.NoError(t, err)
	assert.Equal(t, "Zagorsko mlijeko", product.Name)
	assert.Equal(t, "b", product.EcoGrade)
	assert.Equal(t, []string{"e330", "e410"}, product.Additives)
}

func TestGetProductByCode_StatusZero(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": 0, "code": "0000000"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "GreenBasket-Test/1.0", 0)

	_, err := client.GetProductByCode(context.Background(), "0000000")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestGetProductByCode_HTTPNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "GreenBasket-Test/1.0", 0)

	_, err := client.GetProductByCode(context.Background(), "404404")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
