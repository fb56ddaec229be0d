package domain

import (
	"context"
	"time"
)

// ProductCache defines the interface for caching catalog lookups.
type ProductCache interface {
	Get(ctx context.Context, key string) ([]Product, error)
	Set(ctx context.Context, key string, products []Product, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CatalogClient defines the interface for the external product catalog.
// Results come back unpriced; pricing is a separate collaborator.
type CatalogClient interface {
	SearchProducts(ctx context.Context, query string) ([]Product, error)
	GetProductByCode(ctx context.Context, code string) (*Product, error)
}
