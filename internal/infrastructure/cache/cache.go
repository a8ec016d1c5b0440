package cache

import (
	"context"
	"errors"

	"github.com/example/storefront/internal/domain"
)

// ProductCache stores the serialized catalog listing
type ProductCache interface {
	GetProducts(ctx context.Context) ([]domain.Product, error)
	SetProducts(ctx context.Context, products []domain.Product) error
	InvalidateProducts(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")
