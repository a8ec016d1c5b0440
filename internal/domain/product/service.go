package product

import (
	"context"
	"errors"

	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/infrastructure/cache"
	"github.com/example/storefront/internal/infrastructure/store"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Service lists the catalog, reading through an optional cache
type Service struct {
	store  store.ProductStore
	cache  cache.ProductCache
	logger *zap.Logger
	sfg    singleflight.Group
}

// NewService creates a new product service; c may be nil
func NewService(ps store.ProductStore, c cache.ProductCache, logger *zap.Logger) *Service {
	return &Service{store: ps, cache: c, logger: logger.Named("product")}
}

// List returns every product ordered by id
func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	if s.cache == nil {
		return s.load(ctx)
	}

	v, err, _ := s.sfg.Do("products", func() (any, error) {
		products, err := s.cache.GetProducts(ctx)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("product cache read failed", zap.Error(err))
		}

		products, err = s.load(ctx)
		if err != nil {
			return nil, err
		}

		if err := s.cache.SetProducts(ctx, products); err != nil {
			s.logger.Warn("product cache write failed", zap.Error(err))
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Product), nil
}

// Invalidate drops the cached listing so the next List reads Postgres
func (s *Service) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.InvalidateProducts(ctx)
}

func (s *Service) load(ctx context.Context) ([]domain.Product, error) {
	products, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}
