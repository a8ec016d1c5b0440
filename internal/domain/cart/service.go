package cart

import (
	"context"
	"fmt"

	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/infrastructure/store"
	"go.uber.org/zap"
)

// ErrInvalidProduct is returned for non-positive product ids
var ErrInvalidProduct = fmt.Errorf("%w: product id must be a positive integer", domain.ErrValidation)

// Service exposes the server cart mutations of an authenticated user
type Service struct {
	store  store.CartStore
	logger *zap.Logger
}

// NewService creates a new cart service
func NewService(cs store.CartStore, logger *zap.Logger) *Service {
	return &Service{store: cs, logger: logger.Named("cart")}
}

// Add increments the line by one, creating it with quantity 1 when absent
func (s *Service) Add(ctx context.Context, userID, productID int64) (int, error) {
	if productID <= 0 {
		return 0, ErrInvalidProduct
	}

	qty, err := s.store.Add(ctx, userID, productID)
	if err != nil {
		return 0, err
	}

	s.logger.Debug("item added", zap.Int64("user_id", userID), zap.Int64("product_id", productID), zap.Int("quantity", qty))
	return qty, nil
}

// Decrement removes one unit; the line is deleted when it reaches zero
func (s *Service) Decrement(ctx context.Context, userID, productID int64) (domain.DecrementResult, error) {
	if productID <= 0 {
		return domain.DecrementResult{}, ErrInvalidProduct
	}

	res, err := s.store.Decrement(ctx, userID, productID)
	if err != nil {
		return domain.DecrementResult{}, err
	}

	s.logger.Debug("item decremented",
		zap.Int64("user_id", userID),
		zap.Int64("product_id", productID),
		zap.Bool("removed", res.Removed),
		zap.Int("quantity", res.NewQuantity),
	)
	return res, nil
}

// Remove deletes the line regardless of quantity
func (s *Service) Remove(ctx context.Context, userID, productID int64) error {
	if productID <= 0 {
		return ErrInvalidProduct
	}
	return s.store.Remove(ctx, userID, productID)
}

// Clear deletes every line of the user's cart
func (s *Service) Clear(ctx context.Context, userID int64) error {
	return s.store.Clear(ctx, userID)
}

// Get returns the cart lines in the order they were first added
func (s *Service) Get(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	lines, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return lines, nil
}
