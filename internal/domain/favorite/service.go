package favorite

import (
	"context"
	"fmt"

	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/infrastructure/store"
)

const (
	ActionAdded   = "added"
	ActionRemoved = "removed"
)

var ErrInvalidProduct = fmt.Errorf("%w: product id must be a positive integer", domain.ErrValidation)

type Service struct {
	store store.FavoriteStore
}

func NewService(fs store.FavoriteStore) *Service {
	return &Service{store: fs}
}

// Toggle flips the favorite flag and reports the action taken
func (s *Service) Toggle(ctx context.Context, userID, productID int64) (string, error) {
	if productID <= 0 {
		return "", ErrInvalidProduct
	}

	added, err := s.store.Toggle(ctx, userID, productID)
	if err != nil {
		return "", err
	}
	if added {
		return ActionAdded, nil
	}
	return ActionRemoved, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]int64, error) {
	ids, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}
