package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/storefront/internal/domain"
)

// MockFavoriteStore is a mock implementation of FavoriteStore for testing
type MockFavoriteStore struct {
	Catalog *Catalog

	mu        sync.Mutex
	favorites map[int64][]int64
	Err       error
}

// NewMockFavoriteStore creates an empty favorites store backed by catalog
func NewMockFavoriteStore(catalog *Catalog) *MockFavoriteStore {
	return &MockFavoriteStore{Catalog: catalog, favorites: make(map[int64][]int64)}
}

// Toggle removes the favorite when present, adds it otherwise
func (m *MockFavoriteStore) Toggle(ctx context.Context, userID, productID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return false, m.Err
	}

	ids := m.favorites[userID]
	for i, id := range ids {
		if id == productID {
			m.favorites[userID] = append(ids[:i:i], ids[i+1:]...)
			return false, nil
		}
	}
	if _, ok := m.Catalog.Get(productID); !ok {
		return false, fmt.Errorf("%w: product %d", domain.ErrNotFound, productID)
	}
	m.favorites[userID] = append(ids, productID)
	return true, nil
}

// List returns favorite product ids in insertion order
func (m *MockFavoriteStore) List(ctx context.Context, userID int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return append([]int64{}, m.favorites[userID]...), nil
}
