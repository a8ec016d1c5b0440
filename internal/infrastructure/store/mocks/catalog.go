package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/example/storefront/internal/domain"
)

// Catalog is an in-memory product table shared by the mock stores
type Catalog struct {
	mu       sync.RWMutex
	products map[int64]domain.Product
}

// NewCatalog creates a catalog holding the given products
func NewCatalog(products ...domain.Product) *Catalog {
	c := &Catalog{products: make(map[int64]domain.Product)}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

// Put inserts or replaces a product
func (c *Catalog) Put(p domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = p
}

// Get returns a product by id
func (c *Catalog) Get(id int64) (domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	return p, ok
}

// All returns every product ordered by id
func (c *Catalog) All() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MockProductStore is a mock implementation of ProductStore for testing
type MockProductStore struct {
	Catalog *Catalog

	mu        sync.Mutex
	ListCalls int
	ListErr   error
}

// NewMockProductStore creates a product store reading from catalog
func NewMockProductStore(catalog *Catalog) *MockProductStore {
	return &MockProductStore{Catalog: catalog}
}

// List returns the catalog ordered by id
func (m *MockProductStore) List(ctx context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	m.ListCalls++
	err := m.ListErr
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return m.Catalog.All(), nil
}

// Calls returns how many times List was invoked
func (m *MockProductStore) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ListCalls
}
