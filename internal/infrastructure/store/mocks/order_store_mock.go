package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/shopspring/decimal"
)

// MockOrderStore is a mock implementation of OrderStore for testing.
// Writes made inside InTx become visible only when fn succeeds.
type MockOrderStore struct {
	Catalog *Catalog
	Carts   *MockCartStore

	mu     sync.Mutex
	orders []domain.Order
	nextID int64
	now    func() time.Time

	InsertOrderErr error
	InsertItemsErr error
	ClearCartErr   error
	ListErr        error

	Commits   int
	Rollbacks int
}

// NewMockOrderStore creates an order store; carts may be nil
func NewMockOrderStore(catalog *Catalog, carts *MockCartStore) *MockOrderStore {
	return &MockOrderStore{Catalog: catalog, Carts: carts, nextID: 1, now: time.Now}
}

// SetClock overrides the time stamped on inserted orders
func (m *MockOrderStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

type mockOrderTx struct {
	m          *MockOrderStore
	order      *domain.Order
	items      []domain.OrderItem
	clearCarts []int64
}

// InTx runs fn against a pending transaction that is applied on success
func (m *MockOrderStore) InTx(ctx context.Context, fn func(tx store.OrderTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &mockOrderTx{m: m}
	if err := fn(tx); err != nil {
		m.Rollbacks++
		return err
	}

	if tx.order != nil {
		o := *tx.order
		o.Items, _ = tx.LoadItems(ctx, o.ID)
		m.orders = append(m.orders, o)
		m.nextID++
	}
	if m.Carts != nil {
		for _, userID := range tx.clearCarts {
			_ = m.Carts.Clear(ctx, userID)
		}
	}
	m.Commits++
	return nil
}

func (tx *mockOrderTx) ProductPrices(ctx context.Context, productIDs []int64) (map[int64]decimal.Decimal, error) {
	out := make(map[int64]decimal.Decimal)
	for _, id := range productIDs {
		if p, ok := tx.m.Catalog.Get(id); ok {
			out[id] = p.Price
		}
	}
	return out, nil
}

func (tx *mockOrderTx) InsertOrder(ctx context.Context, order *domain.Order, deliveryDelay time.Duration) error {
	if tx.m.InsertOrderErr != nil {
		return tx.m.InsertOrderErr
	}
	order.ID = tx.m.nextID
	order.CreatedAt = tx.m.now()
	order.DeliveryDate = order.CreatedAt.Add(deliveryDelay)
	copied := *order
	tx.order = &copied
	return nil
}

func (tx *mockOrderTx) InsertItems(ctx context.Context, orderID int64, items []domain.OrderItem) error {
	if tx.m.InsertItemsErr != nil {
		return tx.m.InsertItemsErr
	}
	tx.items = append(tx.items, items...)
	return nil
}

func (tx *mockOrderTx) ClearCart(ctx context.Context, userID int64) error {
	if tx.m.ClearCartErr != nil {
		return tx.m.ClearCartErr
	}
	tx.clearCarts = append(tx.clearCarts, userID)
	return nil
}

func (tx *mockOrderTx) CountSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	n := 0
	for _, o := range tx.m.orders {
		if o.UserID == userID && o.CreatedAt.After(since) {
			n++
		}
	}
	if tx.order != nil && tx.order.UserID == userID && tx.order.CreatedAt.After(since) {
		n++
	}
	return n, nil
}

func (tx *mockOrderTx) LoadItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	out := make([]domain.OrderItem, 0, len(tx.items))
	for _, it := range tx.items {
		if p, ok := tx.m.Catalog.Get(it.ProductID); ok {
			it.Title = p.Title
			it.ImageURL = p.ImageURL
		}
		out = append(out, it)
	}
	return out, nil
}

// ListSince returns the user's orders created after since, newest first
func (m *MockOrderStore) ListSince(ctx context.Context, userID int64, since time.Time) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListErr != nil {
		return nil, m.ListErr
	}

	var visible []domain.Order
	for _, o := range m.orders {
		if o.UserID == userID && o.CreatedAt.After(since) {
			visible = append(visible, o)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool { return visible[i].CreatedAt.Before(visible[j].CreatedAt) })
	for i := range visible {
		visible[i].Number = i + 1
	}

	out := make([]domain.Order, 0, len(visible))
	for i := len(visible) - 1; i >= 0; i-- {
		out = append(out, visible[i])
	}
	return out, nil
}

// Orders returns every committed order
func (m *MockOrderStore) Orders() []domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Order{}, m.orders...)
}
