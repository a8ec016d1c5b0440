package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/storefront/internal/domain"
)

// CartCall records parameters passed to a cart mutation
type CartCall struct {
	Op        string
	UserID    int64
	ProductID int64
}

// MockCartStore is a mock implementation of CartStore for testing.
// Lines keep the order in which they were first added.
type MockCartStore struct {
	Catalog *Catalog

	mu    sync.Mutex
	lines map[int64][]cartRow

	Calls []CartCall
	Err   error
	// AddErrFor fails Add for specific products
	AddErrFor map[int64]error
}

type cartRow struct {
	productID int64
	quantity  int
}

// NewMockCartStore creates an empty cart store backed by catalog
func NewMockCartStore(catalog *Catalog) *MockCartStore {
	return &MockCartStore{
		Catalog: catalog,
		lines:   make(map[int64][]cartRow),
		Calls:   make([]CartCall, 0),
	}
}

func (m *MockCartStore) record(op string, userID, productID int64) error {
	m.Calls = append(m.Calls, CartCall{Op: op, UserID: userID, ProductID: productID})
	return m.Err
}

// Add increments or inserts a line
func (m *MockCartStore) Add(ctx context.Context, userID, productID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("add", userID, productID); err != nil {
		return 0, err
	}
	if err := m.AddErrFor[productID]; err != nil {
		return 0, err
	}
	if _, ok := m.Catalog.Get(productID); !ok {
		return 0, fmt.Errorf("%w: product %d", domain.ErrNotFound, productID)
	}

	rows := m.lines[userID]
	for i := range rows {
		if rows[i].productID == productID {
			rows[i].quantity++
			return rows[i].quantity, nil
		}
	}
	m.lines[userID] = append(rows, cartRow{productID: productID, quantity: 1})
	return 1, nil
}

// Decrement removes one unit, deleting the line at zero
func (m *MockCartStore) Decrement(ctx context.Context, userID, productID int64) (domain.DecrementResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("decrement", userID, productID); err != nil {
		return domain.DecrementResult{}, err
	}

	rows := m.lines[userID]
	for i := range rows {
		if rows[i].productID != productID {
			continue
		}
		if rows[i].quantity <= 1 {
			m.lines[userID] = append(rows[:i:i], rows[i+1:]...)
			return domain.DecrementResult{Removed: true}, nil
		}
		rows[i].quantity--
		return domain.DecrementResult{NewQuantity: rows[i].quantity}, nil
	}
	return domain.DecrementResult{}, fmt.Errorf("%w: cart line not found", domain.ErrNotFound)
}

// Remove deletes a line if present
func (m *MockCartStore) Remove(ctx context.Context, userID, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("remove", userID, productID); err != nil {
		return err
	}

	rows := m.lines[userID]
	for i := range rows {
		if rows[i].productID == productID {
			m.lines[userID] = append(rows[:i:i], rows[i+1:]...)
			break
		}
	}
	return nil
}

// Clear deletes every line of the user
func (m *MockCartStore) Clear(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("clear", userID, 0); err != nil {
		return err
	}
	delete(m.lines, userID)
	return nil
}

// Get returns the user's lines joined with the catalog
func (m *MockCartStore) Get(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	out := make([]domain.CartLine, 0, len(m.lines[userID]))
	for _, row := range m.lines[userID] {
		p, _ := m.Catalog.Get(row.productID)
		out = append(out, domain.CartLine{
			ProductID: row.productID,
			Title:     p.Title,
			Price:     p.Price,
			ImageURL:  p.ImageURL,
			Quantity:  row.quantity,
		})
	}
	return out, nil
}

// SetLine seeds a line directly for testing
func (m *MockCartStore) SetLine(userID, productID int64, quantity int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.lines[userID]
	for i := range rows {
		if rows[i].productID == productID {
			rows[i].quantity = quantity
			return
		}
	}
	m.lines[userID] = append(rows, cartRow{productID: productID, quantity: quantity})
}

// Quantities returns productID -> quantity for the user
func (m *MockCartStore) Quantities(userID int64) map[int64]int {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[int64]int)
	for _, row := range m.lines[userID] {
		out[row.productID] = row.quantity
	}
	return out
}

// CallCount returns how many calls of op were recorded
func (m *MockCartStore) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range m.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}
