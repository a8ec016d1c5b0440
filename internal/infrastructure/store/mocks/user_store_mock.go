package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/storefront/internal/domain"
)

// MockUserStore is a mock implementation of UserStore for testing
type MockUserStore struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID int64

	CreateCalls int
	CreateErr   error
	GetErr      error
}

// NewMockUserStore creates an empty user store
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{users: make(map[string]*domain.User), nextID: 1}
}

// Create inserts a user, failing with ErrConflict on a duplicate phone
func (m *MockUserStore) Create(ctx context.Context, phone, passwordHash string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls++
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if _, ok := m.users[phone]; ok {
		return nil, fmt.Errorf("%w: phone already registered", domain.ErrConflict)
	}

	u := &domain.User{ID: m.nextID, Phone: phone, PasswordHash: passwordHash, CreatedAt: time.Now()}
	m.nextID++
	m.users[phone] = u

	copied := *u
	return &copied, nil
}

// GetByPhone returns a user or ErrNotFound
func (m *MockUserStore) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	u, ok := m.users[phone]
	if !ok {
		return nil, fmt.Errorf("%w: user", domain.ErrNotFound)
	}
	copied := *u
	return &copied, nil
}
