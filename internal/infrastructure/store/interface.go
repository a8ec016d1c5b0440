package store

import (
	"context"
	"time"

	"github.com/example/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// CartStore persists server carts keyed by (user, product)
type CartStore interface {
	Add(ctx context.Context, userID, productID int64) (int, error)
	Decrement(ctx context.Context, userID, productID int64) (domain.DecrementResult, error)
	Remove(ctx context.Context, userID, productID int64) error
	Clear(ctx context.Context, userID int64) error
	Get(ctx context.Context, userID int64) ([]domain.CartLine, error)
}

// OrderTx is the set of statements available while placing an order
type OrderTx interface {
	ProductPrices(ctx context.Context, productIDs []int64) (map[int64]decimal.Decimal, error)
	// InsertOrder fills ID, CreatedAt and DeliveryDate (CreatedAt + deliveryDelay)
	InsertOrder(ctx context.Context, order *domain.Order, deliveryDelay time.Duration) error
	InsertItems(ctx context.Context, orderID int64, items []domain.OrderItem) error
	ClearCart(ctx context.Context, userID int64) error
	CountSince(ctx context.Context, userID int64, since time.Time) (int, error)
	LoadItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
}

// OrderStore persists orders
type OrderStore interface {
	// InTx runs fn in one transaction, rolled back when fn returns an error
	InTx(ctx context.Context, fn func(tx OrderTx) error) error
	ListSince(ctx context.Context, userID int64, since time.Time) ([]domain.Order, error)
}

// UserStore persists registered users
type UserStore interface {
	Create(ctx context.Context, phone, passwordHash string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
}

// FavoriteStore persists favorite products per user
type FavoriteStore interface {
	Toggle(ctx context.Context, userID, productID int64) (added bool, err error)
	List(ctx context.Context, userID int64) ([]int64, error)
}

// ProductStore reads the catalog
type ProductStore interface {
	List(ctx context.Context) ([]domain.Product, error)
}
