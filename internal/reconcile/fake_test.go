package reconcile

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/example/storefront/internal/client"
	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/localcart"
	"github.com/shopspring/decimal"
)

var (
	lamp  = domain.Product{ID: 1, Title: "Lamp", Price: decimal.RequireFromString("1500.00")}
	chair = domain.Product{ID: 2, Title: "Chair", Price: decimal.RequireFromString("4200.50")}
	vase  = domain.Product{ID: 3, Title: "Vase", Price: decimal.RequireFromString("990.00")}
)

// fakeAPI is an in-memory storefront keyed by token
type fakeAPI struct {
	mu       sync.Mutex
	catalog  map[int64]domain.Product
	carts    map[string]*localcart.Cart
	revoked  map[string]bool
	calls    []string
	orders   []client.OrderInput
	cartErr  error
	addErr   map[int64]error
	orderErr error
	// onAdd runs before an Add is applied, outside the lock
	onAdd func(productID int64)
	// block makes Cart wait until the context is done
	block bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		catalog: map[int64]domain.Product{lamp.ID: lamp, chair.ID: chair, vase.ID: vase},
		carts:   make(map[string]*localcart.Cart),
		revoked: make(map[string]bool),
		addErr:  make(map[int64]error),
	}
}

func unauthorized() error {
	return &client.APIError{StatusCode: http.StatusUnauthorized, Message: "invalid token"}
}

func notFound() error {
	return &client.APIError{StatusCode: http.StatusNotFound, Message: "not found"}
}

func (f *fakeAPI) serverCart(token string) *localcart.Cart {
	c, ok := f.carts[token]
	if !ok {
		c = localcart.NewCart()
		f.carts[token] = c
	}
	return c
}

// seed puts quantity units of p in the server cart of token
func (f *fakeAPI) seed(token string, p domain.Product, quantity int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.serverCart(token).AddUnits(lineOf(p), quantity)
}

func (f *fakeAPI) serverQuantity(token string, productID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.serverCart(token).Quantity(productID)
}

func (f *fakeAPI) revoke(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[token] = true
}

func (f *fakeAPI) setCartErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cartErr = err
}

func (f *fakeAPI) setAddErr(productID int64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.addErr, productID)
		return
	}
	f.addErr[productID] = err
}

func (f *fakeAPI) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeAPI) resetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *fakeAPI) Cart(ctx context.Context, token string) ([]domain.CartLine, error) {
	f.mu.Lock()
	f.calls = append(f.calls, "cart")
	block := f.block
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.revoked[token] {
		return nil, unauthorized()
	}
	if f.cartErr != nil {
		return nil, f.cartErr
	}
	return f.serverCart(token).Clone().Items, nil
}

func (f *fakeAPI) AddToCart(ctx context.Context, token string, productID int64) (int, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fmt.Sprintf("add:%d", productID))
	hook := f.onAdd
	f.mu.Unlock()

	if hook != nil {
		hook(productID)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.revoked[token] {
		return 0, unauthorized()
	}
	if err := f.addErr[productID]; err != nil {
		return 0, err
	}
	p, ok := f.catalog[productID]
	if !ok {
		return 0, notFound()
	}
	return f.serverCart(token).Add(p), nil
}

func (f *fakeAPI) DecrementCartItem(ctx context.Context, token string, productID int64) (domain.DecrementResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("decrement:%d", productID))
	if f.revoked[token] {
		return domain.DecrementResult{}, unauthorized()
	}
	res, ok := f.serverCart(token).Decrement(productID)
	if !ok {
		return domain.DecrementResult{}, notFound()
	}
	return res, nil
}

func (f *fakeAPI) RemoveFromCart(ctx context.Context, token string, productID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("remove:%d", productID))
	if f.revoked[token] {
		return unauthorized()
	}
	f.serverCart(token).Remove(productID)
	return nil
}

func (f *fakeAPI) ClearCart(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "clear")
	if f.revoked[token] {
		return unauthorized()
	}
	f.serverCart(token).Clear()
	return nil
}

func (f *fakeAPI) PlaceOrder(ctx context.Context, token string, in client.OrderInput) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "order")
	if f.revoked[token] {
		return nil, unauthorized()
	}
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	f.orders = append(f.orders, in)
	f.serverCart(token).Clear()
	return &domain.Order{ID: int64(len(f.orders)), Number: len(f.orders), Total: in.Total}, nil
}

// fakeStorage wraps MemoryStorage with a failure switch and a write counter
type fakeStorage struct {
	*localcart.MemoryStorage

	mu         sync.Mutex
	saveErr    error
	cartWrites int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{MemoryStorage: localcart.NewMemoryStorage()}
}

func (s *fakeStorage) SaveCart(c *localcart.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.cartWrites++
	return s.MemoryStorage.SaveCart(c)
}

func (s *fakeStorage) failSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

func (s *fakeStorage) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartWrites
}
