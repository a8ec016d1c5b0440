// Package reconcile keeps the client cart consistent across login, logout,
// auto-save and shutdown.
//
// A Controller is an actor: one goroutine owns the session, the in-memory
// cart and the debounce timer, and runs commands in the order they were
// enqueued. While a session is present the server cart is authoritative;
// otherwise the guest cart in local storage is. Failures that would drop
// cart contents fall back to writing local storage.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/storefront/internal/client"
	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/localcart"
	"go.uber.org/zap"
)

const (
	DefaultDebounce    = time.Second
	DefaultSyncTimeout = 10 * time.Second
)

var (
	ErrClosed           = errors.New("cart controller closed")
	ErrNotAuthenticated = fmt.Errorf("%w: not logged in", domain.ErrUnauthorized)
	ErrNotInCart        = fmt.Errorf("%w: product is not in the cart", domain.ErrNotFound)
	ErrEmptyCart        = fmt.Errorf("%w: cart is empty", domain.ErrValidation)
)

// CartAPI is the part of the storefront API the controller drives
type CartAPI interface {
	Cart(ctx context.Context, token string) ([]domain.CartLine, error)
	AddToCart(ctx context.Context, token string, productID int64) (int, error)
	DecrementCartItem(ctx context.Context, token string, productID int64) (domain.DecrementResult, error)
	RemoveFromCart(ctx context.Context, token string, productID int64) error
	ClearCart(ctx context.Context, token string) error
	PlaceOrder(ctx context.Context, token string, in client.OrderInput) (*domain.Order, error)
}

// Config holds the controller dependencies
type Config struct {
	API         CartAPI
	Storage     localcart.Storage
	Debounce    time.Duration
	SyncTimeout time.Duration
	Logger      *zap.Logger
	Now         func() time.Time
}

// State is a copy of what the controller currently holds
type State struct {
	Authenticated bool
	Session       *localcart.Session
	Cart          *localcart.Cart
}

type command struct {
	ctx  context.Context
	run  func(ctx context.Context)
	done chan struct{}
}

// Controller serializes every cart-affecting operation of one client session
type Controller struct {
	api         CartAPI
	storage     localcart.Storage
	debounce    time.Duration
	syncTimeout time.Duration
	logger      *zap.Logger
	now         func() time.Time

	cmds      chan command
	quit      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	// owned by the actor goroutine
	session *localcart.Session
	cart    *localcart.Cart
	timer   *time.Timer
	gen     uint64
}

// New starts the controller goroutine; call Start to load stored state
func New(cfg Config) *Controller {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.SyncTimeout <= 0 {
		cfg.SyncTimeout = DefaultSyncTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	c := &Controller{
		api:         cfg.API,
		storage:     cfg.Storage,
		debounce:    cfg.Debounce,
		syncTimeout: cfg.SyncTimeout,
		logger:      cfg.Logger.Named("reconcile"),
		now:         cfg.Now,
		cmds:        make(chan command),
		quit:        make(chan struct{}),
		stopped:     make(chan struct{}),
		cart:        localcart.NewCart(),
	}
	go c.loop()
	return c
}

func (c *Controller) loop() {
	defer close(c.stopped)
	for {
		select {
		case cmd := <-c.cmds:
			cmd.run(cmd.ctx)
			if cmd.done != nil {
				close(cmd.done)
			}
		case <-c.quit:
			c.cancelDebounce()
			return
		}
	}
}

// exec runs fn on the actor goroutine and waits for it to finish
func (c *Controller) exec(ctx context.Context, fn func(ctx context.Context)) error {
	done := make(chan struct{})
	select {
	case c.cmds <- command{ctx: ctx, run: fn, done: done}:
	case <-c.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post enqueues fn without waiting; used by timers
func (c *Controller) post(fn func(ctx context.Context)) {
	select {
	case c.cmds <- command{ctx: context.Background(), run: fn}:
	case <-c.quit:
	}
}

// Start loads the stored session and cart. A live session is synced with the
// server and any pending guest cart is replayed onto it.
func (c *Controller) Start(ctx context.Context) (State, error) {
	var st State
	var err error
	if e := c.exec(ctx, func(ctx context.Context) {
		err = c.mount(ctx)
		st = c.state()
	}); e != nil {
		return State{}, e
	}
	return st, err
}

// Login installs a session and merges the guest cart into the server cart.
// A non-nil error with an authenticated State means the server could not be
// reached; the guest cart stays in storage for the next attempt.
func (c *Controller) Login(ctx context.Context, sess *localcart.Session) (State, error) {
	var st State
	var err error
	if e := c.exec(ctx, func(ctx context.Context) {
		err = c.login(ctx, sess)
		st = c.state()
	}); e != nil {
		return State{}, e
	}
	return st, err
}

// Logout hands the current cart over to local storage and drops the session
func (c *Controller) Logout(ctx context.Context) error {
	return c.exec(ctx, func(ctx context.Context) {
		c.logout()
	})
}

// Refresh re-reads the server cart and retries any pending guest backlog
func (c *Controller) Refresh(ctx context.Context) (State, error) {
	var st State
	var err error
	if e := c.exec(ctx, func(ctx context.Context) {
		if c.session == nil {
			err = ErrNotAuthenticated
		} else {
			c.cancelDebounce()
			err = c.enterAuthenticated(ctx)
		}
		st = c.state()
	}); e != nil {
		return State{}, e
	}
	return st, err
}

// Snapshot returns the current state
func (c *Controller) Snapshot(ctx context.Context) (State, error) {
	var st State
	if err := c.exec(ctx, func(context.Context) { st = c.state() }); err != nil {
		return State{}, err
	}
	return st, nil
}

func (c *Controller) Add(ctx context.Context, p domain.Product) (int, error) {
	var qty int
	var err error
	if e := c.exec(ctx, func(ctx context.Context) { qty, err = c.add(ctx, p) }); e != nil {
		return 0, e
	}
	return qty, err
}

func (c *Controller) Decrement(ctx context.Context, productID int64) (domain.DecrementResult, error) {
	var res domain.DecrementResult
	var err error
	if e := c.exec(ctx, func(ctx context.Context) { res, err = c.decrement(ctx, productID) }); e != nil {
		return domain.DecrementResult{}, e
	}
	return res, err
}

func (c *Controller) Remove(ctx context.Context, productID int64) error {
	var err error
	if e := c.exec(ctx, func(ctx context.Context) { err = c.remove(ctx, productID) }); e != nil {
		return e
	}
	return err
}

func (c *Controller) Clear(ctx context.Context) error {
	var err error
	if e := c.exec(ctx, func(ctx context.Context) { err = c.clear(ctx) }); e != nil {
		return e
	}
	return err
}

// WithSession runs fn with the current token on the controller goroutine.
// An ErrUnauthorized from fn logs the session out like any cart call.
func (c *Controller) WithSession(ctx context.Context, fn func(ctx context.Context, token string) error) error {
	var err error
	if e := c.exec(ctx, func(ctx context.Context) {
		if c.session == nil {
			err = ErrNotAuthenticated
			return
		}
		if err = fn(ctx, c.session.Token); err != nil {
			err = c.mutationFailed(err)
		}
	}); e != nil {
		return e
	}
	return err
}

// PlaceOrder checks out the current cart with its locally computed total
func (c *Controller) PlaceOrder(ctx context.Context, address, name string) (*domain.Order, error) {
	var o *domain.Order
	var err error
	if e := c.exec(ctx, func(ctx context.Context) { o, err = c.placeOrder(ctx, address, name) }); e != nil {
		return nil, e
	}
	return o, err
}

// Close flushes once within timeout and stops the controller. The flush is
// lossy: it is not retried and anything still in flight at the deadline is
// abandoned.
func (c *Controller) Close(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var err error
	e := c.exec(ctx, func(ctx context.Context) { err = c.flush(ctx) })
	c.closeOnce.Do(func() { close(c.quit) })

	select {
	case <-c.stopped:
	case <-ctx.Done():
	}

	switch {
	case errors.Is(e, ErrClosed):
		return nil
	case e != nil:
		return e
	}
	return err
}
