package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/storefront/internal/client"
	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/localcart"
	"go.uber.org/zap"
)

// Everything in this file runs on the actor goroutine.

func (c *Controller) state() State {
	st := State{Authenticated: c.session != nil, Cart: c.cart.Clone()}
	if c.session != nil {
		sess := *c.session
		st.Session = &sess
	}
	return st
}

func (c *Controller) mount(ctx context.Context) error {
	sess, err := c.storage.LoadSession()
	switch {
	case err == nil && !sess.Expired(c.now()):
		c.session = sess
		return c.enterAuthenticated(ctx)
	case err == nil:
		c.logger.Info("stored session expired", zap.Int64("user_id", sess.UserID))
		if err := c.storage.DeleteSession(); err != nil {
			c.logger.Warn("failed to delete expired session", zap.Error(err))
		}
	case !errors.Is(err, localcart.ErrNotStored):
		c.logger.Warn("failed to read stored session", zap.Error(err))
	}

	c.cart = c.loadGuestCart()
	return nil
}

func (c *Controller) loadGuestCart() *localcart.Cart {
	stored, err := c.storage.LoadCart()
	if err != nil {
		if !errors.Is(err, localcart.ErrNotStored) {
			c.logger.Warn("failed to read stored cart", zap.Error(err))
		}
		return localcart.NewCart()
	}
	stored.Mirror = false
	if stored.Status == localcart.StatusLoading {
		stored.Status = localcart.StatusIdle
	}
	return stored
}

func (c *Controller) login(ctx context.Context, sess *localcart.Session) error {
	if c.session == nil {
		guest := c.cart.Clone()
		guest.Mirror = false
		if err := c.storage.SaveCart(guest); err != nil {
			return fmt.Errorf("snapshot guest cart: %w", err)
		}
	} else {
		c.cancelDebounce()
	}

	if err := c.storage.SaveSession(sess); err != nil {
		c.logger.Warn("failed to store session", zap.Error(err))
	}
	c.session = sess
	c.logger.Info("logged in", zap.Int64("user_id", sess.UserID))
	return c.enterAuthenticated(ctx)
}

// enterAuthenticated makes the server cart authoritative and replays the
// pending guest cart onto it
func (c *Controller) enterAuthenticated(ctx context.Context) error {
	c.cart = &localcart.Cart{Items: []domain.CartLine{}, Status: localcart.StatusLoading}
	if err := c.sync(ctx); err != nil {
		return err
	}
	c.replay(ctx)
	return nil
}

// sync replaces the in-memory cart with the server cart
func (c *Controller) sync(ctx context.Context) error {
	lines, err := c.api.Cart(ctx, c.session.Token)
	if err != nil {
		c.syncFailed(err)
		return err
	}
	c.cart = &localcart.Cart{Items: lines, Status: localcart.StatusSucceeded}
	return nil
}

func (c *Controller) syncFailed(err error) {
	if errors.Is(err, client.ErrUnauthorized) {
		c.logger.Warn("session rejected by server, logging out", zap.Error(err))
		c.logout()
		return
	}
	c.logger.Warn("cart sync failed, keeping a local copy", zap.Error(err))
	c.cart.Status = localcart.StatusFailed
	c.persistMirror()
}

// persistMirror stores the in-memory server cart unless a guest backlog is
// still waiting to be replayed
func (c *Controller) persistMirror() {
	if c.pendingBacklog() != nil {
		return
	}
	snap := c.cart.Clone()
	snap.Mirror = true
	if err := c.storage.SaveCart(snap); err != nil {
		c.logger.Error("failed to store cart copy", zap.Error(err))
	}
}

// pendingBacklog returns stored guest units that have not reached the server
func (c *Controller) pendingBacklog() *localcart.Cart {
	stored, err := c.storage.LoadCart()
	if err != nil {
		if !errors.Is(err, localcart.ErrNotStored) {
			c.logger.Warn("failed to read stored cart", zap.Error(err))
		}
		return nil
	}
	if stored.Mirror || stored.IsEmpty() {
		return nil
	}
	return stored
}

// replay adds every stored guest unit onto the server cart. Each unit is
// removed from storage before its Add is issued, so a crash or a second
// merge never sends it twice. Units that fail stay in storage.
func (c *Controller) replay(ctx context.Context) {
	backlog := c.pendingBacklog()
	if backlog == nil {
		c.deleteStoredCart()
		return
	}

	remaining := backlog.Clone()
	failed := localcart.NewCart()
	replayed := 0

	for _, line := range backlog.Items {
		for n := 0; n < line.Quantity; n++ {
			remaining.Decrement(line.ProductID)
			if err := c.checkpoint(remaining, failed, localcart.StatusLoading); err != nil {
				c.logger.Error("failed to checkpoint local cart, replay postponed", zap.Error(err))
				return
			}

			qty, err := c.api.AddToCart(ctx, c.session.Token, line.ProductID)
			if err == nil {
				c.cart.Set(line, qty)
				replayed++
				continue
			}

			remaining.Remove(line.ProductID)

			if errors.Is(err, client.ErrNotFound) {
				c.logger.Warn("product no longer in catalog, dropping from merge",
					zap.Int64("product_id", line.ProductID),
					zap.Int("units", line.Quantity-n))
				if cerr := c.checkpoint(remaining, failed, localcart.StatusLoading); cerr != nil {
					c.logger.Error("failed to checkpoint local cart", zap.Error(cerr))
				}
				break
			}

			failed.AddUnits(line, line.Quantity-n)

			if errors.Is(err, client.ErrUnauthorized) {
				if cerr := c.checkpoint(remaining, failed, localcart.StatusFailed); cerr != nil {
					c.logger.Error("failed to restore local cart", zap.Error(cerr))
				}
				c.logger.Warn("session rejected during merge, logging out", zap.Error(err))
				c.logout()
				return
			}

			c.logger.Warn("failed to merge cart line",
				zap.Int64("product_id", line.ProductID),
				zap.Int("units", line.Quantity-n),
				zap.Error(err))
			if cerr := c.checkpoint(remaining, failed, localcart.StatusLoading); cerr != nil {
				c.logger.Error("failed to restore local cart", zap.Error(cerr))
			}
			break
		}
	}

	c.logger.Info("guest cart merged",
		zap.Int("units_replayed", replayed),
		zap.Int("units_failed", failed.Units()))

	if failed.IsEmpty() {
		c.deleteStoredCart()
		return
	}
	if err := c.checkpoint(failed, localcart.NewCart(), localcart.StatusFailed); err != nil {
		c.logger.Error("failed to store merge backlog", zap.Error(err))
	}
}

// checkpoint stores remaining plus failed units as the pending guest cart
func (c *Controller) checkpoint(remaining, failed *localcart.Cart, status localcart.Status) error {
	snap := remaining.Clone()
	for _, l := range failed.Items {
		snap.AddUnits(l, l.Quantity)
	}
	snap.Status = status
	snap.Mirror = false
	return c.storage.SaveCart(snap)
}

func (c *Controller) deleteStoredCart() {
	if err := c.storage.DeleteCart(); err != nil {
		c.logger.Warn("failed to delete stored cart", zap.Error(err))
	}
}

// logout persists the current cart as the guest cart and drops the session.
// The server cart is left as it is.
func (c *Controller) logout() {
	c.cancelDebounce()

	snap := c.cart.Clone()
	if c.session != nil {
		if backlog := c.pendingBacklog(); backlog != nil {
			for _, l := range backlog.Items {
				snap.AddUnits(l, l.Quantity)
			}
		}
	}
	snap.Mirror = false
	if snap.Status == localcart.StatusLoading {
		snap.Status = localcart.StatusIdle
	}

	if err := c.storage.SaveCart(snap); err != nil {
		c.logger.Error("failed to store cart on logout", zap.Error(err))
	}
	if err := c.storage.DeleteSession(); err != nil {
		c.logger.Warn("failed to delete session", zap.Error(err))
	}
	if c.session != nil {
		c.logger.Info("logged out", zap.Int64("user_id", c.session.UserID))
	}
	c.session = nil
	c.cart = snap
}

func (c *Controller) saveGuest() {
	if err := c.storage.SaveCart(c.cart); err != nil {
		c.logger.Error("failed to store guest cart", zap.Error(err))
	}
}

// mutationFailed forces a logout on 401 and returns err unchanged
func (c *Controller) mutationFailed(err error) error {
	if errors.Is(err, client.ErrUnauthorized) {
		c.logger.Warn("session rejected by server, logging out", zap.Error(err))
		c.logout()
	}
	return err
}

// changed re-arms the auto-save after a server mutation
func (c *Controller) changed() {
	if c.cart.Status == localcart.StatusSucceeded {
		c.armDebounce()
	}
}

func (c *Controller) armDebounce() {
	c.cancelDebounce()
	gen := c.gen
	c.timer = time.AfterFunc(c.debounce, func() {
		c.post(func(context.Context) { c.debouncedSync(gen) })
	})
}

func (c *Controller) cancelDebounce() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
}

func (c *Controller) debouncedSync(gen uint64) {
	if gen != c.gen || c.session == nil {
		return
	}
	c.timer = nil

	ctx, cancel := context.WithTimeout(context.Background(), c.syncTimeout)
	defer cancel()
	_ = c.sync(ctx)
}

func lineOf(p domain.Product) domain.CartLine {
	return domain.CartLine{ProductID: p.ID, Title: p.Title, Price: p.Price, ImageURL: p.ImageURL}
}

func (c *Controller) add(ctx context.Context, p domain.Product) (int, error) {
	if c.session == nil {
		qty := c.cart.Add(p)
		c.saveGuest()
		return qty, nil
	}

	qty, err := c.api.AddToCart(ctx, c.session.Token, p.ID)
	if err != nil {
		return 0, c.mutationFailed(err)
	}
	c.cart.Set(lineOf(p), qty)
	c.changed()
	return qty, nil
}

func (c *Controller) decrement(ctx context.Context, productID int64) (domain.DecrementResult, error) {
	if c.session == nil {
		res, ok := c.cart.Decrement(productID)
		if !ok {
			return domain.DecrementResult{}, ErrNotInCart
		}
		c.saveGuest()
		return res, nil
	}

	res, err := c.api.DecrementCartItem(ctx, c.session.Token, productID)
	if err != nil {
		return domain.DecrementResult{}, c.mutationFailed(err)
	}
	switch {
	case res.Removed:
		c.cart.Remove(productID)
	case c.cart.Quantity(productID) > 0:
		c.cart.Set(domain.CartLine{ProductID: productID}, res.NewQuantity)
	}
	c.changed()
	return res, nil
}

func (c *Controller) remove(ctx context.Context, productID int64) error {
	if c.session == nil {
		c.cart.Remove(productID)
		c.saveGuest()
		return nil
	}

	if err := c.api.RemoveFromCart(ctx, c.session.Token, productID); err != nil {
		return c.mutationFailed(err)
	}
	c.cart.Remove(productID)
	c.changed()
	return nil
}

func (c *Controller) clear(ctx context.Context) error {
	if c.session == nil {
		c.cart.Clear()
		c.saveGuest()
		return nil
	}

	if err := c.api.ClearCart(ctx, c.session.Token); err != nil {
		return c.mutationFailed(err)
	}
	c.cart.Clear()
	c.changed()
	return nil
}

func (c *Controller) placeOrder(ctx context.Context, address, name string) (*domain.Order, error) {
	if c.session == nil {
		return nil, ErrNotAuthenticated
	}
	if c.cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	items := make([]client.OrderItem, len(c.cart.Items))
	for i, l := range c.cart.Items {
		items[i] = client.OrderItem{ProductID: l.ProductID, Quantity: l.Quantity}
	}

	o, err := c.api.PlaceOrder(ctx, c.session.Token, client.OrderInput{
		Items:   items,
		Address: address,
		Name:    name,
		Total:   c.cart.Total(),
	})
	if err != nil {
		return nil, c.mutationFailed(err)
	}

	c.cancelDebounce()
	c.cart = &localcart.Cart{Items: []domain.CartLine{}, Status: localcart.StatusSucceeded}
	c.logger.Info("order placed", zap.Int64("order_id", o.ID), zap.String("total", o.Total.StringFixed(2)))
	return o, nil
}

// flush is the shutdown save: one sync when authenticated, a storage write
// for a non-empty guest cart
func (c *Controller) flush(ctx context.Context) error {
	c.cancelDebounce()
	if c.session != nil {
		return c.sync(ctx)
	}
	if !c.cart.IsEmpty() {
		return c.storage.SaveCart(c.cart)
	}
	return nil
}
