package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/example/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// User is the account returned by the auth routes
type User struct {
	ID    int64  `json:"id"`
	Phone string `json:"phone"`
}

// AuthResult is the body of a successful register or login
type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

// OrderItem is one line of a checkout request
type OrderItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// OrderInput is the checkout request
type OrderInput struct {
	Items   []OrderItem     `json:"items"`
	Address string          `json:"address"`
	Name    string          `json:"name"`
	Total   decimal.Decimal `json:"total"`
}

type productRequest struct {
	ProductID int64 `json:"productId"`
}

func (c *Client) Register(ctx context.Context, phone, password, confirmPassword string) (*AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/auth/register", "", map[string]string{
		"phone":           phone,
		"password":        password,
		"confirmPassword": confirmPassword,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, phone, password string) (*AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/auth/login", "", map[string]string{
		"phone":    phone,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", "", nil, nil)
}

func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	if err := c.do(ctx, http.MethodGet, "/products", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Cart fetches the server cart
func (c *Client) Cart(ctx context.Context, token string) ([]domain.CartLine, error) {
	out := []domain.CartLine{}
	if err := c.do(ctx, http.MethodGet, "/cart", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddToCart adds one unit and returns the new quantity
func (c *Client) AddToCart(ctx context.Context, token string, productID int64) (int, error) {
	var out struct {
		NewQuantity int `json:"newQuantity"`
	}
	if err := c.do(ctx, http.MethodPost, "/cart/add", token, productRequest{ProductID: productID}, &out); err != nil {
		return 0, err
	}
	return out.NewQuantity, nil
}

func (c *Client) DecrementCartItem(ctx context.Context, token string, productID int64) (domain.DecrementResult, error) {
	var out domain.DecrementResult
	path := fmt.Sprintf("/cart/%d/decrement", productID)
	if err := c.do(ctx, http.MethodPatch, path, token, nil, &out); err != nil {
		return domain.DecrementResult{}, err
	}
	return out, nil
}

func (c *Client) RemoveFromCart(ctx context.Context, token string, productID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/cart/%d", productID), token, nil, nil)
}

func (c *Client) ClearCart(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodDelete, "/cart/clear", token, nil, nil)
}

func (c *Client) Favorites(ctx context.Context, token string) ([]int64, error) {
	out := []int64{}
	if err := c.do(ctx, http.MethodGet, "/favorites", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ToggleFavorite returns "added" or "removed"
func (c *Client) ToggleFavorite(ctx context.Context, token string, productID int64) (string, error) {
	var out struct {
		Action string `json:"action"`
	}
	if err := c.do(ctx, http.MethodPost, "/favorites/toggle", token, productRequest{ProductID: productID}, &out); err != nil {
		return "", err
	}
	return out.Action, nil
}

// Orders lists the orders of the last six hours, newest first
func (c *Client) Orders(ctx context.Context, token string) ([]domain.Order, error) {
	out := []domain.Order{}
	if err := c.do(ctx, http.MethodGet, "/orders", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PlaceOrder(ctx context.Context, token string, in OrderInput) (*domain.Order, error) {
	var out domain.Order
	if err := c.do(ctx, http.MethodPost, "/orders", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
