package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry
type Product struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CartLine is one product in a cart joined with its current catalog data
type CartLine struct {
	ProductID int64           `json:"product_id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"image_url"`
	Quantity  int             `json:"quantity"`
}

// Subtotal returns price * quantity
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// DecrementResult reports the outcome of removing one unit from a cart line
type DecrementResult struct {
	Removed     bool `json:"removed"`
	NewQuantity int  `json:"newQuantity"`
}

// User is a registered shopper
type User struct {
	ID           int64     `json:"id"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// OrderItem is a line of a placed order
type OrderItem struct {
	ProductID int64           `json:"product_id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"image_url"`
	Quantity  int             `json:"quantity"`
}

// Order is a placed order with its items
type Order struct {
	ID           int64           `json:"id"`
	Number       int             `json:"number"`
	UserID       int64           `json:"user_id"`
	Address      string          `json:"address"`
	Name         string          `json:"name"`
	Total        decimal.Decimal `json:"total"`
	CreatedAt    time.Time       `json:"created_at"`
	DeliveryDate time.Time       `json:"delivery_date"`
	Items        []OrderItem     `json:"items"`
}
