package order

import (
	"time"

	"github.com/shopspring/decimal"
)

const EventOrderPlaced = "OrderPlaced"

// PlacedItem is an order line as carried by OrderPlaced
type PlacedItem struct {
	ProductID int64           `json:"product_id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// OrderPlaced is published after an order transaction commits
type OrderPlaced struct {
	OrderID      int64           `json:"order_id"`
	UserID       int64           `json:"user_id"`
	Name         string          `json:"name"`
	Address      string          `json:"address"`
	Total        decimal.Decimal `json:"total"`
	Items        []PlacedItem    `json:"items"`
	PlacedAt     time.Time       `json:"placed_at"`
	DeliveryDate time.Time       `json:"delivery_date"`
}
