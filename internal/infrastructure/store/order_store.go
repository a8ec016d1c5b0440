package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/storefront/internal/domain"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// PostgresOrderStore implements OrderStore on the orders and order_items tables
type PostgresOrderStore struct {
	db *sql.DB
}

func NewPostgresOrderStore(db *sql.DB) *PostgresOrderStore {
	return &PostgresOrderStore{db: db}
}

const (
	orderPrices = `SELECT id, price FROM products WHERE id = ANY($1)`
	orderInsert = `INSERT INTO orders (user_id, address, name, total, delivery_date)
		VALUES ($1, $2, $3, $4, NOW() + make_interval(secs => $5))
		RETURNING id, created_at, delivery_date`
	orderInsertItem = `INSERT INTO order_items (order_id, product_id, quantity, price) VALUES ($1, $2, $3, $4)`
	orderClearCart  = `DELETE FROM cart WHERE user_id = $1`
	orderCountSince = `SELECT COUNT(*) FROM orders WHERE user_id = $1 AND created_at > $2`
	orderItems      = `SELECT oi.order_id, oi.product_id, p.title, oi.price, p.image_url, oi.quantity
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.order_id, oi.id`
	orderListSince = `SELECT id, user_order_number, user_id, address, name, total, created_at, delivery_date
		FROM (
			SELECT o.*, ROW_NUMBER() OVER (ORDER BY o.created_at, o.id) AS user_order_number
			FROM orders o
			WHERE o.user_id = $1 AND o.created_at > $2
		) visible
		ORDER BY created_at DESC, id DESC`
)

type pgOrderTx struct {
	tx *sql.Tx
}

// InTx runs fn inside a database transaction
func (s *PostgresOrderStore) InTx(ctx context.Context, fn func(tx OrderTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&pgOrderTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (t *pgOrderTx) ProductPrices(ctx context.Context, productIDs []int64) (map[int64]decimal.Decimal, error) {
	rows, err := t.tx.QueryContext(ctx, orderPrices, pq.Array(productIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prices := make(map[int64]decimal.Decimal, len(productIDs))
	for rows.Next() {
		var id int64
		var price decimal.Decimal
		if err := rows.Scan(&id, &price); err != nil {
			return nil, err
		}
		prices[id] = price
	}
	return prices, rows.Err()
}

func (t *pgOrderTx) InsertOrder(ctx context.Context, o *domain.Order, deliveryDelay time.Duration) error {
	return t.tx.QueryRowContext(ctx, orderInsert,
		o.UserID, o.Address, o.Name, o.Total, deliveryDelay.Seconds(),
	).Scan(&o.ID, &o.CreatedAt, &o.DeliveryDate)
}

func (t *pgOrderTx) InsertItems(ctx context.Context, orderID int64, items []domain.OrderItem) error {
	for _, it := range items {
		if _, err := t.tx.ExecContext(ctx, orderInsertItem, orderID, it.ProductID, it.Quantity, it.Price); err != nil {
			return err
		}
	}
	return nil
}

func (t *pgOrderTx) ClearCart(ctx context.Context, userID int64) error {
	_, err := t.tx.ExecContext(ctx, orderClearCart, userID)
	return err
}

func (t *pgOrderTx) CountSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	var n int
	err := t.tx.QueryRowContext(ctx, orderCountSince, userID, since).Scan(&n)
	return n, err
}

func (t *pgOrderTx) LoadItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	byOrder, err := scanOrderItems(ctx, t.tx, []int64{orderID})
	if err != nil {
		return nil, err
	}
	return byOrder[orderID], nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func scanOrderItems(ctx context.Context, q queryer, orderIDs []int64) (map[int64][]domain.OrderItem, error) {
	rows, err := q.QueryContext(ctx, orderItems, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]domain.OrderItem, len(orderIDs))
	for rows.Next() {
		var orderID int64
		var it domain.OrderItem
		if err := rows.Scan(&orderID, &it.ProductID, &it.Title, &it.Price, &it.ImageURL, &it.Quantity); err != nil {
			return nil, err
		}
		out[orderID] = append(out[orderID], it)
	}
	return out, rows.Err()
}

// ListSince returns the user's orders created after since, newest first,
// numbered by creation order among those orders
func (s *PostgresOrderStore) ListSince(ctx context.Context, userID int64, since time.Time) ([]domain.Order, error) {
	rows, err := s.db.QueryContext(ctx, orderListSince, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	var ids []int64
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.Number, &o.UserID, &o.Address, &o.Name, &o.Total, &o.CreatedAt, &o.DeliveryDate); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	items, err := scanOrderItems(ctx, s.db, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}
