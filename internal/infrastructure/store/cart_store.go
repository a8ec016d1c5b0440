package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/storefront/internal/domain"
)

// PostgresCartStore implements CartStore on the cart table
type PostgresCartStore struct {
	db *sql.DB
}

func NewPostgresCartStore(db *sql.DB) *PostgresCartStore {
	return &PostgresCartStore{db: db}
}

const (
	cartProductExists = `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`
	cartUpsert        = `INSERT INTO cart (user_id, product_id, quantity) VALUES ($1, $2, 1)
		ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = cart.quantity + 1
		RETURNING quantity`
	cartLockLine = `SELECT quantity FROM cart WHERE user_id = $1 AND product_id = $2 FOR UPDATE`
	cartDelete   = `DELETE FROM cart WHERE user_id = $1 AND product_id = $2`
	cartDecrease = `UPDATE cart SET quantity = quantity - 1 WHERE user_id = $1 AND product_id = $2 RETURNING quantity`
	cartClear    = `DELETE FROM cart WHERE user_id = $1`
	cartSelect   = `SELECT c.product_id, p.title, p.price, p.image_url, c.quantity
		FROM cart c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at, c.product_id`
)

// Add increments the line in a single upsert statement
func (s *PostgresCartStore) Add(ctx context.Context, userID, productID int64) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx, cartProductExists, productID).Scan(&exists); err != nil {
		return 0, fmt.Errorf("failed to check product: %w", err)
	}
	if !exists {
		return 0, fmt.Errorf("%w: product %d", domain.ErrNotFound, productID)
	}

	var qty int
	if err := tx.QueryRowContext(ctx, cartUpsert, userID, productID).Scan(&qty); err != nil {
		if pqCode(err) == pqForeignKeyViolation {
			return 0, fmt.Errorf("%w: product %d", domain.ErrNotFound, productID)
		}
		return 0, fmt.Errorf("failed to add cart line: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return qty, nil
}

// Decrement locks the line, then lowers or deletes it
func (s *PostgresCartStore) Decrement(ctx context.Context, userID, productID int64) (domain.DecrementResult, error) {
	var res domain.DecrementResult

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var qty int
	err = tx.QueryRowContext(ctx, cartLockLine, userID, productID).Scan(&qty)
	if errors.Is(err, sql.ErrNoRows) {
		return res, fmt.Errorf("%w: cart line not found", domain.ErrNotFound)
	}
	if err != nil {
		return res, fmt.Errorf("failed to lock cart line: %w", err)
	}

	if qty <= 1 {
		if _, err := tx.ExecContext(ctx, cartDelete, userID, productID); err != nil {
			return res, fmt.Errorf("failed to delete cart line: %w", err)
		}
		res.Removed = true
	} else if err := tx.QueryRowContext(ctx, cartDecrease, userID, productID).Scan(&res.NewQuantity); err != nil {
		return res, fmt.Errorf("failed to decrement cart line: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.DecrementResult{}, fmt.Errorf("failed to commit: %w", err)
	}
	return res, nil
}

// Remove deletes the line; a missing line is not an error
func (s *PostgresCartStore) Remove(ctx context.Context, userID, productID int64) error {
	if _, err := s.db.ExecContext(ctx, cartDelete, userID, productID); err != nil {
		return fmt.Errorf("failed to remove cart line: %w", err)
	}
	return nil
}

// Clear deletes every line of the user
func (s *PostgresCartStore) Clear(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx, cartClear, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Get returns the lines joined with the current catalog
func (s *PostgresCartStore) Get(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	rows, err := s.db.QueryContext(ctx, cartSelect, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.CartLine, 0)
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(&l.ProductID, &l.Title, &l.Price, &l.ImageURL, &l.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
