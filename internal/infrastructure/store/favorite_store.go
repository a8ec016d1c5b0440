package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/storefront/internal/domain"
)

// PostgresFavoriteStore implements FavoriteStore on the favorite table
type PostgresFavoriteStore struct {
	db *sql.DB
}

func NewPostgresFavoriteStore(db *sql.DB) *PostgresFavoriteStore {
	return &PostgresFavoriteStore{db: db}
}

// Toggle deletes the row when present, inserts it otherwise, in one transaction
func (s *PostgresFavoriteStore) Toggle(ctx context.Context, userID, productID int64) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM favorite WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return false, fmt.Errorf("failed to delete favorite: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	if removed == 0 {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO favorite (user_id, product_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			userID, productID)
		if err != nil {
			if pqCode(err) == pqForeignKeyViolation {
				return false, fmt.Errorf("%w: product %d", domain.ErrNotFound, productID)
			}
			return false, fmt.Errorf("failed to insert favorite: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}
	return removed == 0, nil
}

// List returns product ids in the order they were favorited
func (s *PostgresFavoriteStore) List(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT product_id FROM favorite WHERE user_id = $1 ORDER BY created_at, product_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
