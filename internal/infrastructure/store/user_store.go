package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/storefront/internal/domain"
)

// PostgresUserStore implements UserStore on the users table
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

// Create inserts a user; a duplicate phone yields domain.ErrConflict
func (s *PostgresUserStore) Create(ctx context.Context, phone, passwordHash string) (*domain.User, error) {
	u := &domain.User{Phone: phone, PasswordHash: passwordHash}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (phone, password_hash) VALUES ($1, $2) RETURNING id, created_at`,
		phone, passwordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if pqCode(err) == pqUniqueViolation {
			return nil, fmt.Errorf("%w: phone already registered", domain.ErrConflict)
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return u, nil
}

func (s *PostgresUserStore) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	u := &domain.User{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, phone, password_hash, created_at FROM users WHERE phone = $1`,
		phone,
	).Scan(&u.ID, &u.Phone, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return u, nil
}
