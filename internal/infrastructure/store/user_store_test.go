package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/example/storefront/internal/domain"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresUserStore_Create(t *testing.T) {
	db, mock := newMockDB(t)
	us := NewPostgresUserStore(db)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO users`).WithArgs("79991234567", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(5), now))

	u, err := us.Create(context.Background(), "79991234567", "hash")

	require.NoError(t, err)
	assert.Equal(t, int64(5), u.ID)
	assert.Equal(t, "79991234567", u.Phone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserStore_Create_UniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	us := NewPostgresUserStore(db)

	mock.ExpectQuery(`INSERT INTO users`).WithArgs("79991234567", "hash").
		WillReturnError(&pq.Error{Code: pqUniqueViolation})

	_, err := us.Create(context.Background(), "79991234567", "hash")

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestPostgresUserStore_GetByPhone(t *testing.T) {
	db, mock := newMockDB(t)
	us := NewPostgresUserStore(db)

	mock.ExpectQuery(`SELECT id, phone, password_hash, created_at FROM users`).WithArgs("79991234567").
		WillReturnRows(sqlmock.NewRows([]string{"id", "phone", "password_hash", "created_at"}).
			AddRow(int64(5), "79991234567", "hash", time.Now()))
	mock.ExpectQuery(`SELECT id, phone, password_hash, created_at FROM users`).WithArgs("79990000000").
		WillReturnError(sql.ErrNoRows)

	u, err := us.GetByPhone(context.Background(), "79991234567")
	require.NoError(t, err)
	assert.Equal(t, "hash", u.PasswordHash)

	_, err = us.GetByPhone(context.Background(), "79990000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
