package store

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) *sql.DB {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("storefront"),
		postgres.WithPassword("storefront"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := ConnectPostgres(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, RunMigrations(db))
	require.NoError(t, RunMigrations(db), "migrations are idempotent")
	return db
}

func TestPostgresIntegration_CartConcurrency(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()

	users := NewPostgresUserStore(db)
	carts := NewPostgresCartStore(db)

	u, err := users.Create(ctx, "79991234567", "hash")
	require.NoError(t, err)

	var productID int64
	require.NoError(t, db.QueryRowContext(ctx, `SELECT MIN(id) FROM products`).Scan(&productID))

	t.Run("concurrent adds never lose an increment", func(t *testing.T) {
		const n = 20
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := carts.Add(ctx, u.ID, productID)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		lines, err := carts.Get(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, n, lines[0].Quantity)
	})

	t.Run("concurrent decrements never go below zero", func(t *testing.T) {
		const n = 25
		var wg sync.WaitGroup
		var mu sync.Mutex
		removed, notFound := 0, 0
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				res, err := carts.Decrement(ctx, u.ID, productID)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case errors.Is(err, domain.ErrNotFound):
					notFound++
				case err != nil:
					t.Errorf("unexpected error: %v", err)
				case res.Removed:
					removed++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, removed, "exactly one decrement deletes the line")
		assert.Equal(t, 5, notFound)

		lines, err := carts.Get(ctx, u.ID)
		require.NoError(t, err)
		assert.Empty(t, lines)
	})
}

func TestPostgresIntegration_OrderFlow(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()

	users := NewPostgresUserStore(db)
	carts := NewPostgresCartStore(db)
	orders := NewPostgresOrderStore(db)

	u, err := users.Create(ctx, "79990000001", "hash")
	require.NoError(t, err)
	_, err = users.Create(ctx, "79990000001", "hash")
	assert.ErrorIs(t, err, domain.ErrConflict)

	var productID int64
	require.NoError(t, db.QueryRowContext(ctx, `SELECT MIN(id) FROM products`).Scan(&productID))
	_, err = carts.Add(ctx, u.ID, productID)
	require.NoError(t, err)

	var placed domain.Order
	err = orders.InTx(ctx, func(tx OrderTx) error {
		prices, err := tx.ProductPrices(ctx, []int64{productID})
		if err != nil {
			return err
		}
		placed = domain.Order{UserID: u.ID, Address: "Lenina 1", Name: "Ivan", Total: prices[productID]}
		if err := tx.InsertOrder(ctx, &placed, 6*time.Hour); err != nil {
			return err
		}
		items := []domain.OrderItem{{ProductID: productID, Quantity: 1, Price: prices[productID]}}
		if err := tx.InsertItems(ctx, placed.ID, items); err != nil {
			return err
		}
		return tx.ClearCart(ctx, u.ID)
	})
	require.NoError(t, err)
	assert.WithinDuration(t, placed.CreatedAt.Add(6*time.Hour), placed.DeliveryDate, time.Second)

	lines, err := carts.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	list, err := orders.ListSince(ctx, u.ID, time.Now().Add(-6*time.Hour))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].Number)
	require.Len(t, list[0].Items, 1)
	assert.Equal(t, productID, list[0].Items[0].ProductID)
}
