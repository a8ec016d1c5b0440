package localcart

import (
	"testing"

	"github.com/example/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	lamp  = domain.Product{ID: 1, Title: "Lamp", Price: decimal.RequireFromString("1500.00"), ImageURL: "lamp.jpg"}
	chair = domain.Product{ID: 2, Title: "Chair", Price: decimal.RequireFromString("4200.50")}
)

func TestCart_Add(t *testing.T) {
	c := NewCart()

	assert.Equal(t, 1, c.Add(lamp))
	assert.Equal(t, 1, c.Add(chair))
	assert.Equal(t, 2, c.Add(lamp))

	require.Len(t, c.Items, 2)
	assert.Equal(t, int64(1), c.Items[0].ProductID, "lines keep first-added order")
	assert.Equal(t, "lamp.jpg", c.Items[0].ImageURL)
	assert.Equal(t, 3, c.Units())
}

func TestCart_Decrement(t *testing.T) {
	c := NewCart()
	c.Add(lamp)
	c.Add(lamp)

	res, ok := c.Decrement(lamp.ID)
	require.True(t, ok)
	assert.Equal(t, domain.DecrementResult{NewQuantity: 1}, res)

	res, ok = c.Decrement(lamp.ID)
	require.True(t, ok)
	assert.Equal(t, domain.DecrementResult{Removed: true}, res)
	assert.True(t, c.IsEmpty())

	_, ok = c.Decrement(lamp.ID)
	assert.False(t, ok, "decrement never creates a line")
	assert.True(t, c.IsEmpty())
}

func TestCart_RemoveAndClear(t *testing.T) {
	c := NewCart()
	c.Add(lamp)
	c.Add(chair)

	c.Remove(lamp.ID)
	c.Remove(99)
	assert.Equal(t, 0, c.Quantity(lamp.ID))
	assert.Equal(t, 1, c.Quantity(chair.ID))

	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.NotNil(t, c.Items)
}

func TestCart_AddUnits(t *testing.T) {
	c := NewCart()
	c.Add(lamp)

	c.AddUnits(domain.CartLine{ProductID: lamp.ID}, 2)
	c.AddUnits(domain.CartLine{ProductID: chair.ID, Title: "Chair", Price: chair.Price, Quantity: 9}, 1)
	c.AddUnits(domain.CartLine{ProductID: 3}, 0)

	assert.Equal(t, 3, c.Quantity(lamp.ID))
	assert.Equal(t, 1, c.Quantity(chair.ID))
	assert.Len(t, c.Items, 2)
}

func TestCart_Total(t *testing.T) {
	c := NewCart()
	assert.True(t, c.Total().IsZero())

	c.Add(lamp)
	c.Add(lamp)
	c.Add(chair)

	assert.True(t, decimal.RequireFromString("7200.50").Equal(c.Total()), c.Total().String())
}

func TestCart_CloneIsIndependent(t *testing.T) {
	c := NewCart()
	c.Add(lamp)

	cp := c.Clone()
	cp.Add(lamp)
	cp.Status = StatusFailed

	assert.Equal(t, 1, c.Quantity(lamp.ID))
	assert.Equal(t, StatusIdle, c.Status)
}

func TestCart_Set(t *testing.T) {
	c := NewCart()
	c.Add(lamp)

	c.Set(domain.CartLine{ProductID: lamp.ID}, 5)
	c.Set(domain.CartLine{ProductID: chair.ID, Title: "Chair"}, 2)
	assert.Equal(t, 5, c.Quantity(lamp.ID))
	assert.Equal(t, 2, c.Quantity(chair.ID))
	assert.Equal(t, "Lamp", c.Items[0].Title)

	c.Set(domain.CartLine{ProductID: lamp.ID}, 0)
	assert.Equal(t, 0, c.Quantity(lamp.ID))
	assert.Len(t, c.Items, 1)
}
