package cart_test

import (
	"context"
	"testing"

	"github.com/linemk/tallow-shop/internal/cart"
	"github.com/linemk/tallow-shop/internal/domain/models"
	"github.com/stretchr/testify/assert"
)

func TestMemoryStore_GetUnknownSessionReturnsEmptyCart(t *testing.T) {
	store := cart.NewMemoryStore()
	got, err := store.Get(context.Background(), "no-such-session")
	assert.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := cart.NewMemoryStore()
	ctx := context.Background()

	c := &models.Cart{}
	assert.NoError(t, c.Add(models.CartLine{ProductID: 1, Name: "Moisturizer", Size: "4 oz", UnitPrice: 2499, Quantity: 2}))
	assert.NoError(t, store.Save(ctx, "sid-1", c))

	got, err := store.Get(ctx, "sid-1")
	assert.NoError(t, err)
	assert.Equal(t, c.Lines, got.Lines)

	// Мутация полученной корзины не должна трогать хранимую
	got.Clear()
	again, err := store.Get(ctx, "sid-1")
	assert.NoError(t, err)
	assert.Len(t, again.Lines, 1)
}

func TestMemoryStore_SessionsAreIsolated(t *testing.T) {
	store := cart.NewMemoryStore()
	ctx := context.Background()

	c := &models.Cart{}
	assert.NoError(t, c.Add(models.CartLine{ProductID: 1, Size: "4 oz", UnitPrice: 2499, Quantity: 1}))
	assert.NoError(t, store.Save(ctx, "sid-a", c))

	other, err := store.Get(ctx, "sid-b")
	assert.NoError(t, err)
	assert.True(t, other.IsEmpty(), "cart must never leak across sessions")
}

func TestMemoryStore_Delete(t *testing.T) {
	store := cart.NewMemoryStore()
	ctx := context.Background()

	c := &models.Cart{}
	assert.NoError(t, c.Add(models.CartLine{ProductID: 1, Size: "4 oz", UnitPrice: 2499, Quantity: 1}))
	assert.NoError(t, store.Save(ctx, "sid-1", c))
	assert.NoError(t, store.Delete(ctx, "sid-1"))

	got, err := store.Get(ctx, "sid-1")
	assert.NoError(t, err)
	assert.True(t, got.IsEmpty())
}
