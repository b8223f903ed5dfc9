package models_test

import (
	"testing"

	"github.com/linemk/tallow-shop/internal/domain/models"
	"github.com/stretchr/testify/assert"
)

func line(qty int) models.CartLine {
	return models.CartLine{
		ProductID: 1,
		Name:      "Pure Beef Tallow Moisturizer",
		Size:      "4 oz",
		UnitPrice: 2499,
		Quantity:  qty,
	}
}

func TestCartAdd_MergesAndClamps(t *testing.T) {
	cart := &models.Cart{}

	// Добавляем один и тот же вариант дважды: 6 + 7 должно схлопнуться
	// в одну позицию с количеством 10, а не 13
	assert.NoError(t, cart.Add(line(6)))
	assert.NoError(t, cart.Add(line(7)))

	assert.Len(t, cart.Lines, 1, "same (product, variant) must not duplicate the line")
	assert.Equal(t, 10, cart.Lines[0].Quantity, "merged quantity must be clamped to 10")
}

func TestCartAdd_ClampsSingleAdd(t *testing.T) {
	cart := &models.Cart{}
	assert.NoError(t, cart.Add(line(25)))
	assert.Equal(t, 10, cart.Lines[0].Quantity)
}

func TestCartAdd_RejectsNonPositive(t *testing.T) {
	cart := &models.Cart{}
	err := cart.Add(line(0))
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)
	assert.True(t, cart.IsEmpty(), "cart must stay unchanged after rejected add")
}

func TestCartAdd_DifferentVariantsKeepSeparateLines(t *testing.T) {
	cart := &models.Cart{}
	assert.NoError(t, cart.Add(line(1)))
	other := line(2)
	other.Size = "8 oz"
	other.UnitPrice = 4299
	assert.NoError(t, cart.Add(other))
	assert.Len(t, cart.Lines, 2)
}

func TestCartUpdate_RejectsZero(t *testing.T) {
	cart := &models.Cart{}
	assert.NoError(t, cart.Add(line(3)))

	err := cart.Update(cart.Lines[0].Key(), 0)
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)
	assert.Equal(t, 3, cart.Lines[0].Quantity, "cart must stay unchanged after rejected update")
}

func TestCartUpdate_ClampsAboveMax(t *testing.T) {
	cart := &models.Cart{}
	assert.NoError(t, cart.Add(line(3)))

	assert.NoError(t, cart.Update(cart.Lines[0].Key(), 42))
	assert.Equal(t, 10, cart.Lines[0].Quantity)
}

func TestCartUpdate_UnknownLine(t *testing.T) {
	cart := &models.Cart{}
	err := cart.Update("99:4 oz", 1)
	assert.ErrorIs(t, err, models.ErrLineNotFound)
}

func TestCartRemove_NoopOnMissing(t *testing.T) {
	cart := &models.Cart{}
	assert.NoError(t, cart.Add(line(2)))

	// Удаление несуществующей позиции — не ошибка
	cart.Remove("99:8 oz")
	assert.Len(t, cart.Lines, 1)

	cart.Remove(cart.Lines[0].Key())
	assert.True(t, cart.IsEmpty())
}

func TestCartTotals(t *testing.T) {
	cart := &models.Cart{}
	assert.NoError(t, cart.Add(line(2)))

	// 2499 * 2 = 4998, налог round(4998*0.08) = 400,
	// доставка 500 (порог бесплатной доставки 5000 не достигнут)
	got := cart.Totals()
	assert.Equal(t, 4998, got.Subtotal)
	assert.Equal(t, 400, got.Tax)
	assert.Equal(t, 500, got.Shipping)
	assert.Equal(t, 5898, got.Total)
}

func TestCartTotals_FreeShippingAtThreshold(t *testing.T) {
	cart := &models.Cart{}
	l := line(2)
	l.UnitPrice = 2500 // ровно 5000 — доставка бесплатная
	assert.NoError(t, cart.Add(l))

	got := cart.Totals()
	assert.Equal(t, 5000, got.Subtotal)
	assert.Equal(t, 0, got.Shipping)
	assert.Equal(t, 400, got.Tax)
	assert.Equal(t, 5400, got.Total)
}

func TestCartTotals_EmptyCartIsZero(t *testing.T) {
	cart := &models.Cart{}
	got := cart.Totals()
	assert.Equal(t, models.Totals{}, got)
}

func TestCartTotals_TaxRoundsHalfUp(t *testing.T) {
	cart := &models.Cart{}
	l := line(1)
	l.UnitPrice = 1031 // 1031 * 0.08 = 82.48 -> 82
	assert.NoError(t, cart.Add(l))
	assert.Equal(t, 82, cart.Totals().Tax)

	cart.Clear()
	l.UnitPrice = 1044 // 1044 * 0.08 = 83.52 -> 84
	assert.NoError(t, cart.Add(l))
	assert.Equal(t, 84, cart.Totals().Tax)

	cart.Clear()
	l.UnitPrice = 1019 // 1019 * 0.08 = 81.52 -> 82 (половина и выше — вверх)
	assert.NoError(t, cart.Add(l))
	assert.Equal(t, 82, cart.Totals().Tax)
}
