package models

import (
	"errors"
	"fmt"
)

// Ограничения и ставки корзины. Все деньги — целые центы,
// чтобы не ловить ошибки плавающей точки.
const (
	MinQuantity = 1
	MaxQuantity = 10

	TaxRatePercent   = 8    // налог с продаж, %
	FreeShippingMin  = 5000 // от этой суммы (в центах) доставка бесплатная
	FlatShippingCost = 500  // фиксированная стоимость доставки в центах
)

var (
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrLineNotFound    = errors.New("cart line not found")
)

// CartLine — позиция корзины; цена фиксируется из каталога в момент добавления
type CartLine struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Size      string `json:"size"`
	UnitPrice int    `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// Key — ключ позиции, уникальный в пределах корзины (товар + вариант)
func (l CartLine) Key() string {
	return fmt.Sprintf("%d:%s", l.ProductID, l.Size)
}

// Subtotal возвращает сумму по позиции в центах
func (l CartLine) Subtotal() int {
	return l.UnitPrice * l.Quantity
}

// Cart — корзина одной браузерной сессии; сериализуется в хранилище сессий целиком
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// Totals — суммы по корзине в центах
type Totals struct {
	Subtotal int `json:"subtotal"`
	Tax      int `json:"tax"`
	Shipping int `json:"shipping"`
	Total    int `json:"total"`
}

// Add добавляет позицию. Количество приводится к диапазону [1,10]:
// если пара (товар, вариант) уже в корзине, количества складываются
// и результат снова ограничивается сверху, дубликат строки не создается
func (c *Cart) Add(line CartLine) error {
	if line.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if line.Quantity > MaxQuantity {
		line.Quantity = MaxQuantity
	}
	for i := range c.Lines {
		if c.Lines[i].Key() == line.Key() {
			qty := c.Lines[i].Quantity + line.Quantity
			if qty > MaxQuantity {
				qty = MaxQuantity
			}
			c.Lines[i].Quantity = qty
			return nil
		}
	}
	c.Lines = append(c.Lines, line)
	return nil
}

// Update меняет количество позиции. Ноль и отрицательные значения — ошибка,
// значения больше 10 молча ограничиваются (та же политика, что и в Add)
func (c *Cart) Update(key string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > MaxQuantity {
		quantity = MaxQuantity
	}
	for i := range c.Lines {
		if c.Lines[i].Key() == key {
			c.Lines[i].Quantity = quantity
			return nil
		}
	}
	return ErrLineNotFound
}

// Remove удаляет позицию; отсутствие позиции ошибкой не считается
func (c *Cart) Remove(key string) {
	for i := range c.Lines {
		if c.Lines[i].Key() == key {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// Clear опустошает корзину (вызывается после успешного создания заказа)
func (c *Cart) Clear() {
	c.Lines = nil
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Totals считает суммы по текущим позициям.
// Налог округляется арифметически (половина — вверх), все в целых центах.
// Пустая корзина дает нули; запрет оформления пустой корзины — на уровне выше
func (c *Cart) Totals() Totals {
	var t Totals
	for _, line := range c.Lines {
		t.Subtotal += line.Subtotal()
	}
	t.Tax = (t.Subtotal*TaxRatePercent + 50) / 100
	if t.Subtotal > 0 && t.Subtotal < FreeShippingMin {
		t.Shipping = FlatShippingCost
	}
	t.Total = t.Subtotal + t.Tax + t.Shipping
	return t
}
