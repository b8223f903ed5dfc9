package models

import "time"

// OrderStatus — статус жизненного цикла заказа
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusCancelled OrderStatus = "cancelled"
)

// Terminal сообщает, является ли статус конечным: из paid и cancelled переходов нет
func (s OrderStatus) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// Order представляет заказ. Создается в статусе pending до подтверждения оплаты,
// чтобы данные пережили уход пользователя со страницы оплаты.
// Денежные поля после создания не меняются — сверка трогает только статус
// и ссылки на платеж
type Order struct {
	ID            string      `json:"id"`
	CustomerName  string      `json:"customer_name"`
	CustomerEmail string      `json:"customer_email"`
	CustomerPhone string      `json:"customer_phone"`

	ShippingStreet string `json:"shipping_street"`
	ShippingCity   string `json:"shipping_city"`
	ShippingState  string `json:"shipping_state"`
	ShippingZip    string `json:"shipping_zip"`

	// Суммы в центах; инвариант: Total == Subtotal + Tax + ShippingCost
	Subtotal     int `json:"subtotal"`
	Tax          int `json:"tax"`
	ShippingCost int `json:"shipping_cost"`
	Total        int `json:"total"`

	Status OrderStatus `json:"status"`

	// Ссылки на внешнюю платежную систему: сессия hosted checkout и подтвержденный платеж
	CheckoutSessionID string `json:"checkout_session_id,omitempty"`
	PaymentRef        string `json:"payment_ref,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []OrderItem `json:"items,omitempty"`
}

// OrderItem — снимок позиции на момент покупки. Храним название и цену,
// а не ссылку на каталог: цены меняются, заказ должен остаться историческим фактом
type OrderItem struct {
	ID           int64  `json:"id"`
	OrderID      string `json:"order_id"`
	ProductName  string `json:"product_name"`
	ProductSize  string `json:"product_size"`
	ProductPrice int    `json:"product_price"`
	Quantity     int    `json:"quantity"`
	Subtotal     int    `json:"subtotal"`
}
