package payment

import (
	"context"
	"errors"
)

// Платежи идут через hosted checkout: провайдер сам показывает платежную
// страницу, мы никогда не видим карточные данные. Здесь — только контракт
// с провайдером, ядро от конкретного SDK не зависит

// ErrInvalidSignature — подпись webhook-события не прошла проверку
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Типы событий провайдера, которые обрабатывает сверка
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
)

// CheckoutItem — строка платежной сессии (товар, доставка или налог)
type CheckoutItem struct {
	Name      string
	UnitPrice int64 // в центах
	Quantity  int64
}

// Session — созданная платежная сессия: идентификатор и URL hosted-страницы
type Session struct {
	ID  string
	URL string
}

// SessionStatus — состояние платежной сессии по данным провайдера
type SessionStatus struct {
	ID          string
	OrderID     string // наш идентификатор заказа, переданный как метаданные
	Paid        bool
	AmountTotal int64 // фактически оплаченная сумма в центах
	PaymentRef  string
}

// WebhookEvent — разобранное и (при настроенном секрете) проверенное событие webhook
type WebhookEvent struct {
	Type        string
	SessionID   string
	OrderID     string
	AmountTotal int64
	PaymentRef  string
}

// Provider — внешний платежный провайдер
type Provider interface {
	// CreateCheckoutSession создает hosted-сессию оплаты; orderID уходит
	// провайдеру как опаковые метаданные и возвращается в событиях
	CreateCheckoutSession(ctx context.Context, orderID string, items []CheckoutItem) (*Session, error)
	// RetrieveSession перечитывает состояние сессии у провайдера;
	// redirect-у верить нельзя, сумму и статус проверяем только здесь
	RetrieveSession(ctx context.Context, sessionID string) (*SessionStatus, error)
	// ParseWebhook проверяет подпись (если настроен секрет) и разбирает событие
	ParseWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error)
}
