package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/linemk/tallow-shop/internal/domain/models"
	"github.com/linemk/tallow-shop/internal/payment"
	"github.com/linemk/tallow-shop/internal/service"
	"github.com/stretchr/testify/assert"
)

func seedPendingOrder(repo *fakeOrderRepo, id, sessionID string, total int) {
	repo.orders[id] = &models.Order{
		ID:                id,
		Status:            models.StatusPending,
		Total:             total,
		CheckoutSessionID: sessionID,
	}
}

func TestConfirmReturn_MarksPaid(t *testing.T) {
	repo := newFakeOrderRepo()
	seedPendingOrder(repo, "order-1", "cs_1", 5898)
	provider := &fakeProvider{status: &payment.SessionStatus{
		ID: "cs_1", OrderID: "order-1", Paid: true, AmountTotal: 5898, PaymentRef: "pi_1",
	}}

	svc := service.NewReconcileService(testLogger(), repo, provider)
	order, err := svc.ConfirmReturn(context.Background(), "cs_1")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPaid, order.Status)
	assert.Equal(t, "pi_1", order.PaymentRef)
}

func TestConfirmReturn_Idempotent(t *testing.T) {
	repo := newFakeOrderRepo()
	seedPendingOrder(repo, "order-1", "cs_1", 5898)
	provider := &fakeProvider{status: &payment.SessionStatus{
		ID: "cs_1", OrderID: "order-1", Paid: true, AmountTotal: 5898, PaymentRef: "pi_1",
	}}
	svc := service.NewReconcileService(testLogger(), repo, provider)

	// Повторный redirect (обновление страницы) не должен ни падать, ни менять заказ
	_, err := svc.ConfirmReturn(context.Background(), "cs_1")
	assert.NoError(t, err)
	order, err := svc.ConfirmReturn(context.Background(), "cs_1")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPaid, order.Status)
}

func TestConfirmReturn_AmountMismatchRefused(t *testing.T) {
	repo := newFakeOrderRepo()
	seedPendingOrder(repo, "order-1", "cs_1", 5898)
	provider := &fakeProvider{status: &payment.SessionStatus{
		ID: "cs_1", OrderID: "order-1", Paid: true, AmountTotal: 100, PaymentRef: "pi_1",
	}}

	svc := service.NewReconcileService(testLogger(), repo, provider)
	_, err := svc.ConfirmReturn(context.Background(), "cs_1")
	assert.ErrorIs(t, err, service.ErrAmountMismatch)

	// Заказ остался pending, ссылки на платеж нет
	order, getErr := repo.GetOrderByID(context.Background(), "order-1")
	assert.NoError(t, getErr)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Empty(t, order.PaymentRef)
}

func TestConfirmReturn_PaymentNotCompleted(t *testing.T) {
	repo := newFakeOrderRepo()
	seedPendingOrder(repo, "order-1", "cs_1", 5898)
	provider := &fakeProvider{status: &payment.SessionStatus{
		ID: "cs_1", OrderID: "order-1", Paid: false, AmountTotal: 0,
	}}

	svc := service.NewReconcileService(testLogger(), repo, provider)
	_, err := svc.ConfirmReturn(context.Background(), "cs_1")
	assert.ErrorIs(t, err, service.ErrPaymentNotCompleted)

	order, _ := repo.GetOrderByID(context.Background(), "order-1")
	assert.Equal(t, models.StatusPending, order.Status)
}

func TestConfirmReturn_ProviderDown(t *testing.T) {
	repo := newFakeOrderRepo()
	seedPendingOrder(repo, "order-1", "cs_1", 5898)
	provider := &fakeProvider{retrieveErr: fmt.Errorf("connection refused")}

	svc := service.NewReconcileService(testLogger(), repo, provider)
	_, err := svc.ConfirmReturn(context.Background(), "cs_1")
	assert.ErrorIs(t, err, service.ErrPaymentUnavailable)
}

func TestCancelReturn_MarksCancelled(t *testing.T) {
	repo := newFakeOrderRepo()
	seedPendingOrder(repo, "order-1", "cs_1", 5898)

	svc := service.NewReconcileService(testLogger(), repo, &fakeProvider{})
	order, err := svc.CancelReturn(context.Background(), "cs_1")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, order.Status)
}

func TestCancelReturn_AfterPaidIsDiscarded(t *testing.T) {
	repo := newFakeOrderRepo()
	seedPendingOrder(repo, "order-1", "cs_1", 5898)
	repo.orders["order-1"].Status = models.StatusPaid
	repo.orders["order-1"].PaymentRef = "pi_1"

	svc := service.NewReconcileService(testLogger(), repo, &fakeProvider{})

	// Первая терминальная запись победила: отмена после оплаты отбрасывается без ошибки
	order, err := svc.CancelReturn(context.Background(), "cs_1")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPaid, order.Status)
	assert.Equal(t, "pi_1", order.PaymentRef)
}

func TestHandleWebhook_CompletedMarksPaid(t *testing.T) {
	repo := newFakeOrderRepo()
	seedPendingOrder(repo, "order-1", "cs_1", 5898)
	provider := &fakeProvider{event: &payment.WebhookEvent{
		Type: payment.EventCheckoutCompleted, SessionID: "cs_1", OrderID: "order-1",
		AmountTotal: 5898, PaymentRef: "pi_1",
	}}

	svc := service.NewReconcileService(testLogger(), repo, provider)
	assert.NoError(t, svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"))

	order, _ := repo.GetOrderByID(context.Background(), "order-1")
	assert.Equal(t, models.StatusPaid, order.Status)
	assert.Equal(t, "pi_1", order.PaymentRef)
}

func TestHandleWebhook_DuplicateCompletedIsIdempotent(t *testing.T) {
	repo := newFakeOrderRepo()
	seedPendingOrder(repo, "order-1", "cs_1", 5898)
	provider := &fakeProvider{event: &payment.WebhookEvent{
		Type: payment.EventCheckoutCompleted, SessionID: "cs_1", OrderID: "order-1",
		AmountTotal: 5898, PaymentRef: "pi_1",
	}}
	svc := service.NewReconcileService(testLogger(), repo, provider)

	assert.NoError(t, svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"))
	assert.NoError(t, svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"),
		"second delivery of the same event must not error")

	order, _ := repo.GetOrderByID(context.Background(), "order-1")
	assert.Equal(t, models.StatusPaid, order.Status)
}

func TestHandleWebhook_InvalidSignatureChangesNothing(t *testing.T) {
	repo := newFakeOrderRepo()
	seedPendingOrder(repo, "order-1", "cs_1", 5898)
	provider := &fakeProvider{parseErr: fmt.Errorf("parse: %w", payment.ErrInvalidSignature)}

	svc := service.NewReconcileService(testLogger(), repo, provider)
	err := svc.HandleWebhook(context.Background(), []byte(`{}`), "bad-sig")
	assert.ErrorIs(t, err, payment.ErrInvalidSignature)

	order, _ := repo.GetOrderByID(context.Background(), "order-1")
	assert.Equal(t, models.StatusPending, order.Status, "forged webhook must never change order status")
}

func TestHandleWebhook_AmountMismatchRefused(t *testing.T) {
	repo := newFakeOrderRepo()
	seedPendingOrder(repo, "order-1", "cs_1", 5898)
	provider := &fakeProvider{event: &payment.WebhookEvent{
		Type: payment.EventCheckoutCompleted, SessionID: "cs_1", OrderID: "order-1",
		AmountTotal: 1, PaymentRef: "pi_1",
	}}

	svc := service.NewReconcileService(testLogger(), repo, provider)
	err := svc.HandleWebhook(context.Background(), []byte(`{}`), "sig")
	assert.ErrorIs(t, err, service.ErrAmountMismatch)

	order, _ := repo.GetOrderByID(context.Background(), "order-1")
	assert.Equal(t, models.StatusPending, order.Status)
}

func TestHandleWebhook_UnknownOrderAnsweredQuietly(t *testing.T) {
	repo := newFakeOrderRepo()
	provider := &fakeProvider{event: &payment.WebhookEvent{
		Type: payment.EventCheckoutCompleted, SessionID: "cs_unknown", OrderID: "order-unknown",
		AmountTotal: 5898,
	}}

	svc := service.NewReconcileService(testLogger(), repo, provider)
	// Неизвестный заказ — не ошибка наружу: отвечаем успехом, не раскрывая существование
	assert.NoError(t, svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"))
}

func TestHandleWebhook_ExpiredCancels(t *testing.T) {
	repo := newFakeOrderRepo()
	seedPendingOrder(repo, "order-1", "cs_1", 5898)
	provider := &fakeProvider{event: &payment.WebhookEvent{
		Type: payment.EventCheckoutExpired, SessionID: "cs_1", OrderID: "order-1",
	}}

	svc := service.NewReconcileService(testLogger(), repo, provider)
	assert.NoError(t, svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"))

	order, _ := repo.GetOrderByID(context.Background(), "order-1")
	assert.Equal(t, models.StatusCancelled, order.Status)
}

func TestHandleWebhook_CompletedAfterCancelDiscarded(t *testing.T) {
	repo := newFakeOrderRepo()
	seedPendingOrder(repo, "order-1", "cs_1", 5898)
	repo.orders["order-1"].Status = models.StatusCancelled
	provider := &fakeProvider{event: &payment.WebhookEvent{
		Type: payment.EventCheckoutCompleted, SessionID: "cs_1", OrderID: "order-1",
		AmountTotal: 5898, PaymentRef: "pi_1",
	}}

	svc := service.NewReconcileService(testLogger(), repo, provider)
	assert.NoError(t, svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"))

	order, _ := repo.GetOrderByID(context.Background(), "order-1")
	assert.Equal(t, models.StatusCancelled, order.Status, "first terminal write wins")
}

func TestHandleWebhook_UnknownEventTypeIgnored(t *testing.T) {
	repo := newFakeOrderRepo()
	seedPendingOrder(repo, "order-1", "cs_1", 5898)
	provider := &fakeProvider{event: &payment.WebhookEvent{Type: "payment_intent.created"}}

	svc := service.NewReconcileService(testLogger(), repo, provider)
	assert.NoError(t, svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"))

	order, _ := repo.GetOrderByID(context.Background(), "order-1")
	assert.Equal(t, models.StatusPending, order.Status)
}
