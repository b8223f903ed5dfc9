package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/tallow-shop/internal/domain/models"
	"github.com/linemk/tallow-shop/internal/service"
)

// OrderSummary — итог заказа для страницы возврата с оплаты
type OrderSummary struct {
	OrderID           string             `json:"order_id"`
	Status            models.OrderStatus `json:"status"`
	Total             int                `json:"total"`
	CheckoutSessionID string             `json:"checkout_session_id,omitempty"`
	PaymentRef        string             `json:"payment_ref,omitempty"`
}

func orderSummary(order *models.Order) OrderSummary {
	return OrderSummary{
		OrderID:           order.ID,
		Status:            order.Status,
		Total:             order.Total,
		CheckoutSessionID: order.CheckoutSessionID,
		PaymentRef:        order.PaymentRef,
	}
}

// CheckoutSuccessHandler обрабатывает GET /api/checkout/success?session_id=...
// Возврат браузера после оплаты; сам по себе он ничего не доказывает,
// потому статус и сумма перепроверяются у провайдера внутри сервиса
func CheckoutSuccessHandler(log *slog.Logger, reconcile service.ReconcileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CheckoutSuccessHandler"
		logger := log.With(slog.String("op", op))

		sessionID := r.URL.Query().Get("session_id")
		if sessionID == "" {
			http.Error(w, "session_id parameter is required", http.StatusBadRequest)
			return
		}

		order, err := reconcile.ConfirmReturn(r.Context(), sessionID)
		if err != nil {
			logger.Warn("payment confirmation failed", slog.Any("error", err))
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, orderSummary(order))
	}
}

// CheckoutCancelHandler обрабатывает GET /api/checkout/cancel?session_id=...
func CheckoutCancelHandler(log *slog.Logger, reconcile service.ReconcileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CheckoutCancelHandler"
		logger := log.With(slog.String("op", op))

		sessionID := r.URL.Query().Get("session_id")
		if sessionID == "" {
			http.Error(w, "session_id parameter is required", http.StatusBadRequest)
			return
		}

		order, err := reconcile.CancelReturn(r.Context(), sessionID)
		if err != nil {
			logger.Warn("payment cancellation failed", slog.Any("error", err))
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, orderSummary(order))
	}
}
