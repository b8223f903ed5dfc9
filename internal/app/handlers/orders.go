package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/tallow-shop/internal/domain/models"
	"github.com/linemk/tallow-shop/internal/storage"
)

// Операторский срез заказов для внешней сверки: идентификатор, статус,
// суммы и обе платежные ссылки

// OrdersResponse — список заказов для аудита
type OrdersResponse struct {
	Orders []OrderAuditView `json:"orders"`
}

// OrderAuditView — представление заказа для операторских инструментов
type OrderAuditView struct {
	ID                string             `json:"id"`
	Status            models.OrderStatus `json:"status"`
	Subtotal          int                `json:"subtotal"`
	Tax               int                `json:"tax"`
	ShippingCost      int                `json:"shipping_cost"`
	Total             int                `json:"total"`
	CheckoutSessionID string             `json:"checkout_session_id"`
	PaymentRef        string             `json:"payment_ref"`
	CreatedAt         string             `json:"created_at"`
}

func auditView(order *models.Order) OrderAuditView {
	return OrderAuditView{
		ID:                order.ID,
		Status:            order.Status,
		Subtotal:          order.Subtotal,
		Tax:               order.Tax,
		ShippingCost:      order.ShippingCost,
		Total:             order.Total,
		CheckoutSessionID: order.CheckoutSessionID,
		PaymentRef:        order.PaymentRef,
		CreatedAt:         order.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// ListOrdersHandler обрабатывает GET /api/admin/orders
func ListOrdersHandler(log *slog.Logger, orderRepo storage.OrderStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListOrdersHandler"
		logger := log.With(slog.String("op", op))

		orders, err := orderRepo.ListOrders(r.Context())
		if err != nil {
			logger.Error("failed to list orders", slog.Any("error", err))
			writeServiceError(w, logger, err)
			return
		}

		views := make([]OrderAuditView, 0, len(orders))
		for _, order := range orders {
			views = append(views, auditView(order))
		}
		writeJSON(w, logger, http.StatusOK, OrdersResponse{Orders: views})
	}
}

// GetOrderHandler обрабатывает GET /api/admin/orders/{orderID} — заказ с позициями
func GetOrderHandler(log *slog.Logger, orderRepo storage.OrderStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetOrderHandler"
		logger := log.With(slog.String("op", op))

		orderID := chi.URLParam(r, "orderID")
		if orderID == "" {
			http.Error(w, "orderID parameter is required", http.StatusBadRequest)
			return
		}

		order, err := orderRepo.GetOrderByID(r.Context(), orderID)
		if err != nil {
			logger.Warn("failed to get order", slog.Any("error", err))
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, order)
	}
}
