package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/linemk/tallow-shop/internal/service"
	"github.com/linemk/tallow-shop/internal/session/sessionmw"
)

// CheckoutHandler обрабатывает POST /api/checkout: форма оформления заказа,
// в ответе — адрес hosted-страницы оплаты для redirect-а
func CheckoutHandler(log *slog.Logger, checkoutService service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CheckoutHandler"
		logger := log.With(slog.String("op", op))

		sid, ok := sessionmw.FromContext(r.Context())
		if !ok {
			logger.Error("session not found in context")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		var input service.CheckoutInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		result, err := checkoutService.Checkout(r.Context(), sid, input)
		if err != nil {
			logger.Warn("checkout failed", slog.Any("error", err))
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, result)
	}
}
