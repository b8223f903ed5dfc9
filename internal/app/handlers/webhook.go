package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/linemk/tallow-shop/internal/service"
)

// верхняя граница размера webhook-события
const maxWebhookBody = 64 << 10

// WebhookResponse подтверждает прием события
type WebhookResponse struct {
	Received bool `json:"received"`
}

// StripeWebhookHandler обрабатывает POST /api/webhooks/stripe.
// События приходят асинхронно, не по порядку и возможно повторно;
// вся идемпотентность — в сервисе сверки
func StripeWebhookHandler(log *slog.Logger, reconcile service.ReconcileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.StripeWebhookHandler"
		logger := log.With(slog.String("op", op))

		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
		if err != nil {
			logger.Error("failed to read webhook body", slog.Any("error", err))
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		if err := reconcile.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
			// Плохая подпись или расхождение суммы — 400, провайдер повторит доставку
			logger.Warn("webhook rejected", slog.Any("error", err))
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, WebhookResponse{Received: true})
	}
}
