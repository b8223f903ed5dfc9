package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/linemk/tallow-shop/internal/domain/models"
	"github.com/linemk/tallow-shop/internal/payment"
	"github.com/linemk/tallow-shop/internal/service"
	"github.com/linemk/tallow-shop/internal/storage"
)

// writeJSON кодирует ответ; ошибка кодирования здесь уже не исправима, только лог
func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("failed to encode response", slog.Any("error", err))
	}
}

// ValidationResponse — ответ с ошибками по полям формы
type ValidationResponse struct {
	Errors map[string]string `json:"errors"`
}

// ErrorResponse — простой ответ с сообщением об ошибке
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeServiceError переводит ошибки ядра в HTTP-статусы.
// Ошибки пользовательского ввода наружу уходят подробно,
// внутренние — только общим сообщением
func writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, log, http.StatusUnprocessableEntity, ValidationResponse{Errors: verr.Fields})
	case errors.Is(err, models.ErrInvalidQuantity):
		writeJSON(w, log, http.StatusUnprocessableEntity,
			ValidationResponse{Errors: map[string]string{"quantity": "quantity must be a positive integer"}})
	case errors.Is(err, service.ErrEmptyCart):
		writeJSON(w, log, http.StatusConflict, ErrorResponse{Error: "cart is empty"})
	case errors.Is(err, models.ErrLineNotFound),
		errors.Is(err, storage.ErrOrderNotFound),
		errors.Is(err, storage.ErrProductNotFound),
		errors.Is(err, storage.ErrVariantNotFound):
		writeJSON(w, log, http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, service.ErrPaymentUnavailable):
		writeJSON(w, log, http.StatusBadGateway,
			ErrorResponse{Error: "payment provider is temporarily unavailable, please try again"})
	case errors.Is(err, service.ErrPaymentNotCompleted):
		writeJSON(w, log, http.StatusPaymentRequired, ErrorResponse{Error: "payment is not completed"})
	case errors.Is(err, service.ErrAmountMismatch), errors.Is(err, payment.ErrInvalidSignature):
		writeJSON(w, log, http.StatusBadRequest, ErrorResponse{Error: "bad request"})
	default:
		writeJSON(w, log, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}
