package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/tallow-shop/internal/domain/models"
	"github.com/linemk/tallow-shop/internal/service"
	"github.com/linemk/tallow-shop/internal/session/sessionmw"
)

// CartResponse — корзина вместе с пересчитанными суммами
type CartResponse struct {
	Lines  []models.CartLine `json:"lines"`
	Totals models.Totals     `json:"totals"`
}

// AddCartItemRequest — запрос на добавление позиции; цены в запросе нет,
// она всегда берется из каталога
type AddCartItemRequest struct {
	ProductID int64  `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// UpdateCartItemRequest — запрос на изменение количества
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func cartResponse(c *models.Cart) CartResponse {
	lines := c.Lines
	if lines == nil {
		lines = []models.CartLine{}
	}
	return CartResponse{Lines: lines, Totals: c.Totals()}
}

// GetCartHandler обрабатывает GET /api/cart
func GetCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetCartHandler"
		logger := log.With(slog.String("op", op))

		sid, ok := sessionmw.FromContext(r.Context())
		if !ok {
			logger.Error("session not found in context")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		c, _, err := cartService.Get(r.Context(), sid)
		if err != nil {
			logger.Error("failed to load cart", slog.Any("error", err))
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, cartResponse(c))
	}
}

// AddCartItemHandler обрабатывает POST /api/cart/items
func AddCartItemHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddCartItemHandler"
		logger := log.With(slog.String("op", op))

		sid, ok := sessionmw.FromContext(r.Context())
		if !ok {
			logger.Error("session not found in context")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		var req AddCartItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		c, err := cartService.Add(r.Context(), sid, req.ProductID, req.Size, req.Quantity)
		if err != nil {
			logger.Warn("failed to add cart item", slog.Any("error", err))
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, cartResponse(c))
	}
}

// UpdateCartItemHandler обрабатывает PATCH /api/cart/items/{lineKey}
func UpdateCartItemHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateCartItemHandler"
		logger := log.With(slog.String("op", op))

		sid, ok := sessionmw.FromContext(r.Context())
		if !ok {
			logger.Error("session not found in context")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		// Ключ позиции содержит пробел ("1:4 oz") и приходит экранированным
		lineKey, err := url.PathUnescape(chi.URLParam(r, "lineKey"))
		if err != nil || lineKey == "" {
			http.Error(w, "lineKey parameter is required", http.StatusBadRequest)
			return
		}

		var req UpdateCartItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		c, err := cartService.Update(r.Context(), sid, lineKey, req.Quantity)
		if err != nil {
			logger.Warn("failed to update cart item", slog.Any("error", err))
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, cartResponse(c))
	}
}

// RemoveCartItemHandler обрабатывает DELETE /api/cart/items/{lineKey}
func RemoveCartItemHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RemoveCartItemHandler"
		logger := log.With(slog.String("op", op))

		sid, ok := sessionmw.FromContext(r.Context())
		if !ok {
			logger.Error("session not found in context")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		lineKey, err := url.PathUnescape(chi.URLParam(r, "lineKey"))
		if err != nil || lineKey == "" {
			http.Error(w, "lineKey parameter is required", http.StatusBadRequest)
			return
		}

		c, err := cartService.Remove(r.Context(), sid, lineKey)
		if err != nil {
			logger.Error("failed to remove cart item", slog.Any("error", err))
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, cartResponse(c))
	}
}
