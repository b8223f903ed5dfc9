package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/tallow-shop/internal/storage"
)

// ProductHandler обрабатывает GET /api/product — данные страницы товара
func ProductHandler(log *slog.Logger, productRepo storage.ProductStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductHandler"
		logger := log.With(slog.String("op", op))

		product, err := productRepo.GetCatalogProduct(r.Context())
		if err != nil {
			logger.Error("failed to load catalog product", slog.Any("error", err))
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, product)
	}
}
