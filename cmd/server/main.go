package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linemk/tallow-shop/internal/app"
	"github.com/linemk/tallow-shop/internal/app/handlers"
	"github.com/linemk/tallow-shop/internal/app/handlers/adminauth"
	"github.com/linemk/tallow-shop/internal/config"
	"github.com/linemk/tallow-shop/internal/lib/logger"
	"github.com/linemk/tallow-shop/internal/lib/logger/handlers/urllog"
	"github.com/linemk/tallow-shop/internal/payment"
	"github.com/linemk/tallow-shop/internal/service"
	"github.com/linemk/tallow-shop/internal/session/sessionmw"
	"github.com/linemk/tallow-shop/internal/storage"
	"github.com/pkg/errors"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД и Redis
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.Close()

	if cfg.Payment.WebhookSecret == "" {
		log.Warn("STRIPE_WEBHOOK_SECRET is not set, webhook signatures will not be verified")
	}

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// реализация слоев по работе с БД по каждому направлению
	orderRepo := storage.NewOrderRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)

	// платежный провайдер (Stripe hosted checkout)
	provider := payment.NewStripeProvider(
		cfg.Payment.SecretKey,
		cfg.Payment.WebhookSecret,
		cfg.Payment.Currency,
		cfg.Payment.SuccessURL,
		cfg.Payment.CancelURL,
		cfg.Payment.Timeout,
	)

	cartService := service.NewCartService(application.Logger, application.Carts, productRepo)
	checkoutService := service.NewCheckoutService(application.Logger, application.DB, application.Carts, orderRepo, provider)
	reconcileService := service.NewReconcileService(application.Logger, orderRepo, provider)

	// каталог и health — без сессии
	router.Get("/api/product", handlers.ProductHandler(application.Logger, productRepo))
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := application.DB.PingContext(r.Context()); err != nil {
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	router.Group(func(r chi.Router) {
		sessionMW := sessionmw.NewSessionMiddleware(time.Duration(cfg.Session.TokenTTL) * time.Minute)
		r.Use(sessionMW)
		// эндпоинты корзины
		r.Get("/api/cart", handlers.GetCartHandler(application.Logger, cartService))
		r.Post("/api/cart/items", handlers.AddCartItemHandler(application.Logger, cartService))
		r.Patch("/api/cart/items/{lineKey}", handlers.UpdateCartItemHandler(application.Logger, cartService))
		r.Delete("/api/cart/items/{lineKey}", handlers.RemoveCartItemHandler(application.Logger, cartService))
		// оформление заказа
		r.Post("/api/checkout", handlers.CheckoutHandler(application.Logger, checkoutService))
	})

	// возвраты с hosted-страницы оплаты и webhook провайдера — сессия не нужна
	router.Get("/api/checkout/success", handlers.CheckoutSuccessHandler(application.Logger, reconcileService))
	router.Get("/api/checkout/cancel", handlers.CheckoutCancelHandler(application.Logger, reconcileService))
	router.Post("/api/webhooks/stripe", handlers.StripeWebhookHandler(application.Logger, reconcileService))

	// операторские эндпоинты для аудита заказов
	router.Group(func(r chi.Router) {
		r.Use(adminauth.NewAdminMiddleware(cfg.Admin.Username))
		r.Get("/api/admin/orders", handlers.ListOrdersHandler(application.Logger, orderRepo))
		r.Get("/api/admin/orders/{orderID}", handlers.GetOrderHandler(application.Logger, orderRepo))
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
