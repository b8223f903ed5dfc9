package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/tallow-shop/internal/domain/models"
	"github.com/linemk/tallow-shop/internal/payment"
	"github.com/linemk/tallow-shop/internal/storage"
)

// ReconcileService сводит заказ к итоговому статусу по платежным событиям.
// Два независимых пути — redirect браузера и webhook провайдера — гоняются
// друг с другом и могут дублироваться; оба сходятся в transition,
// где условное обновление в БД гарантирует ровно одну терминальную запись
type ReconcileService interface {
	// ConfirmReturn — redirect об успешной оплате; статус и сумма
	// перепроверяются у провайдера, самому redirect-у не верим
	ConfirmReturn(ctx context.Context, checkoutSessionID string) (*models.Order, error)
	// CancelReturn — пользователь отказался от оплаты на hosted-странице
	CancelReturn(ctx context.Context, checkoutSessionID string) (*models.Order, error)
	// HandleWebhook — асинхронное событие провайдера (возможно, повторное)
	HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error
}

type reconcileService struct {
	log       *slog.Logger
	orderRepo storage.OrderStorage
	provider  payment.Provider
}

func NewReconcileService(log *slog.Logger, orderRepo storage.OrderStorage, provider payment.Provider) ReconcileService {
	return &reconcileService{
		log:       log,
		orderRepo: orderRepo,
		provider:  provider,
	}
}

func (s *reconcileService) ConfirmReturn(ctx context.Context, checkoutSessionID string) (*models.Order, error) {
	const op = "service.ReconcileService.ConfirmReturn"
	logger := s.log.With(slog.String("op", op), slog.String("checkoutSessionID", checkoutSessionID))

	status, err := s.provider.RetrieveSession(ctx, checkoutSessionID)
	if err != nil {
		logger.Error("failed to retrieve payment session", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, ErrPaymentUnavailable)
	}

	order, err := s.findOrder(ctx, checkoutSessionID, status.OrderID)
	if err != nil {
		logger.Warn("order lookup failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !status.Paid {
		logger.Info("payment not completed yet, order stays pending", slog.String("orderID", order.ID))
		return nil, fmt.Errorf("%s: %w", op, ErrPaymentNotCompleted)
	}
	// URL возврата можно подделать или повторить; сумму сверяем с заказом
	if status.AmountTotal != int64(order.Total) {
		logger.Warn("payment amount mismatch, transition refused",
			slog.String("orderID", order.ID),
			slog.Int64("amountPaid", status.AmountTotal),
			slog.Int("orderTotal", order.Total),
		)
		return nil, fmt.Errorf("%s: %w", op, ErrAmountMismatch)
	}

	if err := s.transition(ctx, order.ID, models.StatusPaid, status.PaymentRef); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.orderRepo.GetOrderByID(ctx, order.ID)
}

func (s *reconcileService) CancelReturn(ctx context.Context, checkoutSessionID string) (*models.Order, error) {
	const op = "service.ReconcileService.CancelReturn"
	logger := s.log.With(slog.String("op", op), slog.String("checkoutSessionID", checkoutSessionID))

	order, err := s.orderRepo.GetOrderByCheckoutSession(ctx, checkoutSessionID)
	if err != nil {
		logger.Warn("order lookup failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.transition(ctx, order.ID, models.StatusCancelled, ""); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.orderRepo.GetOrderByID(ctx, order.ID)
}

func (s *reconcileService) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	const op = "service.ReconcileService.HandleWebhook"
	logger := s.log.With(slog.String("op", op))

	event, err := s.provider.ParseWebhook(payload, signatureHeader)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			// Подпись не сошлась — возможно, подделка; ничего не меняем
			logger.Warn("webhook signature verification failed", slog.Any("error", err))
			return fmt.Errorf("%s: %w", op, err)
		}
		logger.Error("failed to parse webhook", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	logger = logger.With(slog.String("eventType", event.Type), slog.String("checkoutSessionID", event.SessionID))

	var target models.OrderStatus
	switch event.Type {
	case payment.EventCheckoutCompleted:
		target = models.StatusPaid
	case payment.EventCheckoutExpired:
		target = models.StatusCancelled
	default:
		logger.Debug("ignoring webhook event type")
		return nil
	}

	order, err := s.findOrder(ctx, event.SessionID, event.OrderID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			// Неизвестный заказ: логируем и отвечаем успехом, чтобы не
			// подсказывать злоумышленнику, какие идентификаторы существуют
			logger.Warn("webhook references unknown order", slog.String("orderID", event.OrderID))
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if target == models.StatusPaid && event.AmountTotal != int64(order.Total) {
		logger.Warn("webhook amount mismatch, transition refused",
			slog.String("orderID", order.ID),
			slog.Int64("amountPaid", event.AmountTotal),
			slog.Int("orderTotal", order.Total),
		)
		return fmt.Errorf("%s: %w", op, ErrAmountMismatch)
	}

	if err := s.transition(ctx, order.ID, target, event.PaymentRef); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// findOrder ищет заказ по ссылке на платежную сессию, а если она не записалась
// при оформлении — по идентификатору заказа из метаданных провайдера
func (s *reconcileService) findOrder(ctx context.Context, checkoutSessionID, orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByCheckoutSession(ctx, checkoutSessionID)
	if err == nil {
		return order, nil
	}
	if errors.Is(err, storage.ErrOrderNotFound) && orderID != "" {
		return s.orderRepo.GetOrderByID(ctx, orderID)
	}
	return nil, err
}

// transition — единая точка смены статуса. Повторный переход в тот же статус —
// успешный no-op; конфликтующая запись после терминального статуса
// логируется и отбрасывается: побеждает первая терминальная запись
func (s *reconcileService) transition(ctx context.Context, orderID string, target models.OrderStatus, paymentRef string) error {
	logger := s.log.With(slog.String("orderID", orderID), slog.String("target", string(target)))

	applied, current, err := s.orderRepo.TransitionStatus(ctx, orderID, target, paymentRef)
	if err != nil {
		logger.Error("status transition failed", slog.Any("error", err))
		return err
	}
	if applied {
		logger.Info("order status transitioned")
		return nil
	}
	if current == target {
		logger.Info("duplicate transition, already in target status")
		return nil
	}
	logger.Warn("conflicting transition discarded, order already terminal",
		slog.String("current", string(current)))
	return nil
}
