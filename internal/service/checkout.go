package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/linemk/tallow-shop/internal/cart"
	"github.com/linemk/tallow-shop/internal/domain/models"
	"github.com/linemk/tallow-shop/internal/payment"
	"github.com/linemk/tallow-shop/internal/storage"
)

// CheckoutInput — данные формы оформления заказа с тегами валидации
type CheckoutInput struct {
	CustomerName   string `json:"customer_name" validate:"required,min=2,max=100"`
	CustomerEmail  string `json:"customer_email" validate:"required,email,max=120"`
	CustomerPhone  string `json:"customer_phone" validate:"required,usphone"`
	ShippingStreet string `json:"shipping_street" validate:"required,min=5,max=200"`
	ShippingCity   string `json:"shipping_city" validate:"required,min=2,max=100"`
	ShippingState  string `json:"shipping_state" validate:"required,min=2,max=50"`
	ShippingZip    string `json:"shipping_zip" validate:"required,uszip"`
}

// CheckoutResult — созданный заказ и адрес hosted-страницы оплаты для redirect-а
type CheckoutResult struct {
	OrderID     string `json:"order_id"`
	CheckoutURL string `json:"checkout_url"`
}

// CheckoutService определяет оформление заказа.
type CheckoutService interface {
	Checkout(ctx context.Context, sessionID string, input CheckoutInput) (*CheckoutResult, error)
}

type checkoutService struct {
	log       *slog.Logger
	db        *sql.DB
	carts     cart.Store
	orderRepo storage.OrderStorage
	provider  payment.Provider
}

func NewCheckoutService(log *slog.Logger, db *sql.DB, carts cart.Store, orderRepo storage.OrderStorage, provider payment.Provider) CheckoutService {
	return &checkoutService{
		log:       log,
		db:        db,
		carts:     carts,
		orderRepo: orderRepo,
		provider:  provider,
	}
}

var (
	// Шаблоны как в форме оформления: 10-значный телефон США и ZIP/ZIP+4
	phonePattern = regexp.MustCompile(`^\(?([0-9]{3})\)?[-.\s]?([0-9]{3})[-.\s]?([0-9]{4})$`)
	zipPattern   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

	validate = newCheckoutValidator()
)

func newCheckoutValidator() *validator.Validate {
	v := validator.New()
	// Имена полей в ошибках — из json-тегов, чтобы форма могла их сопоставить
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("usphone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("uszip", func(fl validator.FieldLevel) bool {
		return zipPattern.MatchString(fl.Field().String())
	})
	return v
}

// validateCheckoutInput собирает сообщения по всем непрошедшим полям сразу
func validateCheckoutInput(input CheckoutInput) *ValidationError {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationError{Fields: map[string]string{"": err.Error()}}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "please enter a valid email address"
	case "usphone":
		return "please enter a valid 10-digit US phone number (e.g. 555-123-4567)"
	case "uszip":
		return "please enter a valid ZIP code (e.g. 90210 or 90210-1234)"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return "invalid value"
	}
}

// Checkout выполняет оформление как единое целое: валидация, пересчет сумм
// на сервере, атомарное создание заказа со снимками позиций, запрос платежной
// сессии и очистка корзины. Если провайдер недоступен, заказ остается pending
// без ссылки на сессию, а корзина сохраняется, чтобы пользователь мог повторить
func (s *checkoutService) Checkout(ctx context.Context, sessionID string, input CheckoutInput) (*CheckoutResult, error) {
	const op = "service.CheckoutService.Checkout"
	logger := s.log.With(slog.String("op", op))

	if verr := validateCheckoutInput(input); verr != nil {
		logger.Info("checkout form rejected", slog.Int("invalidFields", len(verr.Fields)))
		return nil, verr
	}

	c, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		logger.Error("failed to load cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to load cart: %w", op, err)
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	// Суммы считаем только из позиций корзины; присланным клиентом суммам не доверяем
	totals := c.Totals()

	order := &models.Order{
		ID:             uuid.NewString(),
		CustomerName:   input.CustomerName,
		CustomerEmail:  input.CustomerEmail,
		CustomerPhone:  input.CustomerPhone,
		ShippingStreet: input.ShippingStreet,
		ShippingCity:   input.ShippingCity,
		ShippingState:  input.ShippingState,
		ShippingZip:    input.ShippingZip,
		Subtotal:       totals.Subtotal,
		Tax:            totals.Tax,
		ShippingCost:   totals.Shipping,
		Total:          totals.Total,
		Status:         models.StatusPending,
	}

	items := make([]models.OrderItem, 0, len(c.Lines))
	for _, line := range c.Lines {
		items = append(items, models.OrderItem{
			ProductName:  line.Name,
			ProductSize:  line.Size,
			ProductPrice: line.UnitPrice,
			Quantity:     line.Quantity,
			Subtotal:     line.Subtotal(),
		})
	}

	logger = logger.With(slog.String("orderID", order.ID))
	logger.Info("starting order transaction", slog.Int("total", order.Total))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	// Заказ и снимки позиций — все или ничего
	if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create order: %w", op, err)
	}
	if err := s.orderRepo.CreateOrderItems(ctx, tx, order.ID, items); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create order items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create order items: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	// Запрашиваем hosted-сессию оплаты; сумма строк должна совпасть с Order.Total
	sess, err := s.provider.CreateCheckoutSession(ctx, order.ID, checkoutItems(items, totals))
	if err != nil {
		// Заказ уже записан и остается pending; корзину не чистим, чтобы можно было повторить
		logger.Error("failed to create payment session", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, ErrPaymentUnavailable)
	}

	if err := s.orderRepo.SetCheckoutSession(ctx, order.ID, sess.ID); err != nil {
		// Сверка по webhook все равно найдет заказ: его идентификатор уехал
		// провайдеру в метаданных сессии
		logger.Error("failed to store checkout session ref", slog.Any("error", err))
	}

	if err := s.carts.Delete(ctx, sessionID); err != nil {
		logger.Error("failed to clear cart", slog.Any("error", err))
	}

	logger.Info("checkout completed", slog.String("checkoutSessionID", sess.ID))
	return &CheckoutResult{OrderID: order.ID, CheckoutURL: sess.URL}, nil
}

// checkoutItems собирает строки платежной сессии: позиции заказа плюс
// доставка и налог отдельными строками, чтобы сумма у провайдера
// равнялась Order.Total цент в цент
func checkoutItems(items []models.OrderItem, totals models.Totals) []payment.CheckoutItem {
	out := make([]payment.CheckoutItem, 0, len(items)+2)
	for _, item := range items {
		out = append(out, payment.CheckoutItem{
			Name:      fmt.Sprintf("%s (%s)", item.ProductName, item.ProductSize),
			UnitPrice: int64(item.ProductPrice),
			Quantity:  int64(item.Quantity),
		})
	}
	if totals.Shipping > 0 {
		out = append(out, payment.CheckoutItem{Name: "Shipping", UnitPrice: int64(totals.Shipping), Quantity: 1})
	}
	if totals.Tax > 0 {
		out = append(out, payment.CheckoutItem{Name: "Sales Tax", UnitPrice: int64(totals.Tax), Quantity: 1})
	}
	return out
}
