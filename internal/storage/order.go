package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/tallow-shop/internal/domain/models"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderStorage описывает методы для работы с заказами.
type OrderStorage interface {
	// CreateOrder вставляет заказ в таблицу orders внутри переданной транзакции.
	CreateOrder(ctx context.Context, tx *sql.Tx, order *models.Order) error
	// CreateOrderItems вставляет снимки позиций заказа в той же транзакции:
	// заказ и позиции либо записываются целиком, либо не записываются вовсе.
	CreateOrderItems(ctx context.Context, tx *sql.Tx, orderID string, items []models.OrderItem) error
	// SetCheckoutSession записывает ссылку на платежную сессию провайдера.
	SetCheckoutSession(ctx context.Context, orderID, sessionID string) error
	// TransitionStatus — условное обновление статуса (compare-and-set):
	// запись происходит только если заказ все еще pending. Возвращает,
	// применился ли переход, и фактический текущий статус.
	TransitionStatus(ctx context.Context, orderID string, target models.OrderStatus, paymentRef string) (bool, models.OrderStatus, error)
	// GetOrderByID возвращает заказ вместе с позициями.
	GetOrderByID(ctx context.Context, orderID string) (*models.Order, error)
	// GetOrderByCheckoutSession находит заказ по ссылке на платежную сессию.
	GetOrderByCheckoutSession(ctx context.Context, sessionID string) (*models.Order, error)
	// ListOrders возвращает заказы для аудита (без позиций), новые первыми.
	ListOrders(ctx context.Context) ([]*models.Order, error)
}

// orderRepository — конкретная реализация OrderStorage.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт новый репозиторий заказов.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

const orderColumns = `id, customer_name, customer_email, customer_phone,
	       shipping_street, shipping_city, shipping_state, shipping_zip,
	       subtotal, tax, shipping_cost, total, status,
	       COALESCE(checkout_session_id, ''), COALESCE(payment_ref, ''),
	       created_at, updated_at`

func (r *orderRepository) CreateOrder(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	query := `INSERT INTO orders
	          (id, customer_name, customer_email, customer_phone,
	           shipping_street, shipping_city, shipping_state, shipping_zip,
	           subtotal, tax, shipping_cost, total, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())`
	_, err := tx.ExecContext(ctx, query,
		order.ID, order.CustomerName, order.CustomerEmail, order.CustomerPhone,
		order.ShippingStreet, order.ShippingCity, order.ShippingState, order.ShippingZip,
		order.Subtotal, order.Tax, order.ShippingCost, order.Total, order.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *orderRepository) CreateOrderItems(ctx context.Context, tx *sql.Tx, orderID string, items []models.OrderItem) error {
	query := `INSERT INTO order_items (order_id, product_name, product_size, product_price, quantity, subtotal)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	for _, item := range items {
		_, err := tx.ExecContext(ctx, query,
			orderID, item.ProductName, item.ProductSize, item.ProductPrice, item.Quantity, item.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}
	return nil
}

func (r *orderRepository) SetCheckoutSession(ctx context.Context, orderID, sessionID string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE orders SET checkout_session_id = $2, updated_at = NOW() WHERE id = $1",
		orderID, sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to set checkout session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// TransitionStatus пишет статус только если заказ все еще pending — это и есть
// защита от гонки redirect-а и webhook-а: победивший переход терминален,
// опоздавший получает applied=false и фактический статус. Пустой paymentRef
// существующую ссылку не затирает
func (r *orderRepository) TransitionStatus(ctx context.Context, orderID string, target models.OrderStatus, paymentRef string) (bool, models.OrderStatus, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders
		 SET status = $2, payment_ref = COALESCE(NULLIF($3, ''), payment_ref), updated_at = NOW()
		 WHERE id = $1 AND status = $4`,
		orderID, target, paymentRef, models.StatusPending,
	)
	if err != nil {
		return false, "", fmt.Errorf("failed to transition order status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, "", err
	}
	if affected > 0 {
		return true, target, nil
	}

	// Переход не применился: заказ либо не существует, либо уже не pending
	var current models.OrderStatus
	row := r.db.QueryRowContext(ctx, "SELECT status FROM orders WHERE id = $1", orderID)
	if err := row.Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, "", ErrOrderNotFound
		}
		return false, "", err
	}
	return false, current, nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, orderID string) (*models.Order, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", orderID)
	order, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetOrderByCheckoutSession(ctx context.Context, sessionID string) (*models.Order, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE checkout_session_id = $1", sessionID)
	order, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) ListOrders(ctx context.Context) ([]*models.Order, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) loadItems(ctx context.Context, order *models.Order) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, product_name, product_size, product_price, quantity, subtotal
		 FROM order_items WHERE order_id = $1 ORDER BY id`,
		order.ID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductName, &item.ProductSize,
			&item.ProductPrice, &item.Quantity, &item.Subtotal); err != nil {
			return err
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

// scanner покрывает и *sql.Row, и *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(
		&order.ID, &order.CustomerName, &order.CustomerEmail, &order.CustomerPhone,
		&order.ShippingStreet, &order.ShippingCity, &order.ShippingState, &order.ShippingZip,
		&order.Subtotal, &order.Tax, &order.ShippingCost, &order.Total, &order.Status,
		&order.CheckoutSessionID, &order.PaymentRef,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}
