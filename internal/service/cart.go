package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/tallow-shop/internal/cart"
	"github.com/linemk/tallow-shop/internal/domain/models"
	"github.com/linemk/tallow-shop/internal/storage"
)

// CartService определяет операции над корзиной сессии.
type CartService interface {
	Get(ctx context.Context, sessionID string) (*models.Cart, models.Totals, error)
	Add(ctx context.Context, sessionID string, productID int64, size string, quantity int) (*models.Cart, error)
	Update(ctx context.Context, sessionID, lineKey string, quantity int) (*models.Cart, error)
	Remove(ctx context.Context, sessionID, lineKey string) (*models.Cart, error)
}

type cartService struct {
	log         *slog.Logger
	carts       cart.Store
	productRepo storage.ProductStorage
}

func NewCartService(log *slog.Logger, carts cart.Store, productRepo storage.ProductStorage) CartService {
	return &cartService{
		log:         log,
		carts:       carts,
		productRepo: productRepo,
	}
}

func (s *cartService) Get(ctx context.Context, sessionID string) (*models.Cart, models.Totals, error) {
	const op = "service.CartService.Get"

	c, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, models.Totals{}, fmt.Errorf("%s: failed to load cart: %w", op, err)
	}
	return c, c.Totals(), nil
}

// Add кладет вариант товара в корзину. Цена берется из каталога,
// клиентская цена нигде не участвует
func (s *cartService) Add(ctx context.Context, sessionID string, productID int64, size string, quantity int) (*models.Cart, error) {
	const op = "service.CartService.Add"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", productID), slog.String("size", size))

	variant, err := s.productRepo.GetVariant(ctx, productID, size)
	if err != nil {
		logger.Warn("variant lookup failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to load cart: %w", op, err)
	}

	line := models.CartLine{
		ProductID: variant.ProductID,
		Name:      variant.ProductName,
		Size:      variant.Size,
		UnitPrice: variant.Price,
		Quantity:  quantity,
	}
	if err := c.Add(line); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.carts.Save(ctx, sessionID, c); err != nil {
		return nil, fmt.Errorf("%s: failed to save cart: %w", op, err)
	}
	logger.Info("item added to cart", slog.Int("quantity", quantity))
	return c, nil
}

func (s *cartService) Update(ctx context.Context, sessionID, lineKey string, quantity int) (*models.Cart, error) {
	const op = "service.CartService.Update"

	c, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to load cart: %w", op, err)
	}
	if err := c.Update(lineKey, quantity); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.carts.Save(ctx, sessionID, c); err != nil {
		return nil, fmt.Errorf("%s: failed to save cart: %w", op, err)
	}
	return c, nil
}

func (s *cartService) Remove(ctx context.Context, sessionID, lineKey string) (*models.Cart, error) {
	const op = "service.CartService.Remove"

	c, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to load cart: %w", op, err)
	}
	c.Remove(lineKey)
	if err := s.carts.Save(ctx, sessionID, c); err != nil {
		return nil, fmt.Errorf("%s: failed to save cart: %w", op, err)
	}
	return c, nil
}
