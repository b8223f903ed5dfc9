package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/linemk/tallow-shop/internal/domain/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("product variant not found")
)

// ProductStorage описывает методы для работы с каталогом.
type ProductStorage interface {
	// GetCatalogProduct возвращает товар витрины вместе с вариантами.
	GetCatalogProduct(ctx context.Context) (*models.Product, error)
	// GetVariant возвращает вариант товара; отсюда берется цена для корзины —
	// клиентским ценам не доверяем.
	GetVariant(ctx context.Context, productID int64, size string) (*models.Variant, error)
}

// productRepository — конкретная реализация ProductStorage.
type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт новый репозиторий каталога.
func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

func (r *productRepository) GetCatalogProduct(ctx context.Context) (*models.Product, error) {
	product := &models.Product{}
	// Витрина пока с одним товаром
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, description, ingredients, benefits FROM products ORDER BY id LIMIT 1")
	if err := row.Scan(&product.ID, &product.Name, &product.Description,
		pq.Array(&product.Ingredients), pq.Array(&product.Benefits)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, product_id, size, price FROM product_variants WHERE product_id = $1 ORDER BY price",
		product.ID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var v models.Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Size, &v.Price); err != nil {
			return nil, err
		}
		product.Variants = append(product.Variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return product, nil
}

func (r *productRepository) GetVariant(ctx context.Context, productID int64, size string) (*models.Variant, error) {
	v := &models.Variant{}
	// JOIN с products, чтобы сразу получить название для снимка в корзине
	row := r.db.QueryRowContext(ctx,
		`SELECT v.id, v.product_id, p.name, v.size, v.price
		 FROM product_variants v
		 JOIN products p ON v.product_id = p.id
		 WHERE v.product_id = $1 AND v.size = $2`,
		productID, size,
	)
	if err := row.Scan(&v.ID, &v.ProductID, &v.ProductName, &v.Size, &v.Price); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVariantNotFound
		}
		return nil, err
	}
	return v, nil
}
