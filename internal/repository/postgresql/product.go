package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"

	"github.com/ecomshop/order-engine/internal/db"
	"github.com/ecomshop/order-engine/internal/repository"
)

type ProductRepo struct {
	db db.DB
}

func NewProductRepo(db db.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*repository.Product, error) {
	var product repository.Product
	err := r.db.Get(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &product, nil
}

// GetByIDTx locks the product row so concurrent stock adjustments serialize.
func (r *ProductRepo) GetByIDTx(ctx context.Context, tx db.Tx, id int64) (*repository.Product, error) {
	var product repository.Product
	err := tx.Get(ctx, &product, "SELECT * FROM products WHERE id = $1 FOR UPDATE", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepo) UpdateStockTx(ctx context.Context, tx db.Tx, id int64, totalQuantity int) error {
	_, err := tx.Exec(ctx, "UPDATE products SET total_quantity = $1 WHERE id = $2", totalQuantity, id)
	return err
}

func (r *ProductRepo) GetVariationByIDTx(ctx context.Context, tx db.Tx, id int64) (*repository.ProductVariation, error) {
	var variation repository.ProductVariation
	err := tx.Get(ctx, &variation, "SELECT * FROM product_variations WHERE id = $1 FOR UPDATE", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &variation, nil
}

func (r *ProductRepo) UpdateVariationStockTx(ctx context.Context, tx db.Tx, id int64, stockQuantity int, inStock bool) error {
	_, err := tx.Exec(ctx, "UPDATE product_variations SET stock_quantity = $1, in_stock = $2 WHERE id = $3", stockQuantity, inStock, id)
	return err
}
