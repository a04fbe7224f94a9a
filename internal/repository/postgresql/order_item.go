package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"

	"github.com/ecomshop/order-engine/internal/db"
	"github.com/ecomshop/order-engine/internal/repository"
)

type OrderItemRepo struct {
	db db.DB
}

func NewOrderItemRepo(db db.DB) *OrderItemRepo {
	return &OrderItemRepo{db: db}
}

const orderItemInsertQuery = `
        INSERT INTO order_items (
            order_id, product_id, variation_id, product_name, sku, size, color,
            quantity, price, subtotal, is_returnable, is_replaceable, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        RETURNING id
    `

const orderItemUpdateQuery = `
        UPDATE order_items
        SET
            return_status = $1,
            return_refund_amount = $2,
            return_processed_at = $3,
            return_notes = $4,
            replacement_status = $5,
            replacement_processed_at = $6,
            replacement_notes = $7,
            replacement_order_item_id = $8,
            updated_at = $9
        WHERE id = $10
    `

func orderItemInsertArgs(item *repository.OrderItem) []interface{} {
	return []interface{}{
		item.OrderID, item.ProductID, item.VariationID, item.ProductName, item.SKU,
		item.Size, item.Color, item.Quantity, item.Price, item.Subtotal,
		item.IsReturnable, item.IsReplaceable, item.CreatedAt, item.UpdatedAt,
	}
}

func orderItemUpdateArgs(item *repository.OrderItem) []interface{} {
	return []interface{}{
		item.ReturnStatus, item.ReturnRefundAmount, item.ReturnProcessedAt, item.ReturnNotes,
		item.ReplacementStatus, item.ReplacementProcessedAt, item.ReplacementNotes,
		item.ReplacementOrderItemID, item.UpdatedAt, item.ID,
	}
}

func (r *OrderItemRepo) Create(ctx context.Context, item *repository.OrderItem) error {
	return r.db.ExecQueryRow(ctx, orderItemInsertQuery, orderItemInsertArgs(item)...).Scan(&item.ID)
}

func (r *OrderItemRepo) CreateTx(ctx context.Context, tx db.Tx, item *repository.OrderItem) error {
	return tx.ExecQueryRow(ctx, orderItemInsertQuery, orderItemInsertArgs(item)...).Scan(&item.ID)
}

func (r *OrderItemRepo) GetByID(ctx context.Context, id int64) (*repository.OrderItem, error) {
	var item repository.OrderItem
	err := r.db.Get(ctx, &item, "SELECT * FROM order_items WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *OrderItemRepo) GetByIDTx(ctx context.Context, tx db.Tx, id int64) (*repository.OrderItem, error) {
	var item repository.OrderItem
	err := tx.Get(ctx, &item, "SELECT * FROM order_items WHERE id = $1 FOR UPDATE", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *OrderItemRepo) GetByOrderID(ctx context.Context, orderID int64) ([]*repository.OrderItem, error) {
	var items []*repository.OrderItem
	err := r.db.Select(ctx, &items, "SELECT * FROM order_items WHERE order_id = $1 ORDER BY id ASC", orderID)
	return items, err
}

func (r *OrderItemRepo) GetByOrderIDTx(ctx context.Context, tx db.Tx, orderID int64) ([]*repository.OrderItem, error) {
	var items []*repository.OrderItem
	err := tx.Select(ctx, &items, "SELECT * FROM order_items WHERE order_id = $1 ORDER BY id ASC FOR UPDATE", orderID)
	return items, err
}

func (r *OrderItemRepo) Update(ctx context.Context, item *repository.OrderItem) error {
	_, err := r.db.Exec(ctx, orderItemUpdateQuery, orderItemUpdateArgs(item)...)
	return err
}

func (r *OrderItemRepo) UpdateTx(ctx context.Context, tx db.Tx, item *repository.OrderItem) error {
	_, err := tx.Exec(ctx, orderItemUpdateQuery, orderItemUpdateArgs(item)...)
	return err
}
