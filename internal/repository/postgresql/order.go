package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"

	"github.com/ecomshop/order-engine/internal/db"
	"github.com/ecomshop/order-engine/internal/repository"
)

type OrderRepo struct {
	db db.DB
}

func NewOrderRepo(db db.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

const orderInsertQuery = `
        INSERT INTO orders (
            order_number, user_id, subtotal, tax, shipping, discount, total, refund_amount,
            status, return_status, replacement_status,
            shipping_name, shipping_phone, shipping_address, shipping_city, shipping_state, shipping_zip,
            coupon_id, delivery_agent_id, notes, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
        RETURNING id
    `

const orderUpdateQuery = `
        UPDATE orders
        SET
            status = $1,
            return_status = $2,
            replacement_status = $3,
            refund_amount = $4,
            processing_at = $5,
            shipped_at = $6,
            out_for_delivery_at = $7,
            delivered_at = $8,
            cancelled_at = $9,
            return_processed_at = $10,
            replacement_processed_at = $11,
            delivery_agent_id = $12,
            replacement_order_id = $13,
            cancellation_reason = $14,
            cancellation_notes = $15,
            return_notes = $16,
            replacement_notes = $17,
            updated_at = $18
        WHERE id = $19
    `

func orderUpdateArgs(order *repository.Order) []interface{} {
	return []interface{}{
		order.Status, order.ReturnStatus, order.ReplacementStatus, order.RefundAmount,
		order.ProcessingAt, order.ShippedAt, order.OutForDeliveryAt, order.DeliveredAt,
		order.CancelledAt, order.ReturnProcessedAt, order.ReplacementProcessedAt,
		order.DeliveryAgentID, order.ReplacementOrderID,
		order.CancellationReason, order.CancellationNotes, order.ReturnNotes, order.ReplacementNotes,
		order.UpdatedAt, order.ID,
	}
}

func orderInsertArgs(order *repository.Order) []interface{} {
	return []interface{}{
		order.OrderNumber, order.UserID, order.Subtotal, order.Tax, order.Shipping,
		order.Discount, order.Total, order.RefundAmount,
		order.Status, order.ReturnStatus, order.ReplacementStatus,
		order.ShippingName, order.ShippingPhone, order.ShippingAddress,
		order.ShippingCity, order.ShippingState, order.ShippingZip,
		order.CouponID, order.DeliveryAgentID, order.Notes,
		order.CreatedAt, order.UpdatedAt,
	}
}

func (r *OrderRepo) Create(ctx context.Context, order *repository.Order) error {
	return r.db.ExecQueryRow(ctx, orderInsertQuery, orderInsertArgs(order)...).Scan(&order.ID)
}

func (r *OrderRepo) CreateTx(ctx context.Context, tx db.Tx, order *repository.Order) error {
	return tx.ExecQueryRow(ctx, orderInsertQuery, orderInsertArgs(order)...).Scan(&order.ID)
}

func (r *OrderRepo) GetByID(ctx context.Context, id int64) (*repository.Order, error) {
	var order repository.Order
	err := r.db.Get(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepo) GetByIDTx(ctx context.Context, tx db.Tx, id int64) (*repository.Order, error) {
	var order repository.Order
	err := tx.Get(ctx, &order, "SELECT * FROM orders WHERE id = $1 FOR UPDATE", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepo) Update(ctx context.Context, order *repository.Order) error {
	_, err := r.db.Exec(ctx, orderUpdateQuery, orderUpdateArgs(order)...)
	return err
}

func (r *OrderRepo) UpdateTx(ctx context.Context, tx db.Tx, order *repository.Order) error {
	_, err := tx.Exec(ctx, orderUpdateQuery, orderUpdateArgs(order)...)
	return err
}

// NumberExistsTx reports whether an order already carries the given number.
// The matching row, if any, is locked for the remainder of the transaction so
// that two concurrent generators cannot both observe "not exists".
func (r *OrderRepo) NumberExistsTx(ctx context.Context, tx db.Tx, number string) (bool, error) {
	var id int64
	err := tx.Get(ctx, &id, "SELECT id FROM orders WHERE order_number = $1 FOR UPDATE", number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *OrderRepo) GetByUserID(ctx context.Context, userID int64, limit int) ([]*repository.Order, error) {
	query := "SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC"
	args := []interface{}{userID}

	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	var orders []*repository.Order
	err := r.db.Select(ctx, &orders, query, args...)
	return orders, err
}

func (r *OrderRepo) GetAllActiveOrders(ctx context.Context) ([]*repository.Order, error) {
	var orders []*repository.Order
	err := r.db.Select(ctx, &orders, `
        SELECT * FROM orders
        WHERE status NOT IN ('delivered', 'completed', 'cancelled')
        ORDER BY created_at ASC
    `)
	return orders, err
}
