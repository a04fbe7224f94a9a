package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ecomshop/order-engine/internal/db"
	"github.com/ecomshop/order-engine/internal/metrics"
	"github.com/ecomshop/order-engine/internal/repository"
)

// EventsTopic is the outbox topic order lifecycle events are published to.
const EventsTopic = "order-events"

type OrderRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, order *repository.Order) error
	GetByID(ctx context.Context, id int64) (*repository.Order, error)
	GetByIDTx(ctx context.Context, tx db.Tx, id int64) (*repository.Order, error)
	UpdateTx(ctx context.Context, tx db.Tx, order *repository.Order) error
	NumberExistsTx(ctx context.Context, tx db.Tx, number string) (bool, error)
}

type OrderItemRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, item *repository.OrderItem) error
	GetByIDTx(ctx context.Context, tx db.Tx, id int64) (*repository.OrderItem, error)
	GetByOrderID(ctx context.Context, orderID int64) ([]*repository.OrderItem, error)
	GetByOrderIDTx(ctx context.Context, tx db.Tx, orderID int64) ([]*repository.OrderItem, error)
	UpdateTx(ctx context.Context, tx db.Tx, item *repository.OrderItem) error
}

type ProductRepository interface {
	GetByIDTx(ctx context.Context, tx db.Tx, id int64) (*repository.Product, error)
	UpdateStockTx(ctx context.Context, tx db.Tx, id int64, totalQuantity int) error
	GetVariationByIDTx(ctx context.Context, tx db.Tx, id int64) (*repository.ProductVariation, error)
	UpdateVariationStockTx(ctx context.Context, tx db.Tx, id int64, stockQuantity int, inStock bool) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*repository.User, error)
}

type OutboxRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, task *repository.OutboxTask) error
}

type OrderCache interface {
	Get(orderID int64) (*repository.Order, bool)
	Set(order *repository.Order)
}

// Engine owns the order fulfillment lifecycle: status transitions, return
// and replacement workflows, order number generation and the stock
// adjustments replacement approvals perform.
type Engine struct {
	db       db.DB
	orders   OrderRepository
	items    OrderItemRepository
	products ProductRepository
	users    UserRepository
	outbox   OutboxRepository
	cache    OrderCache
	logger   *zap.Logger
	nowFunc  func() time.Time
}

func New(
	database db.DB,
	orders OrderRepository,
	items OrderItemRepository,
	products ProductRepository,
	users UserRepository,
	outbox OutboxRepository,
	cache OrderCache,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		db:       database,
		orders:   orders,
		items:    items,
		products: products,
		users:    users,
		outbox:   outbox,
		cache:    cache,
		logger:   logger,
		nowFunc:  time.Now,
	}
}

// OrderEvent is the payload written to the outbox for every successful
// lifecycle mutation.
type OrderEvent struct {
	Type        string    `json:"type"`
	OrderID     int64     `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Status      string    `json:"status"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func (e *Engine) appendEventTx(ctx context.Context, tx db.Tx, eventType string, order *repository.Order) error {
	payload, err := json.Marshal(OrderEvent{
		Type:        eventType,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		OccurredAt:  e.nowFunc().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}
	return e.outbox.CreateTx(ctx, tx, &repository.OutboxTask{
		Topic:   EventsTopic,
		Payload: payload,
	})
}

// withOrderTx runs fn against the order row locked FOR UPDATE, persists the
// mutated order, appends a lifecycle event and commits. Any error rolls the
// whole unit back, leaving the order untouched.
func (e *Engine) withOrderTx(ctx context.Context, op string, orderID int64, fn func(tx db.Tx, order *repository.Order) error) error {
	fail := func(err error) error {
		metrics.OperationErrorsTotal.WithLabelValues(op).Inc()
		return err
	}

	tx, err := e.db.BeginTx(ctx)
	if err != nil {
		return fail(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	order, err := e.orders.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return fail(ErrOrderNotFound)
		}
		return fail(fmt.Errorf("failed to get order: %w", err))
	}

	if err := fn(tx, order); err != nil {
		return fail(err)
	}

	order.UpdatedAt = e.nowFunc().UTC()
	if err := e.orders.UpdateTx(ctx, tx, order); err != nil {
		return fail(fmt.Errorf("failed to update order: %w", err))
	}

	if err := e.appendEventTx(ctx, tx, op, order); err != nil {
		return fail(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fail(fmt.Errorf("failed to commit transaction: %w", err))
	}

	if e.cache != nil {
		e.cache.Set(order)
	}
	return nil
}

// GetOrder serves reads through the active-order cache.
func (e *Engine) GetOrder(ctx context.Context, orderID int64) (*repository.Order, error) {
	if e.cache != nil {
		if order, ok := e.cache.Get(orderID); ok {
			return order, nil
		}
	}

	order, err := e.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(order)
	}
	return order, nil
}

func (e *Engine) GetOrderItems(ctx context.Context, orderID int64) ([]*repository.OrderItem, error) {
	items, err := e.items.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	return items, nil
}

// firstEntry implements "first time wins" transition stamps: an already set
// timestamp is never overwritten.
func firstEntry(existing *time.Time, now time.Time) *time.Time {
	if existing != nil {
		return existing
	}
	return &now
}

func strPtr(s string) *string {
	return &s
}

// appendNote appends text to an existing free-text note using the
// pipe-delimited convention, preserving whatever was recorded before.
func appendNote(existing *string, delimiter, text string) *string {
	if text == "" {
		return existing
	}
	if existing == nil || *existing == "" {
		return strPtr(delimiter + text)
	}
	return strPtr(*existing + " | " + delimiter + text)
}
