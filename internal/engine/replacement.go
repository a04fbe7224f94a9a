package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/ecomshop/order-engine/internal/db"
	"github.com/ecomshop/order-engine/internal/metrics"
	"github.com/ecomshop/order-engine/internal/repository"
)

// rollUpReplacements mirrors rollUpReturns for the replacement concern. The
// legacy replacement_order_id pointer only ever records the first child; the
// full set of children is discoverable via each item's
// replacement_order_item_id.
func (e *Engine) rollUpReplacements(order *repository.Order, items []*repository.OrderItem, firstChildID int64) {
	if requestIs(order.ReplacementStatus, RequestProcessed) {
		return
	}

	var pending, approved, rejected int
	for _, item := range items {
		switch {
		case requestIs(item.ReplacementStatus, RequestPending):
			pending++
		case requestIs(item.ReplacementStatus, RequestApproved):
			approved++
		case requestIs(item.ReplacementStatus, RequestRejected):
			rejected++
		}
	}

	if pending > 0 {
		return
	}
	if approved > 0 {
		order.ReplacementStatus = strPtr(RequestApproved)
		order.ReplacementProcessedAt = firstEntry(order.ReplacementProcessedAt, e.nowFunc().UTC())
		if order.ReplacementOrderID == nil && firstChildID != 0 {
			order.ReplacementOrderID = &firstChildID
		}
	} else if rejected > 0 {
		order.ReplacementStatus = strPtr(RequestRejected)
	}
}

// replaceItemTx performs one atomic replacement unit inside the caller's
// transaction: read the live product and variation, spawn a child order with
// a single mirrored item, deduct stock, and point the original item at the
// new line. A failure anywhere rolls the whole unit back and the original
// item stays pending.
func (e *Engine) replaceItemTx(ctx context.Context, tx db.Tx, parent *repository.Order, item *repository.OrderItem) (*repository.Order, error) {
	product, err := e.products.GetByIDTx(ctx, tx, item.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	var variation *repository.ProductVariation
	if item.VariationID != nil {
		variation, err = e.products.GetVariationByIDTx(ctx, tx, *item.VariationID)
		if err != nil {
			if errors.Is(err, repository.ErrObjectNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, fmt.Errorf("failed to get product variation: %w", err)
		}
	}

	number, err := e.generateOrderNumber(ctx, tx)
	if err != nil {
		return nil, err
	}

	now := e.nowFunc().UTC()
	child := &repository.Order{
		OrderNumber:     number,
		UserID:          parent.UserID,
		Subtotal:        item.Subtotal,
		Total:           item.Subtotal,
		Status:          StatusPending,
		ShippingName:    parent.ShippingName,
		ShippingPhone:   parent.ShippingPhone,
		ShippingAddress: parent.ShippingAddress,
		ShippingCity:    parent.ShippingCity,
		ShippingState:   parent.ShippingState,
		ShippingZip:     parent.ShippingZip,
		Notes:           strPtr(fmt.Sprintf("Replacement for %s from order %s", product.Name, parent.OrderNumber)),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := e.orders.CreateTx(ctx, tx, child); err != nil {
		return nil, fmt.Errorf("failed to create replacement order: %w", err)
	}

	// Captured attributes come from the original line; name, sku and the
	// returnability flags are refreshed from the live catalog.
	childItem := &repository.OrderItem{
		OrderID:       child.ID,
		ProductID:     item.ProductID,
		VariationID:   item.VariationID,
		ProductName:   product.Name,
		SKU:           product.SKU,
		Size:          item.Size,
		Color:         item.Color,
		Quantity:      item.Quantity,
		Price:         item.Price,
		Subtotal:      item.Subtotal,
		IsReturnable:  product.IsReturnable,
		IsReplaceable: product.IsReplaceable,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := e.items.CreateTx(ctx, tx, childItem); err != nil {
		return nil, fmt.Errorf("failed to create replacement order item: %w", err)
	}

	if err := e.adjustStockTx(ctx, tx, product, variation, item.Quantity); err != nil {
		return nil, err
	}

	item.ReplacementStatus = strPtr(RequestApproved)
	item.ReplacementProcessedAt = firstEntry(item.ReplacementProcessedAt, now)
	item.ReplacementOrderItemID = &childItem.ID
	item.UpdatedAt = now
	if err := e.items.UpdateTx(ctx, tx, item); err != nil {
		return nil, fmt.Errorf("failed to update order item: %w", err)
	}

	if err := e.appendEventTx(ctx, tx, "replacement_order_created", child); err != nil {
		return nil, err
	}
	return child, nil
}

// ApproveReplacement approves a pending replacement request, spawning one
// replacement order per approved item. With an item id a single item is
// replaced; without one every pending item on the order is replaced, each in
// its own transaction.
func (e *Engine) ApproveReplacement(ctx context.Context, orderID int64, itemID *int64) error {
	if itemID != nil {
		return e.approveItemReplacement(ctx, orderID, *itemID)
	}
	return e.approveOrderReplacement(ctx, orderID)
}

func (e *Engine) approveItemReplacement(ctx context.Context, orderID, itemID int64) error {
	var childID int64
	err := e.withOrderTx(ctx, "replacement_approved", orderID, func(tx db.Tx, order *repository.Order) error {
		items, err := e.items.GetByOrderIDTx(ctx, tx, orderID)
		if err != nil {
			return fmt.Errorf("failed to get order items: %w", err)
		}

		item := findItem(items, itemID)
		if item == nil {
			return ErrOrderItemNotFound
		}
		if !requestIs(item.ReplacementStatus, RequestPending) {
			return precondition("replacement request is not pending")
		}
		if !item.IsReplaceable {
			return precondition("%s is not replaceable", item.ProductName)
		}

		child, err := e.replaceItemTx(ctx, tx, order, item)
		if err != nil {
			return err
		}
		childID = child.ID

		e.rollUpReplacements(order, items, child.ID)
		return nil
	})
	if err != nil {
		return err
	}

	metrics.ReplacementOrdersCreatedTotal.Inc()
	e.logger.Info("replacement approved",
		zap.Int64("order_id", orderID),
		zap.Int64("item_id", itemID),
		zap.Int64("replacement_order_id", childID),
	)
	return nil
}

func (e *Engine) approveOrderReplacement(ctx context.Context, orderID int64) error {
	order, err := e.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to get order: %w", err)
	}
	if !requestIs(order.ReplacementStatus, RequestPending) {
		return precondition("replacement request is not pending")
	}

	items, err := e.items.GetByOrderID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to get order items: %w", err)
	}

	var pending []*repository.OrderItem
	var offenders []string
	for _, item := range items {
		if !requestIs(item.ReplacementStatus, RequestPending) {
			continue
		}
		pending = append(pending, item)
		if !item.IsReplaceable {
			offenders = append(offenders, item.ProductName)
		}
	}
	if len(pending) == 0 {
		return precondition("no pending replacement items")
	}
	if len(offenders) > 0 {
		return &BatchRejectionError{Products: offenders}
	}

	var firstChildID int64
	for i, item := range pending {
		if i > 0 {
			// Jitter between iterations diversifies the clock and entropy
			// mix feeding order number generation in a tight loop.
			time.Sleep(time.Duration(2+rand.Intn(4)) * time.Millisecond)
		}

		childID, err := e.replaceOne(ctx, orderID, item.ID)
		if err != nil {
			// Already-committed siblings stay; this item remains pending and
			// can be retried independently.
			metrics.OperationErrorsTotal.WithLabelValues("replacement_approved").Inc()
			e.logger.Warn("failed to replace item",
				zap.Int64("order_id", orderID),
				zap.Int64("item_id", item.ID),
				zap.Error(err),
			)
			continue
		}
		if firstChildID == 0 {
			firstChildID = childID
		}
		metrics.ReplacementOrdersCreatedTotal.Inc()
	}

	err = e.withOrderTx(ctx, "replacement_approved", orderID, func(tx db.Tx, order *repository.Order) error {
		order.ReplacementStatus = strPtr(RequestApproved)
		order.ReplacementProcessedAt = firstEntry(order.ReplacementProcessedAt, e.nowFunc().UTC())
		if order.ReplacementOrderID == nil && firstChildID != 0 {
			order.ReplacementOrderID = &firstChildID
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.logger.Info("order replacement approved",
		zap.Int64("order_id", orderID),
		zap.Int("items", len(pending)),
	)
	return nil
}

// replaceOne wraps a single per-item replacement in its own transaction so
// that one item's failure does not roll back siblings.
func (e *Engine) replaceOne(ctx context.Context, orderID, itemID int64) (int64, error) {
	tx, err := e.db.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	order, err := e.orders.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return 0, ErrOrderNotFound
		}
		return 0, fmt.Errorf("failed to get order: %w", err)
	}

	item, err := e.items.GetByIDTx(ctx, tx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return 0, ErrOrderItemNotFound
		}
		return 0, fmt.Errorf("failed to get order item: %w", err)
	}
	if item.OrderID != orderID {
		return 0, ErrOrderItemNotFound
	}
	if !requestIs(item.ReplacementStatus, RequestPending) {
		return 0, precondition("replacement request is not pending")
	}
	if !item.IsReplaceable {
		return 0, precondition("%s is not replaceable", item.ProductName)
	}

	child, err := e.replaceItemTx(ctx, tx, order, item)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return child.ID, nil
}

// RejectReplacement rejects a pending replacement request, appending the
// reason to the existing notes.
func (e *Engine) RejectReplacement(ctx context.Context, orderID int64, itemID *int64, reason string) error {
	var err error
	if itemID != nil {
		err = e.rejectItemReplacement(ctx, orderID, *itemID, reason)
	} else {
		err = e.rejectOrderReplacement(ctx, orderID, reason)
	}
	if err != nil {
		return err
	}

	e.logger.Info("replacement rejected", zap.Int64("order_id", orderID), zap.String("reason", reason))
	return nil
}

func (e *Engine) rejectItemReplacement(ctx context.Context, orderID, itemID int64, reason string) error {
	return e.withOrderTx(ctx, "replacement_rejected", orderID, func(tx db.Tx, order *repository.Order) error {
		items, err := e.items.GetByOrderIDTx(ctx, tx, orderID)
		if err != nil {
			return fmt.Errorf("failed to get order items: %w", err)
		}

		item := findItem(items, itemID)
		if item == nil {
			return ErrOrderItemNotFound
		}
		if !requestIs(item.ReplacementStatus, RequestPending) {
			return precondition("replacement request is not pending")
		}

		now := e.nowFunc().UTC()
		item.ReplacementStatus = strPtr(RequestRejected)
		item.ReplacementNotes = appendNote(item.ReplacementNotes, "Rejection: ", reason)
		item.ReplacementProcessedAt = firstEntry(item.ReplacementProcessedAt, now)
		item.UpdatedAt = now
		if err := e.items.UpdateTx(ctx, tx, item); err != nil {
			return fmt.Errorf("failed to update order item: %w", err)
		}

		e.rollUpReplacements(order, items, 0)
		return nil
	})
}

func (e *Engine) rejectOrderReplacement(ctx context.Context, orderID int64, reason string) error {
	return e.withOrderTx(ctx, "replacement_rejected", orderID, func(tx db.Tx, order *repository.Order) error {
		if !requestIs(order.ReplacementStatus, RequestPending) {
			return precondition("replacement request is not pending")
		}

		order.ReplacementStatus = strPtr(RequestRejected)
		order.ReplacementNotes = appendNote(order.ReplacementNotes, "Rejection: ", reason)
		order.ReplacementProcessedAt = firstEntry(order.ReplacementProcessedAt, e.nowFunc().UTC())
		return nil
	})
}

// ProcessReplacement records that an approved replacement has been handled.
// A pure bookkeeping transition: no further stock or order effects.
func (e *Engine) ProcessReplacement(ctx context.Context, orderID int64, itemID *int64) error {
	if itemID != nil {
		return e.withOrderTx(ctx, "replacement_processed", orderID, func(tx db.Tx, order *repository.Order) error {
			items, err := e.items.GetByOrderIDTx(ctx, tx, orderID)
			if err != nil {
				return fmt.Errorf("failed to get order items: %w", err)
			}

			item := findItem(items, *itemID)
			if item == nil {
				return ErrOrderItemNotFound
			}
			if requestIs(item.ReplacementStatus, RequestProcessed) {
				return precondition("replacement has already been processed")
			}
			if !requestIs(item.ReplacementStatus, RequestApproved) {
				return precondition("replacement request is not approved")
			}

			now := e.nowFunc().UTC()
			item.ReplacementStatus = strPtr(RequestProcessed)
			item.ReplacementProcessedAt = firstEntry(item.ReplacementProcessedAt, now)
			item.UpdatedAt = now
			return e.items.UpdateTx(ctx, tx, item)
		})
	}

	return e.withOrderTx(ctx, "replacement_processed", orderID, func(tx db.Tx, order *repository.Order) error {
		if requestIs(order.ReplacementStatus, RequestProcessed) {
			return precondition("replacement has already been processed")
		}
		if !requestIs(order.ReplacementStatus, RequestApproved) {
			return precondition("replacement request is not approved")
		}

		order.ReplacementStatus = strPtr(RequestProcessed)
		order.ReplacementProcessedAt = firstEntry(order.ReplacementProcessedAt, e.nowFunc().UTC())
		return nil
	})
}
