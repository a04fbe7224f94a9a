package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ecomshop/order-engine/internal/db"
	"github.com/ecomshop/order-engine/internal/metrics"
	"github.com/ecomshop/order-engine/internal/repository"
)

// Return and replacement request states. Both concerns start unset and only
// move to pending when a customer requests them.
const (
	RequestPending   = "pending"
	RequestApproved  = "approved"
	RequestRejected  = "rejected"
	RequestRefunded  = "refunded"
	RequestProcessed = "processed"
)

func requestIs(status *string, want string) bool {
	return status != nil && *status == want
}

func findItem(items []*repository.OrderItem, itemID int64) *repository.OrderItem {
	for _, item := range items {
		if item.ID == itemID {
			return item
		}
	}
	return nil
}

// rollUpReturns recomputes the order's aggregate return state from current
// item state. Recomputed from scratch on every change rather than
// incrementally accumulated, so the aggregate cannot drift.
func rollUpReturns(order *repository.Order, items []*repository.OrderItem) {
	if requestIs(order.ReturnStatus, RequestRefunded) {
		return
	}

	var pending, approved, rejected int
	var refund float64
	for _, item := range items {
		switch {
		case requestIs(item.ReturnStatus, RequestPending):
			pending++
		case requestIs(item.ReturnStatus, RequestApproved):
			approved++
			refund += item.ReturnRefundAmount
		case requestIs(item.ReturnStatus, RequestRejected):
			rejected++
		}
	}

	if pending > 0 {
		return
	}
	if approved > 0 {
		order.ReturnStatus = strPtr(RequestApproved)
		order.RefundAmount = refund
	} else if rejected > 0 {
		order.ReturnStatus = strPtr(RequestRejected)
	}
}

// ApproveReturn approves a pending return request. With an item id the
// request is item-level and the order aggregate is rolled up afterwards;
// without one the legacy order-level path is taken, cascading approval to
// every still-pending item.
func (e *Engine) ApproveReturn(ctx context.Context, orderID int64, itemID *int64) error {
	var err error
	if itemID != nil {
		err = e.approveItemReturn(ctx, orderID, *itemID)
	} else {
		err = e.approveOrderReturn(ctx, orderID)
	}
	if err != nil {
		return err
	}

	metrics.ReturnsApprovedTotal.Inc()
	e.logger.Info("return approved", zap.Int64("order_id", orderID))
	return nil
}

func (e *Engine) approveItemReturn(ctx context.Context, orderID, itemID int64) error {
	return e.withOrderTx(ctx, "return_approved", orderID, func(tx db.Tx, order *repository.Order) error {
		items, err := e.items.GetByOrderIDTx(ctx, tx, orderID)
		if err != nil {
			return fmt.Errorf("failed to get order items: %w", err)
		}

		item := findItem(items, itemID)
		if item == nil {
			return ErrOrderItemNotFound
		}
		if !requestIs(item.ReturnStatus, RequestPending) {
			return precondition("return request is not pending")
		}

		now := e.nowFunc().UTC()
		item.ReturnStatus = strPtr(RequestApproved)
		item.ReturnRefundAmount = item.Subtotal
		item.ReturnProcessedAt = firstEntry(item.ReturnProcessedAt, now)
		item.UpdatedAt = now
		if err := e.items.UpdateTx(ctx, tx, item); err != nil {
			return fmt.Errorf("failed to update order item: %w", err)
		}

		rollUpReturns(order, items)
		return nil
	})
}

func (e *Engine) approveOrderReturn(ctx context.Context, orderID int64) error {
	return e.withOrderTx(ctx, "return_approved", orderID, func(tx db.Tx, order *repository.Order) error {
		if !requestIs(order.ReturnStatus, RequestPending) {
			return precondition("return request is not pending")
		}

		items, err := e.items.GetByOrderIDTx(ctx, tx, orderID)
		if err != nil {
			return fmt.Errorf("failed to get order items: %w", err)
		}

		now := e.nowFunc().UTC()
		for _, item := range items {
			if !requestIs(item.ReturnStatus, RequestPending) {
				continue
			}
			item.ReturnStatus = strPtr(RequestApproved)
			item.ReturnRefundAmount = item.Subtotal
			item.ReturnProcessedAt = firstEntry(item.ReturnProcessedAt, now)
			item.UpdatedAt = now
			if err := e.items.UpdateTx(ctx, tx, item); err != nil {
				return fmt.Errorf("failed to update order item: %w", err)
			}
		}

		order.ReturnStatus = strPtr(RequestApproved)
		order.RefundAmount = order.Total
		order.ReturnProcessedAt = firstEntry(order.ReturnProcessedAt, now)
		order.Status = StatusReturnRefund
		return nil
	})
}

// RejectReturn rejects a pending return request. The rejection reason is
// appended to the existing notes rather than overwriting them.
func (e *Engine) RejectReturn(ctx context.Context, orderID int64, itemID *int64, reason string) error {
	var err error
	if itemID != nil {
		err = e.rejectItemReturn(ctx, orderID, *itemID, reason)
	} else {
		err = e.rejectOrderReturn(ctx, orderID, reason)
	}
	if err != nil {
		return err
	}

	e.logger.Info("return rejected", zap.Int64("order_id", orderID), zap.String("reason", reason))
	return nil
}

func (e *Engine) rejectItemReturn(ctx context.Context, orderID, itemID int64, reason string) error {
	return e.withOrderTx(ctx, "return_rejected", orderID, func(tx db.Tx, order *repository.Order) error {
		items, err := e.items.GetByOrderIDTx(ctx, tx, orderID)
		if err != nil {
			return fmt.Errorf("failed to get order items: %w", err)
		}

		item := findItem(items, itemID)
		if item == nil {
			return ErrOrderItemNotFound
		}
		if !requestIs(item.ReturnStatus, RequestPending) {
			return precondition("return request is not pending")
		}

		now := e.nowFunc().UTC()
		item.ReturnStatus = strPtr(RequestRejected)
		item.ReturnNotes = appendNote(item.ReturnNotes, "Rejection: ", reason)
		item.ReturnProcessedAt = firstEntry(item.ReturnProcessedAt, now)
		item.UpdatedAt = now
		if err := e.items.UpdateTx(ctx, tx, item); err != nil {
			return fmt.Errorf("failed to update order item: %w", err)
		}

		rollUpReturns(order, items)
		return nil
	})
}

func (e *Engine) rejectOrderReturn(ctx context.Context, orderID int64, reason string) error {
	return e.withOrderTx(ctx, "return_rejected", orderID, func(tx db.Tx, order *repository.Order) error {
		if !requestIs(order.ReturnStatus, RequestPending) {
			return precondition("return request is not pending")
		}

		order.ReturnStatus = strPtr(RequestRejected)
		order.ReturnNotes = appendNote(order.ReturnNotes, "Rejection: ", reason)
		order.ReturnProcessedAt = firstEntry(order.ReturnProcessedAt, e.nowFunc().UTC())
		return nil
	})
}

// ProcessRefund records the actual disbursement of an approved return.
// Approval and disbursement are two separate operator-gated steps.
func (e *Engine) ProcessRefund(ctx context.Context, orderID int64) error {
	err := e.withOrderTx(ctx, "refund_processed", orderID, func(tx db.Tx, order *repository.Order) error {
		if requestIs(order.ReturnStatus, RequestRefunded) {
			return precondition("refund has already been processed")
		}
		if !requestIs(order.ReturnStatus, RequestApproved) {
			return precondition("return request is not approved")
		}

		order.ReturnStatus = strPtr(RequestRefunded)
		order.ReturnProcessedAt = firstEntry(order.ReturnProcessedAt, e.nowFunc().UTC())
		return nil
	})
	if err != nil {
		return err
	}

	metrics.RefundsProcessedTotal.Inc()
	e.logger.Info("refund processed", zap.Int64("order_id", orderID))
	return nil
}
