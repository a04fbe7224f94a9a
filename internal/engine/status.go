package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ecomshop/order-engine/internal/db"
	"github.com/ecomshop/order-engine/internal/metrics"
	"github.com/ecomshop/order-engine/internal/repository"
)

// Primary fulfillment states. completed and cancelled are terminal;
// return_refund is the historical order-level return path.
const (
	StatusPending        = "pending"
	StatusProcessing     = "processing"
	StatusShipped        = "shipped"
	StatusOutForDelivery = "out_for_delivery"
	StatusDelivered      = "delivered"
	StatusCompleted      = "completed"
	StatusCancelled      = "cancelled"
	StatusReturnRefund   = "return_refund"
)

// RoleDeliveryAgent is the user role required for delivery assignment.
const RoleDeliveryAgent = "delivery_agent"

// statusAliases translates UI-facing labels to stored states. Kept for
// backward compatibility with older operator clients.
var statusAliases = map[string]string{
	"ready_for_shipping": StatusProcessing,
	"picked_up":          StatusCompleted,
	"failed_delivery":    StatusCancelled,
}

var knownStatuses = map[string]bool{
	StatusPending:        true,
	StatusProcessing:     true,
	StatusShipped:        true,
	StatusOutForDelivery: true,
	StatusDelivered:      true,
	StatusCompleted:      true,
	StatusCancelled:      true,
	StatusReturnRefund:   true,
}

// Cancellation reasons form a closed enumeration; anything free-form goes
// into the notes field instead.
var cancellationReasons = map[string]bool{
	"customer_request": true,
	"out_of_stock":     true,
	"delivery_failed":  true,
	"duplicate_order":  true,
	"fraud_suspected":  true,
	"other":            true,
}

func resolveStatus(target string) (string, bool) {
	if mapped, ok := statusAliases[target]; ok {
		return mapped, true
	}
	if knownStatuses[target] {
		return target, true
	}
	return "", false
}

// applyStatus sets the order status and stamps the matching first-entry
// timestamp. An order cannot be out for delivery without having been
// shipped, so out_for_delivery stamps shipped_at as well.
func (e *Engine) applyStatus(order *repository.Order, status string) {
	now := e.nowFunc().UTC()
	order.Status = status

	switch status {
	case StatusProcessing:
		order.ProcessingAt = firstEntry(order.ProcessingAt, now)
	case StatusShipped:
		order.ShippedAt = firstEntry(order.ShippedAt, now)
	case StatusOutForDelivery:
		order.ShippedAt = firstEntry(order.ShippedAt, now)
		order.OutForDeliveryAt = firstEntry(order.OutForDeliveryAt, now)
	case StatusDelivered:
		order.DeliveredAt = firstEntry(order.DeliveredAt, now)
	case StatusCancelled:
		order.CancelledAt = firstEntry(order.CancelledAt, now)
	}
}

// UpdateStatus moves the order to the target state. Labels from older
// clients are remapped; transitions are unconditional apart from existence
// and label validity (there is deliberately no forward-only guard).
func (e *Engine) UpdateStatus(ctx context.Context, orderID int64, target string) error {
	status, ok := resolveStatus(target)
	if !ok {
		return precondition("unknown order status %q", target)
	}

	err := e.withOrderTx(ctx, "status_updated", orderID, func(tx db.Tx, order *repository.Order) error {
		e.applyStatus(order, status)
		return nil
	})
	if err != nil {
		return err
	}

	metrics.StatusTransitionsTotal.WithLabelValues(status).Inc()
	e.logger.Info("order status updated",
		zap.Int64("order_id", orderID),
		zap.String("status", status),
	)
	return nil
}

// Cancel marks the order cancelled. Already-cancelled orders fail rather
// than silently succeed, and completed orders are final.
func (e *Engine) Cancel(ctx context.Context, orderID int64, reason, notes string) error {
	if reason != "" && !cancellationReasons[reason] {
		return precondition("unknown cancellation reason %q", reason)
	}

	err := e.withOrderTx(ctx, "order_cancelled", orderID, func(tx db.Tx, order *repository.Order) error {
		switch order.Status {
		case StatusCancelled:
			return precondition("order is already cancelled")
		case StatusCompleted:
			return precondition("completed orders cannot be cancelled")
		}

		e.applyStatus(order, StatusCancelled)
		if reason != "" {
			order.CancellationReason = strPtr(reason)
		}
		if notes != "" {
			order.CancellationNotes = strPtr(notes)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.OrdersCancelledTotal.Inc()
	e.logger.Info("order cancelled",
		zap.Int64("order_id", orderID),
		zap.String("reason", reason),
	)
	return nil
}

// AssignDeliveryAgent hands the order to a delivery agent. Assignment is
// itself a transition trigger: the order moves to out_for_delivery and the
// shipped/out-for-delivery stamps are set if unset.
func (e *Engine) AssignDeliveryAgent(ctx context.Context, orderID, agentID int64) error {
	agent, err := e.users.GetByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return ErrAgentNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if agent.Role != RoleDeliveryAgent {
		return precondition("user %q does not have the delivery agent role", agent.Username)
	}

	err = e.withOrderTx(ctx, "delivery_agent_assigned", orderID, func(tx db.Tx, order *repository.Order) error {
		order.DeliveryAgentID = &agent.ID
		e.applyStatus(order, StatusOutForDelivery)
		return nil
	})
	if err != nil {
		return err
	}

	metrics.StatusTransitionsTotal.WithLabelValues(StatusOutForDelivery).Inc()
	e.logger.Info("delivery agent assigned",
		zap.Int64("order_id", orderID),
		zap.Int64("agent_id", agentID),
	)
	return nil
}
