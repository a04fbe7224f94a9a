package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderItemNotFound = errors.New("order item not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrAgentNotFound     = errors.New("delivery agent not found")
)

// PreconditionError reports an operation attempted against an order or item
// whose current state does not allow it. Nothing has been mutated; the caller
// may retry after correcting state.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return e.Reason
}

func precondition(format string, args ...interface{}) *PreconditionError {
	return &PreconditionError{Reason: fmt.Sprintf(format, args...)}
}

// IsPrecondition reports whether err is a PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// BatchRejectionError rejects an order-level replacement batch because some
// pending items are not replaceable. The whole batch is refused; Products
// names the offending items.
type BatchRejectionError struct {
	Products []string
}

func (e *BatchRejectionError) Error() string {
	return fmt.Sprintf("items are not replaceable: %s", strings.Join(e.Products, ", "))
}

// IsBatchRejection reports whether err is a BatchRejectionError.
func IsBatchRejection(err error) bool {
	var be *BatchRejectionError
	return errors.As(err, &be)
}
