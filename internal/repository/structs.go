package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrObjectNotFound = errors.New("not found")

type Order struct {
	ID                     int64      `db:"id"`
	OrderNumber            string     `db:"order_number"`
	UserID                 *int64     `db:"user_id"`
	Subtotal               float64    `db:"subtotal"`
	Tax                    float64    `db:"tax"`
	Shipping               float64    `db:"shipping"`
	Discount               float64    `db:"discount"`
	Total                  float64    `db:"total"`
	RefundAmount           float64    `db:"refund_amount"`
	Status                 string     `db:"status"`
	ReturnStatus           *string    `db:"return_status"`
	ReplacementStatus      *string    `db:"replacement_status"`
	ProcessingAt           *time.Time `db:"processing_at"`
	ShippedAt              *time.Time `db:"shipped_at"`
	OutForDeliveryAt       *time.Time `db:"out_for_delivery_at"`
	DeliveredAt            *time.Time `db:"delivered_at"`
	CancelledAt            *time.Time `db:"cancelled_at"`
	ReturnProcessedAt      *time.Time `db:"return_processed_at"`
	ReplacementProcessedAt *time.Time `db:"replacement_processed_at"`
	ShippingName           string     `db:"shipping_name"`
	ShippingPhone          string     `db:"shipping_phone"`
	ShippingAddress        string     `db:"shipping_address"`
	ShippingCity           string     `db:"shipping_city"`
	ShippingState          string     `db:"shipping_state"`
	ShippingZip            string     `db:"shipping_zip"`
	CouponID               *int64     `db:"coupon_id"`
	DeliveryAgentID        *int64     `db:"delivery_agent_id"`
	ReplacementOrderID     *int64     `db:"replacement_order_id"`
	CancellationReason     *string    `db:"cancellation_reason"`
	CancellationNotes      *string    `db:"cancellation_notes"`
	ReturnNotes            *string    `db:"return_notes"`
	ReplacementNotes       *string    `db:"replacement_notes"`
	Notes                  *string    `db:"notes"`
	CreatedAt              time.Time  `db:"created_at"`
	UpdatedAt              time.Time  `db:"updated_at"`
}

type OrderItem struct {
	ID                     int64      `db:"id"`
	OrderID                int64      `db:"order_id"`
	ProductID              int64      `db:"product_id"`
	VariationID            *int64     `db:"variation_id"`
	ProductName            string     `db:"product_name"`
	SKU                    string     `db:"sku"`
	Size                   string     `db:"size"`
	Color                  string     `db:"color"`
	Quantity               int        `db:"quantity"`
	Price                  float64    `db:"price"`
	Subtotal               float64    `db:"subtotal"`
	IsReturnable           bool       `db:"is_returnable"`
	IsReplaceable          bool       `db:"is_replaceable"`
	ReturnStatus           *string    `db:"return_status"`
	ReturnRefundAmount     float64    `db:"return_refund_amount"`
	ReturnProcessedAt      *time.Time `db:"return_processed_at"`
	ReturnNotes            *string    `db:"return_notes"`
	ReplacementStatus      *string    `db:"replacement_status"`
	ReplacementProcessedAt *time.Time `db:"replacement_processed_at"`
	ReplacementNotes       *string    `db:"replacement_notes"`
	ReplacementOrderItemID *int64     `db:"replacement_order_item_id"`
	CreatedAt              time.Time  `db:"created_at"`
	UpdatedAt              time.Time  `db:"updated_at"`
}

type Product struct {
	ID            int64   `db:"id"`
	Name          string  `db:"name"`
	SKU           string  `db:"sku"`
	TotalQuantity int     `db:"total_quantity"`
	Price         float64 `db:"price"`
	IsReturnable  bool    `db:"is_returnable"`
	IsReplaceable bool    `db:"is_replaceable"`
}

type ProductVariation struct {
	ID            int64  `db:"id"`
	ProductID     int64  `db:"product_id"`
	Size          string `db:"size"`
	Color         string `db:"color"`
	StockQuantity int    `db:"stock_quantity"`
	InStock       bool   `db:"in_stock"`
}

type User struct {
	ID       int64  `db:"id"`
	Username string `db:"username"`
	Password string `db:"password"`
	Role     string `db:"role"`
}

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusProcessing TaskStatus = "PROCESSING"
	TaskStatusDone       TaskStatus = "DONE"
	TaskStatusFailed     TaskStatus = "FAILED"
)

type OutboxTask struct {
	ID          uuid.UUID  `db:"id"`
	Topic       string     `db:"topic"`
	Payload     []byte     `db:"payload"`
	Status      TaskStatus `db:"status"`
	Attempts    int        `db:"attempts"`
	LastError   *string    `db:"last_error"`
	CreatedAt   time.Time  `db:"created_at"`
	CompletedAt *time.Time `db:"completed_at"`
}
