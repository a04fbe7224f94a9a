package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StatusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderengine_status_transitions_total",
		Help: "Total number of order status transitions applied, by target status.",
	},
		[]string{"status"},
	)

	OrdersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderengine_orders_cancelled_total",
		Help: "Total number of orders cancelled.",
	})

	ReturnsApprovedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderengine_returns_approved_total",
		Help: "Total number of return requests approved (item or order level).",
	})

	RefundsProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderengine_refunds_processed_total",
		Help: "Total number of refunds marked as disbursed.",
	})

	ReplacementOrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderengine_replacement_orders_created_total",
		Help: "Total number of replacement orders spawned by replacement approvals.",
	})

	OrderNumberCollisionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderengine_order_number_collisions_total",
		Help: "Total number of order number generation attempts that hit an existing number.",
	})

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderengine_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)

	OrderCacheItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orderengine_order_cache_items",
		Help: "Current number of items in the active order cache.",
	})
)
