// Package telemetry holds workflow-level Prometheus metrics. HTTP-level
// metrics live in the middleware package.
package telemetry

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds counters for the cart/order reconciliation workflow.
type Metrics struct {
	CartMutations        *prometheus.CounterVec
	WishlistMoves        *prometheus.CounterVec
	OrdersCreated        prometheus.Counter
	OrderCreateFailures  prometheus.Counter
	StockDecrementErrors prometheus.Counter
	OrdersCancelled      prometheus.Counter
}

// NewMetrics creates and registers workflow metrics.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "njord"
	}

	m := &Metrics{
		CartMutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cart_mutations_total",
				Help:      "Cart mutations by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		WishlistMoves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "wishlist_moves_total",
				Help:      "Move-to-cart workflows by outcome",
			},
			[]string{"outcome"},
		),
		OrdersCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "orders_created_total",
				Help:      "Orders successfully created",
			},
		),
		OrderCreateFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "order_create_failures_total",
				Help:      "Order creation attempts that failed",
			},
		),
		StockDecrementErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stock_decrement_failures_total",
				Help:      "Best-effort stock decrements that failed after order creation",
			},
		),
		OrdersCancelled: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "orders_cancelled_total",
				Help:      "Orders cancelled at the user's request",
			},
		),
	}

	prometheus.MustRegister(
		m.CartMutations,
		m.WishlistMoves,
		m.OrdersCreated,
		m.OrderCreateFailures,
		m.StockDecrementErrors,
		m.OrdersCancelled,
	)

	return m
}

// NewTestMetrics creates metrics without registering them, for use in
// tests where multiple instances would collide on the default registry.
func NewTestMetrics() *Metrics {
	return &Metrics{
		CartMutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "test_cart_mutations_total"}, []string{"op", "outcome"},
		),
		WishlistMoves: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "test_wishlist_moves_total"}, []string{"outcome"},
		),
		OrdersCreated:        prometheus.NewCounter(prometheus.CounterOpts{Name: "test_orders_created_total"}),
		OrderCreateFailures:  prometheus.NewCounter(prometheus.CounterOpts{Name: "test_order_create_failures_total"}),
		StockDecrementErrors: prometheus.NewCounter(prometheus.CounterOpts{Name: "test_stock_decrement_failures_total"}),
		OrdersCancelled:      prometheus.NewCounter(prometheus.CounterOpts{Name: "test_orders_cancelled_total"}),
	}
}
