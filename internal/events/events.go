// Package events publishes order lifecycle events for downstream consumers
// (email, analytics, fulfillment). Publishing is best-effort: a failed
// publish is logged by the caller and never fails the workflow.
package events

import (
	"context"
	"time"
)

// Subjects published by the order workflow, relative to the configured
// prefix.
const (
	SubjectOrderCreated   = "order.created"
	SubjectOrderCancelled = "order.cancelled"
	SubjectStockWarning   = "order.stock_warning"
)

// Publisher emits domain events.
type Publisher interface {
	Publish(ctx context.Context, subject string, event any) error
	Close()
}

// OrderCreated is emitted once an order has been persisted.
type OrderCreated struct {
	OrderID    string    `json:"order_id"`
	UserID     string    `json:"user_id"`
	TotalCents int64     `json:"total_cents"`
	LineCount  int       `json:"line_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// OrderCancelled is emitted after the order service accepts a cancellation.
type OrderCancelled struct {
	OrderID  string `json:"order_id"`
	UserID   string `json:"user_id"`
	Refunded bool   `json:"refunded"`
}

// StockWarning is emitted when some stock decrements failed after an order
// was placed. The order stands; the warning flags bookkeeping drift.
type StockWarning struct {
	OrderID        string   `json:"order_id"`
	FailedProducts []string `json:"failed_products"`
}
