package domain

import (
	"strings"
	"time"
)

// Order-related domain errors.
var (
	ErrOrderNotFound         = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrOrderNotCancellable   = &Error{Code: ECONFLICT, Message: "Order can no longer be cancelled"}
	ErrPaymentNotConfirmed   = &Error{Code: EPAYMENT, Message: "Payment has not been confirmed"}
	ErrNoPendingOrder        = &Error{Code: ENOTFOUND, Message: "No pending order to process"}
	ErrEmptyCart             = &Error{Code: EINVALID, Message: "Cart is empty"}
	ErrStockUpdateIncomplete = &Error{Code: EPARTIAL, Message: "Order placed but some stock updates failed"}
)

// OrderStatus is the client-observed order state machine. Transitions are
// server-authoritative; this side only requests them and guards the obvious
// dead ends.
type OrderStatus string

const (
	StatusProcessing OrderStatus = "processing"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Cancellable reports whether a cancellation request may be sent.
// Cancellation is permitted while the order is processing, confirmed, or
// shipped, and never once it is delivered or already cancelled.
func (s OrderStatus) Cancellable() bool {
	switch s {
	case StatusProcessing, StatusConfirmed, StatusShipped:
		return true
	}
	return false
}

// OrderLine freezes a purchased line at order-creation time. UnitPriceCents
// is a snapshot; later catalog price changes must not alter it.
type OrderLine struct {
	ProductID      string
	Quantity       int64
	UnitPriceCents int64
}

// ShippingAddress is the address snapshot captured at checkout submission.
// Validation tags match what the checkout form collects.
type ShippingAddress struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,min=7"`
	Address  string `json:"address" validate:"required"`
	City     string `json:"city" validate:"required"`
	State    string `json:"state" validate:"required"`
	ZipCode  string `json:"zipCode" validate:"required"`
	Country  string `json:"country" validate:"required"`
}

// Order is a persisted purchase. Lines, address, and total are snapshots
// owned by the order service; status and the refund flag are whatever the
// server last reported.
type Order struct {
	ID              string
	UserID          string
	Lines           []OrderLine
	TotalCents      int64
	ShippingAddress ShippingAddress
	PaymentMethod   string
	Status          OrderStatus
	TrackingNumber  string
	Refunded        bool
	CreatedAt       time.Time
}

// Reference derives the customer-facing order number from the order id,
// e.g. "ORD-9F23A1".
func (o *Order) Reference() string {
	return OrderReference(o.ID)
}

// EstimatedDelivery is a display-only estimate of creation time plus seven
// days.
func (o *Order) EstimatedDelivery() time.Time {
	return o.CreatedAt.Add(7 * 24 * time.Hour)
}

// OrderReference formats an order id suffix as a display reference.
func OrderReference(id string) string {
	suffix := id
	if len(suffix) > 6 {
		suffix = suffix[len(suffix)-6:]
	}
	return "ORD-" + strings.ToUpper(suffix)
}

// PendingOrder is the descriptor staged at checkout submission, before the
// external payment redirect. It carries everything needed to create the
// order when control returns on the confirmation route, because that
// navigation happens in a fresh context with no other state available.
type PendingOrder struct {
	// IdempotencyKey is sent on create-order so server-side replay
	// protection does not depend solely on this descriptor being discarded.
	IdempotencyKey string

	UserID          string
	Lines           []OrderLine
	TotalCents      int64
	ShippingAddress ShippingAddress
	PaymentMethod   string

	// CartID is the source cart to delete once the order exists.
	// Empty when the cart was never persisted.
	CartID string

	// PaymentRef identifies the external payment session to verify before
	// any mutation runs.
	PaymentRef string

	StagedAt time.Time
}
