package client

import (
	"context"
	"net/http"
	"time"

	"github.com/guonaihong/gout"

	"github.com/rowanvale/njord/internal/domain"
)

// OrderClient talks to the order service. Order creation carries an
// Idempotency-Key header so replay protection does not depend solely on the
// staged descriptor being discarded.
type OrderClient struct {
	base
}

// NewOrderClient creates an order service client. httpClient may be nil.
func NewOrderClient(baseURL string, httpClient *http.Client) *OrderClient {
	return &OrderClient{base: newBase("order", baseURL, httpClient)}
}

// CreateOrderParams is everything the order service needs for a new order.
type CreateOrderParams struct {
	UserID          string
	Lines           []domain.OrderLine
	TotalCents      int64
	ShippingAddress domain.ShippingAddress
	PaymentMethod   string
	IdempotencyKey  string
}

type orderLineJSON struct {
	Product  string  `json:"product"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
}

type orderJSON struct {
	ID              string                 `json:"_id"`
	User            string                 `json:"user"`
	Items           []orderLineJSON        `json:"items"`
	TotalAmount     float64                `json:"totalAmount"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	Status          string                 `json:"status"`
	TrackingNumber  string                 `json:"trackingNumber"`
	Refunded        bool                   `json:"refunded"`
	CreatedAt       time.Time              `json:"createdAt"`
}

type orderEnvelope struct {
	Data *orderJSON `json:"data"`
}

type orderListEnvelope struct {
	Data []orderJSON `json:"data"`
}

func (o *orderJSON) toDomain() *domain.Order {
	order := &domain.Order{
		ID:              o.ID,
		UserID:          o.User,
		TotalCents:      dollarsToCents(o.TotalAmount),
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		Status:          domain.OrderStatus(o.Status),
		TrackingNumber:  o.TrackingNumber,
		Refunded:        o.Refunded,
		CreatedAt:       o.CreatedAt,
	}
	for _, item := range o.Items {
		order.Lines = append(order.Lines, domain.OrderLine{
			ProductID:      item.Product,
			Quantity:       item.Quantity,
			UnitPriceCents: dollarsToCents(item.Price),
		})
	}
	return order
}

// Create persists a new order and returns the server-assigned id and status.
func (c *OrderClient) Create(ctx context.Context, params CreateOrderParams) (*domain.Order, error) {
	items := make([]orderLineJSON, 0, len(params.Lines))
	for _, l := range params.Lines {
		items = append(items, orderLineJSON{
			Product:  l.ProductID,
			Quantity: l.Quantity,
			Price:    centsToDollars(l.UnitPriceCents),
		})
	}

	var env orderEnvelope
	df := c.g.POST(c.baseURL).
		SetHeader(gout.H{"Idempotency-Key": params.IdempotencyKey}).
		SetJSON(gout.H{
			"user":            params.UserID,
			"items":           items,
			"totalAmount":     centsToDollars(params.TotalCents),
			"shippingAddress": params.ShippingAddress,
			"paymentMethod":   params.PaymentMethod,
		})

	if err := c.do(ctx, "order.create", df, &env, nil); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, domain.Errorf(domain.EUNAVAILABLE, "order.create", "order service returned an empty body")
	}
	return env.Data.toDomain(), nil
}

// ListByUser fetches the user's order history, newest first per the order
// service's own ordering.
func (c *OrderClient) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	var env orderListEnvelope
	df := c.g.GET(c.baseURL).
		SetQuery(gout.H{"user": userID})

	if err := c.do(ctx, "order.list", df, &env, nil); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(env.Data))
	for i := range env.Data {
		orders = append(orders, *env.Data[i].toDomain())
	}
	return orders, nil
}

// UpdateStatus requests a status transition. The server decides whether the
// transition (and any refund) actually happens.
func (c *OrderClient) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	var env orderEnvelope
	df := c.g.PUT(c.baseURL + "/" + orderID).
		SetJSON(gout.H{"status": string(status)})

	if err := c.do(ctx, "order.update_status", df, &env, domain.ErrOrderNotFound); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, domain.Errorf(domain.EUNAVAILABLE, "order.update_status", "order service returned an empty body")
	}
	return env.Data.toDomain(), nil
}

// Delete removes an order. Admin-side housekeeping; the storefront itself
// only cancels.
func (c *OrderClient) Delete(ctx context.Context, orderID string) error {
	var res ack
	df := c.g.DELETE(c.baseURL + "/" + orderID)
	return c.do(ctx, "order.delete", df, &res, domain.ErrOrderNotFound)
}
