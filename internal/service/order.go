package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/rowanvale/njord/internal/billing"
	"github.com/rowanvale/njord/internal/client"
	"github.com/rowanvale/njord/internal/domain"
	"github.com/rowanvale/njord/internal/events"
	"github.com/rowanvale/njord/internal/session"
	"github.com/rowanvale/njord/internal/staging"
	"github.com/rowanvale/njord/internal/telemetry"
)

// Checkout pricing rules, from the storefront's published policy.
const (
	freeShippingThresholdCents = 10000 // orders of $100 and up ship free
	shippingFlatCents          = 999
	taxRate                    = 0.08
)

// OrderAPI is the slice of the order service client the workflow consumes.
type OrderAPI interface {
	Create(ctx context.Context, params client.CreateOrderParams) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error)
}

// StockAPI is the one product service write the workflow performs.
type StockAPI interface {
	DecrementStock(ctx context.Context, productID string, quantity int64) error
}

// CartSource is the slice of the cart store the workflow consumes.
type CartSource interface {
	Fetch(ctx context.Context) (*domain.Cart, error)
	ForgetLocal(userID string)
}

// CartDeleter deletes the source cart resource after an order exists.
type CartDeleter interface {
	Delete(ctx context.Context, cartID string) error
}

// OrderWorkflow converts a priced cart snapshot into a persisted order.
//
// The flow is split around the external payment redirect: StageCheckout
// freezes everything needed into a pending-order descriptor before the
// customer leaves for the payment page, and CompleteOrder runs when control
// returns to the confirmation route, in a navigation context where the
// descriptor is the only state available.
type OrderWorkflow struct {
	orders   OrderAPI
	stock    StockAPI
	carts    CartSource
	cartAPI  CartDeleter
	staging  staging.Store
	payments billing.Provider
	events   events.Publisher
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *telemetry.Metrics
	now      func() time.Time
}

// NewOrderWorkflow wires the order workflow.
func NewOrderWorkflow(
	orders OrderAPI,
	stock StockAPI,
	carts CartSource,
	cartAPI CartDeleter,
	stagingStore staging.Store,
	payments billing.Provider,
	publisher events.Publisher,
	logger *slog.Logger,
	metrics *telemetry.Metrics,
) *OrderWorkflow {
	return &OrderWorkflow{
		orders:   orders,
		stock:    stock,
		carts:    carts,
		cartAPI:  cartAPI,
		staging:  stagingStore,
		payments: payments,
		events:   publisher,
		validate: validator.New(),
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// CheckoutRequest is the checkout form submission.
type CheckoutRequest struct {
	ShippingAddress domain.ShippingAddress
	PaymentMethod   string
}

// CheckoutTotals is the price breakdown frozen at staging time.
type CheckoutTotals struct {
	SubtotalCents int64
	ShippingCents int64
	TaxCents      int64
	TotalCents    int64
}

// CheckoutSession is the staged checkout handed back to the caller: the
// totals and the hosted payment page to redirect to.
type CheckoutSession struct {
	Totals     CheckoutTotals
	PaymentURL string
}

// Totals computes the order total for a cart subtotal: flat-rate shipping
// waived at the free threshold, plus tax on the subtotal.
func Totals(subtotalCents int64) CheckoutTotals {
	shipping := int64(shippingFlatCents)
	if subtotalCents >= freeShippingThresholdCents {
		shipping = 0
	}
	tax := int64(math.Round(float64(subtotalCents) * taxRate))
	return CheckoutTotals{
		SubtotalCents: subtotalCents,
		ShippingCents: shipping,
		TaxCents:      tax,
		TotalCents:    subtotalCents + shipping + tax,
	}
}

// StageCheckout validates the submission, snapshots the cart with prices
// frozen, stages the pending-order descriptor, and creates the payment
// redirect. Nothing is ordered and no stock moves until the payment is
// verified on the confirmation route.
func (w *OrderWorkflow) StageCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	user, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	if err := w.validate.Struct(req.ShippingAddress); err != nil {
		return nil, domain.WrapError(err, domain.EINVALID, "checkout.stage", "Shipping address is incomplete or invalid")
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = "stripe"
	}

	// Server truth, not the mirror: staging freezes what the cart service
	// actually holds right now.
	cart, err := w.carts.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("checkout stage: %w", err)
	}
	if len(cart.Lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	lines := make([]domain.OrderLine, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, domain.OrderLine{
			ProductID:      l.ProductID,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
		})
	}
	totals := Totals(cart.SubtotalCents())

	pending := &domain.PendingOrder{
		IdempotencyKey:  uuid.NewString(),
		UserID:          user.ID,
		Lines:           lines,
		TotalCents:      totals.TotalCents,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		CartID:          cart.ID,
		StagedAt:        w.now(),
	}

	redirect, err := w.payments.CreateRedirect(ctx, billing.RedirectParams{
		AmountCents:   totals.TotalCents,
		Currency:      "usd",
		Description:   fmt.Sprintf("Order for %d item(s)", cart.ItemCount()),
		CustomerEmail: req.ShippingAddress.Email,
		Reference:     pending.IdempotencyKey,
	})
	if err != nil {
		return nil, fmt.Errorf("checkout stage: %w", err)
	}
	pending.PaymentRef = redirect.ID

	// The descriptor must be durable before the customer leaves for the
	// payment page; it is the only state the confirmation route will have.
	if err := w.staging.Put(ctx, pending); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "checkout.stage", "Failed to stage checkout")
	}

	return &CheckoutSession{Totals: totals, PaymentURL: redirect.URL}, nil
}

// ConfirmationResult is what the confirmation route renders.
type ConfirmationResult struct {
	OrderID   string
	Reference string
	Status    domain.OrderStatus

	// EstimatedDelivery is display-only.
	EstimatedDelivery time.Time

	// AlreadyProcessed is set when no descriptor was staged: either the
	// confirmation was reloaded after a successful run or the customer
	// navigated here directly. Nothing was mutated.
	AlreadyProcessed bool

	// StockWarning aggregates any failed stock decrements. The order
	// stands regardless; stock bookkeeping is best-effort.
	StockWarning string
}

// CompleteOrder is the post-payment-confirmation entry point.
//
// Running it twice for the same descriptor cannot create two orders: the
// descriptor is discarded in a deferred cleanup as soon as the order
// exists, even if the remaining steps fail, and the create-order call
// itself carries the descriptor's idempotency key as a second line of
// defense.
func (w *OrderWorkflow) CompleteOrder(ctx context.Context) (*ConfirmationResult, error) {
	user, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	pending, err := w.staging.Get(ctx, user.ID)
	if err != nil {
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			// Reload of an already-processed confirmation. Show a local
			// reference; create nothing.
			return &ConfirmationResult{
				Reference:        w.fallbackReference(),
				AlreadyProcessed: true,
			}, nil
		}
		return nil, err
	}

	paid, err := w.payments.VerifyPayment(ctx, pending.PaymentRef)
	if err != nil {
		return nil, fmt.Errorf("confirm order: %w", err)
	}
	if !paid {
		// Descriptor stays staged: the customer may still complete payment
		// and return here again.
		return nil, domain.ErrPaymentNotConfirmed
	}

	order, err := w.orders.Create(ctx, client.CreateOrderParams{
		UserID:          pending.UserID,
		Lines:           pending.Lines,
		TotalCents:      pending.TotalCents,
		ShippingAddress: pending.ShippingAddress,
		PaymentMethod:   pending.PaymentMethod,
		IdempotencyKey:  pending.IdempotencyKey,
	})
	if err != nil {
		// Terminal for this invocation: no order, no stock change, no cart
		// clear, and no automatic retry. The descriptor stays staged so an
		// explicit re-invocation can try again.
		w.metrics.OrderCreateFailures.Inc()
		return nil, fmt.Errorf("confirm order: %w", err)
	}
	w.metrics.OrdersCreated.Inc()

	// The order now exists; from here on the descriptor must be discarded
	// no matter what the side-effect steps do, or a reload would create a
	// duplicate.
	defer func() {
		if derr := w.staging.Delete(context.WithoutCancel(ctx), user.ID); derr != nil {
			w.logger.Error("failed to discard pending order after creation",
				slog.String("user_id", user.ID), slog.String("order_id", order.ID), slog.Any("error", derr))
		}
	}()

	result := &ConfirmationResult{
		OrderID:           order.ID,
		Reference:         order.Reference(),
		Status:            order.Status,
		EstimatedDelivery: order.EstimatedDelivery(),
	}

	if failed := w.decrementStock(ctx, pending.Lines); len(failed) > 0 {
		result.StockWarning = fmt.Sprintf(
			"Order placed, but stock could not be updated for: %s. Please contact support.",
			strings.Join(failed, ", "))
		w.publish(ctx, events.SubjectStockWarning, events.StockWarning{
			OrderID:        order.ID,
			FailedProducts: failed,
		})
	}

	if pending.CartID != "" {
		if err := w.cartAPI.Delete(ctx, pending.CartID); err != nil {
			w.logger.Warn("failed to delete source cart after order creation",
				slog.String("cart_id", pending.CartID), slog.Any("error", err))
		}
	}
	// Clear the local mirror unconditionally; a completed purchase must not
	// keep showing its items even if the remote delete failed.
	w.carts.ForgetLocal(user.ID)

	w.publish(ctx, events.SubjectOrderCreated, events.OrderCreated{
		OrderID:    order.ID,
		UserID:     user.ID,
		TotalCents: order.TotalCents,
		LineCount:  len(order.Lines),
		CreatedAt:  order.CreatedAt,
	})

	return result, nil
}

// decrementStock fans the per-line updates out concurrently and waits for
// all of them to settle. Lines are independent; partial failure is
// tolerated and reported as one aggregate.
func (w *OrderWorkflow) decrementStock(ctx context.Context, lines []domain.OrderLine) []string {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []string
	)

	for _, line := range lines {
		wg.Add(1)
		go func(line domain.OrderLine) {
			defer wg.Done()
			if err := w.stock.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
				w.metrics.StockDecrementErrors.Inc()
				w.logger.Warn("stock decrement failed",
					slog.String("product_id", line.ProductID),
					slog.Int64("quantity", line.Quantity),
					slog.Any("error", err))
				mu.Lock()
				failed = append(failed, line.ProductID)
				mu.Unlock()
			}
		}(line)
	}
	wg.Wait()

	return failed
}

// Cancel requests a transition to cancelled. Only the server decides
// refunds; this side just guards the transitions that can never succeed.
func (w *OrderWorkflow) Cancel(ctx context.Context, orderID string) (*domain.Order, error) {
	user, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	current, err := w.findOrder(ctx, user.ID, orderID)
	if err != nil {
		return nil, err
	}
	if !current.Status.Cancellable() {
		return nil, domain.ErrOrderNotCancellable
	}

	updated, err := w.orders.UpdateStatus(ctx, orderID, domain.StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}
	w.metrics.OrdersCancelled.Inc()

	w.publish(ctx, events.SubjectOrderCancelled, events.OrderCancelled{
		OrderID:  updated.ID,
		UserID:   user.ID,
		Refunded: updated.Refunded,
	})

	return updated, nil
}

// ListOrders returns the current user's order history.
func (w *OrderWorkflow) ListOrders(ctx context.Context) ([]domain.Order, error) {
	userID, err := session.UserID(ctx)
	if err != nil {
		return nil, err
	}
	return w.orders.ListByUser(ctx, userID)
}

// GetOrder returns one of the current user's orders.
func (w *OrderWorkflow) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	userID, err := session.UserID(ctx)
	if err != nil {
		return nil, err
	}
	return w.findOrder(ctx, userID, orderID)
}

func (w *OrderWorkflow) findOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	orders, err := w.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	for i := range orders {
		if orders[i].ID == orderID {
			return &orders[i], nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

// fallbackReference builds a display-only order reference when no real
// order id is available, from the tail of the current unix milliseconds.
func (w *OrderWorkflow) fallbackReference() string {
	millis := strconv.FormatInt(w.now().UnixMilli(), 10)
	if len(millis) > 6 {
		millis = millis[len(millis)-6:]
	}
	return "ORD-" + millis
}

func (w *OrderWorkflow) publish(ctx context.Context, subject string, event any) {
	if err := w.events.Publish(ctx, subject, event); err != nil {
		w.logger.Warn("event publish failed", slog.String("subject", subject), slog.Any("error", err))
	}
}
