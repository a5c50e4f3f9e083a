package handler

import (
	"net/http"
	"time"

	"github.com/rowanvale/njord/internal/domain"
	"github.com/rowanvale/njord/internal/service"
)

// CheckoutHandler serves the two checkout entry points: staging before the
// payment redirect and completion after it.
type CheckoutHandler struct {
	workflow *service.OrderWorkflow
}

// NewCheckoutHandler creates a checkout handler.
func NewCheckoutHandler(workflow *service.OrderWorkflow) *CheckoutHandler {
	return &CheckoutHandler{workflow: workflow}
}

type checkoutRequest struct {
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
}

type totalsView struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

type checkoutView struct {
	Totals     totalsView `json:"totals"`
	PaymentURL string     `json:"paymentUrl"`
}

// Stage serves POST /checkout.
func (h *CheckoutHandler) Stage(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := DecodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	sess, err := h.workflow.StageCheckout(r.Context(), service.CheckoutRequest{
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	RespondData(w, http.StatusOK, checkoutView{
		Totals: totalsView{
			Subtotal: dollars(sess.Totals.SubtotalCents),
			Shipping: dollars(sess.Totals.ShippingCents),
			Tax:      dollars(sess.Totals.TaxCents),
			Total:    dollars(sess.Totals.TotalCents),
		},
		PaymentURL: sess.PaymentURL,
	})
}

type confirmationView struct {
	OrderID           string    `json:"orderId,omitempty"`
	Reference         string    `json:"reference"`
	Status            string    `json:"status,omitempty"`
	EstimatedDelivery time.Time `json:"estimatedDelivery,omitzero"`
	AlreadyProcessed  bool      `json:"alreadyProcessed,omitempty"`
	StockWarning      string    `json:"stockWarning,omitempty"`
}

// Confirm serves POST /checkout/confirm. Safe to re-run: a second call for
// the same purchase finds no staged descriptor and mutates nothing.
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	result, err := h.workflow.CompleteOrder(r.Context())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	status := http.StatusCreated
	if result.AlreadyProcessed {
		status = http.StatusOK
	} else if result.StockWarning != "" {
		status = http.StatusMultiStatus
	}

	RespondData(w, status, confirmationView{
		OrderID:           result.OrderID,
		Reference:         result.Reference,
		Status:            string(result.Status),
		EstimatedDelivery: result.EstimatedDelivery,
		AlreadyProcessed:  result.AlreadyProcessed,
		StockWarning:      result.StockWarning,
	})
}
