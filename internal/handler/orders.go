package handler

import (
	"net/http"

	"github.com/rowanvale/njord/internal/service"
)

// OrderHandler serves the order history and cancellation endpoints.
type OrderHandler struct {
	workflow *service.OrderWorkflow
}

// NewOrderHandler creates an order handler.
func NewOrderHandler(workflow *service.OrderWorkflow) *OrderHandler {
	return &OrderHandler{workflow: workflow}
}

// List serves GET /orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.workflow.ListOrders(r.Context())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondData(w, http.StatusOK, toOrderViews(orders))
}

// Get serves GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.workflow.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondData(w, http.StatusOK, toOrderView(order))
}

// Cancel serves POST /orders/{id}/cancel. Delivered and already-cancelled
// orders render 409 without a server round trip.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	order, err := h.workflow.Cancel(r.Context(), r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondData(w, http.StatusOK, toOrderView(order))
}
