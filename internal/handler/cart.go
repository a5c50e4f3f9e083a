package handler

import (
	"net/http"

	"github.com/rowanvale/njord/internal/domain"
	"github.com/rowanvale/njord/internal/service"
)

// CartHandler serves the cart mirror endpoints.
type CartHandler struct {
	carts *service.CartStore
}

// NewCartHandler creates a cart handler.
func NewCartHandler(carts *service.CartStore) *CartHandler {
	return &CartHandler{carts: carts}
}

// Get serves GET /cart: re-fetched server truth, not the bare mirror.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.Fetch(r.Context())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondData(w, http.StatusOK, toCartView(cart))
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// AddItem serves POST /cart/items. Quantity defaults to 1 when omitted and
// increments any existing line for the same product.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := DecodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}
	if req.ProductID == "" {
		ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "cart.add", "productId is required"))
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, err := h.carts.AddOrIncrement(r.Context(), req.ProductID, req.Quantity)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondData(w, http.StatusOK, toCartView(cart))
}

type updateItemRequest struct {
	Quantity int64 `json:"quantity"`
}

// UpdateItem serves PUT /cart/items/{productID}. Quantities below one are
// clamped here; removing a line is an explicit DELETE, never a zero.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := DecodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	cart, err := h.carts.UpdateQuantity(r.Context(), r.PathValue("productID"), req.Quantity)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondData(w, http.StatusOK, toCartView(cart))
}

// RemoveItem serves DELETE /cart/items/{productID}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.RemoveLine(r.Context(), r.PathValue("productID"))
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondData(w, http.StatusOK, toCartView(cart))
}

// Clear serves DELETE /cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context()); err != nil {
		ErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
