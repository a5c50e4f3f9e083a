package handler

import (
	"net/http"

	"github.com/rowanvale/njord/internal/domain"
	"github.com/rowanvale/njord/internal/service"
)

// WishlistHandler serves the saved-for-later endpoints, including the
// two-step move-to-cart workflows.
type WishlistHandler struct {
	wishlists *service.WishlistStore
}

// NewWishlistHandler creates a wishlist handler.
func NewWishlistHandler(wishlists *service.WishlistStore) *WishlistHandler {
	return &WishlistHandler{wishlists: wishlists}
}

// Get serves GET /wishlist.
func (h *WishlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	list, err := h.wishlists.Fetch(r.Context())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondData(w, http.StatusOK, toWishlistView(list))
}

type addWishlistRequest struct {
	ProductID string `json:"productId"`
}

// AddItem serves POST /wishlist/items.
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addWishlistRequest
	if err := DecodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}
	if req.ProductID == "" {
		ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "wishlist.add", "productId is required"))
		return
	}

	list, err := h.wishlists.Add(r.Context(), req.ProductID)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondData(w, http.StatusOK, toWishlistView(list))
}

// RemoveItem serves DELETE /wishlist/items/{productID}.
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	list, err := h.wishlists.Remove(r.Context(), r.PathValue("productID"))
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondData(w, http.StatusOK, toWishlistView(list))
}

// MoveToCart serves POST /wishlist/move/{productID}. A partial failure
// (added to the cart, still on the wishlist) renders as 207 so the caller
// can tell it apart from a clean move.
func (h *WishlistHandler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	list, err := h.wishlists.MoveToCart(r.Context(), r.PathValue("productID"))
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondData(w, http.StatusOK, toWishlistView(list))
}

// MoveAllToCart serves POST /wishlist/move-all.
func (h *WishlistHandler) MoveAllToCart(w http.ResponseWriter, r *http.Request) {
	list, err := h.wishlists.MoveAllToCart(r.Context())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondData(w, http.StatusOK, toWishlistView(list))
}

// Clear serves DELETE /wishlist.
func (h *WishlistHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.wishlists.Clear(r.Context()); err != nil {
		ErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
