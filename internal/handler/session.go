package handler

import (
	"net/http"

	"github.com/rowanvale/njord/internal/service"
	"github.com/rowanvale/njord/internal/session"
)

// SessionHandler hydrates and drops per-user state when the acting user
// becomes known or logs out.
type SessionHandler struct {
	carts     *service.CartStore
	wishlists *service.WishlistStore
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(carts *service.CartStore, wishlists *service.WishlistStore) *SessionHandler {
	return &SessionHandler{carts: carts, wishlists: wishlists}
}

type sessionView struct {
	User     userView     `json:"user"`
	Cart     cartView     `json:"cart"`
	Wishlist wishlistView `json:"wishlist"`
}

type userView struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Get serves GET /session: the login/restore hydration point. Both mirrors
// are fetched from their services so stale local state never survives a new
// session.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := session.FromContext(r.Context())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	cart, err := h.carts.Fetch(r.Context())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	wishlist, err := h.wishlists.Fetch(r.Context())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	RespondData(w, http.StatusOK, sessionView{
		User:     userView{ID: user.ID, Email: user.Email, Role: user.Role},
		Cart:     toCartView(cart),
		Wishlist: toWishlistView(wishlist),
	})
}

// Delete serves DELETE /session: logout. Only local mirrors are dropped;
// the remote cart and wishlist persist for the next login.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := session.FromContext(r.Context())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	h.carts.ForgetLocal(user.ID)
	h.wishlists.ForgetLocal(user.ID)
	w.WriteHeader(http.StatusNoContent)
}
