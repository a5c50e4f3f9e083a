// Package routes binds handlers to the HTTP surface.
package routes

import (
	"net/http"

	"github.com/rowanvale/njord/internal/handler"
	"github.com/rowanvale/njord/internal/middleware"
	"github.com/rowanvale/njord/internal/router"
)

// Deps contains the handlers the route table wires up.
type Deps struct {
	Products *handler.ProductHandler
	Session  *handler.SessionHandler
	Cart     *handler.CartHandler
	Wishlist *handler.WishlistHandler
	Checkout *handler.CheckoutHandler
	Orders   *handler.OrderHandler
	Reviews  *handler.ReviewHandler

	Metrics *middleware.Metrics
}

// Register registers every route. Catalog reads and product reviews are
// public; everything touching per-user state requires a session, and review
// moderation requires the admin role on top.
func Register(r *router.Router, deps Deps) {
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle(http.MethodGet, "/metrics", deps.Metrics.Handler())

	// Catalog
	r.Get("/products", deps.Products.List)
	r.Get("/products/{id}", deps.Products.Get)

	// Reviews shown on product pages are public; submission needs a user.
	r.Get("/reviews/product/{productID}", deps.Reviews.ListByProduct)

	authed := r.Group(middleware.RequireAuth)

	// Session
	authed.Get("/session", deps.Session.Get)
	authed.Delete("/session", deps.Session.Delete)

	// Cart
	authed.Get("/cart", deps.Cart.Get)
	authed.Delete("/cart", deps.Cart.Clear)
	authed.Post("/cart/items", deps.Cart.AddItem)
	authed.Put("/cart/items/{productID}", deps.Cart.UpdateItem)
	authed.Delete("/cart/items/{productID}", deps.Cart.RemoveItem)

	// Wishlist
	authed.Get("/wishlist", deps.Wishlist.Get)
	authed.Delete("/wishlist", deps.Wishlist.Clear)
	authed.Post("/wishlist/items", deps.Wishlist.AddItem)
	authed.Delete("/wishlist/items/{productID}", deps.Wishlist.RemoveItem)
	authed.Post("/wishlist/move/{productID}", deps.Wishlist.MoveToCart)
	authed.Post("/wishlist/move-all", deps.Wishlist.MoveAllToCart)

	// Checkout
	authed.Post("/checkout", deps.Checkout.Stage)
	authed.Post("/checkout/confirm", deps.Checkout.Confirm)

	// Orders
	authed.Get("/orders", deps.Orders.List)
	authed.Get("/orders/{id}", deps.Orders.Get)
	authed.Post("/orders/{id}/cancel", deps.Orders.Cancel)

	// Review submission and moderation
	authed.Post("/reviews", deps.Reviews.Add)

	admin := r.Group(middleware.RequireAuth, middleware.RequireAdmin)
	admin.Get("/reviews", deps.Reviews.ListAll)
	admin.Put("/reviews/{id}/approve", deps.Reviews.Approve)
	admin.Put("/reviews/{id}/reject", deps.Reviews.Reject)
}
