package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rowanvale/njord/internal/domain"
	"github.com/rowanvale/njord/internal/session"
	"github.com/rowanvale/njord/internal/telemetry"
)

// WishlistAPI is the slice of the wishlist service client the store
// consumes.
type WishlistAPI interface {
	Get(ctx context.Context, userID string) (*domain.Wishlist, error)
	Add(ctx context.Context, userID, productID string) (*domain.Wishlist, error)
	Remove(ctx context.Context, userID, productID string) (*domain.Wishlist, error)
	Clear(ctx context.Context, userID string) error
}

// CartAdder is the one cart operation the move workflows need.
type CartAdder interface {
	AddOrIncrement(ctx context.Context, productID string, quantityDelta int64) (*domain.Cart, error)
}

// WishlistStore mirrors a user's saved-for-later list with the same
// server-authoritative pattern as the cart store, minus the quantity
// dimension. Every mutation adopts the server's post-mutation list; no
// operation assumes success before confirmation.
type WishlistStore struct {
	api     WishlistAPI
	cart    CartAdder
	logger  *slog.Logger
	metrics *telemetry.Metrics

	mu      sync.Mutex
	mirrors map[string]domain.Wishlist
}

// NewWishlistStore creates a wishlist store.
func NewWishlistStore(api WishlistAPI, cart CartAdder, logger *slog.Logger, metrics *telemetry.Metrics) *WishlistStore {
	return &WishlistStore{
		api:     api,
		cart:    cart,
		logger:  logger,
		metrics: metrics,
		mirrors: make(map[string]domain.Wishlist),
	}
}

func (s *WishlistStore) adopt(list *domain.Wishlist) domain.Wishlist {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mirrors[list.UserID] = *list
	return *list
}

// Fetch retrieves the server's wishlist and replaces the mirror.
func (s *WishlistStore) Fetch(ctx context.Context) (*domain.Wishlist, error) {
	userID, err := session.UserID(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.api.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	copy := s.adopt(list)
	return &copy, nil
}

// Add saves a product for later. A product already saved is a server-side
// no-op; the mirror adopts whatever list comes back either way.
func (s *WishlistStore) Add(ctx context.Context, productID string) (*domain.Wishlist, error) {
	userID, err := session.UserID(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.api.Add(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	copy := s.adopt(list)
	return &copy, nil
}

// Remove drops a product from the saved list.
func (s *WishlistStore) Remove(ctx context.Context, productID string) (*domain.Wishlist, error) {
	userID, err := session.UserID(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.api.Remove(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	copy := s.adopt(list)
	return &copy, nil
}

// Clear empties the wishlist server-side and locally.
func (s *WishlistStore) Clear(ctx context.Context) error {
	userID, err := session.UserID(ctx)
	if err != nil {
		return err
	}

	if err := s.api.Clear(ctx, userID); err != nil {
		return err
	}
	s.adopt(&domain.Wishlist{UserID: userID})
	return nil
}

// MoveToCart moves one saved product into the cart: cart add first,
// wishlist removal second. If the cart add fails the removal never runs, so
// the product stays saved. If the removal fails after the add succeeded the
// product is duplicated in both stores; that inconsistency is reported, not
// silently retried.
func (s *WishlistStore) MoveToCart(ctx context.Context, productID string) (*domain.Wishlist, error) {
	userID, err := session.UserID(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.cart.AddOrIncrement(ctx, productID, 1); err != nil {
		s.metrics.WishlistMoves.WithLabelValues("cart_add_failed").Inc()
		return nil, fmt.Errorf("move to cart: %w", err)
	}

	list, err := s.api.Remove(ctx, userID, productID)
	if err != nil {
		s.metrics.WishlistMoves.WithLabelValues("remove_failed").Inc()
		s.logger.Warn("product added to cart but wishlist removal failed",
			slog.String("user_id", userID), slog.String("product_id", productID), slog.Any("error", err))
		return nil, domain.WrapError(err, domain.EPARTIAL, "wishlist.move",
			"Added to cart, but the item could not be removed from your wishlist")
	}

	s.metrics.WishlistMoves.WithLabelValues("ok").Inc()
	copy := s.adopt(list)
	return &copy, nil
}

// MoveAllToCart migrates every saved product into the cart, then clears the
// wishlist. The adds run first, one by one; the first add failure aborts
// before the clear, leaving already-migrated products in both the cart and
// the wishlist's surviving entries consistent with how far step one got.
func (s *WishlistStore) MoveAllToCart(ctx context.Context) (*domain.Wishlist, error) {
	userID, err := session.UserID(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.api.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.adopt(list)

	if len(list.Entries) == 0 {
		copy := *list
		return &copy, nil
	}

	for _, entry := range list.Entries {
		if _, err := s.cart.AddOrIncrement(ctx, entry.ProductID, 1); err != nil {
			s.metrics.WishlistMoves.WithLabelValues("cart_add_failed").Inc()
			return nil, fmt.Errorf("move all to cart (product %s): %w", entry.ProductID, err)
		}
	}

	if err := s.api.Clear(ctx, userID); err != nil {
		s.metrics.WishlistMoves.WithLabelValues("clear_failed").Inc()
		s.logger.Warn("products added to cart but wishlist clear failed",
			slog.String("user_id", userID), slog.Any("error", err))
		return nil, domain.WrapError(err, domain.EPARTIAL, "wishlist.move_all",
			"Added to cart, but your wishlist could not be cleared")
	}

	s.metrics.WishlistMoves.WithLabelValues("ok").Inc()
	copy := s.adopt(&domain.Wishlist{UserID: userID})
	return &copy, nil
}

// ForgetLocal drops the user's mirror on logout.
func (s *WishlistStore) ForgetLocal(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mirrors, userID)
}
