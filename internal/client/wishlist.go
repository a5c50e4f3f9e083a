package client

import (
	"context"
	"net/http"
	"time"

	"github.com/guonaihong/gout"

	"github.com/rowanvale/njord/internal/domain"
)

// WishlistClient talks to the wishlist service. Every mutation returns the
// server's authoritative post-mutation list; dedup is enforced server-side
// and mirrored as-is.
type WishlistClient struct {
	base
}

// NewWishlistClient creates a wishlist service client. httpClient may be nil.
func NewWishlistClient(baseURL string, httpClient *http.Client) *WishlistClient {
	return &WishlistClient{base: newBase("wishlist", baseURL, httpClient)}
}

type wishlistEntryJSON struct {
	Product productJSON `json:"product"`
	AddedAt time.Time   `json:"addedAt"`
}

type wishlistJSON struct {
	User  string              `json:"user"`
	Items []wishlistEntryJSON `json:"items"`
}

type wishlistEnvelope struct {
	Data *wishlistJSON `json:"data"`
}

func (w *wishlistJSON) toDomain(userID string) *domain.Wishlist {
	list := &domain.Wishlist{UserID: userID}
	if w.User != "" {
		list.UserID = w.User
	}
	for _, item := range w.Items {
		list.Entries = append(list.Entries, domain.WishlistEntry{
			ProductID:  item.Product.ID,
			AddedAt:    item.AddedAt,
			Title:      item.Product.Title,
			PriceCents: dollarsToCents(item.Product.Price),
			ImageURL:   item.Product.Image,
		})
	}
	return list
}

// Get fetches the user's wishlist. A user with no saved items gets an empty
// list, not an error.
func (c *WishlistClient) Get(ctx context.Context, userID string) (*domain.Wishlist, error) {
	var env wishlistEnvelope
	df := c.g.GET(c.baseURL + "/" + userID)

	err := c.do(ctx, "wishlist.get", df, &env, domain.ErrWishlistNotFound)
	if err != nil {
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			return &domain.Wishlist{UserID: userID}, nil
		}
		return nil, err
	}
	if env.Data == nil {
		return &domain.Wishlist{UserID: userID}, nil
	}
	return env.Data.toDomain(userID), nil
}

// Add saves a product. Adding an already-saved product is a server-side
// no-op; the returned list is authoritative either way.
func (c *WishlistClient) Add(ctx context.Context, userID, productID string) (*domain.Wishlist, error) {
	var env wishlistEnvelope
	df := c.g.POST(c.baseURL + "/add").
		SetJSON(gout.H{"userId": userID, "productId": productID})

	if err := c.do(ctx, "wishlist.add", df, &env, domain.ErrProductNotFound); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, domain.Errorf(domain.EUNAVAILABLE, "wishlist.add", "wishlist service returned an empty body")
	}
	return env.Data.toDomain(userID), nil
}

// Remove drops a product from the saved list.
func (c *WishlistClient) Remove(ctx context.Context, userID, productID string) (*domain.Wishlist, error) {
	var env wishlistEnvelope
	df := c.g.POST(c.baseURL + "/remove").
		SetJSON(gout.H{"userId": userID, "productId": productID})

	if err := c.do(ctx, "wishlist.remove", df, &env, domain.ErrWishlistNotFound); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, domain.Errorf(domain.EUNAVAILABLE, "wishlist.remove", "wishlist service returned an empty body")
	}
	return env.Data.toDomain(userID), nil
}

// Clear empties the user's wishlist.
func (c *WishlistClient) Clear(ctx context.Context, userID string) error {
	var res ack
	df := c.g.DELETE(c.baseURL + "/clear").
		SetJSON(gout.H{"userId": userID})
	return c.do(ctx, "wishlist.clear", df, &res, domain.ErrWishlistNotFound)
}
