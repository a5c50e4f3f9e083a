package domain

import "time"

// Wishlist-related domain errors.
var (
	ErrWishlistNotFound = &Error{Code: ENOTFOUND, Message: "Wishlist not found"}
	ErrAlreadySaved     = &Error{Code: ECONFLICT, Message: "Product already saved"}
)

// WishlistEntry is a saved-for-later product. A product appears at most
// once per user; the wishlist service enforces the dedup and the mirror
// adopts whatever the service returns.
type WishlistEntry struct {
	ProductID string
	AddedAt   time.Time

	Title      string
	PriceCents int64
	ImageURL   string
}

// Wishlist mirrors one user's server-side saved list.
type Wishlist struct {
	UserID  string
	Entries []WishlistEntry
}

// Contains reports whether productID is already saved.
func (w *Wishlist) Contains(productID string) bool {
	for _, e := range w.Entries {
		if e.ProductID == productID {
			return true
		}
	}
	return false
}
