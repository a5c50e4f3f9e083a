// Package staging persists pending-order descriptors between checkout
// submission and the return from the external payment page. The descriptor
// is the only state available when control comes back on the confirmation
// route, so it lives server-side, one slot per user.
package staging

import (
	"context"

	"github.com/rowanvale/njord/internal/domain"
)

// Store stages at most one pending-order descriptor per user.
type Store interface {
	// Put stages a descriptor, replacing any previous one for the user.
	Put(ctx context.Context, pending *domain.PendingOrder) error

	// Get returns the user's staged descriptor, or ErrNoPendingOrder.
	Get(ctx context.Context, userID string) (*domain.PendingOrder, error)

	// Delete discards the user's descriptor. Deleting an absent descriptor
	// is not an error; the confirmation workflow relies on that.
	Delete(ctx context.Context, userID string) error
}
