// Package session centralizes the current-user lookup. The auth
// collaborator issues tokens; this service only verifies them and carries
// the resulting user through the request context. All components resolve
// the acting user through FromContext instead of reading storage ad hoc.
package session

import (
	"context"

	"github.com/rowanvale/njord/internal/domain"
)

// User is the authenticated principal for one request.
type User struct {
	ID    string
	Email string
	Role  string
}

// Admin reports whether the user may reach moderation endpoints.
func (u *User) Admin() bool {
	return u.Role == "admin"
}

type contextKey string

const userContextKey contextKey = "session_user"

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// FromContext returns the authenticated user, or ErrNoCurrentUser when the
// request carries no session. Every cart/wishlist/order mutation checks this
// before calling out.
func FromContext(ctx context.Context) (*User, error) {
	u, ok := ctx.Value(userContextKey).(*User)
	if !ok || u == nil || u.ID == "" {
		return nil, domain.ErrNoCurrentUser
	}
	return u, nil
}

// UserID is a convenience wrapper over FromContext for call sites that only
// need the id.
func UserID(ctx context.Context) (string, error) {
	u, err := FromContext(ctx)
	if err != nil {
		return "", err
	}
	return u.ID, nil
}
