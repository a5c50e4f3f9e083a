// Package billing abstracts the external payment collaborator. The only
// contract the order workflow relies on is a hosted payment page that sends
// the customer back to a known confirmation route, plus server-side
// verification that the payment actually settled before any order or stock
// mutation runs.
package billing

import "context"

// Provider defines the interface for the payment collaborator.
type Provider interface {
	// CreateRedirect creates a hosted payment session and returns the URL
	// to send the customer to.
	CreateRedirect(ctx context.Context, params RedirectParams) (*Redirect, error)

	// VerifyPayment reports whether the session identified by ref has been
	// paid. The confirmation workflow must not mutate anything on a mere
	// return navigation.
	VerifyPayment(ctx context.Context, ref string) (bool, error)
}

// RedirectParams describes the charge behind a hosted payment session.
type RedirectParams struct {
	AmountCents   int64
	Currency      string
	Description   string
	CustomerEmail string

	// Reference correlates the payment session with the staged pending
	// order (the idempotency key).
	Reference string
}

// Redirect is a created hosted payment session.
type Redirect struct {
	// ID identifies the session for later verification.
	ID string

	// URL is the hosted payment page.
	URL string
}
