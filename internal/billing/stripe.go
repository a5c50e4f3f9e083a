package billing

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"

	"github.com/rowanvale/njord/internal/domain"
)

// StripeProvider implements Provider using Stripe Checkout sessions.
type StripeProvider struct {
	successURL string
	cancelURL  string
}

// NewStripeProvider configures the Stripe SDK and returns a provider.
// successURL is the confirmation route control returns to after payment.
func NewStripeProvider(apiKey, successURL, cancelURL string) *StripeProvider {
	stripe.Key = apiKey
	return &StripeProvider{
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

func (p *StripeProvider) CreateRedirect(ctx context.Context, params RedirectParams) (*Redirect, error) {
	currency := params.Currency
	if currency == "" {
		currency = "usd"
	}

	sessionParams := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(p.successURL),
		CancelURL:         stripe.String(p.cancelURL),
		ClientReferenceID: stripe.String(params.Reference),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(params.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(params.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	if params.CustomerEmail != "" {
		sessionParams.CustomerEmail = stripe.String(params.CustomerEmail)
	}
	sessionParams.Context = ctx

	s, err := session.New(sessionParams)
	if err != nil {
		return nil, domain.WrapError(err, domain.EUNAVAILABLE, "billing.create_redirect", "Failed to create payment session")
	}

	return &Redirect{ID: s.ID, URL: s.URL}, nil
}

func (p *StripeProvider) VerifyPayment(ctx context.Context, ref string) (bool, error) {
	if ref == "" {
		return false, fmt.Errorf("payment reference is empty")
	}

	getParams := &stripe.CheckoutSessionParams{}
	getParams.Context = ctx

	s, err := session.Get(ref, getParams)
	if err != nil {
		return false, domain.WrapError(err, domain.EUNAVAILABLE, "billing.verify_payment", "Failed to verify payment session")
	}

	return s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid, nil
}
