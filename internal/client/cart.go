package client

import (
	"context"
	"net/http"

	"github.com/guonaihong/gout"

	"github.com/rowanvale/njord/internal/domain"
)

// CartClient talks to the cart service. The protocol is full-replace: the
// caller always sends the complete intended line set, never a delta, and the
// response body is the server's authoritative cart.
type CartClient struct {
	base
}

// NewCartClient creates a cart service client. httpClient may be nil.
func NewCartClient(baseURL string, httpClient *http.Client) *CartClient {
	return &CartClient{base: newBase("cart", baseURL, httpClient)}
}

// CartLineInput is one line of the intended final state sent on create and
// update.
type CartLineInput struct {
	ProductID string
	Quantity  int64
}

type cartLineJSON struct {
	Product  productJSON `json:"product"`
	Quantity int64       `json:"quantity"`
}

type cartJSON struct {
	ID    string         `json:"_id"`
	User  string         `json:"user"`
	Items []cartLineJSON `json:"items"`
}

type cartEnvelope struct {
	Data *cartJSON `json:"data"`
}

type cartLineInputJSON struct {
	Product  string `json:"product"`
	Quantity int64  `json:"quantity"`
}

func encodeLines(lines []CartLineInput) []cartLineInputJSON {
	out := make([]cartLineInputJSON, 0, len(lines))
	for _, l := range lines {
		out = append(out, cartLineInputJSON{Product: l.ProductID, Quantity: l.Quantity})
	}
	return out
}

func (c *cartJSON) toDomain() *domain.Cart {
	cart := &domain.Cart{ID: c.ID, UserID: c.User}
	for _, item := range c.Items {
		cart.Lines = append(cart.Lines, domain.CartLine{
			ProductID:      item.Product.ID,
			Quantity:       item.Quantity,
			UnitPriceCents: dollarsToCents(item.Product.Price),
			Title:          item.Product.Title,
			ImageURL:       item.Product.Image,
		})
	}
	return cart
}

// Get fetches the current cart for a user. Returns (nil, nil) when the user
// has no cart yet; that is a normal state, not an error.
func (c *CartClient) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	var env cartEnvelope
	df := c.g.GET(c.baseURL).
		SetQuery(gout.H{"user": userID})

	err := c.do(ctx, "cart.get", df, &env, domain.ErrCartNotFound)
	if err != nil {
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			return nil, nil
		}
		return nil, err
	}
	if env.Data == nil {
		return nil, nil
	}
	return env.Data.toDomain(), nil
}

// Create persists a new cart. The returned cart is adopted wholesale; the
// server may have merged the submitted lines with a pre-existing cart.
func (c *CartClient) Create(ctx context.Context, userID string, lines []CartLineInput) (*domain.Cart, error) {
	var env cartEnvelope
	df := c.g.POST(c.baseURL).
		SetJSON(gout.H{"user": userID, "items": encodeLines(lines)})

	if err := c.do(ctx, "cart.create", df, &env, nil); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, domain.Errorf(domain.EUNAVAILABLE, "cart.create", "cart service returned an empty body")
	}
	return env.Data.toDomain(), nil
}

// Update replaces the cart's entire line set.
func (c *CartClient) Update(ctx context.Context, cartID string, lines []CartLineInput) (*domain.Cart, error) {
	var env cartEnvelope
	df := c.g.PUT(c.baseURL + "/" + cartID).
		SetJSON(gout.H{"items": encodeLines(lines)})

	if err := c.do(ctx, "cart.update", df, &env, domain.ErrCartNotFound); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, domain.Errorf(domain.EUNAVAILABLE, "cart.update", "cart service returned an empty body")
	}
	return env.Data.toDomain(), nil
}

// Delete removes the cart resource entirely.
func (c *CartClient) Delete(ctx context.Context, cartID string) error {
	var res ack
	df := c.g.DELETE(c.baseURL + "/" + cartID)
	return c.do(ctx, "cart.delete", df, &res, domain.ErrCartNotFound)
}
