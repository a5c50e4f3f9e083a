// Package client implements HTTP clients for the external REST
// collaborators: cart, wishlist, order, product, and review services.
// Every call is bounded by the caller's context plus a per-request timeout,
// and guarded by a circuit breaker per collaborator. Failures map onto the
// domain error taxonomy; nothing here retries.
package client

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/guonaihong/gout"
	"github.com/guonaihong/gout/dataflow"
	"github.com/sony/gobreaker/v2"

	"github.com/rowanvale/njord/internal/domain"
)

// DefaultTimeout bounds a single collaborator round trip.
const DefaultTimeout = 10 * time.Second

// ack is the body collaborators return for delete-style calls.
type ack struct {
	Message string `json:"message"`
}

// base is the shared plumbing behind each collaborator client.
type base struct {
	name    string
	baseURL string
	g       *gout.Client
	breaker *gobreaker.CircuitBreaker[int]
	timeout time.Duration
}

func newBase(name, baseURL string, httpClient *http.Client) base {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	cb := gobreaker.NewCircuitBreaker[int](gobreaker.Settings{
		Name:    name,
		Timeout: 15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return base{
		name:    name,
		baseURL: baseURL,
		g:       gout.NewWithOpt(gout.WithClient(httpClient)),
		breaker: cb,
		timeout: DefaultTimeout,
	}
}

// do executes a prepared request through the breaker and maps transport
// failures and non-2xx statuses onto domain errors. The body is captured raw
// and decoded into out only after the status is known to be 2xx; error
// responses carry arbitrary bodies (plain-text 404 pages included) that must
// not poison the status mapping. notFound is returned for 404 responses so
// callers can substitute a resource-specific sentinel.
func (b *base) do(ctx context.Context, op string, df *dataflow.DataFlow, out any, notFound error) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	var body []byte
	status, err := b.breaker.Execute(func() (int, error) {
		var code int
		if err := df.WithContext(ctx).Code(&code).BindBody(&body).Do(); err != nil {
			return 0, err
		}
		return code, nil
	})
	if err != nil {
		return domain.WrapError(err, domain.EUNAVAILABLE, op, b.name+" service unreachable")
	}

	switch {
	case status >= 200 && status < 300:
		if out == nil || len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return domain.WrapError(err, domain.EUNAVAILABLE, op, b.name+" service returned a malformed body")
		}
		return nil
	case status == http.StatusNotFound:
		if notFound != nil {
			return notFound
		}
		return domain.Errorf(domain.ENOTFOUND, op, "%s resource not found", b.name)
	case status == http.StatusUnauthorized:
		return domain.Errorf(domain.EUNAUTHORIZED, op, "%s service rejected credentials", b.name)
	case status == http.StatusConflict:
		return domain.Errorf(domain.ECONFLICT, op, "%s service reported a conflict", b.name)
	case status >= 400 && status < 500:
		return domain.Errorf(domain.EINVALID, op, "%s service rejected the request", b.name)
	default:
		return domain.Errorf(domain.EUNAVAILABLE, op, "%s service returned status %d", b.name, status)
	}
}

// Collaborators carry prices as decimal dollars on the wire; the domain
// works in cents.
func dollarsToCents(d float64) int64 {
	return int64(math.Round(d * 100))
}

func centsToDollars(c int64) float64 {
	return float64(c) / 100
}

// productJSON is the catalog's product shape, shared by the cart and
// wishlist payloads that embed populated product references.
type productJSON struct {
	ID          string  `json:"_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Stock       *int64  `json:"stock"`
	Rating      *struct {
		Rate  float64 `json:"rate"`
		Count int     `json:"count"`
	} `json:"rating"`
}

func (p *productJSON) toDomain() domain.Product {
	prod := domain.Product{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		PriceCents:  dollarsToCents(p.Price),
		Category:    p.Category,
		ImageURL:    p.Image,
		Stock:       -1,
	}
	if p.Stock != nil {
		prod.Stock = *p.Stock
	}
	if p.Rating != nil {
		prod.Rating = &domain.Rating{Rate: p.Rating.Rate, Count: p.Rating.Count}
	}
	return prod
}
