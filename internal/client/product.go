package client

import (
	"context"
	"net/http"

	"github.com/guonaihong/gout"

	"github.com/rowanvale/njord/internal/domain"
)

// ProductClient talks to the catalog service. Reads feed the catalog cache;
// the only write is the best-effort stock decrement after order creation.
type ProductClient struct {
	base
}

// NewProductClient creates a product service client. httpClient may be nil.
func NewProductClient(baseURL string, httpClient *http.Client) *ProductClient {
	return &ProductClient{base: newBase("product", baseURL, httpClient)}
}

type productEnvelope struct {
	Data *productJSON `json:"data"`
}

type productListEnvelope struct {
	Data []productJSON `json:"data"`
}

// List fetches the full product listing.
func (c *ProductClient) List(ctx context.Context) ([]domain.Product, error) {
	var env productListEnvelope
	df := c.g.GET(c.baseURL)

	if err := c.do(ctx, "product.list", df, &env, nil); err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(env.Data))
	for i := range env.Data {
		products = append(products, env.Data[i].toDomain())
	}
	return products, nil
}

// Get fetches a single product by id.
func (c *ProductClient) Get(ctx context.Context, productID string) (*domain.Product, error) {
	var env productEnvelope
	df := c.g.GET(c.baseURL + "/" + productID)

	if err := c.do(ctx, "product.get", df, &env, domain.ErrProductNotFound); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, domain.ErrProductNotFound
	}
	prod := env.Data.toDomain()
	return &prod, nil
}

// DecrementStock reduces a product's stock by quantity. Best-effort
// bookkeeping after an order exists; the caller tolerates failure.
func (c *ProductClient) DecrementStock(ctx context.Context, productID string, quantity int64) error {
	var env productEnvelope
	df := c.g.PUT(c.baseURL + "/" + productID + "/stock").
		SetJSON(gout.H{"quantity": quantity})
	return c.do(ctx, "product.decrement_stock", df, &env, domain.ErrProductNotFound)
}
