package service

import (
	"context"
	"sync"

	"github.com/rowanvale/njord/internal/domain"
)

// ProductAPI is the slice of the product service client the catalog
// consumes.
type ProductAPI interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, productID string) (*domain.Product, error)
}

// QueryStatus tracks a logical catalog query through its lifecycle.
type QueryStatus string

const (
	QueryIdle      QueryStatus = "idle"
	QueryLoading   QueryStatus = "loading"
	QuerySucceeded QueryStatus = "succeeded"
	QueryFailed    QueryStatus = "failed"
)

type cachedProduct struct {
	status  QueryStatus
	product domain.Product
}

// Catalog is a read-through, staleness-tolerant cache over the product
// service. It never writes. Detail lookups always re-fetch rather than
// trusting an earlier listing's embedded copy, because price and stock may
// have moved underneath it.
type Catalog struct {
	api ProductAPI

	mu            sync.Mutex
	listingStatus QueryStatus
	listing       []domain.Product
	products      map[string]cachedProduct
}

// NewCatalog creates a catalog cache.
func NewCatalog(api ProductAPI) *Catalog {
	return &Catalog{
		api:           api,
		listingStatus: QueryIdle,
		products:      make(map[string]cachedProduct),
	}
}

// Listing returns the product listing, fetching it on first use or after a
// failure. A previously succeeded listing is served from cache; callers
// that need freshness use RefreshListing.
func (c *Catalog) Listing(ctx context.Context) ([]domain.Product, error) {
	c.mu.Lock()
	if c.listingStatus == QuerySucceeded {
		cached := make([]domain.Product, len(c.listing))
		copy(cached, c.listing)
		c.mu.Unlock()
		return cached, nil
	}
	c.listingStatus = QueryLoading
	c.mu.Unlock()

	return c.RefreshListing(ctx)
}

// RefreshListing unconditionally re-fetches the listing.
func (c *Catalog) RefreshListing(ctx context.Context) ([]domain.Product, error) {
	products, err := c.api.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.listingStatus = QueryFailed
		return nil, err
	}

	c.listingStatus = QuerySucceeded
	c.listing = products
	for _, p := range products {
		c.products[p.ID] = cachedProduct{status: QuerySucceeded, product: p}
	}

	cached := make([]domain.Product, len(products))
	copy(cached, products)
	return cached, nil
}

// Product fetches one product by id. Always a round trip: a detail view
// must see the current price and stock, not a stale listing copy. The cache
// retains the result for consumers that tolerate staleness.
func (c *Catalog) Product(ctx context.Context, productID string) (*domain.Product, error) {
	c.mu.Lock()
	entry := c.products[productID]
	entry.status = QueryLoading
	c.products[productID] = entry
	c.mu.Unlock()

	product, err := c.api.Get(ctx, productID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		entry.status = QueryFailed
		c.products[productID] = entry
		return nil, err
	}

	c.products[productID] = cachedProduct{status: QuerySucceeded, product: *product}
	copy := *product
	return &copy, nil
}

// Cached returns the last known copy of a product without a round trip.
func (c *Catalog) Cached(productID string) (*domain.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.products[productID]
	if !ok || entry.status != QuerySucceeded {
		return nil, false
	}
	copy := entry.product
	return &copy, true
}

// ListingStatus reports the listing query's lifecycle state.
func (c *Catalog) ListingStatus() QueryStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listingStatus
}

// ProductStatus reports one product query's lifecycle state.
func (c *Catalog) ProductStatus(productID string) QueryStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.products[productID]
	if !ok {
		return QueryIdle
	}
	return entry.status
}
