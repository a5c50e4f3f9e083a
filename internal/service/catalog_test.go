package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rowanvale/njord/internal/domain"
)

type fakeProductAPI struct {
	products map[string]domain.Product

	listErr error
	getErr  error

	listCalls int
	getCalls  int
}

func newFakeProductAPI() *fakeProductAPI {
	return &fakeProductAPI{products: map[string]domain.Product{
		"p1": {ID: "p1", Title: "Anchor", PriceCents: 2999, Stock: 10},
		"p2": {ID: "p2", Title: "Compass", PriceCents: 1550, Stock: 3},
	}}
}

func (f *fakeProductAPI) List(ctx context.Context) ([]domain.Product, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Product, 0, len(f.products))
	for _, id := range []string{"p1", "p2"} {
		out = append(out, f.products[id])
	}
	return out, nil
}

func (f *fakeProductAPI) Get(ctx context.Context, productID string) (*domain.Product, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.products[productID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	copy := p
	return &copy, nil
}

func TestCatalogListingCaches(t *testing.T) {
	api := newFakeProductAPI()
	catalog := NewCatalog(api)
	ctx := context.Background()

	if got := catalog.ListingStatus(); got != QueryIdle {
		t.Errorf("initial status = %q, want idle", got)
	}

	first, err := catalog.Listing(ctx)
	if err != nil {
		t.Fatalf("Listing() error = %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("len = %d, want 2", len(first))
	}
	if got := catalog.ListingStatus(); got != QuerySucceeded {
		t.Errorf("status = %q, want succeeded", got)
	}

	// A succeeded listing is served from cache.
	if _, err := catalog.Listing(ctx); err != nil {
		t.Fatal(err)
	}
	if api.listCalls != 1 {
		t.Errorf("listCalls = %d, want 1", api.listCalls)
	}

	if _, err := catalog.RefreshListing(ctx); err != nil {
		t.Fatal(err)
	}
	if api.listCalls != 2 {
		t.Errorf("listCalls after refresh = %d, want 2", api.listCalls)
	}
}

func TestCatalogListingFailureAllowsRetry(t *testing.T) {
	api := newFakeProductAPI()
	api.listErr = errors.New("catalog down")
	catalog := NewCatalog(api)
	ctx := context.Background()

	if _, err := catalog.Listing(ctx); err == nil {
		t.Fatal("expected the listing failure to surface")
	}
	if got := catalog.ListingStatus(); got != QueryFailed {
		t.Errorf("status = %q, want failed", got)
	}

	// A later call retries instead of serving the failure.
	api.listErr = nil
	listing, err := catalog.Listing(ctx)
	if err != nil {
		t.Fatalf("Listing() after recovery error = %v", err)
	}
	if len(listing) != 2 {
		t.Errorf("len = %d, want 2", len(listing))
	}
}

func TestCatalogProductAlwaysRefetches(t *testing.T) {
	api := newFakeProductAPI()
	catalog := NewCatalog(api)
	ctx := context.Background()

	// Hydrate the cache via the listing, then move the price underneath it.
	if _, err := catalog.Listing(ctx); err != nil {
		t.Fatal(err)
	}
	api.products["p1"] = domain.Product{ID: "p1", Title: "Anchor", PriceCents: 3499, Stock: 9}

	p, err := catalog.Product(ctx, "p1")
	if err != nil {
		t.Fatalf("Product() error = %v", err)
	}
	if p.PriceCents != 3499 {
		t.Errorf("PriceCents = %d, want the fresh 3499, not the listing copy", p.PriceCents)
	}
	if api.getCalls != 1 {
		t.Errorf("getCalls = %d, want 1 (detail views always round trip)", api.getCalls)
	}

	// And again: no serve-from-cache on the detail path.
	if _, err := catalog.Product(ctx, "p1"); err != nil {
		t.Fatal(err)
	}
	if api.getCalls != 2 {
		t.Errorf("getCalls = %d, want 2", api.getCalls)
	}
}

func TestCatalogProductFailureKeepsStatus(t *testing.T) {
	api := newFakeProductAPI()
	catalog := NewCatalog(api)
	ctx := context.Background()

	api.getErr = errors.New("catalog down")
	if _, err := catalog.Product(ctx, "p1"); err == nil {
		t.Fatal("expected the fetch failure to surface")
	}
	if got := catalog.ProductStatus("p1"); got != QueryFailed {
		t.Errorf("status = %q, want failed", got)
	}
	if _, ok := catalog.Cached("p1"); ok {
		t.Error("a failed fetch must not populate the cache")
	}
}

func TestCatalogCached(t *testing.T) {
	api := newFakeProductAPI()
	catalog := NewCatalog(api)
	ctx := context.Background()

	if _, ok := catalog.Cached("p1"); ok {
		t.Error("nothing should be cached before any fetch")
	}

	if _, err := catalog.Product(ctx, "p1"); err != nil {
		t.Fatal(err)
	}
	p, ok := catalog.Cached("p1")
	if !ok {
		t.Fatal("p1 should be cached after a successful fetch")
	}
	if p.PriceCents != 2999 {
		t.Errorf("PriceCents = %d, want 2999", p.PriceCents)
	}

	if got := catalog.ProductStatus("unknown"); got != QueryIdle {
		t.Errorf("unknown product status = %q, want idle", got)
	}
}
