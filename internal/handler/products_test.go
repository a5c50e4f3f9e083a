package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rowanvale/njord/internal/domain"
	"github.com/rowanvale/njord/internal/service"
)

type stubProductAPI struct {
	products map[string]domain.Product
}

func (s *stubProductAPI) List(ctx context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, nil
}

func (s *stubProductAPI) Get(ctx context.Context, productID string) (*domain.Product, error) {
	p, ok := s.products[productID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func TestProductHandlerGet(t *testing.T) {
	api := &stubProductAPI{products: map[string]domain.Product{
		"p1": {ID: "p1", Title: "Anchor", PriceCents: 2999, Stock: 12},
	}}
	h := NewProductHandler(service.NewCatalog(api))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /products/{id}", h.Get)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/p1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Data struct {
			ID    string  `json:"id"`
			Price float64 `json:"price"`
			Stock *int64  `json:"stock"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Data.ID != "p1" {
		t.Errorf("id = %q, want p1", resp.Data.ID)
	}
	if resp.Data.Price != 29.99 {
		t.Errorf("price = %v, want 29.99", resp.Data.Price)
	}
	if resp.Data.Stock == nil || *resp.Data.Stock != 12 {
		t.Errorf("stock = %v, want 12", resp.Data.Stock)
	}
}

func TestProductHandlerGetNotFound(t *testing.T) {
	h := NewProductHandler(service.NewCatalog(&stubProductAPI{products: map[string]domain.Product{}}))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /products/{id}", h.Get)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestProductHandlerOmitsUnknownStock(t *testing.T) {
	api := &stubProductAPI{products: map[string]domain.Product{
		"p1": {ID: "p1", Title: "Anchor", PriceCents: 2999, Stock: -1},
	}}
	h := NewProductHandler(service.NewCatalog(api))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /products/{id}", h.Get)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/p1", nil))

	var raw map[string]map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&raw); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if _, present := raw["data"]["stock"]; present {
		t.Error("unreported stock should be omitted, not rendered as -1")
	}
}
