package handler

import (
	"net/http"

	"github.com/rowanvale/njord/internal/service"
)

// ProductHandler serves the catalog read endpoints.
type ProductHandler struct {
	catalog *service.Catalog
}

// NewProductHandler creates a product handler.
func NewProductHandler(catalog *service.Catalog) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// List serves GET /products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Listing(r.Context())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondData(w, http.StatusOK, toProductViews(products))
}

// Get serves GET /products/{id}. Always a fresh fetch so the detail view
// sees current price and stock.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Product(r.Context(), r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondData(w, http.StatusOK, toProductView(product))
}
