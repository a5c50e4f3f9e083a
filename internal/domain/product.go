package domain

// Product-related domain errors.
var (
	ErrProductNotFound = &Error{Code: ENOTFOUND, Message: "Product not found"}
)

// Product is owned by the external catalog service and read-only here.
// Prices are carried in cents to avoid floating point drift.
type Product struct {
	ID          string
	Title       string
	Description string
	PriceCents  int64
	Category    string
	ImageURL    string

	// Stock is the catalog's last known on-hand count. Optional; -1 when
	// the catalog did not report one.
	Stock int64

	Rating *Rating
}

// Rating aggregates review scores for a product. Optional on Product.
type Rating struct {
	Rate  float64
	Count int
}
