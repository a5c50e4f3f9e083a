package domain

// Cart-related domain errors.
var (
	ErrCartNotFound    = &Error{Code: ENOTFOUND, Message: "Cart not found"}
	ErrCartLineMissing = &Error{Code: ENOTFOUND, Message: "Cart line not found"}
	ErrInvalidQuantity = &Error{Code: EINVALID, Message: "Quantity must be greater than 0"}
	ErrNoCurrentUser   = &Error{Code: EUNAUTHORIZED, Message: "Please login to continue"}
)

// CartLine pairs a product reference with a positive quantity.
// A cart holds at most one line per distinct product id.
type CartLine struct {
	ProductID string
	Quantity  int64

	// UnitPriceCents is the catalog price the cart service reported for
	// this line. Informational; orders freeze their own copy.
	UnitPriceCents int64
	Title          string
	ImageURL       string
}

// Cart mirrors one user's server-side cart. ID is empty until the cart
// service has persisted the cart. The mirror is a cache: the server's
// response is adopted wholesale after every mutation.
type Cart struct {
	ID     string
	UserID string
	Lines  []CartLine
}

// Line returns the line for productID, or nil.
func (c *Cart) Line(productID string) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i]
		}
	}
	return nil
}

// SubtotalCents sums quantity * unit price over all lines.
func (c *Cart) SubtotalCents() int64 {
	var total int64
	for _, l := range c.Lines {
		total += l.Quantity * l.UnitPriceCents
	}
	return total
}

// ItemCount sums quantities over all lines.
func (c *Cart) ItemCount() int64 {
	var n int64
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}
