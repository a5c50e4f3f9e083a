package handler

import (
	"time"

	"github.com/rowanvale/njord/internal/domain"
)

// View types render domain values on the wire. Prices go out in dollars,
// the unit the storefront displays; cents stay internal.

func dollars(cents int64) float64 {
	return float64(cents) / 100
}

type ratingView struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

type productView struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Price       float64     `json:"price"`
	Category    string      `json:"category,omitempty"`
	Image       string      `json:"image,omitempty"`
	Stock       *int64      `json:"stock,omitempty"`
	Rating      *ratingView `json:"rating,omitempty"`
}

func toProductView(p *domain.Product) productView {
	v := productView{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       dollars(p.PriceCents),
		Category:    p.Category,
		Image:       p.ImageURL,
	}
	if p.Stock >= 0 {
		stock := p.Stock
		v.Stock = &stock
	}
	if p.Rating != nil {
		v.Rating = &ratingView{Rate: p.Rating.Rate, Count: p.Rating.Count}
	}
	return v
}

func toProductViews(products []domain.Product) []productView {
	views := make([]productView, 0, len(products))
	for i := range products {
		views = append(views, toProductView(&products[i]))
	}
	return views
}

type cartLineView struct {
	ProductID string  `json:"productId"`
	Quantity  int64   `json:"quantity"`
	Price     float64 `json:"price"`
	Title     string  `json:"title,omitempty"`
	Image     string  `json:"image,omitempty"`
}

type cartView struct {
	ID       string         `json:"id,omitempty"`
	Items    []cartLineView `json:"items"`
	Subtotal float64        `json:"subtotal"`
	Count    int64          `json:"count"`
}

func toCartView(c *domain.Cart) cartView {
	items := make([]cartLineView, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, cartLineView{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     dollars(l.UnitPriceCents),
			Title:     l.Title,
			Image:     l.ImageURL,
		})
	}
	return cartView{
		ID:       c.ID,
		Items:    items,
		Subtotal: dollars(c.SubtotalCents()),
		Count:    c.ItemCount(),
	}
}

type wishlistEntryView struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title,omitempty"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
}

type wishlistView struct {
	Items []wishlistEntryView `json:"items"`
}

func toWishlistView(w *domain.Wishlist) wishlistView {
	items := make([]wishlistEntryView, 0, len(w.Entries))
	for _, e := range w.Entries {
		items = append(items, wishlistEntryView{
			ProductID: e.ProductID,
			Title:     e.Title,
			Price:     dollars(e.PriceCents),
			Image:     e.ImageURL,
		})
	}
	return wishlistView{Items: items}
}

type orderLineView struct {
	ProductID string  `json:"productId"`
	Quantity  int64   `json:"quantity"`
	Price     float64 `json:"price"`
}

type orderView struct {
	ID                string          `json:"id"`
	Reference         string          `json:"reference"`
	Status            string          `json:"status"`
	Items             []orderLineView `json:"items"`
	Total             float64         `json:"total"`
	PaymentMethod     string          `json:"paymentMethod,omitempty"`
	TrackingNumber    string          `json:"trackingNumber,omitempty"`
	Refunded          bool            `json:"refunded,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	EstimatedDelivery time.Time       `json:"estimatedDelivery"`
}

func toOrderView(o *domain.Order) orderView {
	items := make([]orderLineView, 0, len(o.Lines))
	for _, l := range o.Lines {
		items = append(items, orderLineView{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     dollars(l.UnitPriceCents),
		})
	}
	return orderView{
		ID:                o.ID,
		Reference:         o.Reference(),
		Status:            string(o.Status),
		Items:             items,
		Total:             dollars(o.TotalCents),
		PaymentMethod:     o.PaymentMethod,
		TrackingNumber:    o.TrackingNumber,
		Refunded:          o.Refunded,
		CreatedAt:         o.CreatedAt,
		EstimatedDelivery: o.EstimatedDelivery(),
	}
}

func toOrderViews(orders []domain.Order) []orderView {
	views := make([]orderView, 0, len(orders))
	for i := range orders {
		views = append(views, toOrderView(&orders[i]))
	}
	return views
}

type reviewView struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func toReviewView(r *domain.Review) reviewView {
	return reviewView{
		ID:        r.ID,
		ProductID: r.ProductID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
	}
}

func toReviewViews(reviews []domain.Review) []reviewView {
	views := make([]reviewView, 0, len(reviews))
	for i := range reviews {
		views = append(views, toReviewView(&reviews[i]))
	}
	return views
}
