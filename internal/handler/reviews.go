package handler

import (
	"context"
	"net/http"

	"github.com/rowanvale/njord/internal/domain"
	"github.com/rowanvale/njord/internal/session"
)

// ReviewAPI is the slice of the review service client the handler consumes.
type ReviewAPI interface {
	Add(ctx context.Context, productID, userID string, rating int, comment string) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Review, error)
	ListAll(ctx context.Context) ([]domain.Review, error)
	Approve(ctx context.Context, reviewID string) (*domain.Review, error)
	Reject(ctx context.Context, reviewID string) (*domain.Review, error)
}

// ReviewHandler serves review submission and moderation. Moderation routes
// are admin-gated by middleware; the handler trusts that gate.
type ReviewHandler struct {
	reviews ReviewAPI
}

// NewReviewHandler creates a review handler.
func NewReviewHandler(reviews ReviewAPI) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

type addReviewRequest struct {
	ProductID string `json:"productId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// Add serves POST /reviews. New reviews start pending until moderated.
func (h *ReviewHandler) Add(w http.ResponseWriter, r *http.Request) {
	user, err := session.FromContext(r.Context())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	var req addReviewRequest
	if err := DecodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}
	if req.ProductID == "" {
		ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "review.add", "productId is required"))
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "review.add", "rating must be between 1 and 5"))
		return
	}

	review, err := h.reviews.Add(r.Context(), req.ProductID, user.ID, req.Rating, req.Comment)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondData(w, http.StatusCreated, toReviewView(review))
}

// ListByProduct serves GET /reviews/product/{productID}: the approved
// reviews shown on a product page.
func (h *ReviewHandler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListByProduct(r.Context(), r.PathValue("productID"))
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondData(w, http.StatusOK, toReviewViews(reviews))
}

// ListAll serves GET /reviews: the moderation queue.
func (h *ReviewHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListAll(r.Context())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondData(w, http.StatusOK, toReviewViews(reviews))
}

// Approve serves PUT /reviews/{id}/approve.
func (h *ReviewHandler) Approve(w http.ResponseWriter, r *http.Request) {
	review, err := h.reviews.Approve(r.Context(), r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondData(w, http.StatusOK, toReviewView(review))
}

// Reject serves PUT /reviews/{id}/reject.
func (h *ReviewHandler) Reject(w http.ResponseWriter, r *http.Request) {
	review, err := h.reviews.Reject(r.Context(), r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondData(w, http.StatusOK, toReviewView(review))
}
