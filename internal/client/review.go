package client

import (
	"context"
	"net/http"
	"time"

	"github.com/guonaihong/gout"

	"github.com/rowanvale/njord/internal/domain"
)

// ReviewClient talks to the review service: submission plus the admin
// moderation transitions.
type ReviewClient struct {
	base
}

// NewReviewClient creates a review service client. httpClient may be nil.
func NewReviewClient(baseURL string, httpClient *http.Client) *ReviewClient {
	return &ReviewClient{base: newBase("review", baseURL, httpClient)}
}

type reviewJSON struct {
	ID        string    `json:"_id"`
	Product   string    `json:"product"`
	User      string    `json:"user"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type reviewEnvelope struct {
	Data *reviewJSON `json:"data"`
}

type reviewListEnvelope struct {
	Data []reviewJSON `json:"data"`
}

func (r *reviewJSON) toDomain() domain.Review {
	return domain.Review{
		ID:        r.ID,
		ProductID: r.Product,
		UserID:    r.User,
		Rating:    r.Rating,
		Comment:   r.Comment,
		Status:    domain.ReviewStatus(r.Status),
		CreatedAt: r.CreatedAt,
	}
}

// Add submits a new review; it enters moderation as pending.
func (c *ReviewClient) Add(ctx context.Context, productID, userID string, rating int, comment string) (*domain.Review, error) {
	var env reviewEnvelope
	df := c.g.POST(c.baseURL).
		SetJSON(gout.H{"product": productID, "user": userID, "rating": rating, "comment": comment})

	if err := c.do(ctx, "review.add", df, &env, domain.ErrProductNotFound); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, domain.Errorf(domain.EUNAVAILABLE, "review.add", "review service returned an empty body")
	}
	rev := env.Data.toDomain()
	return &rev, nil
}

// ListByProduct fetches approved reviews for one product.
func (c *ReviewClient) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	var env reviewListEnvelope
	df := c.g.GET(c.baseURL + "/product/" + productID)

	if err := c.do(ctx, "review.list_by_product", df, &env, domain.ErrProductNotFound); err != nil {
		return nil, err
	}
	return decodeReviews(env.Data), nil
}

// ListAll fetches every review for the moderation queue.
func (c *ReviewClient) ListAll(ctx context.Context) ([]domain.Review, error) {
	var env reviewListEnvelope
	df := c.g.GET(c.baseURL)

	if err := c.do(ctx, "review.list_all", df, &env, nil); err != nil {
		return nil, err
	}
	return decodeReviews(env.Data), nil
}

// Approve marks a review as approved.
func (c *ReviewClient) Approve(ctx context.Context, reviewID string) (*domain.Review, error) {
	return c.moderate(ctx, "review.approve", "/approve/", reviewID)
}

// Reject marks a review as rejected.
func (c *ReviewClient) Reject(ctx context.Context, reviewID string) (*domain.Review, error) {
	return c.moderate(ctx, "review.reject", "/reject/", reviewID)
}

func (c *ReviewClient) moderate(ctx context.Context, op, path, reviewID string) (*domain.Review, error) {
	var env reviewEnvelope
	df := c.g.PUT(c.baseURL + path + reviewID)

	if err := c.do(ctx, op, df, &env, domain.ErrReviewNotFound); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, domain.Errorf(domain.EUNAVAILABLE, op, "review service returned an empty body")
	}
	rev := env.Data.toDomain()
	return &rev, nil
}

func decodeReviews(in []reviewJSON) []domain.Review {
	out := make([]domain.Review, 0, len(in))
	for i := range in {
		out = append(out, in[i].toDomain())
	}
	return out
}
