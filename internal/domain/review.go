package domain

import "time"

var (
	ErrReviewNotFound = &Error{Code: ENOTFOUND, Message: "Review not found"}
)

// ReviewStatus is the moderation state of a review.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// Review is owned by the external review service; this side only submits
// new reviews and requests moderation transitions.
type Review struct {
	ID        string
	ProductID string
	UserID    string
	Rating    int
	Comment   string
	Status    ReviewStatus
	CreatedAt time.Time
}
