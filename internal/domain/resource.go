package domain

import (
	"context"
	"time"
)

// Resource is a curated article or link shown in the resources feed.
type Resource struct {
	ID        string
	TenantID  string
	Title     string
	Category  string
	URL       string
	Summary   string
	CreatedAt time.Time
}

// ResourceRepository provides read-only access to curated resources.
type ResourceRepository interface {
	ListResources(ctx context.Context, tenantID, category string) ([]Resource, error)
}

// Review is a user-authored rating of a care provider.
type Review struct {
	ID        string
	TenantID  string
	UserID    string
	Provider  string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// ReviewRepository captures provider review persistence.
type ReviewRepository interface {
	CreateReview(ctx context.Context, review Review) error
	ListReviewsByProvider(ctx context.Context, tenantID, provider string) ([]Review, error)
}
