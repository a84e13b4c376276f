package ports

import (
	"context"

	"github.com/Ovii2/EventSync/internal/core/domain"
)

// FeedbackRepository handles feedback item persistence.
type FeedbackRepository interface {
	Create(ctx context.Context, item *domain.FeedbackItem) error
	// UpdateClassification sets the sentiment field of one item in place.
	UpdateClassification(ctx context.Context, id string, sentiment domain.Sentiment) error
	CountByClassification(ctx context.Context, eventID string, sentiment domain.Sentiment) (int64, error)
	CountByEvent(ctx context.Context, eventID string) (int64, error)
	// ListByEvent returns the items of one event, newest first.
	ListByEvent(ctx context.Context, eventID string) ([]*domain.FeedbackItem, error)
}
