package ports

import (
	"context"

	"github.com/Ovii2/EventSync/internal/core/domain"
)

// FeedbackService is the sentiment pipeline seen from the request path.
type FeedbackService interface {
	// Submit persists a pending item and schedules its classification without waiting for it.
	Submit(ctx context.Context, principal domain.Principal, eventID, content string) (*domain.FeedbackItem, error)
	Summarize(ctx context.Context, eventID string) (*domain.FeedbackSummary, error)
	List(ctx context.Context, eventID string) ([]*domain.FeedbackItem, error)
}

// Classifier labels free text. Implementations absorb every failure into
// domain.SentimentNeutral.
type Classifier interface {
	Classify(ctx context.Context, text string) domain.Sentiment
}

// ClassificationQueue hands feedback items to the background pool.
// Enqueue must not block; it reports false when the item could not be queued.
type ClassificationQueue interface {
	Enqueue(item domain.FeedbackItem) bool
}
