package ports

import (
	"context"

	"github.com/Ovii2/EventSync/internal/core/domain"
)

// EventRepository handles event persistence.
type EventRepository interface {
	// Create fails with domain.ErrEventTitleExists on a duplicate title.
	Create(ctx context.Context, event *domain.Event) error
	FindByID(ctx context.Context, id string) (*domain.Event, error)
	// List returns a page of events, newest first, and the total count.
	List(ctx context.Context, page, limit int) ([]*domain.Event, int64, error)
}
