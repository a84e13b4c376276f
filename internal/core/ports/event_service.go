package ports

import (
	"context"

	"github.com/Ovii2/EventSync/internal/core/domain"
)

// CreateEventInput is the DTO passed from the transport layer to EventService.
type CreateEventInput struct {
	Title       string
	Description string
}

// ListEventsResult is returned by EventService.List.
type ListEventsResult struct {
	Items      []*domain.Event
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// EventService defines use-case operations for events.
type EventService interface {
	Create(ctx context.Context, principal domain.Principal, input CreateEventInput) (*domain.Event, error)
	Get(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context, page, limit int) (*ListEventsResult, error)
}
