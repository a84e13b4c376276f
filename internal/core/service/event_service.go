package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Ovii2/EventSync/internal/core/domain"
	"github.com/Ovii2/EventSync/internal/core/ports"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

type eventService struct {
	events   ports.EventRepository
	feedback ports.FeedbackRepository
	log      zerolog.Logger
}

// NewEventService returns an EventService implementation.
func NewEventService(events ports.EventRepository, feedback ports.FeedbackRepository, log zerolog.Logger) ports.EventService {
	return &eventService{
		events:   events,
		feedback: feedback,
		log:      log.With().Str("component", "events").Logger(),
	}
}

// Create stores a new event owned by principal. Only administrators may create events.
func (s *eventService) Create(ctx context.Context, principal domain.Principal, in ports.CreateEventInput) (*domain.Event, error) {
	if !principal.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	event := &domain.Event{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		CreatedBy:   principal.ID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.log.Info().Str("event_id", event.ID).Str("created_by", principal.ID).Msg("event created")
	return event, nil
}

func (s *eventService) Get(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.fillCount(ctx, event)
	return event, nil
}

// List returns one page of events, newest first. Limit is capped at maxPageLimit.
func (s *eventService) List(ctx context.Context, page, limit int) (*ports.ListEventsResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	items, total, err := s.events.List(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	for _, e := range items {
		s.fillCount(ctx, e)
	}

	return &ports.ListEventsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

// fillCount is best-effort: a failed count leaves the field at zero.
func (s *eventService) fillCount(ctx context.Context, e *domain.Event) {
	n, err := s.feedback.CountByEvent(ctx, e.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("event_id", e.ID).Msg("feedback count failed")
		return
	}
	e.FeedbackCount = n
}
