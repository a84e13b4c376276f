package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Ovii2/EventSync/internal/core/domain"
)

type EventRepository struct {
	mu     sync.RWMutex
	events map[string]*domain.Event
}

func NewEventRepository() *EventRepository {
	return &EventRepository{events: make(map[string]*domain.Event)}
}

func (r *EventRepository) Create(_ context.Context, e *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.events {
		if existing.Title == e.Title {
			return domain.ErrEventTitleExists
		}
	}
	clone := *e
	r.events[e.ID] = &clone
	return nil
}

func (r *EventRepository) FindByID(_ context.Context, id string) (*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	clone := *e
	return &clone, nil
}

func (r *EventRepository) List(_ context.Context, page, limit int) ([]*domain.Event, int64, error) {
	r.mu.RLock()
	all := make([]*domain.Event, 0, len(r.events))
	for _, e := range r.events {
		clone := *e
		all = append(all, &clone)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return []*domain.Event{}, total, nil
	}
	end := min(start+limit, len(all))
	return all[start:end], total, nil
}
