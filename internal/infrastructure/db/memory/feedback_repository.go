package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Ovii2/EventSync/internal/core/domain"
)

type FeedbackRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.FeedbackItem
}

func NewFeedbackRepository() *FeedbackRepository {
	return &FeedbackRepository{items: make(map[string]*domain.FeedbackItem)}
}

func (r *FeedbackRepository) Create(_ context.Context, item *domain.FeedbackItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *item
	r.items[item.ID] = &clone
	return nil
}

func (r *FeedbackRepository) UpdateClassification(_ context.Context, id string, s domain.Sentiment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return domain.ErrFeedbackNotFound
	}
	item.Sentiment = s
	return nil
}

func (r *FeedbackRepository) CountByClassification(_ context.Context, eventID string, s domain.Sentiment) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, item := range r.items {
		if item.EventID == eventID && item.Sentiment == s {
			n++
		}
	}
	return n, nil
}

func (r *FeedbackRepository) CountByEvent(_ context.Context, eventID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, item := range r.items {
		if item.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (r *FeedbackRepository) ListByEvent(_ context.Context, eventID string) ([]*domain.FeedbackItem, error) {
	r.mu.RLock()
	out := make([]*domain.FeedbackItem, 0)
	for _, item := range r.items {
		if item.EventID == eventID {
			clone := *item
			out = append(out, &clone)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Get returns a copy of one item. Used by tests to observe background updates.
func (r *FeedbackRepository) Get(id string) (domain.FeedbackItem, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return domain.FeedbackItem{}, false
	}
	return *item, true
}
