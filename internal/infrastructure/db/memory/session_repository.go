package memory

import (
	"context"
	"sync"

	"github.com/Ovii2/EventSync/internal/core/domain"
)

type SessionRepository struct {
	mu     sync.RWMutex
	byID   map[string]*domain.SessionToken
	byCred map[string]string
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		byID:   make(map[string]*domain.SessionToken),
		byCred: make(map[string]string),
	}
}

func (r *SessionRepository) Save(_ context.Context, t *domain.SessionToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *t
	r.byID[t.ID] = &clone
	r.byCred[t.Token] = t.ID
	return nil
}

func (r *SessionRepository) FindByToken(_ context.Context, token string) (*domain.SessionToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byCred[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	clone := *r.byID[id]
	return &clone, nil
}

func (r *SessionRepository) FindByPrincipal(_ context.Context, principalID string) ([]*domain.SessionToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.SessionToken
	for _, t := range r.byID {
		if t.PrincipalID == principalID {
			clone := *t
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *SessionRepository) FindAll(_ context.Context) ([]*domain.SessionToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.SessionToken, 0, len(r.byID))
	for _, t := range r.byID {
		clone := *t
		out = append(out, &clone)
	}
	return out, nil
}

func (r *SessionRepository) MarkExpired(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byID[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	t.Terminate()
	return nil
}

func (r *SessionRepository) DeleteByIDs(_ context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if t, ok := r.byID[id]; ok {
			delete(r.byCred, t.Token)
			delete(r.byID, id)
		}
	}
	return nil
}
