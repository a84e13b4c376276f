package ports

import (
	"context"

	"github.com/Ovii2/EventSync/internal/core/domain"
)

// SessionRepository is the durable store of issued session tokens.
type SessionRepository interface {
	Save(ctx context.Context, token *domain.SessionToken) error
	// FindByToken returns domain.ErrSessionNotFound when no record holds the credential.
	FindByToken(ctx context.Context, token string) (*domain.SessionToken, error)
	FindByPrincipal(ctx context.Context, principalID string) ([]*domain.SessionToken, error)
	FindAll(ctx context.Context) ([]*domain.SessionToken, error)
	// MarkExpired sets the expired and revoked flags on a single record.
	MarkExpired(ctx context.Context, id string) error
	// DeleteByIDs removes the given records. Missing ids are ignored.
	DeleteByIDs(ctx context.Context, ids []string) error
}
