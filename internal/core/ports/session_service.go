package ports

import (
	"context"

	"github.com/Ovii2/EventSync/internal/core/domain"
)

// CredentialValidator resolves a bearer credential to its principal without I/O.
type CredentialValidator interface {
	Validate(token string) (domain.Principal, error)
}

// SessionService manages the lifecycle of bearer credentials.
type SessionService interface {
	CredentialValidator
	Issue(ctx context.Context, principal domain.Principal) (string, error)
	InvalidateAll(ctx context.Context, principalID string) error
	Logout(ctx context.Context, token string) error
}
