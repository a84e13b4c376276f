package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/Ovii2/EventSync/internal/api/metrics"
	"github.com/Ovii2/EventSync/internal/core/domain"
	"github.com/Ovii2/EventSync/internal/core/ports"
	"github.com/Ovii2/EventSync/internal/pkg/token"
)

// SessionService issues, validates and revokes bearer credentials while
// keeping at most one active session per principal.
//
// The active-session check and the subsequent reissue are not atomic: two
// concurrent logins for the same principal may both pass the check. The
// invariant is best-effort.
type SessionService struct {
	repo  ports.SessionRepository
	codec *token.Codec
	clock clockwork.Clock
	log   zerolog.Logger
}

func NewSessionService(repo ports.SessionRepository, codec *token.Codec, clock clockwork.Clock, log zerolog.Logger) *SessionService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SessionService{
		repo:  repo,
		codec: codec,
		clock: clock,
		log:   log.With().Str("component", "sessions").Logger(),
	}
}

// Issue creates a credential for p. It fails with domain.ErrAlreadyLoggedIn
// while another session of p is active; callers that want to force a new
// login call InvalidateAll first.
func (s *SessionService) Issue(ctx context.Context, p domain.Principal) (string, error) {
	existing, err := s.repo.FindByPrincipal(ctx, p.ID)
	if err != nil {
		return "", fmt.Errorf("issue session: %w", err)
	}

	now := s.clock.Now()
	for _, t := range existing {
		if t.Active(now) {
			metrics.SessionConflictsTotal.Inc()
			return "", domain.ErrAlreadyLoggedIn
		}
	}

	// Stale records (expired but not yet swept) are cleared before reissue.
	if len(existing) > 0 {
		if err := s.repo.DeleteByIDs(ctx, tokenIDs(existing)); err != nil {
			return "", fmt.Errorf("issue session: clear stale: %w", err)
		}
	}

	raw, exp, err := s.codec.Encode(p)
	if err != nil {
		return "", fmt.Errorf("issue session: %w", err)
	}

	record := &domain.SessionToken{
		ID:          uuid.NewString(),
		Token:       raw,
		PrincipalID: p.ID,
		Username:    p.Username,
		CreatedAt:   now,
		ExpiresAt:   exp,
	}
	if err := s.repo.Save(ctx, record); err != nil {
		return "", fmt.Errorf("issue session: save: %w", err)
	}

	metrics.SessionsIssuedTotal.Inc()
	s.log.Info().Str("principal_id", p.ID).Str("session_id", record.ID).Msg("session issued")
	return raw, nil
}

// InvalidateAll deletes every stored token of the principal regardless of flags.
func (s *SessionService) InvalidateAll(ctx context.Context, principalID string) error {
	tokens, err := s.repo.FindByPrincipal(ctx, principalID)
	if err != nil {
		return fmt.Errorf("invalidate sessions: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}
	if err := s.repo.DeleteByIDs(ctx, tokenIDs(tokens)); err != nil {
		return fmt.Errorf("invalidate sessions: %w", err)
	}
	s.log.Info().Str("principal_id", principalID).Int("count", len(tokens)).Msg("sessions invalidated")
	return nil
}

// Validate decodes raw without consulting the store.
func (s *SessionService) Validate(raw string) (domain.Principal, error) {
	claims, err := s.codec.Decode(raw)
	if err != nil {
		if errors.Is(err, domain.ErrExpiredCredential) {
			return domain.Principal{}, domain.ErrExpiredCredential
		}
		return domain.Principal{}, domain.ErrInvalidCredential
	}
	return claims.Principal(), nil
}

// Logout revokes and deletes the stored record for raw. Unknown credentials
// yield domain.ErrSessionNotFound rather than a silent success.
func (s *SessionService) Logout(ctx context.Context, raw string) error {
	record, err := s.repo.FindByToken(ctx, raw)
	if err != nil {
		return err
	}

	record.Terminate()
	if err := s.repo.MarkExpired(ctx, record.ID); err != nil {
		return fmt.Errorf("logout: mark revoked: %w", err)
	}
	if err := s.repo.DeleteByIDs(ctx, []string{record.ID}); err != nil {
		return fmt.Errorf("logout: delete: %w", err)
	}

	metrics.SessionsRevokedTotal.Inc()
	s.log.Info().Str("principal_id", record.PrincipalID).Str("session_id", record.ID).Msg("session revoked")
	return nil
}

func tokenIDs(tokens []*domain.SessionToken) []string {
	ids := make([]string, len(tokens))
	for i, t := range tokens {
		ids[i] = t.ID
	}
	return ids
}
