package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/Ovii2/EventSync/internal/api/metrics"
	"github.com/Ovii2/EventSync/internal/core/domain"
	"github.com/Ovii2/EventSync/internal/core/ports"
	"github.com/Ovii2/EventSync/internal/pkg/token"
)

const defaultSweepInterval = time.Hour

// SweepReport summarizes one sweeper run.
type SweepReport struct {
	Processed int
	Expired   int
	Skipped   int
	Deleted   int
	Notified  int
}

// SessionSweeper periodically expires stored tokens whose credentials no
// longer decode and tells the owning principal.
//
// Expiry flags are persisted before the notification is sent. Notify and
// delete are not transactional: a crash in between can re-notify on the next
// run, which the optional DeliveryMarker suppresses.
type SessionSweeper struct {
	repo     ports.SessionRepository
	codec    *token.Codec
	notifier ports.Notifier
	marker   ports.DeliveryMarker
	clock    clockwork.Clock
	interval time.Duration
	log      zerolog.Logger
}

func NewSessionSweeper(
	repo ports.SessionRepository,
	codec *token.Codec,
	notifier ports.Notifier,
	marker ports.DeliveryMarker,
	clock clockwork.Clock,
	interval time.Duration,
	log zerolog.Logger,
) *SessionSweeper {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &SessionSweeper{
		repo:     repo,
		codec:    codec,
		notifier: notifier,
		marker:   marker,
		clock:    clock,
		interval: interval,
		log:      log.With().Str("component", "sweeper").Logger(),
	}
}

// Start runs the sweeper in its own goroutine. The returned channel is closed
// once Run has returned, including any sweep that was in flight at cancel.
func (s *SessionSweeper) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	return done
}

// Run sweeps once per interval until ctx is cancelled.
func (s *SessionSweeper) Run(ctx context.Context) {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info().Dur("interval", s.interval).Msg("session sweeper started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("session sweeper stopped")
			return
		case <-ticker.Chan():
			if _, err := s.Sweep(ctx); err != nil {
				s.log.Error().Err(err).Msg("sweep failed")
			}
		}
	}
}

// Sweep runs a single pass over every stored token. Failures on one token are
// counted as skipped and never abort the batch.
func (s *SessionSweeper) Sweep(ctx context.Context) (SweepReport, error) {
	var report SweepReport
	metrics.SweeperRunsTotal.Inc()

	tokens, err := s.repo.FindAll(ctx)
	if err != nil {
		return report, fmt.Errorf("sweep: load tokens: %w", err)
	}

	expired := make([]string, 0)
	for _, t := range tokens {
		report.Processed++

		isExpired, notified, err := s.process(ctx, t)
		switch {
		case err != nil:
			report.Skipped++
			metrics.SweeperTokensTotal.WithLabelValues("skipped").Inc()
			s.log.Warn().Err(err).Str("session_id", t.ID).Msg("token skipped")
		case isExpired:
			report.Expired++
			expired = append(expired, t.ID)
			metrics.SweeperTokensTotal.WithLabelValues("expired").Inc()
			if notified {
				report.Notified++
			}
		default:
			metrics.SweeperTokensTotal.WithLabelValues("active").Inc()
		}
	}

	if len(expired) > 0 {
		if err := s.repo.DeleteByIDs(ctx, expired); err != nil {
			s.log.Error().Err(err).Int("count", len(expired)).Msg("batch delete failed")
		} else {
			report.Deleted = len(expired)
		}
	}

	s.log.Info().
		Int("processed", report.Processed).
		Int("expired", report.Expired).
		Int("skipped", report.Skipped).
		Int("deleted", report.Deleted).
		Msg("sweep finished")

	return report, nil
}

// process classifies a single token and, when expired, persists the flags and
// notifies the owner. Panics are turned into errors for this token only.
func (s *SessionSweeper) process(ctx context.Context, t *domain.SessionToken) (expired, notified bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			expired, notified = false, false
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	_, decErr := s.codec.Decode(t.Token)
	if decErr == nil {
		return false, false, nil
	}
	if !errors.Is(decErr, domain.ErrExpiredCredential) {
		s.log.Warn().Err(decErr).Str("session_id", t.ID).Msg("undecodable token treated as expired")
	}

	t.Terminate()
	if err := s.repo.MarkExpired(ctx, t.ID); err != nil {
		return false, false, fmt.Errorf("mark expired: %w", err)
	}

	return true, s.notify(ctx, t), nil
}

func (s *SessionSweeper) notify(ctx context.Context, t *domain.SessionToken) bool {
	if s.marker != nil {
		first, err := s.marker.MarkOnce(ctx, "session-expired:"+t.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("session_id", t.ID).Msg("delivery mark failed, notifying anyway")
		} else if !first {
			s.log.Debug().Str("session_id", t.ID).Msg("session-expired already delivered")
			return false
		}
	}

	msg := domain.Notification{Type: domain.NotificationSessionExpired, Data: domain.SessionExpiredText}
	if err := s.notifier.SendToPrincipal(ctx, t.PrincipalID, msg); err != nil {
		s.log.Warn().Err(err).Str("session_id", t.ID).Str("principal_id", t.PrincipalID).Msg("session-expired notification failed")
		return false
	}
	s.log.Info().Str("principal_id", t.PrincipalID).Str("username", t.Username).Msg("sent session expiration message")
	return true
}
