package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Ovii2/EventSync/internal/core/domain"
	"github.com/Ovii2/EventSync/internal/infrastructure/db/memory"
)

var alice = domain.Principal{ID: "u-alice", Username: "alice", Role: domain.RoleUser}

func newSessionFixture() (*SessionService, *memory.SessionRepository, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(testNow)
	repo := memory.NewSessionRepository()
	return NewSessionService(repo, newTestCodec(clock), clock, nopLog), repo, clock
}

func TestSessionService_IssueAndValidate(t *testing.T) {
	svc, repo, _ := newSessionFixture()

	raw, err := svc.Issue(context.Background(), alice)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	got, err := svc.Validate(raw)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got != alice {
		t.Fatalf("expected %+v, got %+v", alice, got)
	}

	stored, err := repo.FindByToken(context.Background(), raw)
	if err != nil {
		t.Fatalf("stored record: %v", err)
	}
	if stored.PrincipalID != alice.ID || stored.Expired || stored.Revoked {
		t.Fatalf("unexpected record: %+v", stored)
	}
	if !stored.ExpiresAt.Equal(testNow.Add(time.Hour)) {
		t.Fatalf("expected expiry %v, got %v", testNow.Add(time.Hour), stored.ExpiresAt)
	}
}

func TestSessionService_SecondIssueConflicts(t *testing.T) {
	svc, repo, _ := newSessionFixture()
	ctx := context.Background()

	if _, err := svc.Issue(ctx, alice); err != nil {
		t.Fatalf("first issue: %v", err)
	}
	_, err := svc.Issue(ctx, alice)
	if !errors.Is(err, domain.ErrAlreadyLoggedIn) || !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected already-logged-in conflict, got %v", err)
	}

	tokens, _ := repo.FindByPrincipal(ctx, alice.ID)
	if len(tokens) != 1 {
		t.Fatalf("expected the first session to survive, got %d records", len(tokens))
	}
}

func TestSessionService_InvalidateAllAllowsReissue(t *testing.T) {
	svc, repo, _ := newSessionFixture()
	ctx := context.Background()

	first, err := svc.Issue(ctx, alice)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := svc.InvalidateAll(ctx, alice.ID); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if err := svc.InvalidateAll(ctx, alice.ID); err != nil {
		t.Fatalf("second invalidate should be a no-op: %v", err)
	}

	second, err := svc.Issue(ctx, alice)
	if err != nil {
		t.Fatalf("reissue: %v", err)
	}
	if first == second {
		t.Fatalf("expected a fresh credential")
	}
	if _, err := repo.FindByToken(ctx, first); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("old record should be gone, got %v", err)
	}
}

func TestSessionService_ExpiredRecordDoesNotBlockLogin(t *testing.T) {
	svc, repo, clock := newSessionFixture()
	ctx := context.Background()

	if _, err := svc.Issue(ctx, alice); err != nil {
		t.Fatalf("issue: %v", err)
	}
	clock.Advance(61 * time.Minute)

	if _, err := svc.Issue(ctx, alice); err != nil {
		t.Fatalf("issue after expiry: %v", err)
	}
	tokens, _ := repo.FindByPrincipal(ctx, alice.ID)
	if len(tokens) != 1 {
		t.Fatalf("stale record should be replaced, got %d records", len(tokens))
	}
}

func TestSessionService_RevokedRecordDoesNotBlockLogin(t *testing.T) {
	svc, repo, _ := newSessionFixture()
	ctx := context.Background()

	_ = repo.Save(ctx, &domain.SessionToken{
		ID: "old", Token: "old-token", PrincipalID: alice.ID, Revoked: true, Expired: true,
		ExpiresAt: testNow.Add(time.Hour),
	})

	if _, err := svc.Issue(ctx, alice); err != nil {
		t.Fatalf("issue: %v", err)
	}
}

func TestSessionService_ValidateExpiry(t *testing.T) {
	svc, _, clock := newSessionFixture()

	raw, err := svc.Issue(context.Background(), alice)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	clock.Advance(59 * time.Minute)
	if _, err := svc.Validate(raw); err != nil {
		t.Fatalf("expected valid before TTL, got %v", err)
	}

	clock.Advance(2 * time.Minute)
	if _, err := svc.Validate(raw); !errors.Is(err, domain.ErrExpiredCredential) {
		t.Fatalf("expected expired credential, got %v", err)
	}
}

func TestSessionService_ValidateRejectsGarbage(t *testing.T) {
	svc, _, _ := newSessionFixture()

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.Validate(raw); !errors.Is(err, domain.ErrInvalidCredential) {
			t.Fatalf("%q: expected invalid credential, got %v", raw, err)
		}
	}
}

func TestSessionService_Logout(t *testing.T) {
	svc, repo, _ := newSessionFixture()
	ctx := context.Background()

	raw, err := svc.Issue(ctx, alice)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := svc.Logout(ctx, raw); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if all, _ := repo.FindAll(ctx); len(all) != 0 {
		t.Fatalf("expected no stored sessions, got %d", len(all))
	}
	if _, err := svc.Issue(ctx, alice); err != nil {
		t.Fatalf("login after logout: %v", err)
	}
}

func TestSessionService_LogoutUnknownToken(t *testing.T) {
	svc, _, _ := newSessionFixture()

	err := svc.Logout(context.Background(), "never-issued")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}
