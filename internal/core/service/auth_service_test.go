package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"

	"github.com/Ovii2/EventSync/internal/core/domain"
	"github.com/Ovii2/EventSync/internal/infrastructure/db/memory"
)

func newAuthFixture() (*AuthService, *SessionService, *memory.AuthRepository) {
	clock := clockwork.NewFakeClockAt(testNow)
	users := memory.NewAuthRepository()
	sessions := NewSessionService(memory.NewSessionRepository(), newTestCodec(clock), clock, nopLog)
	return NewAuthService(users, sessions, nopLog), sessions, users
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, _, users := newAuthFixture()

	user, err := svc.Register(context.Background(), "alice", "Alice@Example.com", "secret123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != domain.RoleUser || user.Email != "alice@example.com" || user.ID == "" {
		t.Fatalf("unexpected user %+v", user)
	}

	stored, err := users.FindByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("stored user: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")) != nil {
		t.Fatalf("password not hashed with bcrypt")
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _, _ := newAuthFixture()

	if _, err := svc.Register(context.Background(), "  ", "a@example.com", "secret123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for blank username, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob", "b@example.com", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for blank password, got %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "a@example.com", "secret123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "alice", "other@example.com", "secret123"); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected user exists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, sessions, _ := newAuthFixture()
	ctx := context.Background()

	registered, _ := svc.Register(ctx, "alice", "a@example.com", "secret123")

	tkn, user, err := svc.Login(ctx, "alice", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("expected user %s, got %s", registered.ID, user.ID)
	}

	p, err := sessions.Validate(tkn)
	if err != nil {
		t.Fatalf("validate issued token: %v", err)
	}
	if p.ID != registered.ID || p.Username != "alice" || p.Role != domain.RoleUser {
		t.Fatalf("unexpected principal %+v", p)
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()
	_, _ = svc.Register(ctx, "alice", "a@example.com", "secret123")

	if _, _, err := svc.Login(ctx, "alice", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	svc, _, _ := newAuthFixture()

	if _, _, err := svc.Login(context.Background(), "ghost", "secret123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown user must look like a bad password, got %v", err)
	}
}

func TestAuthService_Login_WhileActiveConflicts(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()
	_, _ = svc.Register(ctx, "alice", "a@example.com", "secret123")

	tkn, _, err := svc.Login(ctx, "alice", "secret123")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	if _, _, err := svc.Login(ctx, "alice", "secret123"); !errors.Is(err, domain.ErrAlreadyLoggedIn) {
		t.Fatalf("expected already logged in, got %v", err)
	}

	if err := svc.Logout(ctx, tkn); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, _, err := svc.Login(ctx, "alice", "secret123"); err != nil {
		t.Fatalf("login after logout: %v", err)
	}
}

func TestAuthService_EnsureAdminIsIdempotent(t *testing.T) {
	svc, _, users := newAuthFixture()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := svc.EnsureAdmin(ctx, "root", "root@example.com", "changeme123"); err != nil {
			t.Fatalf("ensure admin #%d: %v", i+1, err)
		}
	}
	u, err := users.FindByUsername(ctx, "root")
	if err != nil {
		t.Fatalf("find admin: %v", err)
	}
	if u.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %s", u.Role)
	}
}
