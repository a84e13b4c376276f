package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Ovii2/EventSync/internal/core/domain"
	"github.com/Ovii2/EventSync/internal/core/ports"
)

// AuthService implements registration, login and logout on top of the
// session manager.
type AuthService struct {
	repo     ports.AuthRepository
	sessions ports.SessionService
	log      zerolog.Logger
}

func NewAuthService(repo ports.AuthRepository, sessions ports.SessionService, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, sessions: sessions, log: log.With().Str("component", "auth").Logger()}
}

// Register creates an ordinary user.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	return s.create(ctx, username, email, password, domain.RoleUser)
}

// EnsureAdmin creates an administrator unless the username is already taken.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	_, err := s.create(ctx, username, email, password, domain.RoleAdmin)
	if errors.Is(err, domain.ErrUserExists) {
		return nil
	}
	if err == nil {
		s.log.Info().Str("username", username).Msg("administrator bootstrapped")
	}
	return err
}

func (s *AuthService) create(ctx context.Context, username, email, password, role string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" || !domain.ValidRole(role) {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	return s.repo.Create(ctx, user)
}

// Login checks the password and issues a session. An unknown username is
// reported as domain.ErrInvalidCredentials so callers cannot probe accounts.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	tkn, err := s.sessions.Issue(ctx, user.Principal())
	if err != nil {
		return "", nil, err
	}

	return tkn, user, nil
}

func (s *AuthService) Logout(ctx context.Context, tkn string) error {
	return s.sessions.Logout(ctx, tkn)
}
