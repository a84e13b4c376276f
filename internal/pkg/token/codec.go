// Package token encodes and decodes signed, expiring session credentials.
//
// A Codec is a pure function of its secret key and clock: it never touches
// storage, so decoding is safe on the request fast path.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/Ovii2/EventSync/internal/core/domain"
)

// Claims is the payload embedded in every credential.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Principal returns the identity carried by the claims.
func (c *Claims) Principal() domain.Principal {
	return domain.Principal{ID: c.Subject, Username: c.Username, Role: c.Role}
}

// Codec signs and verifies HS256 credentials.
type Codec struct {
	secret []byte
	ttl    time.Duration
	clock  clockwork.Clock
}

// NewCodec returns a Codec issuing credentials valid for ttl.
func NewCodec(secret string, ttl time.Duration, clock clockwork.Clock) *Codec {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Codec{secret: []byte(secret), ttl: ttl, clock: clock}
}

// TTL is the lifetime of credentials produced by Encode.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Encode returns a signed credential for p and its expiry time. Every
// credential carries a fresh jti, so two encodes in the same second differ.
func (c *Codec) Encode(p domain.Principal) (string, time.Time, error) {
	now := c.clock.Now()
	exp := now.Add(c.ttl)
	claims := Claims{
		Username: p.Username,
		Role:     p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign credential: %w", err)
	}
	return signed, exp, nil
}

// Decode verifies the signature and expiry of raw.
//
// It returns domain.ErrExpiredCredential when the signature is valid but the
// expiry has passed, and domain.ErrInvalidCredential for anything else.
func (c *Codec) Decode(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return claims, fmt.Errorf("%w: %v", domain.ErrExpiredCredential, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCredential, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrInvalidCredential)
	}
	return claims, nil
}
