package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ovii2/EventSync/internal/core/domain"
)

var alice = domain.Principal{ID: "u-1", Username: "alice", Role: domain.RoleAdmin}

func TestCodec_RoundTrip(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	codec := NewCodec("secret", time.Hour, clock)

	raw, exp, err := codec.Encode(alice)
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(time.Hour), exp)

	claims, err := codec.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, alice, claims.Principal())
	assert.NotEmpty(t, claims.ID)
}

func TestCodec_DistinctCredentialsForSamePrincipal(t *testing.T) {
	codec := NewCodec("secret", time.Hour, clockwork.NewFakeClock())

	first, _, err := codec.Encode(alice)
	require.NoError(t, err)
	second, _, err := codec.Encode(alice)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestCodec_TamperedSignature(t *testing.T) {
	codec := NewCodec("secret", time.Hour, clockwork.NewFakeClock())
	raw, _, err := codec.Encode(alice)
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = codec.Decode(tampered)
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
}

func TestCodec_WrongSecret(t *testing.T) {
	clock := clockwork.NewFakeClock()
	raw, _, err := NewCodec("secret", time.Hour, clock).Encode(alice)
	require.NoError(t, err)

	_, err = NewCodec("other", time.Hour, clock).Decode(raw)
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
}

func TestCodec_Malformed(t *testing.T) {
	codec := NewCodec("secret", time.Hour, clockwork.NewFakeClock())

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := codec.Decode(raw)
		assert.ErrorIs(t, err, domain.ErrInvalidCredential, raw)
	}
}

func TestCodec_RejectsOtherAlgorithms(t *testing.T) {
	clock := clockwork.NewFakeClock()
	codec := NewCodec("secret", time.Hour, clock)

	claims := Claims{
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-1",
			ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = codec.Decode(raw)
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
}

func TestCodec_Expiry(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	codec := NewCodec("secret", time.Hour, clock)

	raw, _, err := codec.Encode(alice)
	require.NoError(t, err)

	clock.Advance(59 * time.Minute)
	_, err = codec.Decode(raw)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = codec.Decode(raw)
	assert.ErrorIs(t, err, domain.ErrExpiredCredential)
	assert.NotErrorIs(t, err, domain.ErrInvalidCredential)
}

func TestCodec_MissingExpiry(t *testing.T) {
	codec := NewCodec("secret", time.Hour, clockwork.NewFakeClock())
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u-1"},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = codec.Decode(raw)
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
}
