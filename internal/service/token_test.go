package service

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestTokenService(clock *fakeClock) *TokenService {
	return NewTokenService("test-secret", 7*24*time.Hour).WithClock(clock.Now)
}

func TestTokenIssueVerify(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	tokens := newTestTokenService(clock)

	token, expiresAt, err := tokens.Issue("user-1", "alice@x.com")
	require.NoError(t, err)
	assert.True(t, expiresAt.Equal(clock.t.Add(7*24*time.Hour)))

	session, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, "alice@x.com", session.Email)
	assert.True(t, session.IssuedAt.Equal(clock.t))
	assert.True(t, session.ExpiresAt.Equal(expiresAt))
}

func TestTokenExpiry(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: start}
	tokens := newTestTokenService(clock)

	token, _, err := tokens.Issue("user-1", "alice@x.com")
	require.NoError(t, err)

	clock.t = start.Add(7*24*time.Hour - time.Second)
	_, err = tokens.Verify(token)
	assert.NoError(t, err)

	clock.t = start.Add(7 * 24 * time.Hour)
	_, err = tokens.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	clock.t = start.Add(30 * 24 * time.Hour)
	_, err = tokens.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenTampering(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	tokens := newTestTokenService(clock)

	token, _, err := tokens.Issue("user-1", "alice@x.com")
	require.NoError(t, err)

	t.Run("other secret", func(t *testing.T) {
		other := NewTokenService("other-secret", time.Hour).WithClock(clock.Now)
		_, err := other.Verify(token)
		assert.ErrorIs(t, err, ErrTokenInvalidSignature)
	})

	t.Run("payload swapped", func(t *testing.T) {
		forged, _, err := NewTokenService("attacker", time.Hour).WithClock(clock.Now).Issue("admin", "root@x.com")
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		forgedParts := strings.Split(forged, ".")
		mixed := parts[0] + "." + forgedParts[1] + "." + parts[2]

		_, err = tokens.Verify(mixed)
		assert.ErrorIs(t, err, ErrTokenInvalidSignature)
	})

	t.Run("alg none", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"user_id": "user-1",
			"exp":     clock.t.Add(time.Hour).Unix(),
		})
		s, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = tokens.Verify(s)
		assert.ErrorIs(t, err, ErrTokenInvalidSignature)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrTokenMalformed)
	})

	t.Run("missing user id", func(t *testing.T) {
		raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"email": "alice@x.com",
			"exp":   clock.t.Add(time.Hour).Unix(),
		})
		s, err := raw.SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = tokens.Verify(s)
		assert.ErrorIs(t, err, ErrTokenMalformed)
	})
}
