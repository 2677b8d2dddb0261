package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	tokens, err := NewTokenService(testSecret)
	require.NoError(t, err)

	raw, err := tokens.Issue("user-123", SessionTTL)
	require.NoError(t, err)

	claims, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "user-123", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService("")
	require.Error(t, err)
}

func TestVerifyAroundExpiry(t *testing.T) {
	for _, ttl := range []time.Duration{SessionTTL, ResetTTL} {
		clock := &testClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
		tokens, err := NewTokenService(testSecret, WithClock(clock.Now))
		require.NoError(t, err)

		raw, err := tokens.Issue("u1", ttl)
		require.NoError(t, err)

		clock.Advance(ttl - time.Second)
		_, err = tokens.Verify(raw)
		require.NoError(t, err, "ttl %s should still verify just before expiry", ttl)

		clock.Advance(2 * time.Second)
		_, err = tokens.Verify(raw)
		require.ErrorIs(t, err, ErrTokenExpired)
		assert.NotErrorIs(t, err, ErrTokenInvalid)
	}
}

func TestVerifyTamperedSignature(t *testing.T) {
	tokens, err := NewTokenService(testSecret)
	require.NoError(t, err)
	raw, err := tokens.Issue("u1", SessionTTL)
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

	_, err = tokens.Verify(tampered)
	require.ErrorIs(t, err, ErrTokenInvalid)
	assert.NotErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer, err := NewTokenService("right-secret")
	require.NoError(t, err)
	verifier, err := NewTokenService("wrong-secret")
	require.NoError(t, err)

	raw, err := issuer.Issue("u1", SessionTTL)
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyMalformed(t *testing.T) {
	tokens, err := NewTokenService(testSecret)
	require.NoError(t, err)

	for _, raw := range []string{"", "not.a.jwt", "invalid_token"} {
		_, err := tokens.Verify(raw)
		require.ErrorIs(t, err, ErrTokenInvalid, raw)
	}
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	tokens, err := NewTokenService(testSecret)
	require.NoError(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tokens.Verify(raw)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRequiresExpiry(t *testing.T) {
	tokens, err := NewTokenService(testSecret)
	require.NoError(t, err)

	forever := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u1"})
	raw, err := forever.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = tokens.Verify(raw)
	require.ErrorIs(t, err, ErrTokenInvalid)
}
