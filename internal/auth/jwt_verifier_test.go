package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudfiles/internal/domain"
	"cloudfiles/internal/domain/models"
)

func newTestVerifier(t *testing.T) (*KeyfuncVerifier, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	kf := func(*jwt.Token) (interface{}, error) { return &key.PublicKey, nil }
	return NewKeyfuncVerifier(kf, slog.New(slog.NewTextHandler(io.Discard, nil))), key
}

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims models.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func claimsFor(subject string, expiresIn time.Duration) models.Claims {
	return models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
}

func TestVerifyToken(t *testing.T) {
	verifier, key := newTestVerifier(t)

	t.Run("valid RS256 token", func(t *testing.T) {
		claims, err := verifier.VerifyToken(sign(t, jwt.SigningMethodRS256, key, claimsFor("user-1", time.Hour)))
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.GetUserID())
	})

	t.Run("expired token", func(t *testing.T) {
		_, err := verifier.VerifyToken(sign(t, jwt.SigningMethodRS256, key, claimsFor("user-1", -time.Hour)))
		assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	})

	t.Run("missing subject", func(t *testing.T) {
		_, err := verifier.VerifyToken(sign(t, jwt.SigningMethodRS256, key, claimsFor("", time.Hour)))
		assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	})

	t.Run("HMAC token rejected", func(t *testing.T) {
		_, err := verifier.VerifyToken(sign(t, jwt.SigningMethodHS256, []byte("secret"), claimsFor("user-1", time.Hour)))
		assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := verifier.VerifyToken("not-a-jwt")
		assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	})
}
