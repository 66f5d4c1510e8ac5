package auth

import "cloudfiles/internal/domain/models"

// JWTVerifier validates bearer tokens presented to the API.
// The middleware only depends on this interface, so tests can swap in a
// verifier backed by a static key.
type JWTVerifier interface {
	// VerifyToken validates a JWT and returns its claims.
	// Invalid, expired or wrongly signed tokens yield domain.ErrUnauthorized.
	VerifyToken(tokenString string) (*models.Claims, error)

	// Close releases resources held by the verifier
	Close() error
}
