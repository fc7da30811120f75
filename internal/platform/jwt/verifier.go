package jwt

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Verifier defines the interface for JWT token verification.
type Verifier interface {
	// Verify checks the token's signature and expiry and returns the
	// user ID from its subject claim.
	Verify(tokenStr string) (uint, error)
}

// verifier implements the Verifier interface.
type verifier struct {
	secret []byte
}

// NewVerifier creates a new JWT verifier with the provided secret.
func NewVerifier(secret string) Verifier {
	return &verifier{secret: []byte(secret)}
}

// Verify parses and validates a signed token.
func (v *verifier) Verify(tokenStr string) (uint, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// Check signing algorithm (only HMAC allowed)
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	sub, ok := claims["sub"].(float64) // JWT numbers are decoded as float64
	if !ok {
		return 0, ErrInvalidToken
	}
	return uint(sub), nil
}
