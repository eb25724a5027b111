// Package auth issues and verifies the bearer tokens used by the API. Tokens
// are HS256 JWTs whose subject is the user id, with a fixed expiry window.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token cannot be parsed, fails signature
// verification, is expired, or carries no subject.
var ErrInvalidToken = errors.New("invalid or expired token")

// Manager signs and verifies access tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager builds a Manager with the given signing secret and token TTL.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed access token whose subject is userID.
func (m *Manager) Issue(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses and validates a token string and returns the user id it was
// issued for. Any failure maps to ErrInvalidToken; the caller does not need
// to distinguish why a credential was rejected.
func (m *Manager) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
