// Package token issues and validates the signed tokens that identify a session.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired session token")
	ErrMissingToken = errors.New("session token required")
)

// Manager handles session token generation and validation.
type Manager struct {
	secretKey     []byte
	tokenDuration time.Duration
	now           func() time.Time
}

// Claims represents the JWT claims of a session token.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the time source used to issue and check tokens.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a new token manager with the given secret and token duration.
// tokenDuration is how long tokens remain valid (e.g., 12 hours).
func NewManager(secretKey string, tokenDuration time.Duration, opts ...Option) *Manager {
	m := &Manager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Generate creates a signed token for the given session and returns it with its expiry.
func (m *Manager) Generate(sessionID string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.tokenDuration)
	claims := &Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// Validate parses and validates a token, returning the claims if valid.
func (m *Manager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			// Verify the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
		jwt.WithTimeFunc(m.now),
	)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// RefreshDue reports whether less than half of the token's lifetime remains.
func (m *Manager) RefreshDue(claims *Claims) bool {
	if claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.Time.Sub(m.now()) < m.tokenDuration/2
}
