package middleware

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/friendsplit/internal/token"
	"github.com/mmynk/friendsplit/pkg/api"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// SessionIDKey is the context key for storing the caller's session ID.
const SessionIDKey contextKey = "session_id"

// GetSessionID extracts the session ID from the context.
// Returns empty string if not found.
func GetSessionID(ctx context.Context) string {
	sessionID, _ := ctx.Value(SessionIDKey).(string)
	return sessionID
}

// WithSessionID returns a copy of ctx carrying sessionID.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

// RequireSession returns an interceptor that validates the session token in
// the Authorization header and adds the session ID to the request context.
// Once a token is past half its lifetime, successful responses carry a renewed
// one in the api.SessionTokenHeader header.
// Procedures listed in exempt pass through untouched.
func RequireSession(tokens *token.Manager, exempt ...string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if slices.Contains(exempt, req.Spec().Procedure) {
				return next(ctx, req)
			}

			// Extract Authorization header
			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, token.ErrMissingToken)
			}

			// Parse Bearer token
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return nil, connect.NewError(connect.CodeUnauthenticated, token.ErrInvalidToken)
			}

			claims, err := tokens.Validate(parts[1])
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			resp, err := next(WithSessionID(ctx, claims.SessionID), req)
			if err != nil || !tokens.RefreshDue(claims) {
				return resp, err
			}

			renewed, _, genErr := tokens.Generate(claims.SessionID)
			if genErr != nil {
				slog.Warn("Failed to renew session token", "session_id", claims.SessionID, "error", genErr)
				return resp, nil
			}
			resp.Header().Set(api.SessionTokenHeader, renewed)
			return resp, nil
		}
	}
}
