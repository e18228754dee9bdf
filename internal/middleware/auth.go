package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/templui/blogapi/internal/ctxkeys"
	"github.com/templui/blogapi/internal/model"
	"github.com/templui/blogapi/internal/service"
)

const (
	msgTokenRequired = "Access token is required"
	msgTokenExpired  = "Token expired"
	msgTokenInvalid  = "Invalid token"
	msgUserNotFound  = "Invalid token - user not found"
	msgAuthFailed    = "Authentication failed"
	msgRouteNotFound = "Route not found"
)

// Authenticator resolves a bearer token to the live user behind it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.Identity, error)
}

func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAuth rejects requests without a valid token for an active user and
// puts the caller's identity in the request context.
func RequireAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, msgTokenRequired)
				return
			}

			identity, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				status, msg := authFailure(err)
				if status == http.StatusInternalServerError {
					slog.Error("authentication failed", "error", err, "path", r.URL.Path)
				}
				writeError(w, status, msg)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctxkeys.WithIdentity(r.Context(), identity)))
		})
	}
}

// OptionalAuth attaches the identity when the request carries a valid token
// and otherwise continues anonymously.
func OptionalAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				slog.Debug("ignoring invalid optional token", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctxkeys.WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireAdmin must run after RequireAuth. Non-admins see the route as
// missing.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ctxkeys.Identity(r.Context()).IsAdmin() {
			writeError(w, http.StatusNotFound, msgRouteNotFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func authFailure(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrTokenExpired):
		return http.StatusUnauthorized, msgTokenExpired
	case errors.Is(err, service.ErrTokenMalformed), errors.Is(err, service.ErrTokenInvalidSignature):
		return http.StatusUnauthorized, msgTokenInvalid
	case errors.Is(err, service.ErrUserInactive):
		return http.StatusUnauthorized, msgUserNotFound
	default:
		return http.StatusInternalServerError, msgAuthFailed
	}
}
