package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/peerhub/internal/apperror"
	"github.com/sakif/peerhub/internal/model"
)

// contextKey is an unexported type used for context keys in this package,
// so no other package can read or shadow the identity value.
type contextKey string

const identityKey contextKey = "identity"

// SessionResolver turns a raw session token into the caller's identity.
// service.AuthService implements it; the middleware only needs this method.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*model.Identity, error)
}

// RequireAuth is a middleware that enforces authentication on protected routes.
//
// It reads the session cookie, resolves it through the SessionResolver and
// stores the resulting Identity in the request context. A missing cookie or
// an invalid/expired token short-circuits with 401; a resolver failure that
// is not an auth error (database down) becomes a 500.
func RequireAuth(resolver SessionResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				writeUnauthorized(w, "Token Timed Out")
				return
			}

			identity, err := resolver.ResolveSession(r.Context(), token)
			if err != nil {
				if errors.Is(err, apperror.ErrAuth) {
					writeUnauthorized(w, "Token not Valid")
					return
				}
				logger.Error("resolving session failed", slog.String("error", err.Error()))
				writeAuthJSON(w, http.StatusInternalServerError, map[string]any{
					"success": false,
					"message": "Internal Server Error",
					"error":   "an unexpected error occurred",
				})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// WithIdentity returns a copy of ctx carrying the caller's identity.
func WithIdentity(ctx context.Context, identity *model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext retrieves the authenticated caller.
// Returns (nil, false) for anonymous requests.
func IdentityFromContext(ctx context.Context) (*model.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*model.Identity)
	return identity, ok && identity != nil && identity.ID != ""
}

// AssertOwner fails with a Forbidden error unless the caller owns the resource.
//
// Identifiers are compared in trimmed string form: they arrive from URL
// params, JSON bodies and database columns, which may disagree on padding.
func AssertOwner(resourceOwnerID, callerID, message string) error {
	owner := strings.TrimSpace(resourceOwnerID)
	caller := strings.TrimSpace(callerID)
	if owner == "" || owner != caller {
		return apperror.Forbidden(message)
	}
	return nil
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeAuthJSON(w, http.StatusUnauthorized, map[string]any{
		"success": false,
		"message": message,
		"error":   apperror.InvalidCredentials,
	})
}

func writeAuthJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
