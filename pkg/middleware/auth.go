package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"murmur/internal/core/domain"
	"murmur/pkg/logging"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// AccessTokenCookie is checked before the Authorization header.
const AccessTokenCookie = "access_token"

// TokenVerifier resolves a raw token to an identity.
type TokenVerifier interface {
	Verify(ctx context.Context, tokenStr, expectedType string) (*domain.Identity, error)
}

// TokenFromRequest reads the access token from the cookie or a Bearer header.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// UserID returns the authenticated user injected by AuthMiddleware.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok && id != ""
}

func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := verifier.Verify(r.Context(), TokenFromRequest(r), domain.TokenTypeAccess)
			if err != nil {
				status := http.StatusUnauthorized
				if !isAuthError(err) {
					status = http.StatusInternalServerError
				}
				logging.FromContext(r.Context()).WarnContext(r.Context(), "auth middleware - verify - rejected", logging.Err(err))
				WriteError(w, status, err.Error())
				return
			}
			ctx := context.WithValue(r.Context(), UserIDKey, identity.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isAuthError(err error) bool {
	return errors.Is(err, domain.ErrTokenMissing) ||
		errors.Is(err, domain.ErrTokenExpired) ||
		errors.Is(err, domain.ErrTokenInvalid) ||
		errors.Is(err, domain.ErrTokenRevoked) ||
		errors.Is(err, domain.ErrTokenType)
}

// WriteError writes {"error": msg} with the given status.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
