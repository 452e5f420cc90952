package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/devtrail/devtrail-be/internal/apperr"
	"github.com/devtrail/devtrail-be/internal/models"
	"github.com/rs/zerolog/log"
)

// AccountResolver looks up the account a verified token points at.
type AccountResolver interface {
	GetUserByID(id string) (models.User, error)
}

type contextKey string

const userContextKey = contextKey("authUser")

// UserFromContext returns the authenticated account attached by Protect.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userContextKey).(models.User)
	return user, ok
}

// Protect returns middleware that extracts the session token, verifies it,
// resolves the account and attaches it to the request context. All failure
// modes collapse into the same 401 response so the client learns nothing
// about which step failed.
func Protect(issuer *TokenIssuer, resolver AccountResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenStr string

			// 1. Try the Authorization header first.
			authHeader := r.Header.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				tokenStr = strings.TrimPrefix(authHeader, "Bearer ")
			}

			// 2. Fall back to the cookie.
			if tokenStr == "" {
				if cookie, err := r.Cookie("token"); err == nil {
					tokenStr = cookie.Value
				}
			}

			if tokenStr == "" {
				denyUnauthenticated(w)
				return
			}

			// 3. Verify the signature and expiry.
			userID, err := issuer.Verify(tokenStr)
			if err != nil {
				denyUnauthenticated(w)
				return
			}

			// 4. Resolve the account. A deleted account holding a
			// still-valid token must not authenticate.
			user, err := resolver.GetUserByID(userID)
			if err != nil {
				denyUnauthenticated(w)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole returns middleware rejecting accounts whose role is not in the
// allowed set. Must run after Protect.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				denyUnauthenticated(w)
				return
			}
			if len(allowed) > 0 && !allowed[user.Role] {
				log.Warn().Str("user_id", user.ID).Str("role", user.Role).Str("path", r.URL.Path).Msg("Role denied for route")
				writeAuthError(w, http.StatusForbidden, "user role '"+user.Role+"' is not authorized to access this route")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func denyUnauthenticated(w http.ResponseWriter) {
	writeAuthError(w, http.StatusUnauthorized, apperr.NotAuthenticated().Error())
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   msg,
	})
}
