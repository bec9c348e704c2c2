package auth

import (
	"context"
	"net/http"
)

type contextKey string

const userContextKey contextKey = "authUser"

// RequireSession guards admin endpoints: a missing, tampered, expired or
// revoked session cookie gets a 401 JSON response.
func RequireSession(
	service ServiceInterface,
	respondError func(w http.ResponseWriter, status int, message string),
) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "Unauthorised")
				return
			}
			user, err := service.Authenticate(cookie.Value)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "Unauthorised")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next(w, r.WithContext(ctx))
		}
	}
}

// UserFromContext returns the authenticated user set by RequireSession.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey).(*User)
	return user, ok
}
