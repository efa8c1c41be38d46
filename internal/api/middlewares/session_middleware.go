package middleware

import (
	"context"
	"net/http"

	"github.com/suiscan-ai/suiscan/internal/auth"
)

type sessionKey struct{}

// Session attaches verified session claims to the request context when a
// valid session cookie is present. Absent or invalid credentials pass through
// as anonymous; gating happens in RequireSession or per handler.
func Session(sessions *auth.SessionAuthority) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims := sessions.Validate(r); claims != nil {
				r = r.WithContext(context.WithValue(r.Context(), sessionKey{}, claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession rejects anonymous callers with 401.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromContext(r.Context()) == nil {
			w.Header().Set("Content-Type", "application/json")
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionFromContext returns the caller's claims, or nil when anonymous.
func SessionFromContext(ctx context.Context) *auth.SessionClaims {
	claims, _ := ctx.Value(sessionKey{}).(*auth.SessionClaims)
	return claims
}
