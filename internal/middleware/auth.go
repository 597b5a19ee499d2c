package middleware

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ayush/argumetrics/internal/auth"
	"github.com/ayush/argumetrics/internal/httpx"
	"github.com/ayush/argumetrics/internal/models"
)

// SessionResolver maps a session token to its user. *auth.Service
// implements it.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// RequireAuth is middleware that validates the session cookie and
// injects the user into the request context. Unauthenticated requests get
// a bare 401 and never reach next.
func RequireAuth(resolver SessionResolver, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.SessionCookie)
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			user, err := resolver.Resolve(r.Context(), cookie.Value)
			if errors.Is(err, auth.ErrUnauthenticated) {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if err != nil {
				log.Error("session lookup failed", zap.Error(err))
				httpx.WriteInternalError(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}
