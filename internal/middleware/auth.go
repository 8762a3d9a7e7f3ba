package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/goaltrack/goaltrack/internal/ctxkeys"
	"github.com/goaltrack/goaltrack/internal/model"
	"github.com/goaltrack/goaltrack/internal/service"
)

// TokenVerifier turns an auth cookie value into a user id.
type TokenVerifier interface {
	VerifyJWT(token string) (string, error)
	ClearJWTCookie(w http.ResponseWriter)
}

type UserLoader interface {
	ByID(ctx context.Context, id string) (*model.User, error)
}

// Auth resolves the JWT cookie to a user and adds it to the context.
// Requests without a valid token continue anonymously with the cookie cleared.
func Auth(tokens TokenVerifier, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(service.AuthCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := tokens.VerifyJWT(cookie.Value)
			if err != nil {
				tokens.ClearJWTCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.ByID(r.Context(), userID)
			if err != nil {
				slog.Warn("auth token for unknown user", "error", err, "user_id", userID)
				tokens.ClearJWTCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			// the hash never leaves the auth service
			user.PasswordHash = nil

			if info := requestInfoFrom(r.Context()); info != nil {
				info.userID = user.ID
			}
			next.ServeHTTP(w, r.WithContext(ctxkeys.WithUser(r.Context(), user)))
		})
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
