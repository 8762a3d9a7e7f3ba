package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goaltrack/goaltrack/internal/ctxkeys"
	"github.com/goaltrack/goaltrack/internal/model"
	"github.com/goaltrack/goaltrack/internal/service"
)

var noContent = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(noContent, mark("first"), mark("second"), mark("third"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestCSRFProtection(t *testing.T) {
	h := CSRFProtection(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(ctxkeys.CSRFToken(r.Context())))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/csrf", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	token := cookies[0].Value
	assert.Equal(t, token, rec.Body.String())

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/app/goals", nil)
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("wrong header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/app/goals/1", nil)
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})
		req.Header.Set(csrfHeader, generateCSRFToken())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("matching header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/app/goals", nil)
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})
		req.Header.Set(csrfHeader, token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Result().Cookies(), "an existing token is reused")
	})
}

type fakeTokens struct {
	cleared bool
}

func (f *fakeTokens) VerifyJWT(token string) (string, error) {
	if token == "good" {
		return "user-1", nil
	}
	if token == "orphan" {
		return "user-gone", nil
	}
	return "", service.ErrInvalidToken
}

func (f *fakeTokens) ClearJWTCookie(w http.ResponseWriter) {
	f.cleared = true
}

type fakeUsers struct{}

func (fakeUsers) ByID(ctx context.Context, id string) (*model.User, error) {
	if id == "user-1" {
		hash := "secret"
		return &model.User{ID: id, Email: "a@example.com", PasswordHash: &hash}, nil
	}
	return nil, errors.New("not found")
}

func TestAuth(t *testing.T) {
	var seen *model.User

	tests := []struct {
		name    string
		cookie  string
		user    bool
		cleared bool
	}{
		{"no cookie", "", false, false},
		{"valid token", "good", true, false},
		{"invalid token", "bad", false, true},
		{"deleted user", "orphan", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := &fakeTokens{}
			h := Auth(tokens, fakeUsers{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = ctxkeys.User(r.Context())
			}))
			seen = nil

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: service.AuthCookieName, Value: tt.cookie})
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.user, seen != nil)
			assert.Equal(t, tt.cleared, tokens.cleared)
			if seen != nil {
				assert.Nil(t, seen.PasswordHash)
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	h := RequireAuth(noContent)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app/goals", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"authentication required"}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/app/goals", nil)
	req = req.WithContext(ctxkeys.WithUser(req.Context(), &model.User{ID: "u"}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Hour)
	defer rl.Close()
	h := rl.Limit(noContent)

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call("1.1.1.1"))
	assert.Equal(t, http.StatusNoContent, call("1.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("1.1.1.1"))
	assert.Equal(t, http.StatusNoContent, call("2.2.2.2"), "buckets are per IP")

	assert.Equal(t, 2, rl.size())
	rl.cleanup(time.Now().Add(5 * time.Hour))
	assert.Zero(t, rl.size())
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	assert.Equal(t, "192.0.2.7", getClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.1")
	assert.Equal(t, "198.51.100.1", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 198.51.100.1")
	assert.Equal(t, "203.0.113.9", getClientIP(req))
}

func TestCapturePatternReachesOuterMiddleware(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /app/goals/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	var info *requestInfo
	var status int
	outer := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := wrapResponseWriter(w)
			r, info = withRequestInfo(r)
			next.ServeHTTP(rw, r)
			status = rw.statusCode
		})
	}
	withCopy := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxkeys.ConfigKey, nil)))
		})
	}

	h := Chain(CapturePattern(mux), outer, Metrics, RequestLogging, withCopy)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/app/goals/42", nil))

	require.NotNil(t, info)
	assert.Equal(t, "GET /app/goals/{id}", info.pattern)
	assert.Equal(t, http.StatusTeapot, status)
}
