package middleware

import (
	"context"
	"net/http"
)

// requestInfo is filled in by inner middleware and read by outer middleware
// after the handler returns. r.WithContext copies the request, so values set
// further in are otherwise invisible to the logging and metrics layers.
type requestInfo struct {
	userID  string
	pattern string
}

type requestInfoKey struct{}

func withRequestInfo(r *http.Request) (*http.Request, *requestInfo) {
	if info, ok := r.Context().Value(requestInfoKey{}).(*requestInfo); ok {
		return r, info
	}
	info := &requestInfo{}
	return r.WithContext(context.WithValue(r.Context(), requestInfoKey{}, info)), info
}

func requestInfoFrom(ctx context.Context) *requestInfo {
	info, _ := ctx.Value(requestInfoKey{}).(*requestInfo)
	return info
}

// CapturePattern must wrap the ServeMux directly. It records the matched route
// pattern, which the mux only sets on the request it receives.
func CapturePattern(mux http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r)
		if info := requestInfoFrom(r.Context()); info != nil {
			info.pattern = r.Pattern
		}
	})
}
