package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/goaltrack/goaltrack/internal/metrics"
)

// Metrics counts requests and observes latency per route pattern.
// Requests that matched no route share the "unmatched" label.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := wrapResponseWriter(w)
		r, info := withRequestInfo(r)

		next.ServeHTTP(rw, r)

		endpoint := info.pattern
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.RequestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		metrics.RequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}
