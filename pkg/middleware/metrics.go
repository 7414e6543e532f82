package middleware

import (
	"net/http"
	"time"

	"dormitory/pkg/metrics"
)

// Metrics records request counts and latency. The metrics endpoint itself is
// not observed.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			wrapped := wrap(w)
			next.ServeHTTP(wrapped, r)
			m.ObserveRequest(r.Method, r.URL.Path, wrapped.statusCode, time.Since(start))
		})
	}
}
