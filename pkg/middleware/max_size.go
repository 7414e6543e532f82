package middleware

import (
	"net/http"

	apperrors "dormitory/pkg/errors"
	httputil "dormitory/pkg/http"
)

// MaxRequestSize rejects bodies declared larger than limit and caps the rest,
// so an undeclared oversized body fails while it is decoded.
func MaxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				_ = httputil.WriteError(w, apperrors.New(
					apperrors.CodePayloadTooLarge,
					"Request body too large",
					http.StatusRequestEntityTooLarge,
				).WithDetails(map[string]any{"limit_bytes": limit}))
				return
			}

			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
