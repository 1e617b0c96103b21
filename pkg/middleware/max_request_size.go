package middleware

import (
	"net/http"

	apperrors "dancebook/pkg/errors"
	httputil "dancebook/pkg/http"
)

// MaxRequestSize caps the request body. Declared oversize bodies are rejected
// up front; undeclared ones fail on read and the JSON decoder reports 413.
func MaxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				w.Header().Set("Connection", "close")
				_ = httputil.WriteError(w, apperrors.New(apperrors.CodeInvalidInput, "request body too large", http.StatusRequestEntityTooLarge))
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
