package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"opsboard/pkg/logger"
)

// RequestLogger stores a logger tagged with the chi request id in the request
// context. Auth adds the user id to it once the caller is known.
func RequestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scoped := log
			if id := chimw.GetReqID(r.Context()); id != "" {
				scoped = log.With("request_id", id)
			}
			next.ServeHTTP(w, r.WithContext(logger.NewContext(r.Context(), scoped)))
		})
	}
}
