package httpserver

import (
	"net/http"
	"time"

	"opsboard/internal/config"
)

// New returns the API server. WriteTimeout leaves headroom above the
// router's 30s request timeout so that its 503 still reaches the client.
func New(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
