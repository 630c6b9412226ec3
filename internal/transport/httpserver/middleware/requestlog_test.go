package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"

	"opsboard/pkg/logger"
)

func TestRequestLoggerTagsRequestAndUser(t *testing.T) {
	var buf bytes.Buffer
	base := logger.New(&buf, slog.LevelInfo, "text")

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithUser(r.Context(), User{ID: "user-9"})
		logger.FromContext(ctx, logger.Discard()).Info("units.list: listed")
		w.WriteHeader(http.StatusNoContent)
	})
	handler := chimw.RequestID(RequestLogger(base)(final))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/units", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, buf.String(), "request_id=")
	assert.Contains(t, buf.String(), "user_id=user-9")
}
