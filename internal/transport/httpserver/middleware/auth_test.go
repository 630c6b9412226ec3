package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsboard/internal/config"
	"opsboard/pkg/logger"
)

const testSecret = "test-secret"

func echoUser(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		require.True(t, ok)
		w.Header().Set("X-User", user.ID)
		w.Header().Set("X-Name", user.Name)
		w.WriteHeader(http.StatusOK)
	})
}

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func serve(handler http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/units", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthSkipUsesMockUser(t *testing.T) {
	auth := NewAuth(config.AuthConfig{SkipAuth: true, MockUserID: "mock-1"}, nil, logger.Discard())

	rec := serve(auth.Middleware(echoUser(t)), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "mock-1", rec.Header().Get("X-User"))
}

func TestAuthLocalJWT(t *testing.T) {
	auth := NewAuth(config.AuthConfig{JWTSecret: testSecret}, nil, logger.Discard())
	handler := auth.Middleware(echoUser(t))

	valid := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub":           "user-42",
		"email":         "ops@example.com",
		"exp":           time.Now().Add(time.Hour).Unix(),
		"user_metadata": map[string]interface{}{"full_name": "Ops Lead"},
	})
	rec := serve(handler, valid)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-42", rec.Header().Get("X-User"))
	assert.Equal(t, "Ops Lead", rec.Header().Get("X-Name"))

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"expired", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "user-42", "exp": time.Now().Add(-time.Hour).Unix()})},
		{"no expiry", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "user-42"})},
		{"wrong secret", signToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "user-42", "exp": time.Now().Add(time.Hour).Unix()})},
		{"wrong method", signToken(t, jwt.SigningMethodHS512, []byte(testSecret), jwt.MapClaims{"sub": "user-42", "exp": time.Now().Add(time.Hour).Unix()})},
		{"no subject", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(handler, tt.token)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "invalid_token")
		})
	}
}

func TestAuthRemoteSupabase(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" || r.Header.Get("apikey") != "anon" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"id":"remote-1","email":"a@b.c","user_metadata":{"name":"Remote"}}`))
	}))
	defer upstream.Close()

	auth := NewAuth(config.AuthConfig{SupabaseURL: upstream.URL + "/", SupabasePublishableKey: "anon"}, nil, logger.Discard())
	handler := auth.Middleware(echoUser(t))

	rec := serve(handler, "good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "remote-1", rec.Header().Get("X-User"))
	assert.Equal(t, "Remote", rec.Header().Get("X-Name"))

	rec = serve(handler, "bad")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthNotConfigured(t *testing.T) {
	auth := NewAuth(config.AuthConfig{}, nil, logger.Discard())
	rec := serve(auth.Middleware(echoUser(t)), "token")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "auth_not_configured")
}

type recordingSaver struct {
	calls []User
	err   error
}

func (s *recordingSaver) UpsertProfile(ctx context.Context, userID, email, name string) error {
	s.calls = append(s.calls, User{ID: userID, Email: email, Name: name})
	return s.err
}

func TestAuthSavesProfile(t *testing.T) {
	saver := &recordingSaver{}
	auth := NewAuth(config.AuthConfig{JWTSecret: testSecret}, saver, logger.Discard())
	handler := auth.Middleware(echoUser(t))

	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub":           "user-7",
		"email":         "seven@example.com",
		"user_metadata": map[string]interface{}{"full_name": "Seven"},
		"exp":           time.Now().Add(time.Minute).Unix(),
	})

	rec := serve(handler, token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, saver.calls, 1)
	assert.Equal(t, User{ID: "user-7", Email: "seven@example.com", Name: "Seven"}, saver.calls[0])

	saver.err = errors.New("db down")
	rec = serve(handler, token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(handler, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Len(t, saver.calls, 2)
}
