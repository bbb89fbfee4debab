package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-ledger/internal/db"
	"github.com/ukydev/fleet-ledger/internal/middleware"
)

func TestHandler_Middleware(t *testing.T) {
	env := newTestEnv(t)
	limiter := middleware.NewRateLimitMiddleware()
	handler := env.handlers.Handler(middleware.NewAuthMiddleware(env.auth), limiter.RateLimit(1, 60))

	t.Run("health is public", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("api requires a token", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/trips", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		env.expectTrips()
		token, err := env.auth.GenerateToken(&env.profile)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/api/trips", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("login is rate limited", func(t *testing.T) {
		env.profiles.On("FindProfileByUsername", mock.Anything, "driver").Return(nil, db.ErrNotFound)
		body := `{"username":"driver","password":"password123"}`

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(body)))
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(body)))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(db.ErrNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(errUsernameTaken))
	assert.Equal(t, http.StatusBadRequest, statusFor(errInvalidJSON))
	assert.Equal(t, http.StatusUnauthorized, statusFor(errNoClaims))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
