package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dancebook/pkg/client"
	"dancebook/pkg/config"
	"dancebook/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type echoRoutes struct{}

func (echoRoutes) RegisterRoutes(router *httprouter.Router) {
	echo := func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("X-Caller", r.Header.Get("X-Test-Caller"))
		w.WriteHeader(http.StatusCreated)
	}
	router.POST("/api/v1/echo", echo)
	router.POST("/api/v1/auth/login", echo)
}

// testAuth trusts the X-As header and defaults to an organiser.
func testAuth() Auth {
	return Auth{
		Middleware: func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				caller := r.Header.Get("X-As")
				if caller == "" {
					caller = "organiser"
				}
				r.Header.Set("X-Test-Caller", caller)
				next.ServeHTTP(w, r)
			})
		},
		CallerID: func(r *http.Request) string { return r.Header.Get("X-Test-Caller") },
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Port:              "0",
		RateLimitRequests: 2,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    time.Second,
		IdempotencyTTL:    time.Minute,
		MaxRequestSize:    1024,
		ShutdownTimeout:   time.Second,
		Log:               logger.Discard(),
		Client:            client.NewClient(),
	}
}

func newTestApp(t *testing.T, store pingFunc) http.Handler {
	t.Helper()
	return newTestAppWith(t, testConfig(), store)
}

func newTestAppWith(t *testing.T, cfg *config.Config, store pingFunc) http.Handler {
	t.Helper()
	a := NewApplication(cfg)
	a.SetApp(store, testAuth(), echoRoutes{})
	t.Cleanup(a.Shutdown)
	return a.Handler()
}

func TestHealthAndReady(t *testing.T) {
	h := newTestApp(t, func(context.Context) error { return nil })

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"ok"`)
}

func TestReady_StoreDown(t *testing.T) {
	h := newTestApp(t, func(context.Context) error { return errors.New("no primary") })

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"unavailable"`)
}

func TestAPI_RunsAuthenticationAndRateLimit(t *testing.T) {
	h := newTestApp(t, func(context.Context) error { return nil })

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/echo", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := post()
	require.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, "organiser", first.Header().Get("X-Caller"))
	assert.NotEmpty(t, first.Header().Get("X-Request-ID"))

	assert.Equal(t, http.StatusCreated, post().Code)
	assert.Equal(t, http.StatusTooManyRequests, post().Code)
}

func TestAPI_RejectsNonJSONBodies(t *testing.T) {
	h := newTestApp(t, func(context.Context) error { return nil })

	req := httptest.NewRequest(http.MethodPost, "/api/v1/echo", strings.NewReader("name=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestAPI_IdempotencyIsScopedPerCaller(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRequests = 100
	h := newTestAppWith(t, cfg, func(context.Context) error { return nil })

	post := func(path, caller, key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", key)
		req.Header.Set("X-As", caller)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := post("/api/v1/echo", "ann", "1")
	require.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, "ann", first.Header().Get("X-Caller"))

	again := post("/api/v1/echo", "ann", "1")
	assert.Equal(t, "true", again.Header().Get("Idempotent-Replayed"))

	other := post("/api/v1/echo", "bob", "1")
	require.Equal(t, http.StatusCreated, other.Code)
	assert.Empty(t, other.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, "bob", other.Header().Get("X-Caller"))

	post("/api/v1/auth/login", "ann", "2")
	login := post("/api/v1/auth/login", "ann", "2")
	assert.Empty(t, login.Header().Get("Idempotent-Replayed"), "session endpoints are never replayed")
}
