package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"dancebook/pkg/config"
	"dancebook/pkg/docstore"
	"dancebook/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

// RouteRegistrar is implemented by every HTTP handler group.
type RouteRegistrar interface {
	RegisterRoutes(router *httprouter.Router)
}

// Auth resolves request callers. Middleware attaches the caller to the
// request and CallerID names it so idempotency keys stay per caller.
type Auth struct {
	Middleware func(http.Handler) http.Handler
	CallerID   middleware.CallerFunc
}

// Session endpoints answer with credentials and are never replayed.
var idempotencyExcluded = []string{"/api/v1/auth/"}

type stopper interface {
	Stop()
}

type Application struct {
	cfg         *config.Config
	server      *http.Server
	health      http.Handler
	api         http.Handler
	idempotency middleware.IdempotencyStore
	limiter     middleware.Limiter
	onShutdown  []func() error
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{cfg: cfg}
}

// SetApp builds the router. Authentication runs before idempotency so a
// replayed response is only ever served to the caller that produced it.
func (a *Application) SetApp(store docstore.Pinger, auth Auth, handlers ...RouteRegistrar) {
	a.setHealthHandler(store)
	a.setAPIHandler(auth, handlers)
	a.setServer()
}

// OnShutdown registers fn to run after the HTTP server has drained.
func (a *Application) OnShutdown(fn func() error) {
	a.onShutdown = append(a.onShutdown, fn)
}

func (a *Application) setHealthHandler(store docstore.Pinger) {
	router := httprouter.New()
	NewHealthHandler(store, a.cfg.Log).RegisterRoutes(router)

	var h http.Handler = router
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.health = h
	a.cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setAPIHandler(auth Auth, handlers []RouteRegistrar) {
	router := httprouter.New()
	for _, handler := range handlers {
		handler.RegisterRoutes(router)
	}

	redisClient := a.cfg.Client.Redis
	if redisClient != nil {
		a.idempotency = middleware.NewRedisIdempotencyStore(redisClient, a.cfg.IdempotencyTTL, a.cfg.Log)
		a.limiter = middleware.NewRedisFixedWindowLimiter(redisClient, "dancebook", a.cfg.RateLimitRequests, a.cfg.RateLimitWindow, a.cfg.Log)
		a.cfg.Log.Info("Rate limiting and idempotency backed by Redis")
	} else {
		a.idempotency = middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)
		a.limiter = middleware.NewSlidingWindowLimiter(a.cfg.RateLimitRequests, a.cfg.RateLimitWindow)
	}

	var h http.Handler = router
	h = middleware.Idempotency(a.idempotency, middleware.IdempotencyHeader, auth.CallerID, idempotencyExcluded...)(h)
	if auth.Middleware != nil {
		h = auth.Middleware(h)
	}
	h = middleware.RequestTimeout(a.cfg.RequestTimeout)(h)
	h = middleware.RateLimit(a.limiter, nil, a.cfg.Log)(h)
	h = middleware.ContentTypeValidation(a.cfg.Log)(h)
	h = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(h)
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.api = h
	a.cfg.Log.Info("Application endpoints configured with full middleware stack", "handlers", len(handlers))
}

func (a *Application) setServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.health)
	mux.Handle("/ready", a.health)
	mux.Handle("/", a.api)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

// Handler exposes the fully wired mux, mainly for tests.
func (a *Application) Handler() http.Handler {
	return a.server.Handler
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			a.cfg.Log.Fatal("HTTP server failed", "error", err)
		}

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.Shutdown()
	}
}

func (a *Application) Shutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Error("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.Log.Info("Stopping background workers...")
	a.idempotency.Stop()
	if s, ok := a.limiter.(stopper); ok {
		s.Stop()
	}
	for _, fn := range a.onShutdown {
		if err := fn(); err != nil {
			a.cfg.Log.Error("Shutdown hook failed", "error", err)
		}
	}

	a.cfg.Log.Info("Server stopped gracefully")
}
