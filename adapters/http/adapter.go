// Package http exposes the pricing daemon over HTTP: health, scheduler
// status, prometheus metrics and on-demand region refresh.
package http

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ionos-finops/core/pricing"
	"ionos-finops/core/pricing/scheduler"
	"ionos-finops/internal/errors"
	"ionos-finops/internal/logging"
)

// Config holds HTTP adapter configuration
type Config struct {
	// Address to listen on
	Address string `json:"address"`

	// ReadTimeout for requests
	ReadTimeout time.Duration `json:"read_timeout"`

	// WriteTimeout for responses
	WriteTimeout time.Duration `json:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`

	// MaxAge is the cache age after which a region needs an update
	MaxAge time.Duration `json:"max_age"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Address:         ":9464",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MaxAge:          pricing.DefaultCacheTTL,
	}
}

// Scheduler is the part of the refresh scheduler the server reports on
type Scheduler interface {
	Status(now time.Time, maxAge time.Duration) scheduler.Status
	UpdateRegionNow(ctx context.Context, region string) error
}

// Adapter is the HTTP adapter
type Adapter struct {
	config    Config
	scheduler Scheduler
	gatherer  prometheus.Gatherer
	logger    *zap.Logger
	now       func() time.Time
	server    *http.Server
}

// New creates a new HTTP adapter. gatherer backs /metrics.
func New(s Scheduler, gatherer prometheus.Gatherer, config Config) *Adapter {
	defaults := DefaultConfig()
	if config.Address == "" {
		config.Address = defaults.Address
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if config.MaxAge <= 0 {
		config.MaxAge = defaults.MaxAge
	}
	if gatherer == nil {
		gatherer = prometheus.NewRegistry()
	}

	return &Adapter{
		config:    config,
		scheduler: s,
		gatherer:  gatherer,
		logger:    logging.Named("http"),
		now:       time.Now,
	}
}

// Router returns the HTTP handler
func (a *Adapter) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(a.loggingMiddleware)

	r.Get("/healthz", a.handleHealth)
	r.Get("/status", a.handleStatus)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/regions/{country}/{location}/refresh", a.handleRefresh)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (a *Adapter) Run(ctx context.Context) error {
	a.server = &http.Server{
		Addr:         a.config.Address,
		Handler:      a.Router(),
		ReadTimeout:  a.config.ReadTimeout,
		WriteTimeout: a.config.WriteTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		a.logger.Info("starting status server", zap.String("addr", a.config.Address))
		serverErrors <- a.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Internal("status server failed", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
		defer cancel()
		return a.Shutdown(shutdownCtx)
	}
}

// Shutdown gracefully shuts down the server
func (a *Adapter) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("graceful shutdown failed", zap.Error(err))
		return a.server.Close()
	}
	return nil
}

func (a *Adapter) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *Adapter) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.scheduler.Status(a.now(), a.config.MaxAge))
}

func (a *Adapter) handleRefresh(w http.ResponseWriter, r *http.Request) {
	region := chi.URLParam(r, "country") + "/" + chi.URLParam(r, "location")

	if err := a.scheduler.UpdateRegionNow(r.Context(), region); err != nil {
		status := http.StatusBadGateway
		if errors.IsType(err, errors.TypeInvalidCredentials) {
			status = http.StatusUnauthorized
		}
		a.logger.Warn("manual region refresh failed", zap.String("region", region), zap.Error(err))
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "region": region})
}

func (a *Adapter) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		a.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}
