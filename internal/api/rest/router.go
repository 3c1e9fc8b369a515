package rest

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phishguard/phishguard-backend/internal/metrics"
)

// RouterConfig holds the HTTP surface configuration.
type RouterConfig struct {
	EnableMetrics      bool
	EnableRateLimiting bool
	RequestsPerSecond  float64
	Burst              int
	Logger             *slog.Logger
	Registry           *metrics.Registry
}

// NewRouter builds the full middleware chain around the handler.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	if cfg.EnableMetrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	middlewares := []Middleware{
		RecoveryMiddleware(cfg.Logger),
		RequestIDMiddleware(),
		LoggingMiddleware(cfg.Logger),
	}
	if cfg.Registry != nil {
		middlewares = append(middlewares, MetricsMiddleware(cfg.Registry))
	}
	if cfg.EnableRateLimiting {
		middlewares = append(middlewares, RateLimitMiddleware(cfg.RequestsPerSecond, cfg.Burst))
	}

	return Chain(mux, middlewares...)
}
