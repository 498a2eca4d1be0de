package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ChemCheck/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemCheck/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemCheck/internal/interfaces/http/handlers"
	"github.com/turtacn/ChemCheck/internal/interfaces/http/middleware"
)

// RouterConfig collects the handlers and optional middleware. Nil
// components are skipped.
type RouterConfig struct {
	CheckHandler  *handlers.CheckHandler
	HealthHandler *handlers.HealthHandler

	Logger      logging.Logger
	Metrics     *prometheus.AppMetrics
	Collector   prometheus.MetricsCollector
	MetricsPath string

	CORS        *middleware.CORSConfig
	RateLimiter middleware.RateLimiter
	RateLimit   middleware.RateLimitConfig
	Logging     middleware.LoggingConfig
	MaxBodySize int64
	// RequestTimeout bounds each /api/v1 request; zero means no bound.
	RequestTimeout time.Duration
}

// NewRouter builds the gin engine. Probes and /metrics sit outside the
// rate limiter; everything under /api/v1 is limited.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Logging))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(r)
	}
	if cfg.Collector != nil {
		r.GET(cfg.MetricsPath, gin.WrapH(cfg.Collector.Handler()))
	}

	api := r.Group("/api/v1")
	api.Use(middleware.BodyLimit(cfg.MaxBodySize), middleware.Timeout(cfg.RequestTimeout))
	if cfg.RateLimiter != nil {
		api.Use(middleware.RateLimit(cfg.RateLimiter, cfg.RateLimit))
	}
	if cfg.CheckHandler != nil {
		cfg.CheckHandler.RegisterRoutes(api)
	}

	r.NoRoute(notFound)
	r.NoMethod(methodNotAllowed)
	return r
}
