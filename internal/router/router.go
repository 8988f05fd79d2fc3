package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/physiotrack/clinic-api/internal/handler"
	"github.com/physiotrack/clinic-api/internal/handler/health"
	"github.com/physiotrack/clinic-api/internal/handler/prometheus"
	"github.com/physiotrack/clinic-api/internal/middleware"
)

type Router struct {
	engine   *gin.Engine
	health   *health.Handler
	metrics  *prometheus.Handler
	handlers []handler.Handler
	config   RouterConfig
}

type RouterConfig struct {
	RateLimit      rate.Limit
	RateBurst      int
	RateClientTTL  time.Duration
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	CORSConfig     middleware.CORSConfig
	MetricsEnabled bool
	MetricsPath    string
}

// NewRouter builds the engine and its global middleware chain. Resource
// handlers are mounted under /api by Setup.
func NewRouter(
	healthH *health.Handler,
	metricsH *prometheus.Handler,
	handlers []handler.Handler,
	config RouterConfig,
) *Router {
	engine := gin.New()

	r := &Router{
		engine:   engine,
		health:   healthH,
		metrics:  metricsH,
		handlers: handlers,
		config:   config,
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	)
	if config.MetricsEnabled {
		engine.Use(metricsH.Middleware())
	}
	engine.Use(
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(config.CORSConfig),
	)

	return r
}

func (r *Router) Setup() {
	r.health.RegisterRoutes(&r.engine.RouterGroup)
	if r.config.MetricsEnabled {
		r.engine.GET(r.config.MetricsPath, r.metrics.Handler())
	}

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:      r.config.RateLimit,
		Burst:     r.config.RateBurst,
		ClientTTL: r.config.RateClientTTL,
	})

	sizeLimit := middleware.DefaultSizeLimitConfig()
	if r.config.MaxBodyBytes > 0 {
		sizeLimit.MaxBodySize = r.config.MaxBodyBytes
	}

	api := r.engine.Group("/api")
	api.Use(
		rateLimiter.RateLimit(),
		middleware.SizeLimit(sizeLimit),
		middleware.Timeout(middleware.TimeoutConfig{Duration: r.config.RequestTimeout}),
	)

	for _, h := range r.handlers {
		h.RegisterRoutes(api)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
