package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/ecopick/recycle-api/internal/handler"
	inventoryhandler "github.com/ecopick/recycle-api/internal/handler/inventory"
	notificationhandler "github.com/ecopick/recycle-api/internal/handler/notification"
	orderhandler "github.com/ecopick/recycle-api/internal/handler/order"
	preferencehandler "github.com/ecopick/recycle-api/internal/handler/preference"
	routehandler "github.com/ecopick/recycle-api/internal/handler/route"
	"github.com/ecopick/recycle-api/internal/middleware"
)

type Router struct {
	engine        *gin.Engine
	auth          *middleware.AuthMiddleware
	h             *handler.Handler
	orderH        *orderhandler.Handler
	routeH        *routehandler.Handler
	notificationH *notificationhandler.Handler
	preferenceH   *preferencehandler.Handler
	inventoryH    *inventoryhandler.Handler
	metrics       *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

type Config struct {
	RateLimit     rate.Limit
	RateBurst     int
	CORSConfig    middleware.CORSConfig
	MetricsPrefix string
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	h *handler.Handler,
	orderH *orderhandler.Handler,
	routeH *routehandler.Handler,
	notificationH *notificationhandler.Handler,
	preferenceH *preferencehandler.Handler,
	inventoryH *inventoryhandler.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	middleware.RegisterValidators()
	engine := gin.New()

	r := &Router{
		engine:        engine,
		auth:          auth,
		h:             h,
		orderH:        orderH,
		routeH:        routeH,
		notificationH: notificationH,
		preferenceH:   preferenceH,
		inventoryH:    inventoryH,
		metrics:       initRouterMetrics(config.MetricsPrefix),
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
	)

	engine.Use(middleware.CORS(config.CORSConfig))

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RPS:   float64(config.RateLimit),
		Burst: config.RateBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")

	r.setupHealthCheck(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.setupProtectedRoutes(protected)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
	}
}

func (r *Router) setupProtectedRoutes(rg *gin.RouterGroup) {
	r.orderH.RegisterRoutes(rg)
	r.routeH.RegisterRoutes(rg)
	r.preferenceH.RegisterRoutes(rg)
	r.notificationH.RegisterRoutes(rg, r.auth)
	r.inventoryH.RegisterRoutes(rg, r.auth)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	if prefix == "" {
		prefix = "recycle_api"
	}
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := statusLabel(c.Writer.Status())

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).
			Observe(time.Since(start).Seconds())
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
