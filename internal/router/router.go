package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/medconnect-api/internal/handler/chatbot"
	"github.com/jwalitptl/medconnect-api/internal/handler/health"
	"github.com/jwalitptl/medconnect-api/internal/handler/prometheus"
	"github.com/jwalitptl/medconnect-api/internal/middleware"
	"github.com/jwalitptl/medconnect-api/pkg/metrics"
	"github.com/jwalitptl/medconnect-api/pkg/validator"
	"github.com/jwalitptl/medconnect-api/pkg/websocket"
)

const websocketPath = "/api/ws"

// Handler is implemented by every resource handler package.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup, *middleware.AuthMiddleware)
}

type Handlers struct {
	Resources []Handler
	Chatbot   *chatbot.Handler
	Health    *health.Handler
	Metrics   *prometheus.Handler
	Websocket *websocket.Handler
}

type RouterConfig struct {
	Mode             string
	AllowedOrigins   []string
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	RequestTimeout   time.Duration
	MaxBodySize      int64
	MaxUploadSize    int64
	UploadsDir       string
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
	config   RouterConfig
}

func NewRouter(auth *middleware.AuthMiddleware, handlers Handlers, m *metrics.Metrics, config RouterConfig) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	validator.UseWithGin()

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.Metrics(m),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(config.AllowedOrigins),
	)
	if config.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(limiter.RateLimit())
	}

	sizes := middleware.DefaultSizeLimitConfig()
	if config.MaxBodySize > 0 {
		sizes.MaxBodySize = config.MaxBodySize
	}
	if config.MaxUploadSize > 0 {
		sizes.MaxUploadSize = config.MaxUploadSize
	}
	engine.Use(
		middleware.SizeLimit(sizes),
		middleware.Timeout(middleware.TimeoutConfig{
			Duration:  config.RequestTimeout,
			SkipPaths: []string{websocketPath},
		}),
	)

	return &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
		config:   config,
	}
}

func (r *Router) Setup() {
	if r.handlers.Health != nil {
		r.handlers.Health.RegisterRoutes(r.engine)
	}
	if r.handlers.Metrics != nil {
		r.engine.GET("/metrics", r.handlers.Metrics.Handler())
	}
	if r.config.UploadsDir != "" {
		r.engine.Static("/uploads", r.config.UploadsDir)
	}

	api := r.engine.Group("/api", middleware.NoStore())
	for _, h := range r.handlers.Resources {
		h.RegisterRoutes(api, r.auth)
	}
	if r.handlers.Chatbot != nil {
		r.handlers.Chatbot.RegisterRoutes(api)
	}
	if r.handlers.Websocket != nil {
		r.engine.GET(websocketPath, r.auth.Authenticate(), r.handlers.Websocket.Connect)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
