package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/metacatalog/catalog/internal/api/handlers"
	"github.com/metacatalog/catalog/internal/api/middleware"
	"github.com/metacatalog/catalog/internal/core/auth"
	"github.com/metacatalog/catalog/internal/metrics"
)

// Handlers groups every route handler the router mounts.
type Handlers struct {
	Property      *handlers.PropertyHandler
	Metric        *handlers.MetricHandler
	MetricSet     *handlers.MetricSetHandler
	MetricSetTree *handlers.MetricSetTreeHandler
	DataMetric    *handlers.DataMetricHandler
	Organization  *handlers.OrganizationHandler
	Event         *handlers.EventHandler
	Health        *handlers.HealthHandler
}

type Router struct {
	engine         *gin.Engine
	authMiddleware *middleware.AuthMiddleware
	handlers       Handlers
	logger         *zap.Logger
	httpMetrics    *metrics.HTTPMetrics
	metricsHandler http.Handler
	pathPrefix     string
	hideDetail     bool
}

type RouterConfig struct {
	PathPrefix string
	HideDetail bool
	// MetricsHandler serves /metrics; nil disables the endpoint.
	MetricsHandler http.Handler
	HTTPMetrics    *metrics.HTTPMetrics
}

func NewRouter(validator middleware.TokenValidator, h Handlers, logger *zap.Logger, cfg RouterConfig) *Router {
	return &Router{
		authMiddleware: middleware.NewAuthMiddleware(validator),
		handlers:       h,
		logger:         logger,
		httpMetrics:    cfg.HTTPMetrics,
		metricsHandler: cfg.MetricsHandler,
		pathPrefix:     cfg.PathPrefix,
		hideDetail:     cfg.HideDetail,
	}
}

func (r *Router) Setup(mode string) *gin.Engine {
	gin.SetMode(mode)
	r.engine = gin.New()
	r.engine.Use(gin.Recovery())
	r.engine.Use(middleware.RequestLogger(r.logger))
	r.engine.Use(middleware.Metrics(r.httpMetrics))
	r.engine.Use(middleware.ErrorHandler(r.logger, r.hideDetail))

	r.setupRoutes()
	return r.engine
}

func (r *Router) setupRoutes() {
	api := r.engine.Group(r.pathPrefix)

	api.GET("/health", r.handlers.Health.Check)
	api.GET("/health/deep", r.handlers.Health.Deep)
	if r.metricsHandler != nil {
		r.engine.GET("/metrics", gin.WrapH(r.metricsHandler))
	}

	v1 := api.Group("/v1")
	v1.Use(r.authMiddleware.Authenticate())

	events := v1.Group("/events")
	{
		events.GET("/:id", r.handlers.Event.Get)
		events.POST("/search", r.handlers.Event.Search)
		events.DELETE("/:id", r.handlers.Event.Delete)
	}

	admin := v1.Group("")
	admin.Use(r.authMiddleware.RequirePermission(auth.PermSuperuserRead))

	properties := admin.Group("/properties")
	{
		properties.POST("", r.handlers.Property.Create)
		properties.POST("/search", r.handlers.Property.Search)
		properties.POST("/validate", r.handlers.Property.Validate)
		properties.GET("/schema/:entityType", r.handlers.Property.Schema)
		properties.GET("/:id", r.handlers.Property.Get)
		properties.PUT("/:id", r.handlers.Property.Update)
		properties.DELETE("/:id", r.handlers.Property.Delete)
	}

	mountCRUD(admin.Group("/metrics"), r.handlers.Metric)
	mountCRUD(admin.Group("/metric-sets"), r.handlers.MetricSet)
	mountCRUD(admin.Group("/metric-set-trees"), r.handlers.MetricSetTree)
	mountCRUD(admin.Group("/data-metrics"), r.handlers.DataMetric)
	mountCRUD(admin.Group("/organizations"), r.handlers.Organization)
}

type crudHandler interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	Search(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

func mountCRUD(g *gin.RouterGroup, h crudHandler) {
	g.POST("", h.Create)
	g.POST("/search", h.Search)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
