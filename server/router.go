package server

import (
	"time"

	httpHandler "benchly/interfaces/http"
	"benchly/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	User      httpHandler.IUserHandler
	Discovery httpHandler.IDiscoveryHandler
	Project   httpHandler.IProjectHandler
	Text      httpHandler.ITextHandler
	Health    httpHandler.IHealthHandler
}

type RouterConfig struct {
	AllowedOrigins []string
	Auth           gin.HandlerFunc
	RateLimit      gin.HandlerFunc
	Gatherer       prometheus.Gatherer
}

func InitiateRouter(h Handlers, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Metrics())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", h.Health.Healthz)
	router.GET("/readyz", h.Health.Readyz)
	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	public := router.Group("/api")
	if cfg.RateLimit != nil {
		public.Use(cfg.RateLimit)
	}
	public.POST("/register", h.User.Register)
	public.POST("/login", h.User.Login)

	api := router.Group("/api")
	api.Use(cfg.Auth)
	if cfg.RateLimit != nil {
		api.Use(cfg.RateLimit)
	}

	api.POST("/search", h.Discovery.Search)

	api.POST("/get_summary", h.Text.Summary)
	api.POST("/get_related_keywords", h.Text.RelatedKeywords)

	api.POST("/project/save", h.Project.Save)
	api.GET("/projects", h.Project.List)
	api.GET("/project/get/:id", h.Project.Get)
	api.DELETE("/project/delete/:id", h.Project.Delete)

	return router
}
