package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/use-agent/philosophy/api/handler"
	"github.com/use-agent/philosophy/api/middleware"
	"github.com/use-agent/philosophy/cache"
	"github.com/use-agent/philosophy/config"
	"github.com/use-agent/philosophy/philosophy"
	"github.com/use-agent/philosophy/wiki"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health and metrics stay outside auth so monitoring probes always work.
func NewRouter(tr *philosophy.Traverser, ex *wiki.Excerpter, engines []string, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")

	// Health: no auth required.
	v1.GET("/health", handler.Health(engines, startTime))

	// Protected group: auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/trace", handler.Trace(tr, ex, cfg.Trace, cc))

	return r
}
