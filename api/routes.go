package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	authapi "github.com/killallgit/segments-api/api/auth"
	"github.com/killallgit/segments-api/api/health"
	"github.com/killallgit/segments-api/api/projects"
	"github.com/killallgit/segments-api/api/segments"
	"github.com/killallgit/segments-api/api/types"
	"github.com/killallgit/segments-api/api/users"
	"github.com/killallgit/segments-api/api/version"
	_ "github.com/killallgit/segments-api/docs/swagger"
	"github.com/killallgit/segments-api/pkg/config"
)

// RegisterRoutes registers all API routes
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies, cfg *config.Config, limiter *RateLimiter) error {
	if deps == nil {
		return fmt.Errorf("dependencies are nil")
	}
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	// Public routes (no rate limiting)
	version.RegisterRoutes(engine, deps)
	health.RegisterRoutes(engine, deps)

	if cfg.Monitoring.Enabled && deps.Metrics != nil {
		path := cfg.Monitoring.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		engine.GET(path, gin.WrapH(deps.Metrics.Handler()))
	}

	// Swagger documentation
	engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
	})
	engine.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	engine.NoRoute(NotFoundHandler())

	if deps.SegmentService == nil || deps.ProjectService == nil || deps.UserService == nil || deps.AuthService == nil {
		return fmt.Errorf("resource services are not configured")
	}

	apiGroup := engine.Group("/api")
	if limiter != nil {
		apiGroup.Use(limiter.Middleware())
	}

	// Writes can be put behind a bearer token; reads stay public
	var writeGuard []gin.HandlerFunc
	if cfg.Auth.ProtectWrites {
		writeGuard = append(writeGuard, RequireAuth(deps.AuthService))
	}

	authapi.RegisterRoutes(apiGroup.Group("/auth"), deps)
	users.RegisterRoutes(apiGroup.Group("/users"), deps, writeGuard...)
	projects.RegisterRoutes(apiGroup.Group("/projects"), deps, writeGuard...)
	segments.RegisterRoutes(apiGroup.Group("/segments"), deps, writeGuard...)

	return nil
}

// NotFoundHandler handles 404 errors
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "The requested endpoint was not found",
			"path":    c.Request.URL.Path,
		})
	}
}
