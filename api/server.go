package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/segments-api/api/types"
	"github.com/killallgit/segments-api/pkg/config"
)

// Server represents the HTTP server
type Server struct {
	engine      *gin.Engine
	httpServer  *http.Server
	cfg         *config.Config
	rateLimiter *RateLimiter

	// Dependencies for handlers
	dependencies *types.Dependencies
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, deps *types.Dependencies) *Server {
	if cfg == nil {
		cfg = &config.Config{}
	}
	if deps == nil {
		deps = &types.Dependencies{}
	}

	// Create Gin engine with recovery middleware only
	engine := gin.New()
	engine.Use(Recovery(deps.Logger))

	server := &Server{
		engine:       engine,
		cfg:          cfg,
		dependencies: deps,
		httpServer: &http.Server{
			Addr:           net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
			Handler:        engine,
			ReadTimeout:    cfg.Server.ReadTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
			IdleTimeout:    cfg.Server.ReadTimeout,
			MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		},
	}

	if cfg.RateLimiting.Enabled {
		server.rateLimiter = NewRateLimiter(cfg.RateLimiting.RPS, cfg.RateLimiting.Burst)
	}

	return server
}

// Engine returns the Gin engine for testing
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Initialize sets up middleware and routes
func (s *Server) Initialize() error {
	s.setupMiddleware()

	if err := RegisterRoutes(s.engine, s.dependencies, s.cfg, s.rateLimiter); err != nil {
		return fmt.Errorf("failed to register routes: %w", err)
	}
	return nil
}

// setupMiddleware configures global middleware
func (s *Server) setupMiddleware() {
	if s.dependencies.Logger != nil {
		s.engine.Use(RequestLogger(s.dependencies.Logger))
	}

	if s.cfg.Monitoring.Enabled && s.dependencies.Metrics != nil {
		s.engine.Use(Metrics(s.dependencies.Metrics))
	}

	s.engine.Use(CORS(s.cfg.Security))

	if s.cfg.Server.MaxBodyBytes > 0 {
		s.engine.Use(RequestSizeLimitWithSize(s.cfg.Server.MaxBodyBytes))
	} else {
		s.engine.Use(RequestSizeLimit())
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
