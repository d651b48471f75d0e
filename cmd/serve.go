package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/killallgit/segments-api/api"
	"github.com/killallgit/segments-api/api/types"
	"github.com/killallgit/segments-api/internal/database"
	"github.com/killallgit/segments-api/internal/metrics"
	"github.com/killallgit/segments-api/internal/services/auth"
	"github.com/killallgit/segments-api/internal/services/cache"
	"github.com/killallgit/segments-api/internal/services/projects"
	"github.com/killallgit/segments-api/internal/services/segments"
	"github.com/killallgit/segments-api/internal/services/users"
	"github.com/killallgit/segments-api/pkg/config"
	"github.com/killallgit/segments-api/pkg/logger"
)

var (
	serverHost string
	serverPort int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the Segments API server with the configured settings.

The database schema is migrated on startup. The server stops gracefully
on SIGINT or SIGTERM.

Example:
  segments-api serve
  segments-api serve --port 9090
  segments-api serve --host 127.0.0.1 --port 8080`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server flags
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host (overrides config)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (overrides config)")
}

// application is everything serve builds and must release on shutdown
type application struct {
	db     *database.DB
	cache  cache.Cache
	server *api.Server
	logger *logger.Logger
}

// buildApplication opens the store, wires the services and prepares the HTTP server
func buildApplication(ctx context.Context, cfg *config.Config, log *logger.Logger) (*application, error) {
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	userCache, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	app := &application{db: db, cache: userCache, logger: log}

	var m *metrics.Metrics
	if cfg.Monitoring.Enabled {
		m, err = metrics.New()
		if err != nil {
			app.close()
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
		if sp, ok := userCache.(cache.StatsProvider); ok {
			if err := m.RegisterCacheStats(func() (int64, int64, int64) {
				stats := sp.Stats()
				return stats.Hits, stats.Misses, stats.Size
			}); err != nil {
				app.close()
				return nil, fmt.Errorf("failed to register cache metrics: %w", err)
			}
		}
	}

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	projectRepo := projects.NewRepository(db.DB)

	segmentOpts := []segments.Option{
		segments.WithLogger(log.With("service", "segments")),
		segments.WithMaxRetries(cfg.Segments.MaxMergeRetries),
	}
	if m != nil {
		segmentOpts = append(segmentOpts, segments.WithRecorder(m))
	}

	userService := users.NewService(users.NewRepository(db.DB), userCache, users.Config{
		BcryptCost: cfg.Auth.BcryptCost,
		CacheTTL:   cfg.Cache.DefaultTTL,
	}, log.With("service", "users"))

	deps := &types.Dependencies{
		Version:        Version,
		DB:             db,
		Config:         cfg,
		Logger:         log,
		Metrics:        m,
		SegmentService: segments.NewService(segments.NewRepository(db.DB), projectRepo, segmentOpts...),
		ProjectService: projects.NewService(projectRepo, log.With("service", "projects")),
		UserService:    userService,
		AuthService:    auth.NewService(userService, tokens, log.With("service", "auth")),
	}

	app.server = api.NewServer(cfg, deps)
	if err := app.server.Initialize(); err != nil {
		app.close()
		return nil, err
	}
	return app, nil
}

func (a *application) close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("failed to close cache", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close database", "error", err)
		}
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Flags override config values
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	log, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := buildApplication(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.close()

	serverErr := make(chan error, 1)
	go func() {
		if err := app.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("server error: %w", err)
		}
	}()

	log.Info("server is ready to handle requests",
		"address", app.server.Addr(),
		"database", cfg.Database.Driver,
		"cache", cfg.Cache.Driver,
		"environment", cfg.Environment)

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down server")
	case runErr = <-serverErr:
		log.Error("server stopped unexpectedly", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := app.server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		return err
	}

	log.Info("server gracefully stopped")
	return runErr
}
