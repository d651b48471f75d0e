package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "github.com/killallgit/segments-api/pkg/errors"
)

// EnvPrefix is prepended to every environment override, e.g. SEGMENTS_SERVER_PORT
const EnvPrefix = "SEGMENTS"

const placeholderSecret = "change-me-in-production"

var (
	once    sync.Once
	initErr error
)

// Init initializes the configuration system
// This should be called once at application startup
func Init() error {
	once.Do(func() {
		// A missing .env is normal outside local development
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			initErr = fmt.Errorf("error loading .env: %w", err)
			return
		}

		setDefaults()

		viper.SetEnvPrefix(EnvPrefix)
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()

		configPath := filepath.Clean("./config/settings.yaml")
		viper.SetConfigFile(configPath)

		if err := viper.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				initErr = fmt.Errorf("error reading config file %s: %w", configPath, err)
				return
			}
		}

		if err := validate(); err != nil {
			initErr = fmt.Errorf("invalid configuration: %w", err)
		}
	})

	return initErr
}

// GetConfig returns the current configuration as a struct
// Init() must be called before using this
func GetConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// IsProduction reports whether the environment is production
func IsProduction() bool {
	env := strings.ToLower(viper.GetString("environment"))
	return env == "production" || env == "prod"
}

// validate validates the configuration using Viper values
func validate() error {
	port := viper.GetInt("server.port")
	if port <= 0 || port > 65535 {
		return apperrors.ConfigError("server.port", fmt.Sprintf("invalid port %d", port))
	}

	switch driver := viper.GetString("database.driver"); driver {
	case "sqlite":
		if viper.GetString("database.path") == "" {
			return apperrors.ConfigError("database.path", "is required for the sqlite driver")
		}
	case "postgres", "mysql":
		if viper.GetString("database.dsn") == "" {
			return apperrors.ConfigError("database.dsn", fmt.Sprintf("is required for the %s driver", driver))
		}
	default:
		return apperrors.ConfigError("database.driver", fmt.Sprintf("unsupported driver %q", driver))
	}

	secret := viper.GetString("auth.jwt_secret")
	if secret == "" || secret == placeholderSecret {
		if IsProduction() {
			return apperrors.ConfigError("auth.jwt_secret", "cannot use a placeholder value in production")
		}
		fmt.Fprintln(os.Stderr, "Warning: JWT secret is using a placeholder value - this is insecure!")
		if secret == "" {
			viper.Set("auth.jwt_secret", placeholderSecret)
		}
	}

	// Auto-correct invalid retry count
	if viper.GetInt("segments.max_merge_retries") <= 0 {
		viper.Set("segments.max_merge_retries", 5)
	}

	return nil
}

// Validate checks an unmarshalled Config and fills in derived defaults
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return apperrors.ConfigError("server.port", fmt.Sprintf("invalid port %d", c.Server.Port))
	}

	switch c.Database.Driver {
	case "", "sqlite":
	case "postgres", "mysql":
		if c.Database.DSN == "" {
			return apperrors.ConfigError("database.dsn", fmt.Sprintf("is required for the %s driver", c.Database.Driver))
		}
	default:
		return apperrors.ConfigError("database.driver", fmt.Sprintf("unsupported driver %q", c.Database.Driver))
	}

	if c.Segments.MaxMergeRetries <= 0 {
		c.Segments.MaxMergeRetries = 5
	}

	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("environment", "development")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 5000)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)
	viper.SetDefault("server.max_header_bytes", 1048576)
	viper.SetDefault("server.max_body_bytes", 10*1024*1024)

	// Database defaults
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.path", "./data/segments.db")
	viper.SetDefault("database.dsn", "")
	viper.SetDefault("database.max_connections", 100)
	viper.SetDefault("database.max_idle_connections", 10)
	viper.SetDefault("database.connection_max_lifetime", time.Hour)
	viper.SetDefault("database.log_queries", false)

	// Auth defaults
	viper.SetDefault("auth.jwt_secret", "")
	viper.SetDefault("auth.token_ttl", 24*time.Hour)
	viper.SetDefault("auth.bcrypt_cost", 10)
	viper.SetDefault("auth.protect_writes", false)

	// Segment defaults
	viper.SetDefault("segments.max_merge_retries", 5)

	// Cache defaults
	viper.SetDefault("cache.driver", "memory")
	viper.SetDefault("cache.default_ttl", time.Minute)
	viper.SetDefault("cache.cleanup_interval", 5*time.Minute)
	viper.SetDefault("cache.redis_addr", "localhost:6379")
	viper.SetDefault("cache.redis_password", "")
	viper.SetDefault("cache.redis_db", 0)
	viper.SetDefault("cache.key_prefix", "segments:")

	// Rate limiting defaults
	viper.SetDefault("rate_limiting.enabled", true)
	viper.SetDefault("rate_limiting.rps", 20)
	viper.SetDefault("rate_limiting.burst", 40)

	// Security defaults
	viper.SetDefault("security.cors_origins", []string{"*"})
	viper.SetDefault("security.cors_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	viper.SetDefault("security.cors_headers", []string{"Content-Type", "Authorization", "X-Requested-With"})

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.json", false)

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)
	viper.SetDefault("monitoring.metrics_path", "/metrics")
}
