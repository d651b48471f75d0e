package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/killallgit/segments-api/internal/models"
	"github.com/killallgit/segments-api/pkg/config"
	apperrors "github.com/killallgit/segments-api/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type DB struct {
	*gorm.DB
}

// Initialize opens a connection for the configured driver and applies pool settings
func Initialize(cfg config.DatabaseConfig) (*DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Error
	if cfg.LogQueries {
		logLevel = logger.Info
	}

	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrCodeDatabaseConnection, "failed to connect to %s database", dialector.Name()).
			WithCause(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL database: %w", err)
	}

	maxOpen := cfg.MaxConnections
	if maxOpen <= 0 {
		maxOpen = 100
	}
	maxIdle := cfg.MaxIdleConnections
	if maxIdle <= 0 {
		maxIdle = 10
	}
	lifetime := cfg.ConnectionMaxLifetime
	if lifetime <= 0 {
		lifetime = time.Hour
	}

	// Every new connection to an in-memory sqlite database sees its own empty schema
	if isMemorySQLite(cfg) {
		maxOpen, maxIdle = 1, 1
	}

	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetConnMaxLifetime(lifetime)

	return &DB{DB: db}, nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "sqlite":
		path := cfg.Path
		if path == "" {
			path = ":memory:"
		}
		if !isMemorySQLite(cfg) {
			if dir := filepath.Dir(path); dir != "" && dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return nil, fmt.Errorf("failed to create database directory: %w", err)
				}
			}
		}
		return sqlite.Open(path), nil
	case "postgres":
		if cfg.DSN == "" {
			return nil, apperrors.ConfigError("database.dsn", "is required for the postgres driver")
		}
		return postgres.Open(cfg.DSN), nil
	case "mysql":
		if cfg.DSN == "" {
			return nil, apperrors.ConfigError("database.dsn", "is required for the mysql driver")
		}
		return mysql.Open(cfg.DSN), nil
	default:
		return nil, apperrors.ConfigError("database.driver", fmt.Sprintf("unsupported driver %q", cfg.Driver))
	}
}

func isMemorySQLite(cfg config.DatabaseConfig) bool {
	if cfg.Driver != "" && cfg.Driver != "sqlite" {
		return false
	}
	return cfg.Path == "" || cfg.Path == ":memory:"
}

// Close closes the database connection
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying SQL database: %w", err)
	}
	return sqlDB.Close()
}

// HealthCheck verifies the database connection is working
func (db *DB) HealthCheck(ctx context.Context) error {
	if db == nil || db.DB == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying SQL database: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

// AutoMigrate runs GORM auto migration for the provided models
func (db *DB) AutoMigrate(models ...any) error {
	if err := db.DB.AutoMigrate(models...); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseMigration, "auto migration failed")
	}
	return nil
}

// Migrate brings the schema up to date with every application model
func (db *DB) Migrate() error {
	return db.AutoMigrate(models.All()...)
}

// PendingMigrations lists the application tables that do not exist yet
func (db *DB) PendingMigrations() ([]string, error) {
	var pending []string
	for _, m := range models.All() {
		stmt := &gorm.Statement{DB: db.DB}
		if err := stmt.Parse(m); err != nil {
			return nil, fmt.Errorf("failed to parse model: %w", err)
		}
		if !db.DB.Migrator().HasTable(m) {
			pending = append(pending, stmt.Schema.Table)
		}
	}
	return pending, nil
}

// ForUpdate locks the rows read by tx until the transaction ends.
// SQLite has no row locks; its transactions already serialize writers.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
}
