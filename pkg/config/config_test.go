package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/killallgit/segments-api/pkg/errors"
)

// resetForTest clears viper and the init guard, then moves into an empty directory
func resetForTest(t *testing.T) string {
	t.Helper()
	viper.Reset()
	once = sync.Once{}
	initErr = nil
	dir := t.TempDir()
	t.Chdir(dir)
	t.Cleanup(viper.Reset)
	return dir
}

func writeSettings(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "settings.yaml"), []byte(content), 0o644))
}

func TestInit(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, dir string)
		wantErr bool
		check   func(t *testing.T)
	}{
		{
			name: "missing config file with defaults",
			check: func(t *testing.T) {
				assert.Equal(t, 5000, viper.GetInt("server.port"))
				assert.Equal(t, "sqlite", viper.GetString("database.driver"))
				assert.Equal(t, 5, viper.GetInt("segments.max_merge_retries"))
				assert.Equal(t, placeholderSecret, viper.GetString("auth.jwt_secret"))
			},
		},
		{
			name: "load from settings.yaml",
			setup: func(t *testing.T, dir string) {
				writeSettings(t, dir, `
server:
  host: "127.0.0.1"
  port: 8080
database:
  path: "./test.db"
auth:
  jwt_secret: "from-file"
`)
			},
			check: func(t *testing.T) {
				assert.Equal(t, 8080, viper.GetInt("server.port"))
				assert.Equal(t, "./test.db", viper.GetString("database.path"))
				assert.Equal(t, "from-file", viper.GetString("auth.jwt_secret"))
			},
		},
		{
			name: "environment variable override",
			setup: func(t *testing.T, dir string) {
				writeSettings(t, dir, "server:\n  port: 8080\n")
				t.Setenv("SEGMENTS_SERVER_PORT", "9090")
			},
			check: func(t *testing.T) {
				assert.Equal(t, 9090, viper.GetInt("server.port"))
			},
		},
		{
			name: "dotenv file is loaded",
			setup: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SEGMENTS_AUTH_JWT_SECRET=dotenv-secret\n"), 0o644))
				t.Cleanup(func() { _ = os.Unsetenv("SEGMENTS_AUTH_JWT_SECRET") })
			},
			check: func(t *testing.T) {
				assert.Equal(t, "dotenv-secret", viper.GetString("auth.jwt_secret"))
			},
		},
		{
			name: "postgres without dsn is rejected",
			setup: func(t *testing.T, dir string) {
				t.Setenv("SEGMENTS_DATABASE_DRIVER", "postgres")
			},
			wantErr: true,
		},
		{
			name: "placeholder secret rejected in production",
			setup: func(t *testing.T, dir string) {
				t.Setenv("SEGMENTS_ENVIRONMENT", "production")
			},
			wantErr: true,
		},
		{
			name: "invalid port",
			setup: func(t *testing.T, dir string) {
				t.Setenv("SEGMENTS_SERVER_PORT", "70000")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := resetForTest(t)
			if tt.setup != nil {
				tt.setup(t, dir)
			}

			err := Init()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.Is(err, apperrors.ErrCodeConfigInvalid))
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t)
			}
		})
	}
}

func TestGetConfig(t *testing.T) {
	resetForTest(t)
	require.NoError(t, Init())

	cfg, err := GetConfig()
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, []string{"*"}, cfg.Security.CORSOrigins)
	assert.True(t, cfg.Monitoring.Enabled)
}

func TestGetConfig_RejectsInvalidOverride(t *testing.T) {
	resetForTest(t)
	require.NoError(t, Init())

	viper.Set("database.driver", "mysql")

	cfg, err := GetConfig()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeConfigInvalid))
	assert.Contains(t, err.Error(), "database.dsn")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:   "valid sqlite config",
			config: &Config{Server: ServerConfig{Port: 8080}, Database: DatabaseConfig{Driver: "sqlite", Path: "./x.db"}},
		},
		{
			name:    "invalid port",
			config:  &Config{Server: ServerConfig{Port: 0}},
			wantErr: true,
		},
		{
			name:    "mysql without dsn",
			config:  &Config{Server: ServerConfig{Port: 8080}, Database: DatabaseConfig{Driver: "mysql"}},
			wantErr: true,
		},
		{
			name:    "unknown driver",
			config:  &Config{Server: ServerConfig{Port: 8080}, Database: DatabaseConfig{Driver: "oracle"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.Is(err, apperrors.ErrCodeConfigInvalid))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, 5, tt.config.Segments.MaxMergeRetries)
		})
	}
}
