package cmd

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/segments-api/pkg/config"
	"github.com/killallgit/segments-api/pkg/logger"
)

func TestServeCommand(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		wantErr        bool
		expectedOutput string
	}{
		{
			name:           "serve command with help",
			args:           []string{"serve", "--help"},
			expectedOutput: "Start the Segments API server",
		},
		{
			name: "serve command with custom port",
			args: []string{"serve", "--host", "127.0.0.1", "--port", "18931"},
		},
		{
			name:    "serve command with invalid port",
			args:    []string{"serve", "--port", "invalid"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCmd()
			resetHelp(cmd)
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs(tt.args)

			// A short-lived context stops the server right after it starts
			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()
			cmd.SetContext(ctx)

			err := cmd.Execute()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.expectedOutput != "" {
				assert.Contains(t, buf.String(), tt.expectedOutput)
			}
		})
	}
}

func TestServeCommandFlags(t *testing.T) {
	cmd := NewRootCmd()
	serveCmd, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)

	assert.NotNil(t, serveCmd.Flags().Lookup("port"), "Expected port flag to be registered")
	assert.NotNil(t, serveCmd.Flags().Lookup("host"), "Expected host flag to be registered")
}

func TestBuildApplication(t *testing.T) {
	cfg, err := loadConfig()
	require.NoError(t, err)

	app, err := buildApplication(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	defer app.close()

	assert.NotNil(t, app.server.Engine())
	routes := map[string]bool{}
	for _, r := range app.server.Engine().Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /health",
		"GET /metrics",
		"POST /api/segments/:segmentId/descriptions_prosody",
		"GET /api/projects/:projectId",
		"POST /api/auth/login",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
}

func TestBuildApplication_BadCacheDriver(t *testing.T) {
	cfg, err := loadConfig()
	require.NoError(t, err)

	broken := *cfg
	broken.Cache = config.CacheConfig{Driver: "memcached"}

	_, err = buildApplication(context.Background(), &broken, logger.NewNop())
	assert.Error(t, err)
}
