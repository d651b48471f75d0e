package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/segments-api/api/types"
	"github.com/killallgit/segments-api/internal/database"
	"github.com/killallgit/segments-api/pkg/config"
	"github.com/killallgit/segments-api/pkg/logger"
)

func openMemoryDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Initialize(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	return db
}

func TestGet(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		setupDeps      func(t *testing.T) *types.Dependencies
		expectedStatus int
		expectedHealth string
		expectedDB     string
	}{
		{
			name: "healthy with database",
			setupDeps: func(t *testing.T) *types.Dependencies {
				db := openMemoryDB(t)
				t.Cleanup(func() { _ = db.Close() })
				return &types.Dependencies{DB: db}
			},
			expectedStatus: http.StatusOK,
			expectedHealth: "healthy",
			expectedDB:     "healthy",
		},
		{
			name: "healthy without database",
			setupDeps: func(t *testing.T) *types.Dependencies {
				return &types.Dependencies{}
			},
			expectedStatus: http.StatusOK,
			expectedHealth: "healthy",
			expectedDB:     "not configured",
		},
		{
			name: "unhealthy with closed database",
			setupDeps: func(t *testing.T) *types.Dependencies {
				db := openMemoryDB(t)
				require.NoError(t, db.Close())
				return &types.Dependencies{DB: db, Logger: logger.NewNop()}
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedHealth: "unhealthy",
			expectedDB:     "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

			Get(tt.setupDeps(t))(c)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response struct {
				Success bool             `json:"success"`
				Data    types.HealthData `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.expectedStatus == http.StatusOK, response.Success)
			assert.Equal(t, tt.expectedHealth, response.Data.Status)
			assert.Equal(t, tt.expectedDB, response.Data.Services["database"])
			assert.NotEmpty(t, response.Data.Timestamp)
		})
	}
}
