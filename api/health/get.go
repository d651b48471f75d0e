package health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/segments-api/api/types"
)

// Get handles health check requests
// @Summary      Health check
// @Description  Reports whether the service and its database are reachable
// @Tags         system
// @Produce      json
// @Success      200 {object} types.Response{data=types.HealthData}
// @Failure      503 {object} types.Response{data=types.HealthData}
// @Router       /health [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := getDatabaseStatus(c, deps)

		data := types.HealthData{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Services:  map[string]string{"database": dbStatus},
		}

		if dbStatus == "unhealthy" {
			data.Status = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, types.Response{
				Success: false,
				Message: "Service is unhealthy",
				Data:    data,
			})
			return
		}

		types.SendSuccess(c, "Service is healthy", data)
	}
}

// getDatabaseStatus returns the database connection status
func getDatabaseStatus(c *gin.Context, deps *types.Dependencies) string {
	if deps == nil || deps.DB == nil || deps.DB.DB == nil {
		return "not configured"
	}

	if err := deps.DB.HealthCheck(c.Request.Context()); err != nil {
		if deps.Logger != nil {
			deps.Logger.Error("database health check failed", "error", err)
		}
		return "unhealthy"
	}

	return "healthy"
}
