package version

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/segments-api/api/types"
)

// Name is reported by the info endpoint
const Name = "Segments API"

// Get handles service info requests
// @Summary      Service info
// @Description  Name, version and the top level endpoints of the service
// @Tags         system
// @Produce      json
// @Success      200 {object} types.Response{data=types.InfoData}
// @Router       / [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := "dev"
		if deps != nil && deps.Version != "" {
			v = deps.Version
		}

		types.SendSuccess(c, "Segments API is running", types.InfoData{
			Name:    Name,
			Version: v,
			Endpoints: map[string]string{
				"health":   "/health",
				"docs":     "/docs/index.html",
				"auth":     "/api/auth",
				"users":    "/api/users",
				"projects": "/api/projects",
				"segments": "/api/segments",
			},
		})
	}
}
