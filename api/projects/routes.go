package projects

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/segments-api/api/types"
)

// RegisterRoutes registers project routes. Write handlers run after writeMiddleware.
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies, writeMiddleware ...gin.HandlerFunc) {
	router.GET("", ListProjects(deps))
	router.GET("/:projectId", GetProject(deps))

	write := router.Group("", writeMiddleware...)
	write.POST("", CreateProject(deps))
	write.PUT("/:projectId", UpdateProject(deps))
	write.DELETE("/:projectId", DeleteProject(deps))
}
