package segments

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/segments-api/api/types"
)

// RegisterRoutes registers segment routes. Write handlers run after writeMiddleware.
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies, writeMiddleware ...gin.HandlerFunc) {
	router.GET("", ListSegments(deps))
	router.GET("/project/:projectId", ListSegmentsByProject(deps))
	router.GET("/:segmentId", GetSegment(deps))

	// Counters stay public so anonymous viewers are counted
	router.POST("/:segmentId/views", IncrementViews(deps))
	router.POST("/:segmentId/likes", IncrementLikes(deps))

	write := router.Group("", writeMiddleware...)
	write.POST("", CreateSegment(deps))
	write.PUT("/:segmentId", UpdateSegment(deps))
	write.DELETE("/:segmentId", DeleteSegment(deps))
	write.POST("/:segmentId/descriptions_prosody", MergeDescriptionsProsody(deps))
}
