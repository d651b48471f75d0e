package users

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/segments-api/api/types"
)

// RegisterRoutes registers user routes. Creation runs after writeMiddleware.
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies, writeMiddleware ...gin.HandlerFunc) {
	router.GET("", ListUsers(deps))
	router.GET("/:userId", GetUser(deps))

	router.Group("", writeMiddleware...).POST("", CreateUser(deps))
}
