package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/segments-api/api/types"
)

// RegisterRoutes registers auth routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	h := NewHandler(deps.AuthService, deps.Logger)

	router.POST("/register", h.Register)
	router.POST("/login", h.Login)
	router.GET("/verify", h.Verify)
	router.POST("/logout", h.Logout)
}
