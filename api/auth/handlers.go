package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/segments-api/api/types"
	"github.com/killallgit/segments-api/internal/models"
	authsvc "github.com/killallgit/segments-api/internal/services/auth"
	"github.com/killallgit/segments-api/internal/services/users"
	"github.com/killallgit/segments-api/pkg/logger"
)

// RegisterRequest is the body of POST /api/auth/register
type RegisterRequest struct {
	Username string `json:"username" example:"alice"`
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"s3cret!"`
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"s3cret!"`
}

// UserData wraps a single user
type UserData struct {
	User *models.User `json:"user"`
}

// Handler manages auth endpoints
type Handler struct {
	authService *authsvc.Service
	logger      *logger.Logger
}

// NewHandler creates a new auth handler
func NewHandler(authService *authsvc.Service, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{authService: authService, logger: log}
}

// Register creates an account
// @Summary      Register
// @Description  Create an account. Username must be 3 to 50 characters and the password at least 6.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        user body RegisterRequest true "Account data"
// @Success      201 {object} types.Response{data=UserData}
// @Failure      400 {object} types.Response "Missing or invalid fields"
// @Failure      409 {object} types.Response "Username or email already registered"
// @Failure      500 {object} types.Response "Error registering user"
// @Router       /api/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !types.BindJSONOrError(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), users.CreateInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		types.SendError(c, h.logger, err, "Error registering user")
		return
	}
	types.SendCreated(c, "User registered successfully", UserData{User: user})
}

// Login checks credentials and returns a token
// @Summary      Login
// @Description  Exchange email and password for a signed bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials body LoginRequest true "Credentials"
// @Success      200 {object} types.Response{data=authsvc.LoginResult}
// @Failure      400 {object} types.Response "Missing email or password"
// @Failure      401 {object} types.Response "Invalid credentials"
// @Failure      500 {object} types.Response "Error logging in"
// @Router       /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !types.BindJSONOrError(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		types.SendError(c, h.logger, err, "Error logging in")
		return
	}
	types.SendSuccess(c, "Login successful", result)
}

// Verify returns the user the bearer token belongs to
// @Summary      Verify token
// @Tags         auth
// @Produce      json
// @Success      200 {object} types.Response{data=UserData}
// @Failure      401 {object} types.Response "User not authenticated"
// @Failure      500 {object} types.Response "Error verifying authentication"
// @Security     BearerAuth
// @Router       /api/auth/verify [get]
func (h *Handler) Verify(c *gin.Context) {
	user, err := h.authService.Verify(c.Request.Context(), BearerToken(c.GetHeader("Authorization")))
	if err != nil {
		types.SendError(c, h.logger, err, "Error verifying authentication")
		return
	}
	types.SendSuccess(c, "User authenticated", UserData{User: user})
}

// Logout acknowledges a logout; tokens are stateless so the client discards its copy
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200 {object} types.Response
// @Router       /api/auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	types.SendSuccess(c, "Logged out successfully", nil)
}

// BearerToken extracts the token from an "Authorization: Bearer" header value
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
