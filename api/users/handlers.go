package users

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/segments-api/api/types"
	"github.com/killallgit/segments-api/internal/models"
	usersvc "github.com/killallgit/segments-api/internal/services/users"
)

// CreateUserRequest is the body of POST /api/users
type CreateUserRequest struct {
	Username string `json:"username" example:"alice"`
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"s3cret!"`
}

// UserListData is a list of users with its length
type UserListData struct {
	Users []models.User `json:"users"`
	Count int           `json:"count"`
}

// UserData wraps a single user
type UserData struct {
	User *models.User `json:"user"`
}

// ListUsers returns every user without password hashes
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200 {object} types.Response{data=UserListData}
// @Failure      500 {object} types.Response "Error fetching users"
// @Router       /api/users [get]
func ListUsers(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := deps.UserService.ListUsers(c.Request.Context())
		if err != nil {
			types.SendError(c, deps.Logger, err, "Error fetching users")
			return
		}
		if list == nil {
			list = []models.User{}
		}
		types.SendSuccess(c, "Users retrieved successfully", UserListData{Users: list, Count: len(list)})
	}
}

// CreateUser creates a user
// @Summary      Create user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        user body CreateUserRequest true "User data"
// @Success      201 {object} types.Response{data=UserData}
// @Failure      400 {object} types.Response "Missing or invalid fields"
// @Failure      409 {object} types.Response "Username or email already exists"
// @Failure      500 {object} types.Response "Error creating user"
// @Security     BearerAuth
// @Router       /api/users [post]
func CreateUser(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateUserRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		user, err := deps.UserService.CreateUser(c.Request.Context(), usersvc.CreateInput{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			types.SendError(c, deps.Logger, err, "Error creating user")
			return
		}
		types.SendCreated(c, "User created successfully", UserData{User: user})
	}
}

// GetUser returns a user by ID
// @Summary      Get user
// @Tags         users
// @Produce      json
// @Param        userId path string true "User ID"
// @Success      200 {object} types.Response{data=UserData}
// @Failure      404 {object} types.Response "User not found"
// @Failure      500 {object} types.Response "Error fetching user"
// @Router       /api/users/{userId} [get]
func GetUser(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := deps.UserService.GetUserByID(c.Request.Context(), c.Param("userId"))
		if err != nil {
			types.SendError(c, deps.Logger, err, "Error fetching user")
			return
		}
		types.SendSuccess(c, "User retrieved successfully", UserData{User: user})
	}
}
