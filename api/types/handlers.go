package types

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	apperrors "github.com/killallgit/segments-api/pkg/errors"
	"github.com/killallgit/segments-api/pkg/logger"
)

func init() {
	// Numbers in free-form fields keep their exact digits instead of becoming float64
	binding.EnableDecoderUseNumber = true
}

// Handler utility functions to reduce duplication across handlers

// BindJSONOrError attempts to bind JSON request body to target struct
// Returns false and sends error response if binding fails
func BindJSONOrError(c *gin.Context, target interface{}) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		if errors.Is(err, io.EOF) {
			SendBadRequest(c, "request body is required")
			return false
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, Response{Success: false, Message: "Request body too large"})
			return false
		}
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Message: "Invalid request body",
			Errors:  []string{err.Error()},
		})
		return false
	}
	return true
}

// SendBadRequest sends a standardized bad request response
func SendBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Message: message})
}

// SendNotFound sends a standardized not found response
func SendNotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Response{Success: false, Message: message})
}

// SendUnauthorized sends a standardized unauthorized response
func SendUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, Response{Success: false, Message: message})
}

// SendInternalError sends a standardized internal server error response
func SendInternalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, Response{Success: false, Message: message})
}

// SendError maps err to its HTTP status. Client errors carry their message;
// anything else is logged and answered with fallback so internals never leak.
func SendError(c *gin.Context, log *logger.Logger, err error, fallback string) {
	if appErr, ok := apperrors.As(err); ok && appErr.IsClientError() {
		c.JSON(appErr.GetHTTPCode(), Response{Success: false, Message: appErr.Message})
		return
	}

	if log != nil {
		log.Error(fallback,
			"error", err,
			"method", c.Request.Method,
			"path", c.FullPath())
	}
	SendInternalError(c, fallback)
}

// SendSuccess sends a standardized success response with data
func SendSuccess(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data})
}

// SendCreated sends a standardized created response with data
func SendCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Message: message, Data: data})
}
