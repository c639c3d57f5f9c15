// internal/pkg/response/response.go
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	xerrors "console-agent/internal/pkg/errors"
)

// Response defines the standard API response format.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a successful response with a message and optional data.
func Success(c *gin.Context, status int, message string, data interface{}) {
	if status == 0 {
		status = http.StatusOK
	}

	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends a standardized error response.
func Error(c *gin.Context, code int, message string, err error) {
	c.Abort()

	resp := Response{
		Success: false,
		Message: message,
	}
	if err != nil {
		resp.Error = err.Error()
	}

	c.JSON(code, resp)
}

// FromError picks the HTTP status from the failure category and sends a
// human-readable message; the raw error text stays in the envelope's error
// field for debugging, never as the message the UI shows.
func FromError(c *gin.Context, err error) {
	switch {
	case xerrors.Is(err, xerrors.ErrAuth):
		Error(c, http.StatusUnauthorized, "your session is no longer valid, please sign in again", err)
	case xerrors.Is(err, xerrors.ErrValidation):
		Error(c, http.StatusBadRequest, "the submitted values were rejected", err)
	case xerrors.Is(err, xerrors.ErrRateLimit):
		Error(c, http.StatusTooManyRequests, "too many requests, slow down", err)
	case xerrors.Is(err, xerrors.ErrNetwork):
		Error(c, http.StatusBadGateway, "the backend is unreachable", err)
	case xerrors.Is(err, xerrors.ErrNotFound):
		Error(c, http.StatusNotFound, "not found", err)
	case xerrors.Is(err, xerrors.ErrDecode):
		Error(c, http.StatusUnauthorized, "received a malformed token, please sign in again", err)
	default:
		Error(c, http.StatusInternalServerError, "something went wrong", err)
	}
}

// ValidationError sends a 400 Bad Request response for invalid input.
func ValidationError(c *gin.Context, message string, err error) {
	Error(c, http.StatusBadRequest, message, err)
}

// Unauthorized sends a 401 Unauthorized response.
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message, nil)
}

// NotFound sends a 404 Not Found response.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message, nil)
}
