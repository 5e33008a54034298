package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body is the error envelope. Successful responses are written bare.
type Body struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Error sends status with an error message.
func Error(c *gin.Context, status int, err string) {
	c.JSON(status, Body{Success: false, Error: err})
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, err string) {
	Error(c, http.StatusBadRequest, err)
}

// NotFound sends 404.
func NotFound(c *gin.Context, err string) {
	Error(c, http.StatusNotFound, err)
}

// TooManyRequests sends 429.
func TooManyRequests(c *gin.Context, err string) {
	Error(c, http.StatusTooManyRequests, err)
}

// BadGateway sends 502 for failed third-party calls.
func BadGateway(c *gin.Context, err string) {
	Error(c, http.StatusBadGateway, err)
}

// Internal sends 500.
func Internal(c *gin.Context, err string) {
	Error(c, http.StatusInternalServerError, err)
}
