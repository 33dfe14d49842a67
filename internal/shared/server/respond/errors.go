package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lanshare-backend/internal/shared/telemetry"
)

// ErrorResponse is the error payload: a human message plus a machine code.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	write(c, status, code, message, details, nil)
}

// ServerError sends a 500 whose cause is logged on the http.error line but
// never returned to the client.
func ServerError(c *gin.Context, code, message string, cause error) {
	write(c, http.StatusInternalServerError, code, message, nil, cause)
}

func write(c *gin.Context, status int, code, message string, details interface{}, cause error) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if shareID := c.GetString("shareId"); shareID != "" {
		fields["share_id"] = shareID
	}
	if collectionID := c.GetString("collectionId"); collectionID != "" {
		fields["collection_id"] = collectionID
	}
	if cause != nil {
		fields["error"] = cause
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}
