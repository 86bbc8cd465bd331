package response

import (
	"github.com/gin-gonic/gin"
)

// Message is the success envelope of action routes ({success, message}).
type Message struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Success sends {success: true, message}.
func Success(c *gin.Context, code int, message string) {
	c.JSON(code, Message{Success: true, Message: message})
}

// Error sends {error: message} merged with route-specific default fields.
func Error(c *gin.Context, code int, message string, fields map[string]any) {
	body := gin.H{"error": message}
	for k, v := range fields {
		body[k] = v
	}
	if reqID := c.GetString("RequestID"); reqID != "" {
		c.Header("X-Request-ID", reqID)
	}
	c.JSON(code, body)
}
