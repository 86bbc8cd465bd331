package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StaticCORS applies the fixed CORS header set of the public API routes and
// answers preflight requests directly.
func StaticCORS(methods string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", methods)
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}
