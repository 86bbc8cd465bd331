package middleware

import (
	"errors"
	"net/http"

	"frecks-web/internal/delivery/http/response"
	"frecks-web/pkg/apperror"
	"frecks-web/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler turns errors pushed with c.Error into the JSON error envelope.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Err != nil {
				logger.Log.Error("request failed",
					"path", c.FullPath(),
					"status", appErr.Code,
					"request_id", c.GetString("RequestID"),
					"error", appErr.Err,
				)
			}
			response.Error(c, appErr.Code, appErr.Message, appErr.Fields)
			return
		}

		// Never expose internal error details to clients
		logger.Log.Error("unhandled error", "path", c.FullPath(), "request_id", c.GetString("RequestID"), "error", err)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
