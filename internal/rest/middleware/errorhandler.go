package middleware

import (
	"github.com/gin-gonic/gin"

	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/logger"
)

// ErrorHandlerMiddleware converts errors attached to the gin context into
// a single structured error response. Handlers call c.Error(err) and return;
// status codes come from the error taxonomy.
func ErrorHandlerMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := ierr.HTTPStatus(err)

		if status >= 500 {
			log.Errorw("request failed",
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"status", status,
				"error", err,
			)
		}

		if !c.Writer.Written() {
			c.JSON(status, ierr.NewErrorResponse(err))
		}
	}
}
