package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/ratelink/ratelink/internal/types"
)

// RequestIDMiddleware ensures every request has an id, propagated through
// the request context and echoed back in the response header
func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST)
	}

	ctx := context.WithValue(c.Request.Context(), types.CtxRequestID, requestID)
	c.Request = c.Request.WithContext(ctx)
	c.Writer.Header().Set(types.HeaderRequestID, requestID)

	c.Next()
}
