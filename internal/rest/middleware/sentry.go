package middleware

import (
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"

	"github.com/ratelink/ratelink/internal/config"
	"github.com/ratelink/ratelink/internal/types"
)

// SentryMiddleware returns a middleware that captures errors and performance data
func SentryMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	if !cfg.Sentry.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}

// SentryUserContextMiddleware tags the Sentry scope with the caller once
// authentication has run. Add it after AuthenticateMiddleware so captured
// events on private routes carry the user.
func SentryUserContextMiddleware(c *gin.Context) {
	hub := sentrygin.GetHubFromContext(c)
	if hub == nil {
		c.Next()
		return
	}
	ctx := c.Request.Context()
	if userID := types.GetUserID(ctx); userID != types.DefaultUserID {
		hub.Scope().SetTag("user_id", userID)
	}
	c.Next()
}
