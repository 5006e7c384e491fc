package rest

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/ratelink/ratelink/internal/api/v1"
	"github.com/ratelink/ratelink/internal/auth"
	"github.com/ratelink/ratelink/internal/config"
	"github.com/ratelink/ratelink/internal/logger"
	"github.com/ratelink/ratelink/internal/rest/middleware"
	"github.com/ratelink/ratelink/internal/types"
)

// Handlers aggregates the HTTP handlers wired into the router
type Handlers struct {
	Auth         *v1.AuthHandler
	Subscription *v1.SubscriptionHandler
	Checkout     *v1.CheckoutHandler
	Metrics      *v1.MetricsHandler
	Webhook      *v1.WebhookHandler
}

// NewRouter builds the gin engine with the standard middleware stack and
// all v1 routes
func NewRouter(
	cfg *config.Configuration,
	log *logger.Logger,
	authSvc auth.Service,
	handlers Handlers,
) *gin.Engine {
	if cfg.Deployment.Mode == types.ModeAPI {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.SentryMiddleware(cfg))
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(middleware.ErrorHandlerMiddleware(log))
	router.Use(middleware.RateLimitMiddleware(20, 40))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	public := router.Group("/v1")
	{
		public.POST("/auth/signup", handlers.Auth.SignUp)
		public.POST("/auth/login", handlers.Auth.Login)
		public.POST("/auth/logout", handlers.Auth.Logout)

		// verified by signature, not by caller identity
		public.POST("/webhooks/stripe", handlers.Webhook.HandleStripeWebhook)
	}

	private := router.Group("/v1")
	private.Use(middleware.AuthenticateMiddleware(authSvc, log))
	private.Use(middleware.SentryUserContextMiddleware)
	{
		private.GET("/businesses/:id/subscription", handlers.Subscription.GetSubscription)
		private.POST("/businesses/:id/subscription/change-plan", handlers.Subscription.ChangePlan)
		private.POST("/businesses/:id/subscription/pause", handlers.Subscription.Pause)
		private.POST("/businesses/:id/subscription/resume", handlers.Subscription.Resume)
		private.POST("/businesses/:id/subscription/cancel", handlers.Subscription.Cancel)
		private.POST("/businesses/:id/subscription/renew", handlers.Subscription.Renew)
		private.POST("/businesses/:id/subscription/confirm", handlers.Subscription.ConfirmPayment)
		private.POST("/businesses/:id/subscription/custom-date", handlers.Subscription.SetCustomDate)

		private.POST("/businesses/:id/subscription/setup-intent", handlers.Checkout.CreateSetupIntent)
		private.POST("/businesses/:id/subscription/payment-intent", handlers.Checkout.CreatePaymentIntent)

		private.GET("/admin/metrics", handlers.Metrics.GetMetrics)
	}

	return router
}
