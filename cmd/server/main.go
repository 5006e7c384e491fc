package main

import (
	"context"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	v1 "github.com/ratelink/ratelink/internal/api/v1"
	"github.com/ratelink/ratelink/internal/auth"
	"github.com/ratelink/ratelink/internal/cache"
	"github.com/ratelink/ratelink/internal/config"
	"github.com/ratelink/ratelink/internal/domain/activity"
	"github.com/ratelink/ratelink/internal/domain/business"
	"github.com/ratelink/ratelink/internal/domain/outbox"
	"github.com/ratelink/ratelink/internal/domain/user"
	"github.com/ratelink/ratelink/internal/email"
	"github.com/ratelink/ratelink/internal/gateway"
	stripeintegration "github.com/ratelink/ratelink/internal/integration/stripe"
	"github.com/ratelink/ratelink/internal/logger"
	"github.com/ratelink/ratelink/internal/redis"
	mongorepo "github.com/ratelink/ratelink/internal/repository/mongo"
	"github.com/ratelink/ratelink/internal/rest"
	"github.com/ratelink/ratelink/internal/service"
	"github.com/ratelink/ratelink/internal/webhook"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			newMongoClient,
			mongorepo.NewBusinessRepository,
			mongorepo.NewUserRepository,
			mongorepo.NewActivityRepository,
			mongorepo.NewOutboxRepository,
			newRedisClient,
			auth.NewService,
			auth.NewGuard,
			newGateway,
			email.NewClient,
			email.NewService,
			newServiceParams,
			service.NewSubscriptionService,
			service.NewCheckoutService,
			service.NewMetricsService,
			service.NewReconciler,
			newWebhookProcessor,
			newRouter,
		),
		fx.Invoke(
			initSentry,
			initCache,
			startServer,
			startReconciler,
		),
	)

	app.Run()
}

func newMongoClient(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) (*mongorepo.Client, error) {
	client, err := mongorepo.NewClient(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Disconnect(ctx)
		},
	})
	return client, nil
}

// newRedisClient tolerates a missing redis: the cache layer falls back to
// the in-memory implementation
func newRedisClient(cfg *config.Configuration, log *logger.Logger) *redis.Client {
	if cache.CacheType(cfg.Cache.Type) != cache.CacheTypeRedis {
		return nil
	}
	client, err := redis.NewClient(cfg, log)
	if err != nil {
		log.Warnw("redis unavailable, falling back to in-memory cache", "error", err)
		return nil
	}
	return client
}

func newGateway(cfg *config.Configuration, log *logger.Logger) (gateway.Gateway, *stripeintegration.Client) {
	client := stripeintegration.NewClient(cfg, log)
	return client, client
}

func newServiceParams(
	cfg *config.Configuration,
	log *logger.Logger,
	businessRepo business.Repository,
	userRepo user.Repository,
	activityRepo activity.Repository,
	outboxRepo outbox.Repository,
	gw gateway.Gateway,
	guard *auth.Guard,
	authSvc auth.Service,
	emailSvc *email.Service,
) service.ServiceParams {
	return service.ServiceParams{
		Logger:       log,
		Config:       cfg,
		BusinessRepo: businessRepo,
		UserRepo:     userRepo,
		ActivityRepo: activityRepo,
		OutboxRepo:   outboxRepo,
		Gateway:      gw,
		Guard:        guard,
		Auth:         authSvc,
		Email:        emailSvc,
	}
}

func newWebhookProcessor(
	log *logger.Logger,
	cfg *config.Configuration,
	stripeClient *stripeintegration.Client,
	params service.ServiceParams,
) *webhook.Processor {
	return webhook.NewProcessor(log, cfg, stripeClient, params.BusinessRepo, params.ActivityRepo, params.Gateway, params.Email)
}

func newRouter(
	cfg *config.Configuration,
	log *logger.Logger,
	authSvc auth.Service,
	subscriptionSvc service.SubscriptionService,
	checkoutSvc service.CheckoutService,
	metricsSvc service.MetricsService,
	processor *webhook.Processor,
) *gin.Engine {
	handlers := rest.Handlers{
		Auth:         v1.NewAuthHandler(authSvc, cfg, log),
		Subscription: v1.NewSubscriptionHandler(subscriptionSvc, log),
		Checkout:     v1.NewCheckoutHandler(checkoutSvc, log),
		Metrics:      v1.NewMetricsHandler(metricsSvc, log),
		Webhook:      v1.NewWebhookHandler(processor, log),
	}
	return rest.NewRouter(cfg, log, authSvc, handlers)
}

func initSentry(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) error {
	if !cfg.Sentry.Enabled {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		TracesSampleRate: cfg.Sentry.SampleRate,
	})
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sentry.Flush(2 * time.Second)
			return nil
		},
	})
	log.Infow("sentry initialized", "environment", cfg.Sentry.Environment)
	return nil
}

func initCache(cfg *config.Configuration, redisClient *redis.Client, log *logger.Logger) {
	cache.Initialize(cfg, redisClient, log)
}

func startServer(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger, router *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Infow("starting http server", "address", cfg.Server.Address)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Errorw("http server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func startReconciler(lc fx.Lifecycle, cfg *config.Configuration, reconciler *service.Reconciler) {
	if !cfg.Reconciler.Enabled {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go reconciler.Start(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			reconciler.Stop()
			return nil
		},
	})
}
