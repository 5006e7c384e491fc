package service

import (
	"github.com/ratelink/ratelink/internal/auth"
	"github.com/ratelink/ratelink/internal/config"
	"github.com/ratelink/ratelink/internal/domain/activity"
	"github.com/ratelink/ratelink/internal/domain/business"
	"github.com/ratelink/ratelink/internal/domain/outbox"
	"github.com/ratelink/ratelink/internal/domain/user"
	"github.com/ratelink/ratelink/internal/email"
	"github.com/ratelink/ratelink/internal/gateway"
	"github.com/ratelink/ratelink/internal/logger"
)

// ServiceParams carries the common dependencies injected into every
// service. Constructed once at process start and shared; services never
// build their own clients.
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	BusinessRepo business.Repository
	UserRepo     user.Repository
	ActivityRepo activity.Repository
	OutboxRepo   outbox.Repository

	Gateway gateway.Gateway
	Guard   *auth.Guard
	Auth    auth.Service
	Email   *email.Service
}
