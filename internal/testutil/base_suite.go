package testutil

import (
	"context"

	"github.com/stretchr/testify/suite"

	"github.com/ratelink/ratelink/internal/config"
	"github.com/ratelink/ratelink/internal/logger"
)

// Stores bundles the in-memory repositories handed to services under test
type Stores struct {
	BusinessRepo *InMemoryBusinessStore
	UserRepo     *InMemoryUserStore
	ActivityRepo *InMemoryActivityStore
	OutboxRepo   *InMemoryOutboxStore
}

// BaseServiceTestSuite provides fresh stores, config, logger and a fake
// gateway for every test
type BaseServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	cfg     *config.Configuration
	log     *logger.Logger
	stores  Stores
	gateway *FakeGateway
}

// SetupTest initializes the test environment
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.cfg = config.GetDefaultConfig()
	s.log = logger.GetLogger()
	s.stores = Stores{
		BusinessRepo: NewInMemoryBusinessStore(),
		UserRepo:     NewInMemoryUserStore(),
		ActivityRepo: NewInMemoryActivityStore(),
		OutboxRepo:   NewInMemoryOutboxStore(),
	}
	s.gateway = NewFakeGateway()
}

func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.cfg
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.log
}

func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

func (s *BaseServiceTestSuite) GetGateway() *FakeGateway {
	return s.gateway
}
