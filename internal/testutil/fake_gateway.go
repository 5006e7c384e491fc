package testutil

import (
	"context"
	"sync"

	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/gateway"
	"github.com/ratelink/ratelink/internal/types"
)

// FakeGateway implements gateway.Gateway for tests. Every call is counted,
// and any method can be forced to fail by name.
type FakeGateway struct {
	mu sync.Mutex

	calls  map[string]int
	errors map[string]error

	Customers      map[string]*gateway.Customer
	Subscriptions  map[string]*gateway.Subscription
	PaymentIntents map[string]*gateway.PaymentIntent
	Prices         map[string]*gateway.Price
}

// NewFakeGateway creates an empty fake gateway
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		calls:          make(map[string]int),
		errors:         make(map[string]error),
		Customers:      make(map[string]*gateway.Customer),
		Subscriptions:  make(map[string]*gateway.Subscription),
		PaymentIntents: make(map[string]*gateway.PaymentIntent),
		Prices:         make(map[string]*gateway.Price),
	}
}

// FailWith makes the named method return err on every call
func (g *FakeGateway) FailWith(method string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.errors[method] = err
}

// CallCount reports how many times the named method was invoked
func (g *FakeGateway) CallCount(method string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[method]
}

func (g *FakeGateway) record(method string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[method]++
	return g.errors[method]
}

func (g *FakeGateway) EnsureCustomer(ctx context.Context, email, name string, metadata map[string]string) (*gateway.Customer, error) {
	if err := g.record("EnsureCustomer"); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.Customers[email]; ok {
		return c, nil
	}
	c := &gateway.Customer{
		ID:    types.GenerateUUIDWithPrefix("cus"),
		Email: email,
		Name:  name,
	}
	g.Customers[email] = c
	return c, nil
}

func (g *FakeGateway) CreateSetupIntent(ctx context.Context, customerID string) (*gateway.SetupIntent, error) {
	if err := g.record("CreateSetupIntent"); err != nil {
		return nil, err
	}
	return &gateway.SetupIntent{
		ID:           types.GenerateUUIDWithPrefix("seti"),
		ClientSecret: "seti_secret_test",
		Status:       "requires_payment_method",
	}, nil
}

func (g *FakeGateway) CreatePaymentIntent(ctx context.Context, customerID string, amount int64, currency string, metadata map[string]string) (*gateway.PaymentIntent, error) {
	if err := g.record("CreatePaymentIntent"); err != nil {
		return nil, err
	}
	pi := &gateway.PaymentIntent{
		ID:           types.GenerateUUIDWithPrefix("pi"),
		ClientSecret: "pi_secret_test",
		Amount:       amount,
		Currency:     currency,
		Status:       "requires_payment_method",
		Metadata:     metadata,
	}
	g.mu.Lock()
	g.PaymentIntents[pi.ID] = pi
	g.mu.Unlock()
	return pi, nil
}

func (g *FakeGateway) GetPaymentIntent(ctx context.Context, id string) (*gateway.PaymentIntent, error) {
	if err := g.record("GetPaymentIntent"); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	pi, ok := g.PaymentIntents[id]
	if !ok {
		return nil, ierr.NewError("payment intent not found").Mark(ierr.ErrNotFound)
	}
	return pi, nil
}

func (g *FakeGateway) GetSubscription(ctx context.Context, id string) (*gateway.Subscription, error) {
	if err := g.record("GetSubscription"); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	sub, ok := g.Subscriptions[id]
	if !ok {
		return nil, ierr.NewError("subscription not found").Mark(ierr.ErrNotFound)
	}
	return sub, nil
}

func (g *FakeGateway) PauseCollection(ctx context.Context, subscriptionID string) (*gateway.Subscription, error) {
	if err := g.record("PauseCollection"); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	sub, ok := g.Subscriptions[subscriptionID]
	if !ok {
		return nil, ierr.NewError("subscription not found").Mark(ierr.ErrNotFound)
	}
	sub.Paused = true
	return sub, nil
}

func (g *FakeGateway) ResumeCollection(ctx context.Context, subscriptionID string) (*gateway.Subscription, error) {
	if err := g.record("ResumeCollection"); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	sub, ok := g.Subscriptions[subscriptionID]
	if !ok {
		return nil, ierr.NewError("subscription not found").Mark(ierr.ErrNotFound)
	}
	sub.Paused = false
	return sub, nil
}

func (g *FakeGateway) ReactivateSubscription(ctx context.Context, subscriptionID string) (*gateway.Subscription, error) {
	if err := g.record("ReactivateSubscription"); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	sub, ok := g.Subscriptions[subscriptionID]
	if !ok {
		return nil, ierr.NewError("subscription not found").Mark(ierr.ErrNotFound)
	}
	sub.CancelAtPeriodEnd = false
	sub.Status = "active"
	return sub, nil
}

func (g *FakeGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	if err := g.record("CancelSubscription"); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if sub, ok := g.Subscriptions[subscriptionID]; ok {
		sub.Status = "canceled"
	}
	return nil
}

func (g *FakeGateway) GetPrice(ctx context.Context, priceID string) (*gateway.Price, error) {
	if err := g.record("GetPrice"); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	price, ok := g.Prices[priceID]
	if !ok {
		return nil, ierr.NewError("price not found").Mark(ierr.ErrNotFound)
	}
	return price, nil
}
