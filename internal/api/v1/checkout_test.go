package v1

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/ratelink/ratelink/internal/api/dto"
	"github.com/ratelink/ratelink/internal/auth"
	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/logger"
	"github.com/ratelink/ratelink/internal/types"
)

type stubCheckoutService struct {
	setupBusinessID   string
	paymentBusinessID string
	paymentReq        dto.CreatePaymentIntentRequest
}

func (s *stubCheckoutService) CreateSetupIntent(ctx context.Context, identity *auth.Identity, businessID string) (*dto.SetupIntentResponse, error) {
	s.setupBusinessID = businessID
	return &dto.SetupIntentResponse{
		SetupIntentID: "seti_test",
		ClientSecret:  "seti_test_secret",
		CustomerID:    "cus_test",
	}, nil
}

func (s *stubCheckoutService) CreatePaymentIntent(ctx context.Context, identity *auth.Identity, businessID string, req dto.CreatePaymentIntentRequest) (*dto.PaymentIntentResponse, error) {
	s.paymentBusinessID = businessID
	s.paymentReq = req
	return &dto.PaymentIntentResponse{
		PaymentIntentID: "pi_test",
		ClientSecret:    "pi_test_secret",
		Amount:          2900,
		Currency:        "usd",
	}, nil
}

func newCheckoutTestContext(t *testing.T, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestCreateSetupIntentUsesPathBusinessID(t *testing.T) {
	stub := &stubCheckoutService{}
	h := NewCheckoutHandler(stub, logger.GetLogger())

	c, w := newCheckoutTestContext(t, nil)
	c.Params = gin.Params{{Key: "id", Value: "biz_checkout"}}

	h.CreateSetupIntent(c)

	assert.Empty(t, c.Errors)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "biz_checkout", stub.setupBusinessID)
}

func TestCreateSetupIntentMissingBusinessID(t *testing.T) {
	stub := &stubCheckoutService{}
	h := NewCheckoutHandler(stub, logger.GetLogger())

	c, _ := newCheckoutTestContext(t, nil)

	h.CreateSetupIntent(c)

	assert.NotEmpty(t, c.Errors)
	assert.True(t, ierr.IsValidation(c.Errors.Last().Err))
	assert.Empty(t, stub.setupBusinessID)
}

func TestCreatePaymentIntentUsesPathBusinessID(t *testing.T) {
	stub := &stubCheckoutService{}
	h := NewCheckoutHandler(stub, logger.GetLogger())

	c, w := newCheckoutTestContext(t, []byte(`{"plan":"premium"}`))
	c.Params = gin.Params{{Key: "id", Value: "biz_checkout"}}

	h.CreatePaymentIntent(c)

	assert.Empty(t, c.Errors)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "biz_checkout", stub.paymentBusinessID)
	assert.Equal(t, types.PlanPremium, stub.paymentReq.Plan)
}

func TestCreatePaymentIntentMissingBusinessID(t *testing.T) {
	stub := &stubCheckoutService{}
	h := NewCheckoutHandler(stub, logger.GetLogger())

	c, _ := newCheckoutTestContext(t, []byte(`{"plan":"premium"}`))

	h.CreatePaymentIntent(c)

	assert.NotEmpty(t, c.Errors)
	assert.True(t, ierr.IsValidation(c.Errors.Last().Err))
	assert.Empty(t, stub.paymentBusinessID)
}
