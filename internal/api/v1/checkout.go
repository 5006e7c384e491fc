package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ratelink/ratelink/internal/api/dto"
	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/logger"
	"github.com/ratelink/ratelink/internal/service"
)

type CheckoutHandler struct {
	service service.CheckoutService
	log     *logger.Logger
}

func NewCheckoutHandler(svc service.CheckoutService, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: svc,
		log:     log,
	}
}

// @Summary Create a setup intent for saving a payment method
// @Tags Checkout
// @Produce json
// @Param id path string true "Business ID"
// @Success 201 {object} dto.SetupIntentResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Router /businesses/{id}/subscription/setup-intent [post]
func (h *CheckoutHandler) CreateSetupIntent(c *gin.Context) {
	businessID, err := businessIDParam(c)
	if err != nil {
		c.Error(err)
		return
	}

	resp, err := h.service.CreateSetupIntent(c.Request.Context(), identityFromContext(c), businessID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Create a payment intent for a plan purchase
// @Tags Checkout
// @Accept json
// @Produce json
// @Param id path string true "Business ID"
// @Param request body dto.CreatePaymentIntentRequest true "Plan to purchase"
// @Success 201 {object} dto.PaymentIntentResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Router /businesses/{id}/subscription/payment-intent [post]
func (h *CheckoutHandler) CreatePaymentIntent(c *gin.Context) {
	var req dto.CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	businessID, err := businessIDParam(c)
	if err != nil {
		c.Error(err)
		return
	}

	resp, err := h.service.CreatePaymentIntent(c.Request.Context(), identityFromContext(c), businessID, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}
