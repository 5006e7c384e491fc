package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ratelink/ratelink/internal/api/dto"
	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/logger"
	"github.com/ratelink/ratelink/internal/service"
)

type SubscriptionHandler struct {
	service service.SubscriptionService
	log     *logger.Logger
}

func NewSubscriptionHandler(svc service.SubscriptionService, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		service: svc,
		log:     log,
	}
}

// @Summary Get the subscription for a business
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Business ID"
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /businesses/{id}/subscription [get]
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	businessID, err := businessIDParam(c)
	if err != nil {
		c.Error(err)
		return
	}

	resp, err := h.service.GetSubscription(c.Request.Context(), identityFromContext(c), businessID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Change the subscription plan
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Business ID"
// @Param request body dto.ChangePlanRequest true "New plan"
// @Success 200 {object} dto.ChangePlanResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Router /businesses/{id}/subscription/change-plan [post]
func (h *SubscriptionHandler) ChangePlan(c *gin.Context) {
	businessID, err := businessIDParam(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req dto.ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ChangePlan(c.Request.Context(), identityFromContext(c), businessID, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Pause invoice collection
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Business ID"
// @Success 200 {object} dto.SubscriptionStatusResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Router /businesses/{id}/subscription/pause [post]
func (h *SubscriptionHandler) Pause(c *gin.Context) {
	businessID, err := businessIDParam(c)
	if err != nil {
		c.Error(err)
		return
	}

	resp, err := h.service.Pause(c.Request.Context(), identityFromContext(c), businessID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Resume a paused subscription
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Business ID"
// @Success 200 {object} dto.SubscriptionStatusResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Router /businesses/{id}/subscription/resume [post]
func (h *SubscriptionHandler) Resume(c *gin.Context) {
	businessID, err := businessIDParam(c)
	if err != nil {
		c.Error(err)
		return
	}

	resp, err := h.service.Resume(c.Request.Context(), identityFromContext(c), businessID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Cancel the subscription
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Business ID"
// @Param request body dto.CancelSubscriptionRequest false "Cancellation reason"
// @Success 200 {object} dto.SubscriptionStatusResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Router /businesses/{id}/subscription/cancel [post]
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	businessID, err := businessIDParam(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req dto.CancelSubscriptionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(ierr.WithError(err).
				WithHint("Invalid request format").
				Mark(ierr.ErrValidation))
			return
		}
	}

	resp, err := h.service.Cancel(c.Request.Context(), identityFromContext(c), businessID, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Renew or reactivate the subscription
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Business ID"
// @Success 200 {object} dto.SubscriptionStatusResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Router /businesses/{id}/subscription/renew [post]
func (h *SubscriptionHandler) Renew(c *gin.Context) {
	businessID, err := businessIDParam(c)
	if err != nil {
		c.Error(err)
		return
	}

	resp, err := h.service.Renew(c.Request.Context(), identityFromContext(c), businessID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Confirm a completed payment and activate the plan
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Business ID"
// @Param request body dto.ConfirmPaymentRequest true "Payment intent reference"
// @Success 200 {object} dto.ConfirmPaymentResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Router /businesses/{id}/subscription/confirm [post]
func (h *SubscriptionHandler) ConfirmPayment(c *gin.Context) {
	businessID, err := businessIDParam(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req dto.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ConfirmPayment(c.Request.Context(), identityFromContext(c), businessID, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Override the subscription end date
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Business ID"
// @Param request body dto.SetCustomDateRequest true "New end date"
// @Success 200 {object} dto.SetCustomDateResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Router /businesses/{id}/subscription/custom-date [post]
func (h *SubscriptionHandler) SetCustomDate(c *gin.Context) {
	businessID, err := businessIDParam(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req dto.SetCustomDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.SetCustomDate(c.Request.Context(), identityFromContext(c), businessID, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
