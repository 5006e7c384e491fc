package v1

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/logger"
	"github.com/ratelink/ratelink/internal/types"
	"github.com/ratelink/ratelink/internal/webhook"
)

const webhookBodyLimit = 1 << 20 // 1 MiB

type WebhookHandler struct {
	processor *webhook.Processor
	log       *logger.Logger
}

func NewWebhookHandler(processor *webhook.Processor, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		log:       log,
	}
}

// @Summary Stripe webhook endpoint
// @Description Verifies the signature and ingests processor events
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]bool
// @Failure 400 {object} ierr.ErrorResponse
// @Router /webhooks/stripe [post]
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, webhookBodyLimit)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Failed to read webhook body").
			Mark(ierr.ErrValidation))
		return
	}

	signature := c.GetHeader(types.HeaderStripeSignature)
	if signature == "" {
		c.Error(ierr.NewError("missing stripe signature header").
			WithHint("Webhook requests must be signed").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.processor.Process(c.Request.Context(), payload, signature); err != nil {
		// only signature and parse failures reach here; processing
		// failures are logged inside the processor and acknowledged
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
