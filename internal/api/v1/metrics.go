package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/logger"
	"github.com/ratelink/ratelink/internal/service"
	"github.com/ratelink/ratelink/internal/types"
)

type MetricsHandler struct {
	service service.MetricsService
	log     *logger.Logger
}

func NewMetricsHandler(svc service.MetricsService, log *logger.Logger) *MetricsHandler {
	return &MetricsHandler{
		service: svc,
		log:     log,
	}
}

// @Summary Platform metrics
// @Description MRR and business counts, recomputed on every call
// @Tags Metrics
// @Produce json
// @Success 200 {object} dto.MetricsResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Router /admin/metrics [get]
func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil || identity.Role != types.RoleSuperAdmin {
		c.Error(ierr.NewError("metrics require super_admin role").
			WithHint("You do not have permission to view platform metrics").
			Mark(ierr.ErrPermissionDenied))
		return
	}

	resp, err := h.service.GetMetrics(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
