package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jfiorezelogos/lg-logistica-backend/internal/api/dto"
	ierr "github.com/jfiorezelogos/lg-logistica-backend/internal/errors"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/logger"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/service"
)

type ColetaHandler struct {
	service *service.ReconciliationService
	log     *logger.Logger
}

func NewColetaHandler(svc *service.ReconciliationService, log *logger.Logger) *ColetaHandler {
	return &ColetaHandler{service: svc, log: log}
}

func (h *ColetaHandler) CollectSubscriptions(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.CollectSubscriptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	result, err := h.service.CollectSubscriptionSales(ctx, req.ToParams())
	if err != nil {
		h.log.Error("Failed to collect subscription sales", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ColetaHandler) CollectProducts(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.CollectProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	params, err := req.ToParams()
	if err != nil {
		c.Error(err)
		return
	}

	result, err := h.service.CollectProductSales(ctx, params)
	if err != nil {
		h.log.Error("Failed to collect product sales", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}
