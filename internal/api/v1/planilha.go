package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jfiorezelogos/lg-logistica-backend/internal/api/dto"
	ierr "github.com/jfiorezelogos/lg-logistica-backend/internal/errors"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/logger"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/storage/planilha"
)

type PlanilhaHandler struct {
	store *planilha.Store
	log   *logger.Logger
}

func NewPlanilhaHandler(store *planilha.Store, log *logger.Logger) *PlanilhaHandler {
	return &PlanilhaHandler{store: store, log: log}
}

func (h *PlanilhaHandler) CreatePlanilha(c *gin.Context) {
	var req dto.CreatePlanilhaRequest
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

	if err := h.store.Create(req.PlanilhaID, req.Meta); err != nil {
		h.log.Error("Failed to create planilha", "error", err)
		c.Error(err)
		return
	}

	doc, err := h.store.Load(req.PlanilhaID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreatePlanilhaResponse{
		PlanilhaID: doc.PlanilhaID,
		CreatedAt:  doc.CreatedAt,
	})
}

func (h *PlanilhaHandler) GetPlanilha(c *gin.Context) {
	id := c.Param("id")
	doc, err := h.store.Load(id)
	if err != nil {
		h.log.Error("Failed to load planilha", "planilha_id", id, "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPlanilhaResponse(doc))
}

func (h *PlanilhaHandler) ListPlanilhas(c *gin.Context) {
	ids, err := h.store.List()
	if err != nil {
		h.log.Error("Failed to list planilhas", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.ListPlanilhasResponse{PlanilhaIDs: ids})
}
