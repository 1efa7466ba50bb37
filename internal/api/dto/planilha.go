package dto

import (
	"strings"

	ierr "github.com/jfiorezelogos/lg-logistica-backend/internal/errors"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/storage/planilha"
)

// CreatePlanilhaRequest creates an empty planilha under a
// client-chosen id.
type CreatePlanilhaRequest struct {
	PlanilhaID string         `json:"planilha_id" binding:"required"`
	Meta       map[string]any `json:"meta"`
}

func (r *CreatePlanilhaRequest) Validate() error {
	if r.PlanilhaID == "" {
		return ierr.NewError("planilha_id is required").
			WithHint("Provide a planilha_id").
			Mark(ierr.ErrValidation)
	}
	// The id becomes a filename under the store directory.
	if strings.ContainsAny(r.PlanilhaID, "/\\") || strings.Contains(r.PlanilhaID, "..") {
		return ierr.NewError("invalid planilha_id").
			WithHint("planilha_id must not contain path separators").
			Mark(ierr.ErrValidation)
	}
	return nil
}

type CreatePlanilhaResponse struct {
	PlanilhaID string `json:"planilha_id"`
	CreatedAt  string `json:"created_at"`
}

// PlanilhaResponse is the full stored document.
type PlanilhaResponse struct {
	PlanilhaID string         `json:"planilha_id"`
	CreatedAt  string         `json:"created_at"`
	UpdatedAt  string         `json:"updated_at"`
	RowCount   int            `json:"row_count"`
	Meta       map[string]any `json:"meta"`
	Lines      []planilha.Row `json:"lines"`
}

func ToPlanilhaResponse(doc *planilha.Document) *PlanilhaResponse {
	return &PlanilhaResponse{
		PlanilhaID: doc.PlanilhaID,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
		RowCount:   doc.RowCount,
		Meta:       doc.Meta,
		Lines:      doc.Lines,
	}
}

type ListPlanilhasResponse struct {
	PlanilhaIDs []string `json:"planilha_ids"`
}
