package dto

import (
	"time"

	ierr "github.com/jfiorezelogos/lg-logistica-backend/internal/errors"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/service"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/types"
)

// CollectSubscriptionsRequest starts a subscription collection run.
type CollectSubscriptionsRequest struct {
	Year        int    `json:"ano" binding:"required"`
	Month       int    `json:"mes" binding:"required"`
	PeriodMode  string `json:"modo_periodo"`
	BoxName     string `json:"box_nome"`
	Periodicity string `json:"periodicidade" binding:"required"`
	PlanilhaID  string `json:"planilha_id"`
}

func (r *CollectSubscriptionsRequest) Validate() error {
	if r.Year < 1900 || r.Year > 2100 {
		return ierr.NewError("invalid year").
			WithHintf("Year must be between 1900 and 2100, got %d", r.Year).
			Mark(ierr.ErrValidation)
	}
	if r.Month < 1 || r.Month > 12 {
		return ierr.NewError("invalid month").
			WithHintf("Month must be between 1 and 12, got %d", r.Month).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *CollectSubscriptionsRequest) ToParams() service.SubscriptionRunParams {
	return service.SubscriptionRunParams{
		Year:        r.Year,
		Month:       time.Month(r.Month),
		PeriodMode:  types.ParsePeriodMode(r.PeriodMode),
		BoxName:     r.BoxName,
		Periodicity: types.ParsePeriodicity(r.Periodicity),
		PlanilhaID:  r.PlanilhaID,
	}
}

// CollectProductsRequest starts a product collection run.
type CollectProductsRequest struct {
	Start       string `json:"data_ini" binding:"required"`
	End         string `json:"data_fim" binding:"required"`
	ProductName string `json:"nome_produto"`
	PlanilhaID  string `json:"planilha_id"`
}

func (r *CollectProductsRequest) ToParams() (service.ProductRunParams, error) {
	start, err := time.Parse("2006-01-02", r.Start)
	if err != nil {
		return service.ProductRunParams{}, ierr.WithError(err).
			WithHint("data_ini must be formatted YYYY-MM-DD").
			Mark(ierr.ErrValidation)
	}
	end, err := time.Parse("2006-01-02", r.End)
	if err != nil {
		return service.ProductRunParams{}, ierr.WithError(err).
			WithHint("data_fim must be formatted YYYY-MM-DD").
			Mark(ierr.ErrValidation)
	}
	return service.ProductRunParams{
		Start:       start.UTC(),
		End:         end.UTC(),
		ProductName: r.ProductName,
		PlanilhaID:  r.PlanilhaID,
	}, nil
}

// CollectResponse mirrors service.CollectResult for the API surface.
type CollectResponse = service.CollectResult
