// Package service orchestrates collection runs: it assembles the run
// context, fans fetch tasks out, materializes spreadsheet lines and
// persists them.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jfiorezelogos/lg-logistica-backend/internal/config"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/domain/catalog"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/domain/rules"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/engine"
	ierr "github.com/jfiorezelogos/lg-logistica-backend/internal/errors"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/guru"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/logger"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/period"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/scheduler"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/storage/planilha"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/types"
)

// SubscriptionRunParams select what a subscription collection covers.
type SubscriptionRunParams struct {
	Year        int
	Month       time.Month
	PeriodMode  types.PeriodMode
	BoxName     string
	Periodicity types.Periodicity
	// PlanilhaID, when set, appends the run's lines to that planilha.
	PlanilhaID string
}

// ProductRunParams select what a product collection covers.
type ProductRunParams struct {
	Start       time.Time
	End         time.Time
	ProductName string
	PlanilhaID  string
}

// CollectResult is the outcome of one collection run. Failures lists
// the fetch tasks abandoned after retries, so callers can tell an
// empty slice apart from one that simply had no sales.
type CollectResult struct {
	Lines        []engine.Line   `json:"linhas"`
	Counters     engine.Counters `json:"contagem,omitempty"`
	Transactions int             `json:"transacoes"`
	Tasks        int             `json:"tarefas"`
	Added        int             `json:"adicionados"`
	Updated      int             `json:"atualizados"`
	Failures     []string        `json:"falhas,omitempty"`
}

// ReconciliationService wires the catalog, rules, fetch scheduler and
// planilha store into the collection operations the API exposes.
type ReconciliationService struct {
	cfg         *config.Configuration
	catalogRepo catalog.Repository
	rulesRepo   rules.Repository
	sched       *scheduler.Scheduler
	store       *planilha.Store
	log         *logger.Logger
}

func NewReconciliationService(
	cfg *config.Configuration,
	catalogRepo catalog.Repository,
	rulesRepo rules.Repository,
	sched *scheduler.Scheduler,
	store *planilha.Store,
	log *logger.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		cfg:         cfg,
		catalogRepo: catalogRepo,
		rulesRepo:   rulesRepo,
		sched:       sched,
		store:       store,
		log:         log,
	}
}

// BuildSubscriptionRun validates the selection and assembles the run
// context shared by every charge priced in it.
func (s *ReconciliationService) BuildSubscriptionRun(params SubscriptionRunParams) (*engine.RunContext, *catalog.Catalog, error) {
	if params.Year < 1900 {
		return nil, nil, ierr.NewError("invalid year").
			WithHintf("Year %d is out of range", params.Year).
			Mark(ierr.ErrValidation)
	}

	per := params.Periodicity
	if per != types.PeriodicityMonthly && per != types.PeriodicityBimonthly {
		per = types.PeriodicityBimonthly
	}
	mode := params.PeriodMode
	if mode != types.PeriodModeAll {
		mode = types.PeriodModeSelected
	}

	window, periodIdx, err := period.SubscriptionPeriod(params.Year, params.Month, per)
	if err != nil {
		return nil, nil, err
	}

	cat, err := s.catalogRepo.Load()
	if err != nil {
		return nil, nil, err
	}

	if params.BoxName != "" && cat.IsUnavailable(params.BoxName, "") {
		return nil, nil, ierr.NewError("box unavailable").
			WithHintf("Box %q is flagged unavailable", params.BoxName).
			Mark(ierr.ErrInvalidOperation)
	}

	rs, err := s.rulesRepo.Load()
	if err != nil {
		return nil, nil, err
	}

	_, allPlanIDs := cat.TierProductIDs(per)

	rc := &engine.RunContext{
		Mode:           types.ModeSubscriptions,
		Periodicity:    per,
		PeriodMode:     mode,
		Window:         window,
		Period:         periodIdx,
		BoxName:        params.BoxName,
		Rules:          rs,
		EmbeddedOffers: rules.EmbeddedOffers(rs),
		ValidPlanIDs:   allPlanIDs,
	}
	return rc, cat, nil
}

// subscriptionTasks builds the fetch task list: every plan id of the
// run's periodicity, crossed with the windows its tier must cover.
// Sub-annual tiers only span the selected period; multi-year tiers
// additionally look back over their whole duration when the run asks
// for every period.
func (s *ReconciliationService) subscriptionTasks(rc *engine.RunContext, cat *catalog.Catalog) []scheduler.Task {
	byTier, _ := cat.TierProductIDs(rc.Periodicity)
	floor := s.cfg.Guru.FloorDate()

	selected := period.SplitQuarterBlocks(rc.Window.Start, rc.Window.End)

	windowsFor := func(tier types.SubscriptionTier) []period.Window {
		if !tier.IsMultiYear() || rc.PeriodMode == types.PeriodModeSelected {
			return selected
		}
		lookback := period.MultiYearWindow(rc.Window.End, tier.Years(), floor)
		return period.SplitQuarterBlocks(lookback.Start, lookback.End)
	}

	var tasks []scheduler.Task
	for _, tier := range types.AllTiers() {
		ids := byTier[tier]
		if len(ids) == 0 {
			continue
		}
		for _, w := range windowsFor(tier) {
			for _, pid := range ids {
				tasks = append(tasks, scheduler.Task{
					Label: fmt.Sprintf("%s %s", tier, w),
					Params: guru.FetchParams{
						ProductID: pid,
						Window:    w,
						Tier:      tier,
					},
				})
			}
		}
	}
	return tasks
}

// CollectSubscriptionSales runs a full subscription collection:
// fetch, price, materialize and optionally persist.
func (s *ReconciliationService) CollectSubscriptionSales(ctx context.Context, params SubscriptionRunParams) (*CollectResult, error) {
	rc, cat, err := s.BuildSubscriptionRun(params)
	if err != nil {
		return nil, err
	}

	tasks := s.subscriptionTasks(rc, cat)
	s.log.Infow("subscription collection started",
		"year", params.Year, "month", int(params.Month),
		"periodicity", rc.Periodicity, "period_mode", rc.PeriodMode, "tasks", len(tasks))

	txs, failed := s.sched.Run(ctx, tasks, func(label string, done, total int) {
		s.log.Debugw("collection progress", "label", label, "done", done, "total", total)
	})

	calc := engine.NewCalculator(cat, s.log)
	mat := engine.NewMaterializer(calc, cat, s.log)
	lines, counters := mat.BuildSubscriptionLines(txs, rc)

	result := &CollectResult{
		Lines:        lines,
		Counters:     counters,
		Transactions: len(txs),
		Tasks:        len(tasks),
		Failures:     failureLabels(failed),
	}
	if err := s.persist(params.PlanilhaID, lines, result); err != nil {
		return nil, err
	}

	s.log.Infow("subscription collection finished",
		"transactions", len(txs), "lines", len(lines),
		"added", result.Added, "updated", result.Updated)
	return result, nil
}

// CollectProductSales runs a product collection over an explicit date
// range, optionally restricted to one product.
func (s *ReconciliationService) CollectProductSales(ctx context.Context, params ProductRunParams) (*CollectResult, error) {
	if params.End.Before(params.Start) {
		return nil, ierr.NewError("invalid range").
			WithHint("Start date must not be after end date").
			Mark(ierr.ErrValidation)
	}

	cat, err := s.catalogRepo.Load()
	if err != nil {
		return nil, err
	}

	if params.ProductName != "" {
		_, info, ok := cat.ByName(params.ProductName)
		if !ok {
			return nil, ierr.NewError("unknown product").
				WithHintf("Product %q is not in the catalog", params.ProductName).
				Mark(ierr.ErrNotFound)
		}
		if info.Kind == types.KindSubscription {
			return nil, ierr.NewError("product is a subscription").
				WithHintf("%q is a subscription plan; use the subscription collection", params.ProductName).
				Mark(ierr.ErrInvalidOperation)
		}
	}

	ids := cat.ProductIDs(params.ProductName)
	if len(ids) == 0 {
		return nil, ierr.NewError("no eligible products").
			WithHint("No product with platform ids matches the selection").
			Mark(ierr.ErrInvalidOperation)
	}

	end := params.End.UTC()
	end = time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, time.UTC)
	windows := period.SplitQuarterBlocks(params.Start.UTC(), end)

	var tasks []scheduler.Task
	for _, w := range windows {
		for _, pid := range ids {
			tasks = append(tasks, scheduler.Task{
				Label:  fmt.Sprintf("produtos %s", w),
				Params: guru.FetchParams{ProductID: pid, Window: w},
			})
		}
	}

	s.log.Infow("product collection started",
		"start", params.Start.Format("2006-01-02"), "end", params.End.Format("2006-01-02"),
		"products", len(ids), "tasks", len(tasks))

	txs, failed := s.sched.Run(ctx, tasks, nil)

	rc := &engine.RunContext{Mode: types.ModeProducts}
	calc := engine.NewCalculator(cat, s.log)
	mat := engine.NewMaterializer(calc, cat, s.log)
	lines, counters := mat.BuildProductLines(txs, rc)

	result := &CollectResult{
		Lines:        lines,
		Counters:     counters,
		Transactions: len(txs),
		Tasks:        len(tasks),
		Failures:     failureLabels(failed),
	}
	if err := s.persist(params.PlanilhaID, lines, result); err != nil {
		return nil, err
	}

	s.log.Infow("product collection finished",
		"transactions", len(txs), "lines", len(lines),
		"added", result.Added, "updated", result.Updated)
	return result, nil
}

func failureLabels(failed []scheduler.TaskFailure) []string {
	if len(failed) == 0 {
		return nil
	}
	labels := make([]string, 0, len(failed))
	for _, f := range failed {
		labels = append(labels, f.Label)
	}
	return labels
}

// persist appends the run's lines to the target planilha when one was
// requested.
func (s *ReconciliationService) persist(planilhaID string, lines []engine.Line, result *CollectResult) error {
	if planilhaID == "" || len(lines) == 0 {
		return nil
	}
	rows, err := planilha.RowsFromLines(lines)
	if err != nil {
		return err
	}
	added, updated, err := s.store.Append(planilhaID, rows)
	if err != nil {
		return err
	}
	result.Added = added
	result.Updated = updated
	return nil
}
