package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"github.com/jfiorezelogos/lg-logistica-backend/internal/api"
	v1 "github.com/jfiorezelogos/lg-logistica-backend/internal/api/v1"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/config"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/domain/catalog"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/domain/rules"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/guru"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/httpclient"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/logger"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/scheduler"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/service"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/storage/planilha"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/validator"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	// Local development convenience; absent .env is fine.
	_ = godotenv.Load()

	app := fx.New(
		fx.Provide(
			validator.NewValidator,
			config.NewConfig,
			logger.NewLogger,

			httpclient.NewDefaultClient,

			provideCatalogRepository,
			provideRulesRepository,
			providePlanilhaStore,

			provideRateGate,
			provideGuruClient,
			provideScheduler,

			service.NewReconciliationService,

			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startServer),
	)
	app.Run()
}

func provideCatalogRepository(cfg *config.Configuration, log *logger.Logger) catalog.Repository {
	return catalog.NewFileRepository(cfg.Planilhas.CatalogPath, log)
}

func provideRulesRepository(cfg *config.Configuration, log *logger.Logger) rules.Repository {
	return rules.NewFileRepository(cfg.Planilhas.RulesPath, log)
}

func providePlanilhaStore(cfg *config.Configuration, log *logger.Logger) (*planilha.Store, error) {
	return planilha.NewStore(cfg.Planilhas.Dir, log)
}

func provideRateGate(cfg *config.Configuration) *guru.RateGate {
	return guru.NewRateGate(cfg.Guru.QPS, cfg.Guru.MaxConcurrency)
}

func provideGuruClient(client httpclient.Client, gate *guru.RateGate, cfg *config.Configuration, log *logger.Logger) *guru.Client {
	return guru.NewClient(client, gate, cfg.Guru, log)
}

func provideScheduler(client *guru.Client, cfg *config.Configuration, log *logger.Logger) *scheduler.Scheduler {
	return scheduler.New(client, cfg.Guru.MaxConcurrency, log)
}

func provideHandlers(
	svc *service.ReconciliationService,
	store *planilha.Store,
	log *logger.Logger,
) api.Handlers {
	return api.Handlers{
		Health:   v1.NewHealthHandler(),
		Planilha: v1.NewPlanilhaHandler(store, log),
		Coleta:   v1.NewColetaHandler(svc, log),
	}
}

func provideRouter(handlers api.Handlers) *gin.Engine {
	return api.NewRouter(handlers)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting API server...")
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}
