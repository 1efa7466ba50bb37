package api

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/jfiorezelogos/lg-logistica-backend/internal/api/v1"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/rest/middleware"
)

type Handlers struct {
	Health   *v1.HealthHandler
	Planilha *v1.PlanilhaHandler
	Coleta   *v1.ColetaHandler
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.ErrorHandler())

	router.GET("/health", handlers.Health.Health)

	// v1 routes
	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	// Planilha routes
	planilhas := router.Group("/planilhas")
	{
		planilhas.POST("/criar", handlers.Planilha.CreatePlanilha)
		planilhas.GET("", handlers.Planilha.ListPlanilhas)
		planilhas.GET("/:id", handlers.Planilha.GetPlanilha)
	}

	// Collection routes
	assinaturas := router.Group("/assinaturas")
	{
		assinaturas.POST("/coletar", handlers.Coleta.CollectSubscriptions)
	}
	produtos := router.Group("/produtos")
	{
		produtos.POST("/coletar", handlers.Coleta.CollectProducts)
	}
}
