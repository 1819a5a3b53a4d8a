package api

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/hjemly/hjemly/internal/api/v1"
	"github.com/hjemly/hjemly/internal/config"
	"github.com/hjemly/hjemly/internal/rest/middleware"
	"github.com/hjemly/hjemly/internal/types"
)

type Handlers struct {
	Health     *v1.HealthHandler
	Invoice    *v1.InvoiceHandler
	CreditNote *v1.CreditNoteHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.CORSMiddleware,
		middleware.RequestIDMiddleware,
		middleware.PartnerContextMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	invoices := router.Group("/invoices")
	{
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.POST("/generate", handlers.Invoice.GenerateInvoices)
		invoices.POST("/preview", handlers.Invoice.PreviewInvoices)
	}

	creditnotes := router.Group("/creditnotes")
	{
		creditnotes.POST("", handlers.CreditNote.CreateCreditNote)
	}
}
