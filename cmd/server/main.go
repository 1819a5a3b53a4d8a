package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/hjemly/hjemly/internal/api"
	v1 "github.com/hjemly/hjemly/internal/api/v1"
	"github.com/hjemly/hjemly/internal/config"
	"github.com/hjemly/hjemly/internal/domain/contract"
	"github.com/hjemly/hjemly/internal/domain/correction"
	"github.com/hjemly/hjemly/internal/domain/invoice"
	"github.com/hjemly/hjemly/internal/domain/partner"
	"github.com/hjemly/hjemly/internal/domain/statement"
	"github.com/hjemly/hjemly/internal/domain/tax"
	"github.com/hjemly/hjemly/internal/logger"
	"github.com/hjemly/hjemly/internal/repository"
	"github.com/hjemly/hjemly/internal/service"
	"github.com/hjemly/hjemly/internal/storage"
	"github.com/hjemly/hjemly/internal/validator"
)

func init() {
	// The whole application runs in UTC; partner-local calendar handling
	// happens inside the billing engine.
	time.Local = time.UTC
}

func main() {
	validator.NewValidator()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			provideLogger,

			// Postgres
			storage.NewDB,
			storage.NewClient,

			// Repositories
			repository.NewContractRepository,
			repository.NewPartnerRepository,
			repository.NewInvoiceRepository,
			repository.NewCorrectionRepository,
			repository.NewStatementRepository,
			repository.NewTaxRepository,
			repository.NewSerialNumberService,

			// Services
			provideServiceParams,
			service.NewInvoiceService,
			service.NewCreditNoteService,

			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startServer),
	)

	app.Run()
}

func provideLogger(cfg *config.Configuration) (*logger.Logger, error) {
	return logger.NewLogger(cfg.Logging.Level)
}

func provideServiceParams(
	cfg *config.Configuration,
	log *logger.Logger,
	client *storage.Client,
	contractRepo contract.Repository,
	partnerRepo partner.Repository,
	invoiceRepo invoice.Repository,
	correctionRepo correction.Repository,
	statementRepo statement.Repository,
	taxRepo tax.Repository,
	serialNumbers invoice.SerialNumberService,
) service.ServiceParams {
	return service.ServiceParams{
		Logger:         log,
		Config:         cfg,
		DB:             client,
		ContractRepo:   contractRepo,
		PartnerRepo:    partnerRepo,
		InvoiceRepo:    invoiceRepo,
		CorrectionRepo: correctionRepo,
		StatementRepo:  statementRepo,
		TaxRepo:        taxRepo,
		SerialNumbers:  serialNumbers,
	}
}

func provideHandlers(
	log *logger.Logger,
	invoiceService service.InvoiceService,
	creditNoteService service.CreditNoteService,
) api.Handlers {
	return api.Handlers{
		Health:     v1.NewHealthHandler(log),
		Invoice:    v1.NewInvoiceHandler(invoiceService, log),
		CreditNote: v1.NewCreditNoteHandler(creditNoteService, log),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration) *gin.Engine {
	return api.NewRouter(handlers, cfg)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	log *logger.Logger,
) {
	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting server", "address", cfg.Server.Address)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Errorw("server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server")
			return server.Shutdown(ctx)
		},
	})
}
