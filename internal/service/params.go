package service

import (
	"github.com/hjemly/hjemly/internal/config"
	"github.com/hjemly/hjemly/internal/domain/contract"
	"github.com/hjemly/hjemly/internal/domain/correction"
	"github.com/hjemly/hjemly/internal/domain/invoice"
	"github.com/hjemly/hjemly/internal/domain/partner"
	"github.com/hjemly/hjemly/internal/domain/statement"
	"github.com/hjemly/hjemly/internal/domain/tax"
	"github.com/hjemly/hjemly/internal/logger"
	"github.com/hjemly/hjemly/internal/storage"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     storage.IClient

	// Repositories
	ContractRepo   contract.Repository
	PartnerRepo    partner.Repository
	InvoiceRepo    invoice.Repository
	CorrectionRepo correction.Repository
	StatementRepo  statement.Repository
	TaxRepo        tax.Repository

	// External collaborators
	SerialNumbers invoice.SerialNumberService
}
