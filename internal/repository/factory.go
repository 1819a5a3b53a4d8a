package repository

import (
	"github.com/hjemly/hjemly/internal/domain/contract"
	"github.com/hjemly/hjemly/internal/domain/correction"
	"github.com/hjemly/hjemly/internal/domain/invoice"
	"github.com/hjemly/hjemly/internal/domain/partner"
	"github.com/hjemly/hjemly/internal/domain/statement"
	"github.com/hjemly/hjemly/internal/domain/tax"
	"github.com/hjemly/hjemly/internal/logger"
	postgresRepo "github.com/hjemly/hjemly/internal/repository/postgres"
	"github.com/hjemly/hjemly/internal/storage"
)

func NewContractRepository(db *storage.Client, logger *logger.Logger) contract.Repository {
	return postgresRepo.NewContractRepository(db, logger)
}

func NewPartnerRepository(db *storage.Client, logger *logger.Logger) partner.Repository {
	return postgresRepo.NewPartnerRepository(db, logger)
}

func NewInvoiceRepository(db *storage.Client, logger *logger.Logger) invoice.Repository {
	return postgresRepo.NewInvoiceRepository(db, logger)
}

func NewCorrectionRepository(db *storage.Client, logger *logger.Logger) correction.Repository {
	return postgresRepo.NewCorrectionRepository(db, logger)
}

func NewStatementRepository(db *storage.Client, logger *logger.Logger) statement.Repository {
	return postgresRepo.NewStatementRepository(db, logger)
}

func NewTaxRepository(db *storage.Client, logger *logger.Logger) tax.Repository {
	return postgresRepo.NewTaxRepository(db, logger)
}

func NewSerialNumberService(db *storage.Client, logger *logger.Logger) invoice.SerialNumberService {
	return postgresRepo.NewSerialNumberService(db, logger)
}
