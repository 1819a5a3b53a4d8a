package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/hjemly/hjemly/internal/config"
	"github.com/hjemly/hjemly/internal/logger"
	"github.com/hjemly/hjemly/internal/storage"
	"github.com/hjemly/hjemly/internal/types"
	"github.com/hjemly/hjemly/internal/validator"
)

// Stores holds the in-memory repository implementations for testing. The
// concrete types are exposed so tests can seed data through their helpers.
type Stores struct {
	ContractRepo   *InMemoryContractStore
	PartnerRepo    *InMemoryPartnerStore
	InvoiceRepo    *InMemoryInvoiceStore
	CorrectionRepo *InMemoryCorrectionStore
	StatementRepo  *InMemoryStatementStore
	TaxRepo        *InMemoryTaxStore
	SerialNumbers  *InMemorySerialNumberService
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
	db     storage.IClient
	logger *logger.Logger
	config *config.Configuration
	now    time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	s.config = config.GetDefaultConfig()
	s.config.Logging.Level = types.LogLevelInfo

	var err error
	s.logger, err = logger.NewLogger(s.config.Logging.Level)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		ContractRepo:   NewInMemoryContractStore(),
		PartnerRepo:    NewInMemoryPartnerStore(),
		InvoiceRepo:    NewInMemoryInvoiceStore(),
		CorrectionRepo: NewInMemoryCorrectionStore(),
		StatementRepo:  NewInMemoryStatementStore(),
		TaxRepo:        NewInMemoryTaxStore(),
		SerialNumbers:  NewInMemorySerialNumberService(),
	}
	s.db = storage.NewNoopClient()
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.ContractRepo.Clear()
	s.stores.PartnerRepo.Clear()
	s.stores.InvoiceRepo.Clear()
	s.stores.CorrectionRepo.Clear()
	s.stores.StatementRepo.Clear()
	s.stores.TaxRepo.Clear()
	s.stores.SerialNumbers.Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetStores returns the current in-memory stores
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetDB returns the test transaction client
func (s *BaseServiceTestSuite) GetDB() storage.IClient {
	return s.db
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
