package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/hjemly/hjemly/internal/domain/contract"
	"github.com/hjemly/hjemly/internal/domain/invoice"
	"github.com/hjemly/hjemly/internal/domain/partner"
	"github.com/hjemly/hjemly/internal/testutil"
	"github.com/hjemly/hjemly/internal/types"
)

type ReconciliationServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  ReconciliationService
	contract *contract.Contract
	pctx     *partner.Context
}

func TestReconciliationService(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceSuite))
}

func (s *ReconciliationServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	s.service = NewReconciliationService(s.params())

	setting := &partner.Setting{
		ID:                "setting_1",
		Timezone:          "UTC",
		InvoiceDueDays:    14,
		BankAccountNumber: "12345678903",
		BaseModel:         types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().PartnerRepo.Add(s.GetContext(), setting))

	s.contract = &contract.Contract{
		ID:         "contract_1",
		AccountID:  "account_1",
		PropertyID: "property_1",
		RentalMeta: contract.RentalMeta{
			TenantID:          "tenant_1",
			ContractStartDate: time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
			MonthlyRentAmount: decimal.NewFromInt(3100),
		},
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().ContractRepo.Add(s.GetContext(), s.contract))

	var err error
	s.pctx, err = partner.NewContext(setting, "", s.GetConfig().Billing)
	s.Require().NoError(err)
}

func (s *ReconciliationServiceSuite) params() ServiceParams {
	return ServiceParams{
		Logger:         s.GetLogger(),
		Config:         s.GetConfig(),
		DB:             s.GetDB(),
		ContractRepo:   s.GetStores().ContractRepo,
		PartnerRepo:    s.GetStores().PartnerRepo,
		InvoiceRepo:    s.GetStores().InvoiceRepo,
		CorrectionRepo: s.GetStores().CorrectionRepo,
		StatementRepo:  s.GetStores().StatementRepo,
		TaxRepo:        s.GetStores().TaxRepo,
		SerialNumbers:  s.GetStores().SerialNumbers,
	}
}

func (s *ReconciliationServiceSuite) seedInvoice(start, end types.PartnerLocalDate) *invoice.Invoice {
	inv := &invoice.Invoice{
		ID:                   types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		ContractID:           s.contract.ID,
		AccountID:            s.contract.AccountID,
		PropertyID:           s.contract.PropertyID,
		InvoiceType:          types.InvoiceTypeInvoice,
		InvoiceStatus:        types.InvoiceStatusCreated,
		InvoiceAccountNumber: "12345678903",
		InvoiceStartOn:       start.UTCDay(),
		InvoiceEndOn:         end.UTCDay(),
		InvoiceMonth:         start.StartOfMonth().UTCDay(),
		TotalDays:            start.DaysUntil(end),
		DueDate:              start.AddDays(14).UTCDay(),
		BaseModel:            types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().InvoiceRepo.Create(s.GetContext(), inv))
	return inv
}

func (s *ReconciliationServiceSuite) TestExpectedRangesUpToToday() {
	ranges, err := s.service.ExpectedRanges(s.GetContext(), s.contract, s.pctx, RangeOptions{
		Today: testDate(2025, time.March, 10),
	})
	s.NoError(err)
	s.Require().Len(ranges, 3)

	s.Equal("2025-01-15", ranges[0].Period.Start.String())
	s.Equal("2025-01-31", ranges[0].Period.End.String())
	s.Equal(0, ranges[0].Sequence)
	s.Equal("2025-01-29", ranges[0].DueDate.String())
	s.Equal("2025-01-15", ranges[0].CreationDate.String())

	s.Equal("2025-02-01", ranges[1].Period.Start.String())
	s.Equal("2025-02-28", ranges[1].Period.End.String())

	s.Equal("2025-03-01", ranges[2].Period.Start.String())
	s.Equal("2025-03-31", ranges[2].Period.End.String())
	s.Equal(2, ranges[2].Sequence)
}

func (s *ReconciliationServiceSuite) TestExpectedRangesRecurringDueDate() {
	s.contract.RentalMeta.IsEnabledRecurringDueDate = true
	s.contract.RentalMeta.DueDate = 5
	first := time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)
	s.contract.RentalMeta.FirstInvoiceDueDate = &first

	ranges, err := s.service.ExpectedRanges(s.GetContext(), s.contract, s.pctx, RangeOptions{
		Today: testDate(2025, time.March, 10),
	})
	s.NoError(err)
	s.Require().NotEmpty(ranges)

	// Explicit first invoice due date wins, later invoices use the
	// recurring day-of-month.
	s.Equal("2025-01-20", ranges[0].DueDate.String())
	s.Equal("2025-02-05", ranges[1].DueDate.String())
}

func (s *ReconciliationServiceSuite) TestMissingRangesNoInvoices() {
	gaps, err := s.service.MissingRanges(s.GetContext(), s.contract, s.pctx, RangeOptions{
		Today: testDate(2025, time.March, 10),
	})
	s.NoError(err)
	s.Require().Len(gaps, 3)

	s.True(gaps[0].IsFirstInvoice)
	s.False(gaps[1].IsFirstInvoice)
	s.False(gaps[2].IsFirstInvoice)

	// Gaps are contiguous: each one resumes the day after the previous.
	for i := 1; i < len(gaps); i++ {
		s.Equal(gaps[i-1].End.AddDays(1).String(), gaps[i].Start.String())
	}
}

func (s *ReconciliationServiceSuite) TestMissingRangesSkipsPersistedPeriods() {
	s.seedInvoice(testDate(2025, time.February, 1), testDate(2025, time.February, 28))

	gaps, err := s.service.MissingRanges(s.GetContext(), s.contract, s.pctx, RangeOptions{
		Today: testDate(2025, time.March, 10),
	})
	s.NoError(err)
	s.Require().Len(gaps, 2)

	s.Equal("2025-01-15", gaps[0].Start.String())
	s.Equal("2025-01-31", gaps[0].End.String())
	s.Equal("2025-03-01", gaps[1].Start.String())

	// With a persisted invoice present the contract is past its first
	// invoice even though the January gap is re-derived.
	s.False(gaps[0].IsFirstInvoice)
}

func (s *ReconciliationServiceSuite) TestMissingRangesPartialOverlap() {
	// An invoice covering only the first half of February leaves the second
	// half as a partial gap.
	s.seedInvoice(testDate(2025, time.February, 1), testDate(2025, time.February, 14))

	gaps, err := s.service.MissingRanges(s.GetContext(), s.contract, s.pctx, RangeOptions{
		Today: testDate(2025, time.March, 10),
	})
	s.NoError(err)
	s.Require().Len(gaps, 3)

	s.Equal("2025-02-15", gaps[1].Start.String())
	s.Equal("2025-02-28", gaps[1].End.String())
	s.True(gaps[1].IsNotFullMonth)
}

func (s *ReconciliationServiceSuite) TestMissingRangesWestOfUTCPartner() {
	// Invoice boundaries are stored as UTC midnights. A partner west of
	// UTC must not re-interpret them in local time, which would shift a
	// persisted February 1-14 invoice to January 31-February 13 and leave
	// February 14 looking uninvoiced.
	setting := &partner.Setting{
		ID:                "setting_ny",
		Timezone:          "America/New_York",
		InvoiceDueDays:    14,
		BankAccountNumber: "12345678903",
		BaseModel:         types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().PartnerRepo.Add(s.GetContext(), setting))

	pctx, err := partner.NewContext(setting, "", s.GetConfig().Billing)
	s.Require().NoError(err)

	s.contract.RentalMeta.ContractStartDate = time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	s.seedInvoice(testDate(2025, time.February, 1), testDate(2025, time.February, 14))

	gaps, err := s.service.MissingRanges(s.GetContext(), s.contract, pctx, RangeOptions{
		Today: testDate(2025, time.March, 10),
	})
	s.NoError(err)
	s.Require().Len(gaps, 2)

	s.Equal("2025-02-15", gaps[0].Start.String())
	s.Equal("2025-02-28", gaps[0].End.String())
	s.Equal("2025-03-01", gaps[1].Start.String())
	s.Equal("2025-03-31", gaps[1].End.String())
}

func (s *ReconciliationServiceSuite) TestMissingRangesIdempotentList() {
	s.seedInvoice(testDate(2025, time.January, 15), testDate(2025, time.January, 31))
	s.seedInvoice(testDate(2025, time.February, 1), testDate(2025, time.February, 28))
	s.seedInvoice(testDate(2025, time.March, 1), testDate(2025, time.March, 31))

	gaps, err := s.service.MissingRanges(s.GetContext(), s.contract, s.pctx, RangeOptions{
		Today: testDate(2025, time.March, 10),
	})
	s.NoError(err)
	s.Empty(gaps)
}

func (s *ReconciliationServiceSuite) TestMissingRangesPreferred() {
	gaps, err := s.service.MissingRanges(s.GetContext(), s.contract, s.pctx, RangeOptions{
		Today: testDate(2025, time.March, 10),
		PreferredRanges: []DateRange{{
			Start: testDate(2025, time.February, 10),
			End:   testDate(2025, time.February, 20),
		}},
	})
	s.NoError(err)
	s.Require().Len(gaps, 1)

	s.Equal("2025-02-10", gaps[0].Start.String())
	s.Equal("2025-02-20", gaps[0].End.String())
	s.True(gaps[0].IsNotFullMonth)
}

func (s *ReconciliationServiceSuite) TestMissingRangesClosedYear() {
	s.GetStores().StatementRepo.CloseYear(s.contract.PartnerID, s.contract.AccountID, 2025)

	gaps, err := s.service.MissingRanges(s.GetContext(), s.contract, s.pctx, RangeOptions{
		Today: testDate(2025, time.March, 10),
	})
	s.NoError(err)
	s.Empty(gaps)
}

func (s *ReconciliationServiceSuite) TestMissingRangesClosedYearBoundary() {
	s.contract.RentalMeta.ContractStartDate = time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC)
	s.GetStores().StatementRepo.CloseYear(s.contract.PartnerID, s.contract.AccountID, 2024)

	gaps, err := s.service.MissingRanges(s.GetContext(), s.contract, s.pctx, RangeOptions{
		Today: testDate(2025, time.February, 10),
	})
	s.NoError(err)
	s.Require().NotEmpty(gaps)

	// November and December 2024 are closed; January 2025 onwards remains.
	s.Equal("2025-01-01", gaps[0].Start.String())
}

func (s *ReconciliationServiceSuite) TestQuarterlyFullYearWalk() {
	s.contract.RentalMeta.ContractStartDate = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC)
	s.contract.RentalMeta.ContractEndDate = &end
	s.contract.RentalMeta.InvoiceFrequency = 3

	gaps, err := s.service.MissingRanges(s.GetContext(), s.contract, s.pctx, RangeOptions{
		Today: testDate(2024, time.January, 15),
	})
	s.NoError(err)
	s.Require().Len(gaps, 4)

	s.Equal("2023-01-01", gaps[0].Start.String())
	s.Equal("2023-03-31", gaps[0].End.String())
	s.Equal("2023-04-01", gaps[1].Start.String())
	s.Equal("2023-06-30", gaps[1].End.String())
	s.Equal("2023-07-01", gaps[2].Start.String())
	s.Equal("2023-09-30", gaps[2].End.String())
	s.Equal("2023-10-01", gaps[3].Start.String())
	s.Equal("2023-12-31", gaps[3].End.String())

	for _, g := range gaps {
		s.False(g.IsNotFullMonth)
	}
}

func (s *ReconciliationServiceSuite) TestFullYearCoversEveryDayOnce() {
	s.contract.RentalMeta.ContractStartDate = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC)
	s.contract.RentalMeta.ContractEndDate = &end

	ranges, err := s.service.ExpectedRanges(s.GetContext(), s.contract, s.pctx, RangeOptions{
		Today: testDate(2024, time.January, 15),
	})
	s.NoError(err)
	s.Require().Len(ranges, 12)

	// Consecutive periods abut with no overlap or hole, and together they
	// account for every day of the year exactly once.
	total := 0
	for i, er := range ranges {
		total += er.Period.Start.DaysUntil(er.Period.End)
		if i > 0 {
			s.Equal(ranges[i-1].Period.End.AddDays(1).String(), er.Period.Start.String())
		}
	}
	s.Equal(365, total)
}

func (s *ReconciliationServiceSuite) TestEstimationWalksThreeCycles() {
	// Estimation ignores the creation gate and the wall clock.
	ranges, err := s.service.ExpectedRanges(s.GetContext(), s.contract, s.pctx, RangeOptions{
		Estimation: true,
		Today:      testDate(2025, time.January, 1),
	})
	s.NoError(err)
	s.Require().Len(ranges, 3)
	s.Equal("2025-03-31", ranges[2].Period.End.String())
}

func (s *ReconciliationServiceSuite) TestSecondMonthPolicySequence() {
	s.contract.RentalMeta.InvoiceCalculation = types.ProrationSecondMonth

	pctx, err := partner.NewContext(s.pctx.Setting, types.ProrationSecondMonth, s.GetConfig().Billing)
	s.Require().NoError(err)

	gaps, err := s.service.MissingRanges(s.GetContext(), s.contract, pctx, RangeOptions{
		Today: testDate(2025, time.March, 10),
	})
	s.NoError(err)
	s.Require().Len(gaps, 3)

	s.Equal("2025-01-15", gaps[0].Start.String())
	s.Equal("2025-01-31", gaps[0].End.String())
	s.Equal(17, gaps[0].DayBasis)

	s.Equal("2025-02-01", gaps[1].Start.String())
	s.Equal("2025-02-28", gaps[1].End.String())
	s.Equal(0, gaps[1].DayBasis)
}
