package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/hjemly/hjemly/internal/domain/contract"
	"github.com/hjemly/hjemly/internal/domain/correction"
	"github.com/hjemly/hjemly/internal/domain/partner"
	"github.com/hjemly/hjemly/internal/domain/tax"
	"github.com/hjemly/hjemly/internal/testutil"
	"github.com/hjemly/hjemly/internal/types"
)

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  InvoiceService
	setting  *partner.Setting
	contract *contract.Contract
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	s.service = NewInvoiceService(s.params())

	s.setting = &partner.Setting{
		ID:                "setting_1",
		Timezone:          "UTC",
		InvoiceDueDays:    14,
		BankAccountNumber: "12345678903",
		BaseModel:         types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().PartnerRepo.Add(s.GetContext(), s.setting))

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

	s.GetStores().TaxRepo.AddLedgerAccount(tax.LedgerAccount{ID: "la_1", TaxCodeID: "tc_25"})
	s.GetStores().TaxRepo.AddTaxCode(tax.TaxCode{ID: "tc_25", Percent: decimal.NewFromInt(25)})
}

func (s *InvoiceServiceSuite) params() ServiceParams {
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

func (s *InvoiceServiceSuite) updateContract(mutate func(c *contract.Contract)) {
	mutate(s.contract)
	s.NoError(s.GetStores().ContractRepo.Update(s.GetContext(), s.contract))
}

func (s *InvoiceServiceSuite) TestGenerateInvoicesCreatesMissing() {
	created, err := s.service.GenerateInvoices(s.GetContext(), GenerateRequest{
		ContractID: s.contract.ID,
		Today:      testDate(2025, time.March, 10),
	})
	s.NoError(err)
	s.Require().Len(created, 3)

	first := created[0]
	s.True(first.IsFirstInvoice)
	s.True(first.IsNotFullMonth)
	s.Equal(types.InvoiceTypeInvoice, first.InvoiceType)
	s.Equal("12345678903", first.InvoiceAccountNumber)
	s.Equal(17, first.TotalDays)
	s.True(first.InvoiceTotal.Equal(decimal.NewFromInt(1700)), "got %s", first.InvoiceTotal)
	s.Equal(time.Date(2025, time.January, 29, 0, 0, 0, 0, time.UTC), first.DueDate)
	s.Equal(1, first.SerialNumber)

	s.True(created[1].InvoiceTotal.Equal(decimal.NewFromInt(3100)))
	s.False(created[1].IsFirstInvoice)
	s.Equal(2, created[1].SerialNumber)
	s.Equal(3, created[2].SerialNumber)

	// Consecutive invoices never overlap and never leave a day uncovered.
	for i := 1; i < len(created); i++ {
		prevEnd := created[i-1].InvoiceEndOn
		s.Equal(prevEnd.AddDate(0, 0, 1), created[i].InvoiceStartOn)
	}

	// The contract bookkeeping advanced to the last created invoice.
	stored, err := s.GetStores().ContractRepo.Get(s.GetContext(), s.contract.ID)
	s.NoError(err)
	s.Require().NotNil(stored.RentalMeta.InvoicedAsOn)
	s.Equal(time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC), *stored.RentalMeta.InvoicedAsOn)

	// First generation also stored the three-cycle payout estimation.
	s.Require().Len(stored.RentalMeta.EstimatedPayouts, 3)
	s.True(stored.RentalMeta.EstimatedPayouts[0].Payout.Equal(decimal.NewFromInt(1700)))
	s.True(stored.RentalMeta.EstimatedPayouts[1].Payout.Equal(decimal.NewFromInt(3100)))
}

func (s *InvoiceServiceSuite) TestGenerateInvoicesIdempotent() {
	created, err := s.service.GenerateInvoices(s.GetContext(), GenerateRequest{
		ContractID: s.contract.ID,
		Today:      testDate(2025, time.March, 10),
	})
	s.NoError(err)
	s.Len(created, 3)

	again, err := s.service.GenerateInvoices(s.GetContext(), GenerateRequest{
		ContractID: s.contract.ID,
		Today:      testDate(2025, time.March, 10),
	})
	s.NoError(err)
	s.Empty(again)

	count, err := s.GetStores().InvoiceRepo.Count(s.GetContext(), types.NewPeriodInvoiceFilter(s.contract.ID))
	s.NoError(err)
	s.Equal(3, count)
}

func (s *InvoiceServiceSuite) TestGenerateInvoicesRounding() {
	s.updateContract(func(c *contract.Contract) {
		c.RentalMeta.MonthlyRentAmount = decimal.NewFromInt(1000)
	})

	created, err := s.service.GenerateInvoices(s.GetContext(), GenerateRequest{
		ContractID: s.contract.ID,
		Today:      testDate(2025, time.January, 20),
	})
	s.NoError(err)
	s.Require().Len(created, 1)

	inv := created[0]
	raw := decimal.NewFromInt(1000).
		Mul(decimal.NewFromInt(17)).
		Div(decimal.NewFromInt(31))

	s.True(inv.RentTotal.Equal(raw), "got %s want %s", inv.RentTotal, raw)
	s.True(inv.InvoiceTotal.Equal(raw.Round(0)))
	s.True(inv.InvoiceTotal.IsInteger())
	// The residual reconciles the rounded total back to the raw sum.
	s.True(inv.InvoiceTotal.Sub(inv.RoundedAmount).Equal(raw))
}

func (s *InvoiceServiceSuite) TestGenerateInvoicesWithAddons() {
	s.updateContract(func(c *contract.Contract) {
		c.Addons = []contract.ContractAddon{
			{
				AddonID:         "addon_parking",
				Type:            types.AddonTypeLease,
				Price:           decimal.NewFromInt(310),
				IsRecurring:     true,
				LedgerAccountID: "la_1",
			},
			{
				AddonID: "addon_cleaning",
				Type:    types.AddonTypeLease,
				Price:   decimal.NewFromInt(900),
			},
		}
	})

	created, err := s.service.GenerateInvoices(s.GetContext(), GenerateRequest{
		ContractID: s.contract.ID,
		Today:      testDate(2025, time.February, 10),
	})
	s.NoError(err)
	s.Require().Len(created, 2)

	// First invoice: prorated recurring addon with tax, plus the one-off
	// addon charged in full.
	first := created[0]
	s.Require().Len(first.AddonsMeta, 2)
	s.True(first.AddonsMeta[0].Amount.Equal(decimal.NewFromInt(170)), "got %s", first.AddonsMeta[0].Amount)
	s.True(first.AddonsMeta[0].Tax.Equal(decimal.NewFromFloat(42.5)))
	s.True(first.AddonsMeta[1].Amount.Equal(decimal.NewFromInt(900)))
	s.True(first.AddonsMeta[1].Tax.IsZero())

	// Second invoice: only the recurring addon, full price.
	second := created[1]
	s.Require().Len(second.AddonsMeta, 1)
	s.Equal("addon_parking", second.AddonsMeta[0].AddonID)
	s.True(second.AddonsMeta[0].Amount.Equal(decimal.NewFromInt(310)))
}

func (s *InvoiceServiceSuite) TestGenerateInvoicesFoldsCorrections() {
	corr := &correction.Correction{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CORRECTION),
		ContractID: s.contract.ID,
		PropertyID: s.contract.PropertyID,
		AddTo:      types.CorrectionAddToRentInvoice,
		IsNonRent:  true,
		Amount:     decimal.NewFromInt(500),
		BaseModel:  types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().CorrectionRepo.Add(s.GetContext(), corr))

	created, err := s.service.GenerateInvoices(s.GetContext(), GenerateRequest{
		ContractID: s.contract.ID,
		Today:      testDate(2025, time.January, 20),
	})
	s.NoError(err)
	s.Require().Len(created, 1)

	inv := created[0]
	s.True(inv.InvoiceTotal.Equal(decimal.NewFromInt(2200)), "got %s", inv.InvoiceTotal)
	// Non-rent corrections raise the total but never the rent base.
	s.True(inv.RentTotal.Equal(decimal.NewFromInt(1700)))

	stored, err := s.GetStores().CorrectionRepo.GetByID(s.GetContext(), corr.ID)
	s.NoError(err)
	s.True(stored.Invoiced)
	s.Require().NotNil(stored.InvoiceID)
	s.Equal(inv.ID, *stored.InvoiceID)
}

func (s *InvoiceServiceSuite) TestGenerateInvoicesDeferredProration() {
	s.updateContract(func(c *contract.Contract) {
		c.RentalMeta.InvoiceCalculation = types.ProrationSecondMonth
	})

	created, err := s.service.GenerateInvoices(s.GetContext(), GenerateRequest{
		ContractID: s.contract.ID,
		Today:      testDate(2025, time.March, 10),
	})
	s.NoError(err)
	s.Require().Len(created, 3)

	// The irregular first invoice is worth one full lease month.
	first := created[0]
	s.Equal(17, first.TotalDays)
	s.True(first.IsNotFullMonth)
	s.True(first.InvoiceTotal.Equal(decimal.NewFromInt(3100)), "got %s", first.InvoiceTotal)

	s.Equal(time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), created[1].InvoiceStartOn)
	s.True(created[1].InvoiceTotal.Equal(decimal.NewFromInt(3100)))
}

func (s *InvoiceServiceSuite) TestGenerateInvoicesCPIRentChange() {
	s.updateContract(func(c *contract.Contract) {
		future := decimal.NewFromInt(3300)
		cpi := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
		c.RentalMeta.FutureRentAmount = &future
		c.RentalMeta.NextCpiDate = &cpi
	})

	created, err := s.service.GenerateInvoices(s.GetContext(), GenerateRequest{
		ContractID: s.contract.ID,
		Today:      testDate(2025, time.March, 10),
	})
	s.NoError(err)
	s.Require().Len(created, 3)

	// January still bills at the old rent, February onwards at the new one.
	s.True(created[0].InvoiceTotal.Equal(decimal.NewFromInt(1700)))
	s.True(created[1].InvoiceTotal.Equal(decimal.NewFromInt(3300)))
	s.True(created[2].InvoiceTotal.Equal(decimal.NewFromInt(3300)))

	// Once in effect the CPI change is folded into the base rent.
	stored, err := s.GetStores().ContractRepo.Get(s.GetContext(), s.contract.ID)
	s.NoError(err)
	s.True(stored.RentalMeta.MonthlyRentAmount.Equal(decimal.NewFromInt(3300)))
	s.Nil(stored.RentalMeta.FutureRentAmount)
	s.Nil(stored.RentalMeta.NextCpiDate)
}

func (s *InvoiceServiceSuite) TestPreviewInvoicesDoesNotPersist() {
	previews, err := s.service.PreviewInvoices(s.GetContext(), PreviewRequest{
		ContractID: s.contract.ID,
		Today:      testDate(2025, time.March, 10),
	})
	s.NoError(err)
	s.Len(previews, 3)

	count, err := s.GetStores().InvoiceRepo.Count(s.GetContext(), types.NewPeriodInvoiceFilter(s.contract.ID))
	s.NoError(err)
	s.Equal(0, count)

	stored, err := s.GetStores().ContractRepo.Get(s.GetContext(), s.contract.ID)
	s.NoError(err)
	s.Nil(stored.RentalMeta.InvoicedAsOn)
}

func (s *InvoiceServiceSuite) TestGenerateInvoicesPreferredRange() {
	created, err := s.service.GenerateInvoices(s.GetContext(), GenerateRequest{
		ContractID: s.contract.ID,
		Today:      testDate(2025, time.March, 10),
		PreferredRanges: []DateRange{{
			Start: testDate(2025, time.February, 1),
			End:   testDate(2025, time.February, 28),
		}},
	})
	s.NoError(err)
	s.Require().Len(created, 1)
	s.Equal(time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), created[0].InvoiceStartOn)
	s.Equal(time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), created[0].InvoiceEndOn)
}

func (s *InvoiceServiceSuite) TestGenerateInvoicesUnknownContract() {
	_, err := s.service.GenerateInvoices(s.GetContext(), GenerateRequest{
		ContractID: "contract_missing",
		Today:      testDate(2025, time.March, 10),
	})
	s.Error(err)
}
