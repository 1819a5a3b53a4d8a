package service

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/hjemly/hjemly/internal/domain/contract"
	"github.com/hjemly/hjemly/internal/domain/invoice"
	"github.com/hjemly/hjemly/internal/domain/partner"
	"github.com/hjemly/hjemly/internal/testutil"
	"github.com/hjemly/hjemly/internal/types"
)

type CommissionServiceSuite struct {
	testutil.BaseServiceTestSuite
	service CommissionService
}

func TestCommissionService(t *testing.T) {
	suite.Run(t, new(CommissionServiceSuite))
}

func (s *CommissionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewCommissionService(ServiceParams{
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
	})
}

func (s *CommissionServiceSuite) commissionContract() *contract.Contract {
	return &contract.Contract{
		ID:         "contract_1",
		AccountID:  "account_1",
		PropertyID: "property_1",
		RentalMeta: contract.RentalMeta{
			TenantID:          "tenant_1",
			ContractStartDate: time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
			MonthlyRentAmount: decimal.NewFromInt(3100),
		},
		BrokeringTerm: types.CommissionTerm{
			Basis:  types.CommissionBasisFixed,
			Amount: decimal.NewFromInt(5000),
		},
		ManagementTerm: types.CommissionTerm{
			Basis:   types.CommissionBasisPercent,
			Percent: decimal.NewFromInt(10),
		},
		AddonCommissionPercent: decimal.NewFromInt(20),
		BaseModel:              types.GetDefaultBaseModel(s.GetContext()),
	}
}

func (s *CommissionServiceSuite) TestComputeCommissionsFirstInvoice() {
	c := s.commissionContract()
	c.Addons = []contract.ContractAddon{
		{
			AddonID:          "addon_parking",
			Type:             types.AddonTypeLease,
			Price:            decimal.NewFromInt(500),
			IsRecurring:      true,
			EnableCommission: true,
		},
		{
			AddonID: "addon_signup",
			Type:    types.AddonTypeAssignment,
			Price:   decimal.NewFromInt(1200),
		},
	}

	inv := &invoice.Invoice{
		InvoiceType:    types.InvoiceTypeInvoice,
		IsFirstInvoice: true,
		InvoiceStartOn: time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
		InvoiceContent: []invoice.ContentItem{{
			Amount: decimal.NewFromInt(1700),
			Total:  decimal.NewFromInt(1700),
		}},
		AddonsMeta: []invoice.AddonMeta{{
			AddonID:          "addon_parking",
			Type:             types.AddonTypeLease,
			Amount:           decimal.NewFromInt(500),
			Total:            decimal.NewFromInt(500),
			IsRecurring:      true,
			EnableCommission: true,
		}},
	}

	entries, err := s.service.ComputeCommissions(s.GetContext(), c, inv)
	s.NoError(err)
	s.Require().Len(entries, 4)

	byType := lo.GroupBy(entries, func(e invoice.CommissionMeta) types.CommissionType {
		return e.Type
	})

	// Brokering is the fixed amount against the monthly rent.
	s.True(byType[types.CommissionTypeBrokering][0].Total.Equal(decimal.NewFromInt(5000)))

	// Management runs on rent only: the parking addon earns its own
	// commission and is excluded from the base.
	s.True(byType[types.CommissionTypeRentalManagement][0].Total.Equal(decimal.NewFromInt(170)))

	// Addon commission: 20% of the 500 parking line.
	s.True(byType[types.CommissionTypeAddon][0].Total.Equal(decimal.NewFromInt(100)))

	// Assignment addon income lands in full on the first invoice.
	s.True(byType[types.CommissionTypeAssignmentAddonIncome][0].Total.Equal(decimal.NewFromInt(1200)))
}

func (s *CommissionServiceSuite) TestComputeCommissionsRecurringInvoice() {
	c := s.commissionContract()

	inv := &invoice.Invoice{
		InvoiceType:    types.InvoiceTypeInvoice,
		IsFirstInvoice: false,
		InvoiceStartOn: time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
		InvoiceContent: []invoice.ContentItem{{
			Amount: decimal.NewFromInt(3100),
			Total:  decimal.NewFromInt(3100),
		}},
	}

	entries, err := s.service.ComputeCommissions(s.GetContext(), c, inv)
	s.NoError(err)
	s.Require().Len(entries, 1)

	// No brokering, no assignment income past the first invoice.
	s.Equal(types.CommissionTypeRentalManagement, entries[0].Type)
	s.True(entries[0].Total.Equal(decimal.NewFromInt(310)))
}

func (s *CommissionServiceSuite) TestComputeCommissionsPerAddonPercent() {
	c := s.commissionContract()
	c.ManagementTerm = types.CommissionTerm{}
	c.BrokeringTerm = types.CommissionTerm{}

	inv := &invoice.Invoice{
		InvoiceType: types.InvoiceTypeInvoice,
		AddonsMeta: []invoice.AddonMeta{{
			AddonID:           "addon_storage",
			Type:              types.AddonTypeLease,
			Total:             decimal.NewFromInt(1000),
			IsRecurring:       true,
			EnableCommission:  true,
			CommissionPercent: lo.ToPtr(decimal.NewFromInt(5)),
		}},
	}

	entries, err := s.service.ComputeCommissions(s.GetContext(), c, inv)
	s.NoError(err)
	s.Require().Len(entries, 1)

	// The per-addon percent overrides the property contract default.
	s.True(entries[0].Total.Equal(decimal.NewFromInt(50)))
}

func (s *CommissionServiceSuite) TestEstimatePayoutsNegativeCarry() {
	// Rent 3100, first cycle is 17 of 31 January days (1700). The fixed
	// 5000 brokering commission exceeds the first two cycles; the shortfall
	// rolls forward but never past the third.
	setting := &partner.Setting{
		ID:                "setting_1",
		Timezone:          "UTC",
		InvoiceDueDays:    14,
		BankAccountNumber: "12345678903",
		BaseModel:         types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().PartnerRepo.Add(s.GetContext(), setting))

	c := s.commissionContract()
	c.ManagementTerm = types.CommissionTerm{}
	s.NoError(s.GetStores().ContractRepo.Add(s.GetContext(), c))

	pctx, err := partner.NewContext(setting, "", s.GetConfig().Billing)
	s.Require().NoError(err)

	payouts, err := s.service.EstimatePayouts(s.GetContext(), c, pctx)
	s.NoError(err)
	s.Require().Len(payouts, 3)

	// Cycle 1: 1700 - 5000 = -3300, zeroed and carried.
	s.True(payouts[0].InvoiceTotal.Equal(decimal.NewFromInt(1700)), "got %s", payouts[0].InvoiceTotal)
	s.True(payouts[0].CommissionTotal.Equal(decimal.NewFromInt(5000)))
	s.True(payouts[0].Payout.IsZero())
	s.True(payouts[0].AmountMovedFromLastPayout.IsZero())

	// Cycle 2: 3100 - 3300 = -200, zeroed and carried.
	s.True(payouts[1].AmountMovedFromLastPayout.Equal(decimal.NewFromInt(3300)))
	s.True(payouts[1].Payout.IsZero())

	// Cycle 3: 3100 - 200 = 2900, paid out.
	s.True(payouts[2].AmountMovedFromLastPayout.Equal(decimal.NewFromInt(200)))
	s.True(payouts[2].Payout.Equal(decimal.NewFromInt(2900)), "got %s", payouts[2].Payout)
}
