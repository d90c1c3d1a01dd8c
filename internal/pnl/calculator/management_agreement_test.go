package calculator

import (
	"context"
	"testing"

	"github.com/railzwaylabs/sitepnl/internal/pnl/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func managementInput() *domain.SiteRevenueInput {
	return &domain.SiteRevenueInput{
		SiteID:     testSiteID,
		SiteNumber: "0101",
		Contract:   &domain.Contract{ContractTypes: []domain.ContractType{domain.ContractTypeManagementAgreement}},
		ManagementAgreement: &domain.ManagementAgreement{Fees: []domain.ManagementFee{
			{Month: 3, Amount: dec("1250")},
			{Month: 4, Amount: dec("1300")},
		}},
		OtherRevenues: []domain.OtherRevenue{
			{Month: 3, Description: "EV charging", Amount: dec("80.25")},
			{Month: 3, Description: "car wash", Amount: dec("19.75")},
			{Month: 5, Description: "EV charging", Amount: dec("60")},
		},
	}
}

func TestManagementAgreementReportsRecordedFee(t *testing.T) {
	deps := newTestDeps()
	pass := newPass(managementInput(), 2025, 3)

	require.NoError(t, deps.calculator("management_agreement").Apply(context.Background(), pass))

	internal := pass.Detail.InternalRevenueBreakdown
	require.NotNil(t, internal.ManagementAgreement)
	requireNullDecimal(t, "1250", internal.ManagementAgreement.Total)
	requireNullDecimal(t, "1250", internal.CalculatedTotalInternalRevenue)
}

func TestManagementAgreementRequiresContractType(t *testing.T) {
	deps := newTestDeps()
	in := managementInput()
	in.Contract = &domain.Contract{ContractTypes: []domain.ContractType{domain.ContractTypeFixedFee}}
	pass := newPass(in, 2025, 3)

	require.NoError(t, deps.calculator("management_agreement").Apply(context.Background(), pass))
	assert.Nil(t, pass.Detail.InternalRevenueBreakdown)
}

func TestManagementAgreementWithoutFeeForMonth(t *testing.T) {
	deps := newTestDeps()
	pass := newPass(managementInput(), 2025, 7)

	require.NoError(t, deps.calculator("management_agreement").Apply(context.Background(), pass))
	assert.Nil(t, pass.Detail.InternalRevenueBreakdown)
}

func TestOtherRevenueSumsMonthLines(t *testing.T) {
	deps := newTestDeps()
	in := managementInput()
	in.Contract = nil
	pass := newPass(in, 2025, 3)

	require.NoError(t, deps.calculator("other_revenue").Apply(context.Background(), pass))

	internal := pass.Detail.InternalRevenueBreakdown
	require.NotNil(t, internal.OtherRevenue)
	requireNullDecimal(t, "100", internal.OtherRevenue.Total)

	empty := newPass(in, 2025, 4)
	require.NoError(t, deps.calculator("other_revenue").Apply(context.Background(), empty))
	assert.Nil(t, empty.Detail.InternalRevenueBreakdown)
}

func TestManagementAndOtherRevenueAggregate(t *testing.T) {
	deps := newTestDeps()
	var sites []*domain.SiteMonthlyDetail
	for _, number := range []string{"0101", "0102"} {
		in := managementInput()
		in.SiteNumber = number
		pass := newPass(in, 2025, 3)
		for _, name := range []string{"management_agreement", "other_revenue"} {
			require.NoError(t, deps.calculator(name).Apply(context.Background(), pass))
		}
		sites = append(sites, pass.Detail)
	}

	month := &domain.MonthValue{Month: 2}
	deps.chain.AggregateInternal(sites, month)

	internal := month.InternalRevenueBreakdown
	require.NotNil(t, internal)
	requireNullDecimal(t, "2500", internal.ManagementAgreement.Total)
	requireNullDecimal(t, "200", internal.OtherRevenue.Total)
	requireNullDecimal(t, "2700", internal.CalculatedTotalInternalRevenue)
}
