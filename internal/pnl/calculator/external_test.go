package calculator

import (
	"context"
	"testing"

	"github.com/railzwaylabs/sitepnl/internal/pnl/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func externalInput() *domain.SiteRevenueInput {
	return &domain.SiteRevenueInput{
		SiteID:     testSiteID,
		SiteNumber: "0101",
		Statistics: []domain.SiteStatistic{
			{Date: date(2025, 3, 1), ValetDaily: nullDec("10"), SelfDaily: nullDec("4")},
			{Date: date(2025, 3, 2), ValetDaily: nullDec("5"), SelfMonthly: nullDec("2")},
			{Date: date(2025, 4, 1), ValetDaily: nullDec("99")},
		},
		ParkingRates: []domain.ParkingRate{
			{
				Year: 2025,
				Details: []domain.ParkingRateDetail{
					{Month: 3, RateCategory: domain.RateCategoryValetDaily, Rate: dec("20")},
					{Month: 3, RateCategory: domain.RateCategorySelfDaily, Rate: dec("7.5")},
					{Month: 4, RateCategory: domain.RateCategorySelfMonthly, Rate: dec("100")},
				},
			},
		},
	}
}

func TestExternalRevenuePricesEachCategory(t *testing.T) {
	calc := &ExternalRevenue{}
	pass := newPass(externalInput(), 2025, 3)

	require.NoError(t, calc.Apply(context.Background(), pass))

	b := pass.Detail.ExternalRevenueBreakdown
	require.NotNil(t, b)

	requireNullDecimal(t, "15", b.ValetDaily.Statistic)
	requireNullDecimal(t, "20", b.ValetDaily.Rate)
	requireNullDecimal(t, "300", b.ValetDaily.Value)

	requireNullDecimal(t, "4", b.SelfDaily.Statistic)
	requireNullDecimal(t, "30", b.SelfDaily.Value)

	// March has no self monthly rate.
	requireNullDecimal(t, "2", b.SelfMonthly.Statistic)
	assert.False(t, b.SelfMonthly.Rate.Valid)
	requireNullDecimal(t, "0", b.SelfMonthly.Value)

	requireNullDecimal(t, "330", b.CalculatedTotalExternalRevenue)
	requireDecimal(t, "330", pass.ExternalRevenue())
}

func TestExternalRevenueWithoutStatisticsIsAbsent(t *testing.T) {
	calc := &ExternalRevenue{}
	pass := newPass(externalInput(), 2025, 5)

	require.NoError(t, calc.Apply(context.Background(), pass))
	assert.Nil(t, pass.Detail.ExternalRevenueBreakdown)
	requireDecimal(t, "0", pass.ExternalRevenue())
}

func TestExternalRevenueAggregate(t *testing.T) {
	calc := &ExternalRevenue{}

	first := newPass(externalInput(), 2025, 3)
	require.NoError(t, calc.Apply(context.Background(), first))

	second := newPass(externalInput(), 2025, 3)
	second.Detail.SiteID = "0102"
	require.NoError(t, calc.Apply(context.Background(), second))

	empty := &domain.SiteMonthlyDetail{SiteID: "0103"}

	month := &domain.MonthValue{Month: 2}
	calc.Aggregate([]*domain.SiteMonthlyDetail{first.Detail, empty, second.Detail}, month)

	agg := month.ExternalRevenueBreakdown
	require.NotNil(t, agg)
	requireNullDecimal(t, "660", agg.CalculatedTotalExternalRevenue)
	requireNullDecimal(t, "30", agg.ValetDaily.Statistic)
	requireNullDecimal(t, "600", agg.ValetDaily.Value)
	assert.False(t, agg.ValetDaily.Rate.Valid)
}

func TestExternalRevenueAggregateWithoutData(t *testing.T) {
	calc := &ExternalRevenue{}
	month := &domain.MonthValue{Month: 0}
	calc.Aggregate([]*domain.SiteMonthlyDetail{{SiteID: "0101"}}, month)
	assert.Nil(t, month.ExternalRevenueBreakdown)
}
