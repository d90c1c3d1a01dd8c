package calculator

import (
	"context"
	"errors"
	"testing"

	"github.com/railzwaylabs/sitepnl/internal/pnl/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func roomInput() *domain.SiteRevenueInput {
	return &domain.SiteRevenueInput{
		SiteID:     testSiteID,
		SiteNumber: "0101",
		Contract: &domain.Contract{
			ContractTypes:    []domain.ContractType{domain.ContractTypePerOccupiedRoom},
			OccupiedRoomRate: nullDec("12.5"),
		},
		Statistics: []domain.SiteStatistic{
			{Date: date(2025, 3, 1), OccupiedRooms: nullDec("100")},
			{Date: date(2025, 3, 15), OccupiedRooms: nullDec("20")},
		},
	}
}

func TestPerOccupiedRoomUsesForecastRooms(t *testing.T) {
	deps := newTestDeps()
	pass := newPass(roomInput(), 2025, 3)

	require.NoError(t, deps.calculator("per_occupied_room").Apply(context.Background(), pass))

	por := pass.Detail.InternalRevenueBreakdown.PerOccupiedRoom
	requireDecimal(t, "12.5", por.FeePerRoom)
	requireNullDecimal(t, "120", por.ForecastedRooms)
	assert.False(t, por.BudgetRooms.Valid)
	requireNullDecimal(t, "1500", por.BaseRevenue)
	requireNullDecimal(t, "1500", por.Total)
}

func TestPerOccupiedRoomFallsBackToBudgetRooms(t *testing.T) {
	deps := newTestDeps()
	pass := newPass(roomInput(), 2025, 6)
	pass.Budget = budgetRowsWithSite(domain.ColumnInternalRevenue, 6, &domain.SiteMonthlyDetail{
		SiteID: "0101",
		InternalRevenueBreakdown: &domain.InternalRevenueBreakdown{
			PerOccupiedRoom: &domain.PerOccupiedRoomBreakdown{BudgetRooms: nullDec("90")},
		},
	})

	require.NoError(t, deps.calculator("per_occupied_room").Apply(context.Background(), pass))

	por := pass.Detail.InternalRevenueBreakdown.PerOccupiedRoom
	assert.False(t, por.ForecastedRooms.Valid)
	requireNullDecimal(t, "90", por.BudgetRooms)
	requireNullDecimal(t, "1125", por.Total)
}

func TestPerOccupiedRoomWithoutRoomsIsZero(t *testing.T) {
	deps := newTestDeps()
	pass := newPass(roomInput(), 2025, 8)

	require.NoError(t, deps.calculator("per_occupied_room").Apply(context.Background(), pass))
	requireNullDecimal(t, "0", pass.Detail.InternalRevenueBreakdown.PerOccupiedRoom.Total)
}

func laborInput() *domain.SiteRevenueInput {
	return &domain.SiteRevenueInput{
		SiteID:     testSiteID,
		SiteNumber: "0101",
		Contract: &domain.Contract{
			ContractTypes: []domain.ContractType{domain.ContractTypePerLaborHour},
		},
		LaborHourJobs: []domain.LaborHourJob{
			{JobCode: "VAL", Rate: dec("22"), StartDate: date(2024, 1, 1)},
			{JobCode: "CSH", Rate: dec("18"), StartDate: date(2024, 1, 1)},
			{JobCode: "OLD", Rate: dec("50"), StartDate: date(2020, 1, 1), EndDate: timePtr(date(2023, 12, 31))},
		},
	}
}

func TestPerLaborHourBillsPayrollHours(t *testing.T) {
	deps := newTestDeps()
	deps.payroll.On("GetPayroll", mock.Anything, testSiteID, "2025-03").Return([]domain.PayrollDetail{
		{JobCode: "VAL", RegularHours: nullDec("100")},
		{JobCode: "VAL", RegularHours: nullDec("20")},
		{JobCode: "CSH", RegularHours: nullDec("40")},
		{JobCode: "OLD", RegularHours: nullDec("999")},
	}, nil)

	pass := newPass(laborInput(), 2025, 3)
	require.NoError(t, deps.calculator("per_labor_hour").Apply(context.Background(), pass))

	// 120h * 22 + 40h * 18; OLD ended before the month.
	requireNullDecimal(t, "3360", pass.Detail.InternalRevenueBreakdown.PerLaborHour.Total)
	requireNullDecimal(t, "3360", pass.Detail.InternalRevenueBreakdown.CalculatedTotalInternalRevenue)
}

func TestPerLaborHourFallsBackToSiteBudgetHours(t *testing.T) {
	deps := newTestDeps()
	deps.payroll.On("GetPayroll", mock.Anything, testSiteID, "2025-03").Return([]domain.PayrollDetail{
		{JobCode: "VAL", RegularHours: nullDec("10")},
	}, nil)

	pass := newPass(laborInput(), 2025, 3)
	pass.Budget = budgetRowsWithSite(domain.ColumnPerLaborHour, 3, &domain.SiteMonthlyDetail{
		SiteID: "0101",
		InternalRevenueBreakdown: &domain.InternalRevenueBreakdown{
			PerLaborHour: &domain.PerLaborHourBreakdown{Total: nullDec("5")},
		},
	})
	require.NoError(t, deps.calculator("per_labor_hour").Apply(context.Background(), pass))

	// 10h * 22 + 5h * 18
	requireNullDecimal(t, "310", pass.Detail.InternalRevenueBreakdown.PerLaborHour.Total)

	t.Run("no budget row resolves to zero hours", func(t *testing.T) {
		pass := newPass(laborInput(), 2025, 3)
		require.NoError(t, deps.calculator("per_labor_hour").Apply(context.Background(), pass))
		requireNullDecimal(t, "220", pass.Detail.InternalRevenueBreakdown.PerLaborHour.Total)
	})
}

func TestPerLaborHourSkipsPayrollWithoutJobs(t *testing.T) {
	deps := newTestDeps()
	in := laborInput()
	in.LaborHourJobs = nil

	pass := newPass(in, 2025, 3)
	require.NoError(t, deps.calculator("per_labor_hour").Apply(context.Background(), pass))

	requireNullDecimal(t, "0", pass.Detail.InternalRevenueBreakdown.PerLaborHour.Total)
	deps.payroll.AssertNotCalled(t, "GetPayroll", mock.Anything, mock.Anything, mock.Anything)
}

func TestPerLaborHourPayrollErrorContributesZero(t *testing.T) {
	deps := newTestDeps()
	deps.payroll.On("GetPayroll", mock.Anything, testSiteID, "2025-03").Return(nil, errors.New("payroll service unavailable"))

	pass := newPass(laborInput(), 2025, 3)
	require.NoError(t, deps.calculator("per_labor_hour").Apply(context.Background(), pass))

	requireNullDecimal(t, "0", pass.Detail.InternalRevenueBreakdown.PerLaborHour.Total)
	assert.Equal(t, 1, deps.recorder.counts["per_labor_hour"])
}

func TestPerLaborHourEscalatesJobs(t *testing.T) {
	deps := newTestDeps()
	deps.payroll.On("GetPayroll", mock.Anything, testSiteID, "2025-03").Return([]domain.PayrollDetail{
		{JobCode: "VAL", RegularHours: nullDec("100")},
	}, nil)

	in := laborInput()
	in.Contract.IncrementMonth = intPtr(1)
	in.Contract.IncrementAmount = nullDec("10")
	in.LaborHourJobs = in.LaborHourJobs[:1]

	pass := newPass(in, 2025, 3)
	require.NoError(t, deps.calculator("per_labor_hour").Apply(context.Background(), pass))

	// 2200 escalated once for the 2025 anniversary.
	requireNullDecimal(t, "2420", pass.Detail.InternalRevenueBreakdown.PerLaborHour.Total)
}
