package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/railzwaylabs/sitepnl/internal/pnl/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(Models()...))
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func nullDec(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(v))
}

func day(year, month, d int) time.Time {
	return time.Date(year, time.Month(month), d, 0, 0, 0, 0, time.UTC)
}

func seedSite(t *testing.T, db *gorm.DB) Site {
	t.Helper()
	site := Site{ID: uuid.New(), SiteNumber: "0101", Name: "Harbor Hotel"}
	require.NoError(t, db.Create(&site).Error)

	month := 4
	ended := day(2024, 12, 31)
	rateID := uuid.New()
	records := []any{
		&Contract{
			ID:     uuid.New(),
			SiteID: site.ID,
			ContractTypes: datatypes.NewJSONSlice([]domain.ContractType{
				domain.ContractTypeFixedFee,
				domain.ContractTypeBillingAccount,
			}),
			IncrementMonth:   &month,
			IncrementAmount:  nullDec("3"),
			OccupiedRoomRate: nullDec("12.5"),
			BillableAccountConfigs: datatypes.NewJSONSlice([]domain.BillableAccountConfig{{
				PayrollTaxesEnabled:     true,
				PayrollTaxesBillingType: domain.PtebBillingTypePercentage,
				PayrollTaxesPercentage:  nullDec("8"),
			}}),
		},
		&SiteStatistic{ID: uuid.New(), SiteID: site.ID, Date: day(2025, 3, 2), ValetDaily: nullDec("12"), OccupiedRooms: nullDec("80")},
		&SiteStatistic{ID: uuid.New(), SiteID: site.ID, Date: day(2025, 3, 1), ValetDaily: nullDec("10")},
		&SiteStatistic{ID: uuid.New(), SiteID: site.ID, Date: day(2024, 12, 31), ValetDaily: nullDec("99")},
		&FixedFee{ID: uuid.New(), SiteID: site.ID, Fee: dec("1000"), StartDate: day(2023, 1, 1), EndDate: &ended},
		&FixedFee{ID: uuid.New(), SiteID: site.ID, Fee: dec("1500"), StartDate: day(2025, 1, 1)},
		&LaborHourJob{ID: uuid.New(), SiteID: site.ID, JobCode: "VAL", Rate: dec("22.75"), StartDate: day(2024, 1, 1)},
		&RevenueShareThreshold{ID: uuid.New(), SiteID: site.ID, SortOrder: 1, Tiers: datatypes.NewJSONSlice([]domain.ThresholdTier{
			{Amount: dec("0"), SharePercentage: dec("5")},
			{Amount: dec("10000"), SharePercentage: dec("8")},
		})},
		&BillableAccount{ID: uuid.New(), SiteID: site.ID, Year: 2025, AccountCode: "6020", Amount: dec("80")},
		&BillableAccount{ID: uuid.New(), SiteID: site.ID, Year: 2025, AccountCode: "6010", Amount: dec("40"), IsExcluded: true},
		&BillableAccount{ID: uuid.New(), SiteID: site.ID, Year: 2024, AccountCode: "6010", Amount: dec("999")},
		&ParkingRate{ID: rateID, SiteID: site.ID, Year: 2025},
		&ParkingRateDetail{ID: uuid.New(), ParkingRateID: rateID, Month: 3, RateCategory: string(domain.RateCategoryValetDaily), Rate: dec("30")},
		&ParkingRateDetail{ID: uuid.New(), ParkingRateID: rateID, Month: 1, RateCategory: string(domain.RateCategorySelfDaily), Rate: dec("7.5")},
	}
	for _, rec := range records {
		require.NoError(t, db.Create(rec).Error)
	}
	return site
}

func TestGetSiteRevenueInput(t *testing.T) {
	db := setupTestDB(t)
	site := seedSite(t, db)
	repo := NewSiteRevenueRepository(db)

	in, err := repo.GetSiteRevenueInput(context.Background(), "0101", 2025)
	require.NoError(t, err)
	require.NotNil(t, in)

	assert.Equal(t, site.ID, in.SiteID)
	assert.Equal(t, "Harbor Hotel", in.SiteName)

	require.NotNil(t, in.Contract)
	assert.True(t, in.Contract.HasType(domain.ContractTypeBillingAccount))
	require.NotNil(t, in.Contract.IncrementMonth)
	assert.Equal(t, 4, *in.Contract.IncrementMonth)
	assert.True(t, dec("12.5").Equal(in.Contract.OccupiedRoomRate.Decimal))
	cfg := in.Contract.FirstBillableAccountConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, domain.PtebBillingTypePercentage, cfg.PayrollTaxesBillingType)
	assert.True(t, dec("8").Equal(cfg.PayrollTaxesPercentage.Decimal))

	require.Len(t, in.Statistics, 2)
	assert.Equal(t, 1, in.Statistics[0].Date.Day())
	assert.True(t, dec("80").Equal(in.Statistics[1].OccupiedRooms.Decimal))
	assert.False(t, in.Statistics[0].OccupiedRooms.Valid)

	require.Len(t, in.FixedFees, 2)
	require.NotNil(t, in.FixedFees[0].EndDate)
	assert.Nil(t, in.FixedFees[1].EndDate)

	require.Len(t, in.LaborHourJobs, 1)
	assert.True(t, dec("22.75").Equal(in.LaborHourJobs[0].Rate))

	require.Len(t, in.RevenueShareThresholds, 1)
	require.Len(t, in.RevenueShareThresholds[0].Tiers, 2)
	assert.True(t, dec("10000").Equal(in.RevenueShareThresholds[0].Tiers[1].Amount))

	require.Len(t, in.BillableAccounts, 2)
	assert.Equal(t, "6010", in.BillableAccounts[0].AccountCode)
	assert.True(t, in.BillableAccounts[0].IsExcluded)

	require.Len(t, in.ParkingRates, 1)
	require.Len(t, in.ParkingRates[0].Details, 2)
	assert.Equal(t, 1, in.ParkingRates[0].Details[0].Month)
	assert.True(t, dec("30").Equal(in.RateFor(3, domain.RateCategoryValetDaily).Decimal))

	assert.Nil(t, in.ManagementAgreement)
	assert.Empty(t, in.OtherRevenues)
}

func TestGetSiteRevenueInputManagementFeesAndOtherRevenue(t *testing.T) {
	db := setupTestDB(t)
	site := seedSite(t, db)
	records := []any{
		&ManagementFee{ID: uuid.New(), SiteID: site.ID, Year: 2025, Month: 5, Amount: dec("750")},
		&ManagementFee{ID: uuid.New(), SiteID: site.ID, Year: 2025, Month: 2, Amount: dec("700")},
		&ManagementFee{ID: uuid.New(), SiteID: site.ID, Year: 2024, Month: 2, Amount: dec("1")},
		&OtherRevenue{ID: uuid.New(), SiteID: site.ID, Year: 2025, Month: 3, Description: "EV charging", Amount: dec("120.40")},
		&OtherRevenue{ID: uuid.New(), SiteID: site.ID, Year: 2024, Month: 3, Description: "old", Amount: dec("9")},
	}
	for _, rec := range records {
		require.NoError(t, db.Create(rec).Error)
	}

	in, err := NewSiteRevenueRepository(db).GetSiteRevenueInput(context.Background(), "0101", 2025)
	require.NoError(t, err)

	require.NotNil(t, in.ManagementAgreement)
	require.Len(t, in.ManagementAgreement.Fees, 2)
	assert.Equal(t, 2, in.ManagementAgreement.Fees[0].Month)
	fee, ok := in.ManagementAgreement.FeeFor(5)
	assert.True(t, ok)
	assert.True(t, dec("750").Equal(fee))
	_, ok = in.ManagementAgreement.FeeFor(6)
	assert.False(t, ok)

	require.Len(t, in.OtherRevenues, 1)
	assert.Equal(t, "EV charging", in.OtherRevenues[0].Description)
	assert.True(t, dec("120.40").Equal(in.OtherRevenues[0].Amount))
}

func TestGetSiteRevenueInputUnknownSite(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSiteRevenueRepository(db)

	in, err := repo.GetSiteRevenueInput(context.Background(), "9999", 2025)
	require.NoError(t, err)
	assert.Nil(t, in)
}

func TestListMonthlyFigures(t *testing.T) {
	db := setupTestDB(t)
	rows := []MonthlyFigure{
		{ID: uuid.New(), SiteNumber: "0102", Year: 2025, Month: 2, Scenario: string(domain.ScenarioBudget), ExternalRevenue: dec("200")},
		{ID: uuid.New(), SiteNumber: "0101", Year: 2025, Month: 2, Scenario: string(domain.ScenarioBudget), ExternalRevenue: dec("100"), Pteb: dec("-12.5")},
		{ID: uuid.New(), SiteNumber: "0101", Year: 2025, Month: 1, Scenario: string(domain.ScenarioBudget), ExternalRevenue: dec("50")},
		{ID: uuid.New(), SiteNumber: "0101", Year: 2025, Month: 1, Scenario: string(domain.ScenarioActual), ExternalRevenue: dec("55")},
		{ID: uuid.New(), SiteNumber: "0101", Year: 2024, Month: 1, Scenario: string(domain.ScenarioBudget), ExternalRevenue: dec("1")},
		{ID: uuid.New(), SiteNumber: "0303", Year: 2025, Month: 1, Scenario: string(domain.ScenarioBudget), ExternalRevenue: dec("1")},
	}
	require.NoError(t, db.Create(&rows).Error)

	repo := NewFiguresRepository(db)
	figures, err := repo.ListMonthlyFigures(context.Background(), []string{"0101", "0102"}, 2025, domain.ScenarioBudget)
	require.NoError(t, err)
	require.Len(t, figures, 3)

	assert.Equal(t, "0101", figures[0].SiteNumber)
	assert.Equal(t, 1, figures[0].Month)
	assert.Equal(t, 2, figures[1].Month)
	assert.True(t, dec("12.5").Equal(figures[1].Column(domain.ColumnPteb)))
	assert.Equal(t, "0102", figures[2].SiteNumber)

	empty, err := repo.ListMonthlyFigures(context.Background(), nil, 2025, domain.ScenarioBudget)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetPayroll(t *testing.T) {
	db := setupTestDB(t)
	siteID := uuid.New()
	rows := []PayrollDetail{
		{ID: uuid.New(), SiteID: siteID, Period: "2025-03", JobCode: "VAL", RegularHours: nullDec("120.5")},
		{ID: uuid.New(), SiteID: siteID, Period: "2025-03", JobCode: "CSH"},
		{ID: uuid.New(), SiteID: siteID, Period: "2025-04", JobCode: "VAL", RegularHours: nullDec("1")},
	}
	require.NoError(t, db.Create(&rows).Error)

	details, err := NewPayrollRepository(db).GetPayroll(context.Background(), siteID, "2025-03")
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "CSH", details[0].JobCode)
	assert.False(t, details[0].RegularHours.Valid)
	assert.True(t, dec("120.5").Equal(details[1].RegularHours.Decimal))
}

func TestExpenseBudgets(t *testing.T) {
	db := setupTestDB(t)
	siteID := uuid.New()
	rows := []ExpenseBudget{
		{ID: uuid.New(), SiteID: siteID, Year: 2025, Month: 3, AccountCode: "5000", Category: ExpenseCategoryPayroll, IsBillable: true, Amount: dec("30000")},
		{ID: uuid.New(), SiteID: siteID, Year: 2025, Month: 3, AccountCode: "5010", Category: ExpenseCategoryPayroll, IsBillable: true, Amount: dec("20000")},
		{ID: uuid.New(), SiteID: siteID, Year: 2025, Month: 3, AccountCode: "5020", Category: ExpenseCategoryPayroll, IsBillable: false, Amount: dec("9999")},
		{ID: uuid.New(), SiteID: siteID, Year: 2025, Month: 3, AccountCode: "7000", Category: ExpenseCategoryBillable, IsBillable: true, Amount: dec("125.25")},
		{ID: uuid.New(), SiteID: siteID, Year: 2025, Month: 4, AccountCode: "7100", Category: ExpenseCategoryOtherExpense, IsBillable: true, Amount: dec("640")},
	}
	require.NoError(t, db.Create(&rows).Error)

	repo := NewBillableExpenseRepository(db)
	ctx := context.Background()

	payroll, err := repo.GetPayrollExpenseBudget(ctx, siteID, 2025, 3)
	require.NoError(t, err)
	assert.True(t, dec("50000").Equal(payroll), payroll.String())

	billable, err := repo.GetBillableExpenseBudget(ctx, siteID, 2025, 3)
	require.NoError(t, err)
	assert.True(t, dec("125.25").Equal(billable), billable.String())

	other, err := repo.GetOtherExpenseBudget(ctx, siteID, 2025, 4)
	require.NoError(t, err)
	assert.True(t, dec("640").Equal(other), other.String())

	none, err := repo.GetOtherExpenseBudget(ctx, siteID, 2025, 5)
	require.NoError(t, err)
	assert.True(t, none.IsZero())
}

func TestGetOtherExpenseDetail(t *testing.T) {
	db := setupTestDB(t)
	siteID := uuid.New()
	rows := []OtherExpenseForecast{
		{ID: uuid.New(), SiteID: siteID, Period: "2025-02", Uniforms: dec("20"), Signage: dec("5")},
		{ID: uuid.New(), SiteID: siteID, Period: "2025-01", Uniforms: dec("10")},
		{ID: uuid.New(), SiteID: siteID, Period: "2024-12", Uniforms: dec("99")},
	}
	require.NoError(t, db.Create(&rows).Error)

	repo := NewOtherExpenseRepository(db)
	details, err := repo.GetOtherExpenseDetail(context.Background(), siteID, "2025-01")
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "2025-01", details[0].Period)
	assert.True(t, dec("25").Equal(details[1].Sum()))

	_, err = repo.GetOtherExpenseDetail(context.Background(), siteID, "January")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}
