package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/railzwaylabs/sitepnl/internal/pnl/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ExpenseCategoryPayroll      = "payroll"
	ExpenseCategoryBillable     = "billable_expense"
	ExpenseCategoryOtherExpense = "other_expense"
)

var ErrInvalidPeriod = errors.New("invalid_period")

type repository struct {
	db *gorm.DB
}

func NewSiteRevenueRepository(db *gorm.DB) domain.SiteRevenueRepository {
	return &repository{db: db}
}

func NewFiguresRepository(db *gorm.DB) domain.FiguresRepository {
	return &repository{db: db}
}

func NewPayrollRepository(db *gorm.DB) domain.PayrollRepository {
	return &repository{db: db}
}

func NewBillableExpenseRepository(db *gorm.DB) domain.BillableExpenseRepository {
	return &repository{db: db}
}

func NewOtherExpenseRepository(db *gorm.DB) domain.OtherExpenseRepository {
	return &repository{db: db}
}

func (r *repository) GetSiteRevenueInput(ctx context.Context, siteNumber string, year int) (*domain.SiteRevenueInput, error) {
	db := r.db.WithContext(ctx)

	var site Site
	if err := db.Where("site_number = ?", siteNumber).First(&site).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapErr("load site", err)
	}

	in := &domain.SiteRevenueInput{
		SiteID:     site.ID,
		SiteNumber: site.SiteNumber,
		SiteName:   site.Name,
	}

	var contract Contract
	err := db.Where("site_id = ?", site.ID).First(&contract).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return nil, wrapErr("load contract", err)
	default:
		in.Contract = &domain.Contract{
			ContractTypes:          contract.ContractTypes,
			IncrementMonth:         contract.IncrementMonth,
			IncrementAmount:        contract.IncrementAmount,
			OccupiedRoomRate:       contract.OccupiedRoomRate,
			BillableAccountConfigs: contract.BillableAccountConfigs,
		}
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	var stats []SiteStatistic
	if err := db.Where("site_id = ? AND date >= ? AND date < ?", site.ID, from, from.AddDate(1, 0, 0)).
		Order("date, id").Find(&stats).Error; err != nil {
		return nil, wrapErr("load statistics", err)
	}
	for _, s := range stats {
		in.Statistics = append(in.Statistics, domain.SiteStatistic{
			Date:            s.Date.UTC(),
			ValetDaily:      s.ValetDaily,
			ValetMonthly:    s.ValetMonthly,
			ValetOvernight:  s.ValetOvernight,
			ValetAggregator: s.ValetAggregator,
			SelfDaily:       s.SelfDaily,
			SelfMonthly:     s.SelfMonthly,
			SelfOvernight:   s.SelfOvernight,
			SelfAggregator:  s.SelfAggregator,
			OccupiedRooms:   s.OccupiedRooms,
		})
	}

	var fees []FixedFee
	if err := db.Where("site_id = ?", site.ID).Order("start_date, id").Find(&fees).Error; err != nil {
		return nil, wrapErr("load fixed fees", err)
	}
	for _, f := range fees {
		in.FixedFees = append(in.FixedFees, domain.FixedFee{
			ID:        f.ID,
			Fee:       f.Fee,
			StartDate: f.StartDate.UTC(),
			EndDate:   utcPtr(f.EndDate),
		})
	}

	var jobs []LaborHourJob
	if err := db.Where("site_id = ?", site.ID).Order("job_code, start_date, id").Find(&jobs).Error; err != nil {
		return nil, wrapErr("load labor hour jobs", err)
	}
	for _, j := range jobs {
		in.LaborHourJobs = append(in.LaborHourJobs, domain.LaborHourJob{
			ID:        j.ID,
			JobCode:   j.JobCode,
			Rate:      j.Rate,
			StartDate: j.StartDate.UTC(),
			EndDate:   utcPtr(j.EndDate),
		})
	}

	var thresholds []RevenueShareThreshold
	if err := db.Where("site_id = ?", site.ID).Order("sort_order, id").Find(&thresholds).Error; err != nil {
		return nil, wrapErr("load revenue share thresholds", err)
	}
	for _, t := range thresholds {
		in.RevenueShareThresholds = append(in.RevenueShareThresholds, domain.RevenueShareThreshold{
			ID:    t.ID,
			Tiers: t.Tiers,
		})
	}

	var accounts []BillableAccount
	if err := db.Where("site_id = ? AND year = ?", site.ID, year).Order("account_code, id").Find(&accounts).Error; err != nil {
		return nil, wrapErr("load billable accounts", err)
	}
	for _, a := range accounts {
		in.BillableAccounts = append(in.BillableAccounts, domain.BillableAccount{
			ID:          a.ID,
			AccountCode: a.AccountCode,
			Amount:      a.Amount,
			IsExcluded:  a.IsExcluded,
		})
	}

	var rates []ParkingRate
	if err := db.Where("site_id = ? AND year = ?", site.ID, year).
		Preload("Details", func(tx *gorm.DB) *gorm.DB { return tx.Order("month, rate_category, id") }).
		Order("id").Find(&rates).Error; err != nil {
		return nil, wrapErr("load parking rates", err)
	}
	for _, rate := range rates {
		pr := domain.ParkingRate{Year: rate.Year}
		for _, d := range rate.Details {
			pr.Details = append(pr.Details, domain.ParkingRateDetail{
				Month:        d.Month,
				RateCategory: domain.RateCategory(d.RateCategory),
				Rate:         d.Rate,
			})
		}
		in.ParkingRates = append(in.ParkingRates, pr)
	}

	var mgmtFees []ManagementFee
	if err := db.Where("site_id = ? AND year = ?", site.ID, year).Order("month").Find(&mgmtFees).Error; err != nil {
		return nil, wrapErr("load management fees", err)
	}
	if len(mgmtFees) > 0 {
		in.ManagementAgreement = &domain.ManagementAgreement{}
		for _, f := range mgmtFees {
			in.ManagementAgreement.Fees = append(in.ManagementAgreement.Fees, domain.ManagementFee{Month: f.Month, Amount: f.Amount})
		}
	}

	var others []OtherRevenue
	if err := db.Where("site_id = ? AND year = ?", site.ID, year).Order("month, id").Find(&others).Error; err != nil {
		return nil, wrapErr("load other revenues", err)
	}
	for _, o := range others {
		in.OtherRevenues = append(in.OtherRevenues, domain.OtherRevenue{
			Month:       o.Month,
			Description: o.Description,
			Amount:      o.Amount,
		})
	}

	return in, nil
}

func (r *repository) ListMonthlyFigures(ctx context.Context, siteNumbers []string, year int, scenario domain.Scenario) ([]domain.MonthlyFigures, error) {
	if len(siteNumbers) == 0 {
		return nil, nil
	}

	var rows []MonthlyFigure
	err := r.db.WithContext(ctx).
		Where("site_number IN ? AND year = ? AND scenario = ?", siteNumbers, year, string(scenario)).
		Order("site_number, month").
		Find(&rows).Error
	if err != nil {
		return nil, wrapErr("list monthly figures", err)
	}

	out := make([]domain.MonthlyFigures, 0, len(rows))
	for _, f := range rows {
		out = append(out, domain.MonthlyFigures{
			SiteNumber:      f.SiteNumber,
			Month:           f.Month,
			ExternalRevenue: f.ExternalRevenue,
			InternalRevenue: f.InternalRevenue,
			Payroll:         f.Payroll,
			Claims:          f.Claims,
			ParkingRents:    f.ParkingRents,
			OtherExpense:    f.OtherExpense,
			Pteb:            f.Pteb,
			Insurance:       f.Insurance,
			OccupiedRooms:   f.OccupiedRooms,
		})
	}
	return out, nil
}

func (r *repository) GetPayroll(ctx context.Context, siteID uuid.UUID, period string) ([]domain.PayrollDetail, error) {
	var rows []domain.PayrollDetail
	err := r.db.WithContext(ctx).Raw(
		`SELECT job_code, regular_hours
		 FROM payroll_details
		 WHERE site_id = ? AND period = ?
		 ORDER BY job_code, id`,
		siteID,
		period,
	).Scan(&rows).Error
	if err != nil {
		return nil, wrapErr("get payroll", err)
	}
	return rows, nil
}

func (r *repository) GetPayrollExpenseBudget(ctx context.Context, siteID uuid.UUID, year, month int) (decimal.Decimal, error) {
	return r.sumExpenseBudget(ctx, ExpenseCategoryPayroll, siteID, year, month)
}

func (r *repository) GetBillableExpenseBudget(ctx context.Context, siteID uuid.UUID, year, month int) (decimal.Decimal, error) {
	return r.sumExpenseBudget(ctx, ExpenseCategoryBillable, siteID, year, month)
}

func (r *repository) GetOtherExpenseBudget(ctx context.Context, siteID uuid.UUID, year, month int) (decimal.Decimal, error) {
	return r.sumExpenseBudget(ctx, ExpenseCategoryOtherExpense, siteID, year, month)
}

// sumExpenseBudget totals the billable budget lines of a category.
func (r *repository) sumExpenseBudget(ctx context.Context, category string, siteID uuid.UUID, year, month int) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount), 0) AS total
		 FROM expense_budgets
		 WHERE site_id = ? AND year = ? AND month = ? AND category = ? AND is_billable = ?`,
		siteID,
		year,
		month,
		category,
		true,
	).Scan(&row).Error
	if err != nil {
		return decimal.Zero, wrapErr("sum "+category+" budget", err)
	}
	return row.Total, nil
}

func (r *repository) GetOtherExpenseDetail(ctx context.Context, siteID uuid.UUID, monthYear string) ([]domain.OtherExpenseDetail, error) {
	period, err := time.Parse("2006-01", strings.TrimSpace(monthYear))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, monthYear)
	}

	var rows []OtherExpenseForecast
	err = r.db.WithContext(ctx).
		Where("site_id = ? AND period LIKE ?", siteID, period.Format("2006")+"-%").
		Order("period").
		Find(&rows).Error
	if err != nil {
		return nil, wrapErr("get other expense detail", err)
	}

	out := make([]domain.OtherExpenseDetail, 0, len(rows))
	for _, f := range rows {
		out = append(out, domain.OtherExpenseDetail{
			Period:                       f.Period,
			EmployeeRelations:            f.EmployeeRelations,
			FuelVehicles:                 f.FuelVehicles,
			LossAndDamageClaims:          f.LossAndDamageClaims,
			OfficeSupplies:               f.OfficeSupplies,
			OutsideServices:              f.OutsideServices,
			RentsParking:                 f.RentsParking,
			RepairsAndMaintenance:        f.RepairsAndMaintenance,
			RepairsAndMaintenanceVehicle: f.RepairsAndMaintenanceVehicle,
			Signage:                      f.Signage,
			SuppliesAndEquipment:         f.SuppliesAndEquipment,
			TicketsAndPrintedMaterial:    f.TicketsAndPrintedMaterial,
			Uniforms:                     f.Uniforms,
		})
	}
	return out, nil
}

// wrapErr adds the postgres error code when the driver reports one.
func wrapErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s: postgres %s: %w", op, pgErr.Code, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
