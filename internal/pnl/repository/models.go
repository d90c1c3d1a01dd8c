package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/railzwaylabs/sitepnl/internal/pnl/domain"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Site struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	SiteNumber string    `gorm:"uniqueIndex;not null"`
	Name       string    `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Site) TableName() string { return "sites" }

type Contract struct {
	ID                     uuid.UUID                                         `gorm:"type:uuid;primaryKey"`
	SiteID                 uuid.UUID                                         `gorm:"type:uuid;uniqueIndex;not null"`
	ContractTypes          datatypes.JSONSlice[domain.ContractType]          `gorm:"not null"`
	IncrementMonth         *int                                              `gorm:"column:increment_month"`
	IncrementAmount        decimal.NullDecimal                               `gorm:"type:numeric"`
	OccupiedRoomRate       decimal.NullDecimal                               `gorm:"type:numeric"`
	BillableAccountConfigs datatypes.JSONSlice[domain.BillableAccountConfig] `gorm:"column:billable_account_configs"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (Contract) TableName() string { return "contracts" }

type SiteStatistic struct {
	ID              uuid.UUID           `gorm:"type:uuid;primaryKey"`
	SiteID          uuid.UUID           `gorm:"type:uuid;index:idx_site_statistics_site_date;not null"`
	Date            time.Time           `gorm:"index:idx_site_statistics_site_date;not null"`
	ValetDaily      decimal.NullDecimal `gorm:"type:numeric"`
	ValetMonthly    decimal.NullDecimal `gorm:"type:numeric"`
	ValetOvernight  decimal.NullDecimal `gorm:"type:numeric"`
	ValetAggregator decimal.NullDecimal `gorm:"type:numeric"`
	SelfDaily       decimal.NullDecimal `gorm:"type:numeric"`
	SelfMonthly     decimal.NullDecimal `gorm:"type:numeric"`
	SelfOvernight   decimal.NullDecimal `gorm:"type:numeric"`
	SelfAggregator  decimal.NullDecimal `gorm:"type:numeric"`
	OccupiedRooms   decimal.NullDecimal `gorm:"type:numeric"`
}

func (SiteStatistic) TableName() string { return "site_statistics" }

type FixedFee struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SiteID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	Fee       decimal.Decimal `gorm:"type:numeric;not null"`
	StartDate time.Time       `gorm:"not null"`
	EndDate   *time.Time
}

func (FixedFee) TableName() string { return "fixed_fees" }

type LaborHourJob struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SiteID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	JobCode   string          `gorm:"not null"`
	Rate      decimal.Decimal `gorm:"type:numeric;not null"`
	StartDate time.Time       `gorm:"not null"`
	EndDate   *time.Time
}

func (LaborHourJob) TableName() string { return "labor_hour_jobs" }

type RevenueShareThreshold struct {
	ID        uuid.UUID                                 `gorm:"type:uuid;primaryKey"`
	SiteID    uuid.UUID                                 `gorm:"type:uuid;index;not null"`
	SortOrder int                                       `gorm:"not null;default:0"`
	Tiers     datatypes.JSONSlice[domain.ThresholdTier] `gorm:"not null"`
}

func (RevenueShareThreshold) TableName() string { return "revenue_share_thresholds" }

type BillableAccount struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SiteID      uuid.UUID       `gorm:"type:uuid;index:idx_billable_accounts_site_year;not null"`
	Year        int             `gorm:"index:idx_billable_accounts_site_year;not null"`
	AccountCode string          `gorm:"not null"`
	Amount      decimal.Decimal `gorm:"type:numeric;not null"`
	IsExcluded  bool            `gorm:"not null;default:false"`
}

func (BillableAccount) TableName() string { return "billable_accounts" }

type ParkingRate struct {
	ID      uuid.UUID           `gorm:"type:uuid;primaryKey"`
	SiteID  uuid.UUID           `gorm:"type:uuid;index:idx_parking_rates_site_year;not null"`
	Year    int                 `gorm:"index:idx_parking_rates_site_year;not null"`
	Details []ParkingRateDetail `gorm:"foreignKey:ParkingRateID"`
}

func (ParkingRate) TableName() string { return "parking_rates" }

type ParkingRateDetail struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ParkingRateID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Month         int             `gorm:"not null"`
	RateCategory  string          `gorm:"not null"`
	Rate          decimal.Decimal `gorm:"type:numeric;not null"`
}

func (ParkingRateDetail) TableName() string { return "parking_rate_details" }

type PayrollDetail struct {
	ID           uuid.UUID           `gorm:"type:uuid;primaryKey"`
	SiteID       uuid.UUID           `gorm:"type:uuid;index:idx_payroll_details_site_period;not null"`
	Period       string              `gorm:"index:idx_payroll_details_site_period;not null"`
	JobCode      string              `gorm:"not null"`
	RegularHours decimal.NullDecimal `gorm:"type:numeric"`
}

func (PayrollDetail) TableName() string { return "payroll_details" }

type MonthlyFigure struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SiteNumber      string          `gorm:"uniqueIndex:ux_monthly_figures;not null"`
	Year            int             `gorm:"uniqueIndex:ux_monthly_figures;not null"`
	Month           int             `gorm:"uniqueIndex:ux_monthly_figures;not null"`
	Scenario        string          `gorm:"uniqueIndex:ux_monthly_figures;not null"`
	ExternalRevenue decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	InternalRevenue decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	Payroll         decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	Claims          decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	ParkingRents    decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	OtherExpense    decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	Pteb            decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	Insurance       decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	OccupiedRooms   decimal.Decimal `gorm:"type:numeric;not null;default:0"`
}

func (MonthlyFigure) TableName() string { return "monthly_figures" }

type ExpenseBudget struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SiteID      uuid.UUID       `gorm:"type:uuid;index:idx_expense_budgets_site_month;not null"`
	Year        int             `gorm:"index:idx_expense_budgets_site_month;not null"`
	Month       int             `gorm:"index:idx_expense_budgets_site_month;not null"`
	AccountCode string          `gorm:"not null"`
	Category    string          `gorm:"not null"`
	IsBillable  bool            `gorm:"not null;default:false"`
	Amount      decimal.Decimal `gorm:"type:numeric;not null"`
}

func (ExpenseBudget) TableName() string { return "expense_budgets" }

type OtherExpenseForecast struct {
	ID                           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SiteID                       uuid.UUID       `gorm:"type:uuid;uniqueIndex:ux_other_expense_forecasts;not null"`
	Period                       string          `gorm:"uniqueIndex:ux_other_expense_forecasts;not null"`
	EmployeeRelations            decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	FuelVehicles                 decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	LossAndDamageClaims          decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	OfficeSupplies               decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	OutsideServices              decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	RentsParking                 decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	RepairsAndMaintenance        decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	RepairsAndMaintenanceVehicle decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	Signage                      decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	SuppliesAndEquipment         decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	TicketsAndPrintedMaterial    decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	Uniforms                     decimal.Decimal `gorm:"type:numeric;not null;default:0"`
}

func (OtherExpenseForecast) TableName() string { return "other_expense_forecasts" }

type ManagementFee struct {
	ID     uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SiteID uuid.UUID       `gorm:"type:uuid;uniqueIndex:ux_management_fees;not null"`
	Year   int             `gorm:"uniqueIndex:ux_management_fees;not null"`
	Month  int             `gorm:"uniqueIndex:ux_management_fees;not null"`
	Amount decimal.Decimal `gorm:"type:numeric;not null"`
}

func (ManagementFee) TableName() string { return "management_fees" }

type OtherRevenue struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SiteID      uuid.UUID       `gorm:"type:uuid;index:idx_other_revenues_site_year;not null"`
	Year        int             `gorm:"index:idx_other_revenues_site_year;not null"`
	Month       int             `gorm:"not null"`
	Description string          `gorm:"not null;default:''"`
	Amount      decimal.Decimal `gorm:"type:numeric;not null"`
}

func (OtherRevenue) TableName() string { return "other_revenues" }

// Models lists every table owned by the P&L engine in dependency order.
func Models() []any {
	return []any{
		&Site{},
		&Contract{},
		&SiteStatistic{},
		&FixedFee{},
		&LaborHourJob{},
		&RevenueShareThreshold{},
		&BillableAccount{},
		&ParkingRate{},
		&ParkingRateDetail{},
		&PayrollDetail{},
		&MonthlyFigure{},
		&ExpenseBudget{},
		&OtherExpenseForecast{},
		&ManagementFee{},
		&OtherRevenue{},
	}
}
