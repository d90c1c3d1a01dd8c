package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Scenario string

const (
	ScenarioBudget Scenario = "budget"
	ScenarioActual Scenario = "actual"
)

// SiteRevenueRepository loads the read-only inputs of one site. A missing
// site returns nil, nil.
type SiteRevenueRepository interface {
	GetSiteRevenueInput(ctx context.Context, siteNumber string, year int) (*SiteRevenueInput, error)
}

// MonthlyFigures is one site's approved budget or recorded actual for a month.
type MonthlyFigures struct {
	SiteNumber      string          `json:"site_number"`
	Month           int             `json:"month"`
	ExternalRevenue decimal.Decimal `json:"external_revenue"`
	InternalRevenue decimal.Decimal `json:"internal_revenue"`
	Payroll         decimal.Decimal `json:"payroll"`
	Claims          decimal.Decimal `json:"claims"`
	ParkingRents    decimal.Decimal `json:"parking_rents"`
	OtherExpense    decimal.Decimal `json:"other_expense"`
	Pteb            decimal.Decimal `json:"pteb"`
	Insurance       decimal.Decimal `json:"insurance"`
	OccupiedRooms   decimal.Decimal `json:"occupied_rooms"`
}

// Column returns the figure reported under a P&L column.
func (f MonthlyFigures) Column(column string) decimal.Decimal {
	switch column {
	case ColumnExternalRevenue:
		return f.ExternalRevenue
	case ColumnInternalRevenue:
		return f.InternalRevenue.Abs()
	case ColumnPayroll:
		return f.Payroll
	case ColumnClaims:
		return f.Claims
	case ColumnParkingRents:
		return f.ParkingRents
	case ColumnOtherExpense:
		return f.OtherExpense
	case ColumnPteb:
		return f.Pteb.Abs()
	case ColumnInsurance:
		return f.Insurance.Abs()
	case ColumnOccupiedRooms:
		return f.OccupiedRooms
	}
	return decimal.Zero
}

type FiguresRepository interface {
	ListMonthlyFigures(ctx context.Context, siteNumbers []string, year int, scenario Scenario) ([]MonthlyFigures, error)
}

type PayrollDetail struct {
	JobCode      string              `json:"job_code"`
	RegularHours decimal.NullDecimal `json:"regular_hours"`
}

type PayrollRepository interface {
	// GetPayroll returns payroll detail lines for a "YYYY-MM" period.
	GetPayroll(ctx context.Context, siteID uuid.UUID, period string) ([]PayrollDetail, error)
}

type BillableExpenseRepository interface {
	GetPayrollExpenseBudget(ctx context.Context, siteID uuid.UUID, year, month int) (decimal.Decimal, error)
	GetBillableExpenseBudget(ctx context.Context, siteID uuid.UUID, year, month int) (decimal.Decimal, error)
	GetOtherExpenseBudget(ctx context.Context, siteID uuid.UUID, year, month int) (decimal.Decimal, error)
}

// OtherExpenseDetail holds the forecasted other-expense fields of one month.
type OtherExpenseDetail struct {
	Period string `json:"period"`

	EmployeeRelations            decimal.Decimal `json:"employee_relations"`
	FuelVehicles                 decimal.Decimal `json:"fuel_vehicles"`
	LossAndDamageClaims          decimal.Decimal `json:"loss_and_damage_claims"`
	OfficeSupplies               decimal.Decimal `json:"office_supplies"`
	OutsideServices              decimal.Decimal `json:"outside_services"`
	RentsParking                 decimal.Decimal `json:"rents_parking"`
	RepairsAndMaintenance        decimal.Decimal `json:"repairs_and_maintenance"`
	RepairsAndMaintenanceVehicle decimal.Decimal `json:"repairs_and_maintenance_vehicle"`
	Signage                      decimal.Decimal `json:"signage"`
	SuppliesAndEquipment         decimal.Decimal `json:"supplies_and_equipment"`
	TicketsAndPrintedMaterial    decimal.Decimal `json:"tickets_and_printed_material"`
	Uniforms                     decimal.Decimal `json:"uniforms"`
}

// Sum adds the twelve forecasted fields.
func (d OtherExpenseDetail) Sum() decimal.Decimal {
	return decimal.Sum(
		d.EmployeeRelations,
		d.FuelVehicles,
		d.LossAndDamageClaims,
		d.OfficeSupplies,
		d.OutsideServices,
		d.RentsParking,
		d.RepairsAndMaintenance,
		d.RepairsAndMaintenanceVehicle,
		d.Signage,
		d.SuppliesAndEquipment,
		d.TicketsAndPrintedMaterial,
		d.Uniforms,
	)
}

type OtherExpenseRepository interface {
	// GetOtherExpenseDetail returns the forecast detail of every month of the
	// year containing monthYear ("YYYY-MM").
	GetOtherExpenseDetail(ctx context.Context, siteID uuid.UUID, monthYear string) ([]OtherExpenseDetail, error)
}
