package domain

import "github.com/shopspring/decimal"

const (
	ColumnExternalRevenue = "ExternalRevenue"
	ColumnInternalRevenue = "InternalRevenue"
	ColumnPayroll         = "Payroll"
	ColumnClaims          = "Claims"
	ColumnParkingRents    = "ParkingRents"
	ColumnOtherExpense    = "OtherExpense"
	ColumnPteb            = "Pteb"
	ColumnInsurance       = "Insurance"
	ColumnOccupiedRooms   = "OccupiedRooms"

	// ColumnPerLaborHour is read by the labor hour fallback. No budget source
	// produces it today, so the lookup resolves to zero.
	ColumnPerLaborHour = "PerLaborHour"
)

// FigureColumns is the column order of budget and actual rows.
var FigureColumns = []string{
	ColumnExternalRevenue,
	ColumnInternalRevenue,
	ColumnPayroll,
	ColumnClaims,
	ColumnParkingRents,
	ColumnOtherExpense,
	ColumnPteb,
	ColumnInsurance,
	ColumnOccupiedRooms,
}

const MonthsPerYear = 12

type MonthValue struct {
	// Month is 0-based.
	Month                    int                       `json:"month"`
	Value                    decimal.Decimal           `json:"value"`
	InternalRevenueBreakdown *InternalRevenueBreakdown `json:"internal_revenue_breakdown,omitempty"`
	ExternalRevenueBreakdown *ExternalRevenueBreakdown `json:"external_revenue_breakdown,omitempty"`
	SiteDetails              []*SiteMonthlyDetail      `json:"site_details,omitempty"`
}

// Internal returns the aggregate internal breakdown, creating it on first use.
func (m *MonthValue) Internal() *InternalRevenueBreakdown {
	if m.InternalRevenueBreakdown == nil {
		m.InternalRevenueBreakdown = &InternalRevenueBreakdown{}
	}
	return m.InternalRevenueBreakdown
}

// SiteDetail finds the detail of a site by site number.
func (m *MonthValue) SiteDetail(siteNumber string) *SiteMonthlyDetail {
	if m == nil {
		return nil
	}
	for _, d := range m.SiteDetails {
		if d != nil && d.SiteID == siteNumber {
			return d
		}
	}
	return nil
}

func (m *MonthValue) Clone() *MonthValue {
	if m == nil {
		return nil
	}
	out := *m
	out.InternalRevenueBreakdown = m.InternalRevenueBreakdown.Clone()
	out.ExternalRevenueBreakdown = m.ExternalRevenueBreakdown.Clone()
	if m.SiteDetails != nil {
		out.SiteDetails = make([]*SiteMonthlyDetail, len(m.SiteDetails))
		for i, d := range m.SiteDetails {
			out.SiteDetails[i] = d.Clone()
		}
	}
	return &out
}

type PnlRow struct {
	ColumnName    string          `json:"column_name"`
	MonthlyValues []*MonthValue   `json:"monthly_values"`
	Total         decimal.Decimal `json:"total"`
}

// NewPnlRow returns a row with twelve empty months.
func NewPnlRow(column string) *PnlRow {
	row := &PnlRow{
		ColumnName:    column,
		MonthlyValues: make([]*MonthValue, MonthsPerYear),
		Total:         decimal.Zero,
	}
	for i := range row.MonthlyValues {
		row.MonthlyValues[i] = &MonthValue{Month: i, Value: decimal.Zero}
	}
	return row
}

// Month returns the month value for a 1-based month.
func (r *PnlRow) Month(month int) *MonthValue {
	if r == nil || month < 1 || month > len(r.MonthlyValues) {
		return nil
	}
	return r.MonthlyValues[month-1]
}

// RecalculateTotal sums the monthly values.
func (r *PnlRow) RecalculateTotal() {
	total := decimal.Zero
	for _, mv := range r.MonthlyValues {
		total = total.Add(mv.Value)
	}
	r.Total = total
}

func (r *PnlRow) Clone() *PnlRow {
	if r == nil {
		return nil
	}
	out := *r
	out.MonthlyValues = make([]*MonthValue, len(r.MonthlyValues))
	for i, mv := range r.MonthlyValues {
		out.MonthlyValues[i] = mv.Clone()
	}
	return &out
}

// PnlRows is an ordered set of rows addressed by column name.
type PnlRows []*PnlRow

func (rows PnlRows) Find(column string) *PnlRow {
	for _, r := range rows {
		if r.ColumnName == column {
			return r
		}
	}
	return nil
}

// SiteDetail reads a site's detail from a row for a 1-based month.
func (rows PnlRows) SiteDetail(column string, month int, siteNumber string) *SiteMonthlyDetail {
	return rows.Find(column).Month(month).SiteDetail(siteNumber)
}

// Replace swaps the row with the same column name, keeping its position.
func (rows PnlRows) Replace(row *PnlRow) {
	for i, r := range rows {
		if r.ColumnName == row.ColumnName {
			rows[i] = row
			return
		}
	}
}

func (rows PnlRows) Clone() PnlRows {
	out := make(PnlRows, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}

type MonthVariance struct {
	Month      int             `json:"month"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
}

type VarianceRow struct {
	ColumnName           string          `json:"column_name"`
	MonthlyVariances     []MonthVariance `json:"monthly_variances"`
	TotalVarianceAmount  decimal.Decimal `json:"total_variance_amount"`
	TotalVariancePercent decimal.Decimal `json:"total_variance_percent"`
}

// SiteFailure records a site whose inputs could not be loaded. The site
// contributes zero to every row.
type SiteFailure struct {
	SiteID string `json:"site_id"`
	Reason string `json:"reason"`
}

type PnlResult struct {
	Year         int           `json:"year"`
	ActualRows   PnlRows       `json:"actual_rows"`
	BudgetRows   PnlRows       `json:"budget_rows"`
	ForecastRows PnlRows       `json:"forecast_rows"`
	VarianceRows []VarianceRow `json:"variance_rows"`
	SiteFailures []SiteFailure `json:"site_failures"`
}
