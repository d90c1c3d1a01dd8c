package service

import (
	"github.com/railzwaylabs/sitepnl/internal/pnl/domain"
	"github.com/shopspring/decimal"
)

// siteDetailColumns are the figure columns that keep a per-site breakdown.
// The forecast calculators read their fallbacks from these.
var siteDetailColumns = map[string]bool{
	domain.ColumnExternalRevenue: true,
	domain.ColumnInternalRevenue: true,
	domain.ColumnPayroll:         true,
	domain.ColumnOtherExpense:    true,
	domain.ColumnPteb:            true,
}

type figureKey struct {
	site  string
	month int
}

// buildFigureRows lays budget or actual figures out as P&L rows. Sites are
// visited in request order so site details are stable across runs. Only one
// figure per site and month is honoured.
func buildFigureRows(siteNumbers []string, figures []domain.MonthlyFigures) domain.PnlRows {
	index := make(map[figureKey]domain.MonthlyFigures, len(figures))
	for _, f := range figures {
		if f.Month < 1 || f.Month > domain.MonthsPerYear {
			continue
		}
		key := figureKey{site: f.SiteNumber, month: f.Month}
		if _, ok := index[key]; !ok {
			index[key] = f
		}
	}

	rows := make(domain.PnlRows, 0, len(domain.FigureColumns))
	for _, column := range domain.FigureColumns {
		rows = append(rows, domain.NewPnlRow(column))
	}

	for _, site := range siteNumbers {
		for month := 1; month <= domain.MonthsPerYear; month++ {
			f, ok := index[figureKey{site: site, month: month}]
			if !ok {
				continue
			}
			for _, row := range rows {
				value := f.Column(row.ColumnName)
				mv := row.Month(month)
				mv.Value = mv.Value.Add(value)
				if siteDetailColumns[row.ColumnName] {
					mv.SiteDetails = append(mv.SiteDetails, figureDetail(row.ColumnName, site, value, f))
				}
			}
		}
	}

	for _, row := range rows {
		row.RecalculateTotal()
	}
	return rows
}

func figureDetail(column, site string, value decimal.Decimal, f domain.MonthlyFigures) *domain.SiteMonthlyDetail {
	d := &domain.SiteMonthlyDetail{
		SiteID: site,
		Value:  decimal.NewNullDecimal(value),
	}

	switch column {
	case domain.ColumnExternalRevenue:
		d.ExternalRevenueBreakdown = &domain.ExternalRevenueBreakdown{
			BudgetTotalExternalRevenue: decimal.NewNullDecimal(value),
		}
	case domain.ColumnInternalRevenue:
		internal := &domain.InternalRevenueBreakdown{}
		if f.OccupiedRooms.IsPositive() {
			rooms := decimal.NewNullDecimal(f.OccupiedRooms)
			internal.PerOccupiedRoom = &domain.PerOccupiedRoomBreakdown{
				ForecastedRooms: rooms,
				BudgetRooms:     rooms,
			}
		}
		if f.Payroll.IsPositive() {
			internal.PerLaborHour = &domain.PerLaborHourBreakdown{Total: decimal.NewNullDecimal(f.Payroll)}
		}
		d.InternalRevenueBreakdown = internal
	}
	return d
}

// buildVarianceRows compares actual against budget for every column present
// in both row sets.
func buildVarianceRows(actual, budget domain.PnlRows) []domain.VarianceRow {
	out := make([]domain.VarianceRow, 0, len(budget))
	for _, b := range budget {
		a := actual.Find(b.ColumnName)
		if a == nil {
			continue
		}

		row := domain.VarianceRow{
			ColumnName:       b.ColumnName,
			MonthlyVariances: make([]domain.MonthVariance, 0, domain.MonthsPerYear),
		}
		for i, bm := range b.MonthlyValues {
			actualValue := decimal.Zero
			if i < len(a.MonthlyValues) {
				actualValue = a.MonthlyValues[i].Value
			}
			amount, pct := variance(actualValue, bm.Value)
			row.MonthlyVariances = append(row.MonthlyVariances, domain.MonthVariance{
				Month:      bm.Month,
				Amount:     amount,
				Percentage: pct,
			})
		}
		row.TotalVarianceAmount, row.TotalVariancePercent = variance(a.Total, b.Total)
		out = append(out, row)
	}
	return out
}

// variance returns actual minus budget and the change relative to budget in
// percent. A zero budget reports 100% when anything was recorded.
func variance(actual, budget decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	amount := actual.Sub(budget)
	switch {
	case !budget.IsZero():
		return amount, amount.Div(budget).Mul(hundred).Round(2)
	case !actual.IsZero():
		return amount, hundred
	default:
		return amount, decimal.Zero
	}
}

func sumValues(details []*domain.SiteMonthlyDetail) decimal.Decimal {
	total := decimal.Zero
	for _, d := range details {
		total = total.Add(domain.ValueOrZero(d.Value))
	}
	return total
}

func newValue(v decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(v)
}

func zeroValue() decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.Zero)
}

var hundred = decimal.NewFromInt(100)
