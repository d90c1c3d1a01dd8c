package calculator

import (
	"context"

	"github.com/railzwaylabs/sitepnl/internal/pnl/domain"
	"github.com/shopspring/decimal"
)

// PerOccupiedRoom bills the contract room rate against occupied rooms.
// Forecast rooms come from site statistics; without them the budget rooms of
// the InternalRevenue budget row are used.
type PerOccupiedRoom struct{}

func (*PerOccupiedRoom) Name() string { return "per_occupied_room" }

func (c *PerOccupiedRoom) Apply(_ context.Context, pass *Pass) error {
	fee := decimal.Zero
	if pass.Input.Contract != nil {
		fee = domain.ValueOrZero(pass.Input.Contract.OccupiedRoomRate)
	}

	forecastRooms := decimal.Zero
	for _, s := range pass.Input.Statistics {
		if s.InMonth(pass.Year, pass.Month) && s.OccupiedRooms.Valid {
			forecastRooms = forecastRooms.Add(s.OccupiedRooms.Decimal)
		}
	}

	budgetRooms := decimal.Zero
	if d := pass.budgetDetail(domain.ColumnInternalRevenue); d != nil && d.InternalRevenueBreakdown != nil && d.InternalRevenueBreakdown.PerOccupiedRoom != nil {
		budgetRooms = domain.ValueOrZero(d.InternalRevenueBreakdown.PerOccupiedRoom.BudgetRooms)
	}

	rooms := budgetRooms
	if forecastRooms.IsPositive() {
		rooms = forecastRooms
	}
	baseRevenue := fee.Mul(rooms)

	escalation := decimal.Zero
	if pass.ExternalRevenue().IsPositive() {
		escalation = c.escalation(pass, baseRevenue)
	}

	out := &domain.PerOccupiedRoomBreakdown{
		FeePerRoom:  fee,
		BaseRevenue: decimal.NewNullDecimal(baseRevenue),
		Escalators:  []domain.EscalatorEntry{},
		Total:       decimal.NewNullDecimal(baseRevenue.Add(escalation)),
	}
	if forecastRooms.IsPositive() {
		out.ForecastedRooms = decimal.NewNullDecimal(forecastRooms)
	} else {
		out.BudgetRooms = decimal.NewNullDecimal(budgetRooms)
	}

	internal := pass.Detail.Internal()
	internal.PerOccupiedRoom = out
	internal.Recalculate()
	return nil
}

// escalation is evaluated only for months with external revenue. Room rate
// escalators are not contracted yet, so it contributes nothing.
func (*PerOccupiedRoom) escalation(_ *Pass, _ decimal.Decimal) decimal.Decimal {
	return decimal.Zero
}

func (*PerOccupiedRoom) Aggregate(sites []*domain.SiteMonthlyDetail, month *domain.MonthValue) {
	fee := decimal.Zero
	forecastRooms := decimal.Zero
	budgetRooms := decimal.Zero
	baseRevenue := decimal.Zero
	total := decimal.Zero

	for _, site := range sites {
		if site == nil || site.InternalRevenueBreakdown == nil || site.InternalRevenueBreakdown.PerOccupiedRoom == nil {
			continue
		}
		por := site.InternalRevenueBreakdown.PerOccupiedRoom
		if fee.IsZero() && por.FeePerRoom.IsPositive() {
			fee = por.FeePerRoom
		}
		forecastRooms = forecastRooms.Add(domain.ValueOrZero(por.ForecastedRooms))
		budgetRooms = budgetRooms.Add(domain.ValueOrZero(por.BudgetRooms))
		baseRevenue = baseRevenue.Add(domain.ValueOrZero(por.BaseRevenue))
		total = total.Add(domain.ValueOrZero(por.Total))
	}

	out := &domain.PerOccupiedRoomBreakdown{
		FeePerRoom:  fee,
		BaseRevenue: decimal.NewNullDecimal(baseRevenue),
		Escalators:  []domain.EscalatorEntry{},
		Total:       decimal.NewNullDecimal(total),
	}
	if forecastRooms.IsPositive() {
		out.ForecastedRooms = decimal.NewNullDecimal(forecastRooms)
	} else {
		out.BudgetRooms = decimal.NewNullDecimal(budgetRooms)
	}

	internal := month.Internal()
	internal.PerOccupiedRoom = out
	internal.Recalculate()
}
