package calculator

import (
	"context"

	"github.com/railzwaylabs/sitepnl/internal/pnl/domain"
	"github.com/shopspring/decimal"
)

// FixedFee bills the contract's fixed fee lines, escalated annually.
type FixedFee struct{}

func (*FixedFee) Name() string { return "fixed_fee" }

func (*FixedFee) Apply(_ context.Context, pass *Pass) error {
	esc, hasEscalator, err := pass.Input.Contract.Escalator()
	if err != nil {
		return err
	}

	monthStart := pass.FirstOfMonth()
	base := decimal.Zero
	total := decimal.Zero
	escalators := []domain.EscalatorEntry{}

	for _, fee := range pass.Input.FixedFees {
		if !fee.ActiveAt(monthStart) {
			continue
		}
		base = base.Add(fee.Fee)

		value := fee.Fee
		if hasEscalator {
			var steps []escalationStep
			value, steps = escalate(fee.Fee, fee.StartDate, fee.EndDate, esc, pass.Year, pass.Month)
			for _, s := range steps {
				escalators = append(escalators, domain.EscalatorEntry{
					Description: s.description,
					Amount:      s.amount,
					IsApplied:   true,
				})
			}
		}
		total = total.Add(value)
	}

	internal := pass.Detail.Internal()
	internal.FixedFee = &domain.FixedFeeBreakdown{
		BaseAmount: decimal.NewNullDecimal(base),
		Escalators: escalators,
		Total:      decimal.NewNullDecimal(total),
	}
	internal.Recalculate()
	return nil
}

func (*FixedFee) Aggregate(sites []*domain.SiteMonthlyDetail, month *domain.MonthValue) {
	base := decimal.Zero
	total := decimal.Zero
	for _, site := range sites {
		if site == nil || site.InternalRevenueBreakdown == nil || site.InternalRevenueBreakdown.FixedFee == nil {
			continue
		}
		ff := site.InternalRevenueBreakdown.FixedFee
		base = base.Add(domain.ValueOrZero(ff.BaseAmount))
		total = total.Add(domain.ValueOrZero(ff.Total))
	}

	internal := month.Internal()
	internal.FixedFee = &domain.FixedFeeBreakdown{
		BaseAmount: decimal.NewNullDecimal(base),
		Escalators: []domain.EscalatorEntry{},
		Total:      decimal.NewNullDecimal(total),
	}
	internal.Recalculate()
}
