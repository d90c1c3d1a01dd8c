package calculator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/railzwaylabs/sitepnl/internal/pnl/domain"
	"github.com/shopspring/decimal"
)

// RevenueShare allocates external revenue across graduated share tiers.
type RevenueShare struct{}

func (*RevenueShare) Name() string { return "revenue_share" }

func (*RevenueShare) Apply(_ context.Context, pass *Pass) error {
	tiers, err := effectiveTiers(pass.Input.RevenueShareThresholds, pass.FirstOfMonth())
	if err != nil {
		return err
	}

	external := pass.ExternalRevenue()
	out, total := allocateTiers(external, tiers)

	internal := pass.Detail.Internal()
	internal.RevenueShare = &domain.RevenueShareBreakdown{
		ForecastedExternalRevenue: decimal.NewNullDecimal(external),
		Tiers:                     out,
		Escalators:                []domain.EscalatorEntry{},
		Total:                     decimal.NewNullDecimal(total),
	}
	internal.Recalculate()
	return nil
}

// effectiveTiers picks the first threshold structure with a tier in effect on
// the given day and returns its effective tiers sorted by amount.
func effectiveTiers(thresholds []domain.RevenueShareThreshold, at time.Time) ([]domain.ThresholdTier, error) {
	var selected []domain.ThresholdTier
	for _, th := range thresholds {
		for _, tier := range th.Tiers {
			if tier.EffectiveAt(at) {
				selected = append(selected, tier)
			}
		}
		if len(selected) > 0 {
			break
		}
	}

	for _, tier := range selected {
		if tier.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: negative tier amount %s", domain.ErrMalformedTierStructure, tier.Amount)
		}
		if !validPercentage(tier.SharePercentage) {
			return nil, fmt.Errorf("%w: share percentage %s", domain.ErrMalformedTierStructure, tier.SharePercentage)
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Amount.LessThan(selected[j].Amount)
	})
	return selected, nil
}

// allocateTiers splits revenue into [start, end) bands where each band ends at
// the next tier's amount and the last band is unbounded.
func allocateTiers(revenue decimal.Decimal, tiers []domain.ThresholdTier) ([]domain.RevenueShareTier, decimal.Decimal) {
	out := make([]domain.RevenueShareTier, 0, len(tiers))
	total := decimal.Zero

	for i, tier := range tiers {
		start := tier.Amount
		upper := revenue
		var end decimal.NullDecimal
		if i+1 < len(tiers) {
			end = decimal.NewNullDecimal(tiers[i+1].Amount)
			upper = decimal.Min(revenue, end.Decimal)
		}

		inTier := decimal.Max(decimal.Zero, upper.Sub(start))
		share := percentOf(inTier, tier.SharePercentage)
		total = total.Add(share)

		out = append(out, domain.RevenueShareTier{
			ThresholdStart: decimal.NewNullDecimal(start),
			ThresholdEnd:   end,
			Percentage:     decimal.NewNullDecimal(tier.SharePercentage),
			RevenueInTier:  decimal.NewNullDecimal(inTier),
			ShareAmount:    decimal.NewNullDecimal(share),
		})
	}
	return out, total
}

func (*RevenueShare) Aggregate(sites []*domain.SiteMonthlyDetail, month *domain.MonthValue) {
	external := decimal.Zero
	total := decimal.Zero
	tiers := []domain.RevenueShareTier{}

	for _, site := range sites {
		if site == nil || site.InternalRevenueBreakdown == nil || site.InternalRevenueBreakdown.RevenueShare == nil {
			continue
		}
		rs := site.InternalRevenueBreakdown.RevenueShare
		external = external.Add(domain.ValueOrZero(rs.ForecastedExternalRevenue))
		total = total.Add(domain.ValueOrZero(rs.Total))
		tiers = append(tiers, rs.Tiers...)
	}

	internal := month.Internal()
	internal.RevenueShare = &domain.RevenueShareBreakdown{
		ForecastedExternalRevenue: decimal.NewNullDecimal(external),
		Tiers:                     tiers,
		Escalators:                []domain.EscalatorEntry{},
		Total:                     decimal.NewNullDecimal(total),
	}
	internal.Recalculate()
}
