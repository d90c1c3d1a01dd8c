package calculator

import (
	"context"

	"github.com/railzwaylabs/sitepnl/internal/pnl/domain"
	"github.com/shopspring/decimal"
)

// ExternalRevenue prices parking volumes with the site's rate table.
type ExternalRevenue struct{}

func (*ExternalRevenue) Name() string { return "external_revenue" }

func (*ExternalRevenue) Apply(_ context.Context, pass *Pass) error {
	var stats []domain.SiteStatistic
	for _, s := range pass.Input.Statistics {
		if s.InMonth(pass.Year, pass.Month) {
			stats = append(stats, s)
		}
	}

	// No statistics is "no data", not a computed zero.
	if len(stats) == 0 {
		pass.Detail.ExternalRevenueBreakdown = nil
		return nil
	}

	breakdown := &domain.ExternalRevenueBreakdown{}
	total := decimal.Zero
	for _, category := range domain.RateCategories {
		volume := decimal.Zero
		for _, s := range stats {
			if v := s.Volume(category); v.Valid {
				volume = volume.Add(v.Decimal)
			}
		}

		rate := pass.Input.RateFor(pass.Month, category)
		value := decimal.Zero
		if rate.Valid {
			value = volume.Mul(rate.Decimal)
		}

		*breakdown.Component(category) = &domain.RevenueComponent{
			Statistic: decimal.NewNullDecimal(volume),
			Rate:      rate,
			Value:     decimal.NewNullDecimal(value),
		}
		total = total.Add(value)
	}
	breakdown.CalculatedTotalExternalRevenue = decimal.NewNullDecimal(total)

	pass.Detail.ExternalRevenueBreakdown = breakdown
	return nil
}

// Aggregate sums volumes and values per category. Rates are site specific and
// are left empty on the aggregate.
func (*ExternalRevenue) Aggregate(sites []*domain.SiteMonthlyDetail, month *domain.MonthValue) {
	var agg *domain.ExternalRevenueBreakdown
	total := decimal.Zero

	for _, site := range sites {
		if site == nil || site.ExternalRevenueBreakdown == nil {
			continue
		}
		if agg == nil {
			agg = &domain.ExternalRevenueBreakdown{}
		}
		for _, category := range domain.RateCategories {
			src := *site.ExternalRevenueBreakdown.Component(category)
			if src == nil {
				continue
			}
			dst := agg.Component(category)
			if *dst == nil {
				*dst = &domain.RevenueComponent{
					Statistic: decimal.NewNullDecimal(decimal.Zero),
					Value:     decimal.NewNullDecimal(decimal.Zero),
				}
			}
			(*dst).Statistic = decimal.NewNullDecimal((*dst).Statistic.Decimal.Add(domain.ValueOrZero(src.Statistic)))
			(*dst).Value = decimal.NewNullDecimal((*dst).Value.Decimal.Add(domain.ValueOrZero(src.Value)))
		}
		total = total.Add(site.ExternalRevenueBreakdown.Total())
	}

	if agg != nil {
		agg.CalculatedTotalExternalRevenue = decimal.NewNullDecimal(total)
	}
	month.ExternalRevenueBreakdown = agg
}
