package calculator

import (
	"context"

	"github.com/railzwaylabs/sitepnl/internal/pnl/domain"
	"github.com/shopspring/decimal"
)

// ManagementAgreement reports the management fee recorded for the month on
// management agreement contracts. The fee is settled elsewhere; nothing here
// escalates or derives it.
type ManagementAgreement struct{}

func (*ManagementAgreement) Name() string { return "management_agreement" }

func (*ManagementAgreement) Apply(_ context.Context, pass *Pass) error {
	if !pass.Input.Contract.HasType(domain.ContractTypeManagementAgreement) {
		return nil
	}
	fee, ok := pass.Input.ManagementAgreement.FeeFor(pass.Month)
	if !ok {
		return nil
	}

	internal := pass.Detail.Internal()
	internal.ManagementAgreement = &domain.ManagementAgreementBreakdown{Total: decimal.NewNullDecimal(fee)}
	internal.Recalculate()
	return nil
}

func (*ManagementAgreement) Aggregate(sites []*domain.SiteMonthlyDetail, month *domain.MonthValue) {
	total := decimal.Zero
	found := false
	for _, site := range sites {
		if site == nil || site.InternalRevenueBreakdown == nil || site.InternalRevenueBreakdown.ManagementAgreement == nil {
			continue
		}
		found = true
		total = total.Add(domain.ValueOrZero(site.InternalRevenueBreakdown.ManagementAgreement.Total))
	}
	if !found {
		return
	}

	internal := month.Internal()
	internal.ManagementAgreement = &domain.ManagementAgreementBreakdown{Total: decimal.NewNullDecimal(total)}
	internal.Recalculate()
}

// OtherRevenue sums the miscellaneous revenue lines recorded for the month,
// whatever the contract type.
type OtherRevenue struct{}

func (*OtherRevenue) Name() string { return "other_revenue" }

func (*OtherRevenue) Apply(_ context.Context, pass *Pass) error {
	total := decimal.Zero
	found := false
	for _, r := range pass.Input.OtherRevenues {
		if r.Month != pass.Month {
			continue
		}
		found = true
		total = total.Add(r.Amount)
	}
	if !found {
		return nil
	}

	internal := pass.Detail.Internal()
	internal.OtherRevenue = &domain.OtherRevenueBreakdown{Total: decimal.NewNullDecimal(total)}
	internal.Recalculate()
	return nil
}

func (*OtherRevenue) Aggregate(sites []*domain.SiteMonthlyDetail, month *domain.MonthValue) {
	total := decimal.Zero
	found := false
	for _, site := range sites {
		if site == nil || site.InternalRevenueBreakdown == nil || site.InternalRevenueBreakdown.OtherRevenue == nil {
			continue
		}
		found = true
		total = total.Add(domain.ValueOrZero(site.InternalRevenueBreakdown.OtherRevenue.Total))
	}
	if !found {
		return
	}

	internal := month.Internal()
	internal.OtherRevenue = &domain.OtherRevenueBreakdown{Total: decimal.NewNullDecimal(total)}
	internal.Recalculate()
}
