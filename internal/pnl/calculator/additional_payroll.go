package calculator

import (
	"context"

	"github.com/railzwaylabs/sitepnl/internal/pnl/domain"
	"github.com/shopspring/decimal"
)

// AdditionalPayroll bills the non-excluded billable account amounts.
type AdditionalPayroll struct{}

func (*AdditionalPayroll) Name() string { return "additional_payroll_amount" }

func (*AdditionalPayroll) Apply(_ context.Context, pass *Pass) error {
	if !pass.billingAccount() {
		return nil
	}

	amount := decimal.Zero
	for _, account := range pass.Input.BillableAccounts {
		if account.IsExcluded {
			continue
		}
		amount = amount.Add(account.Amount)
	}

	internal := pass.Detail.Internal()
	billable := internal.Billable()
	billable.AdditionalPayrollAmount = decimal.NewNullDecimal(amount)
	billable.Add(amount)
	internal.Recalculate()
	return nil
}

func (*AdditionalPayroll) Aggregate(sites []*domain.SiteMonthlyDetail, month *domain.MonthValue) {
	total := decimal.Zero
	found := false
	for _, site := range sites {
		ba := billableOf(site)
		if ba == nil || !ba.AdditionalPayrollAmount.Valid {
			continue
		}
		found = true
		total = total.Add(ba.AdditionalPayrollAmount.Decimal)
	}
	if !found {
		return
	}

	internal := month.Internal()
	billable := internal.Billable()
	billable.AdditionalPayrollAmount = decimal.NewNullDecimal(total)
	billable.RecalculateTotal()
	internal.Recalculate()
}

func billableOf(site *domain.SiteMonthlyDetail) *domain.BillableAccountsBreakdown {
	if site == nil || site.InternalRevenueBreakdown == nil {
		return nil
	}
	return site.InternalRevenueBreakdown.BillableAccounts
}
