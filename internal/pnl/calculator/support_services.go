package calculator

import (
	"context"
	"fmt"

	"github.com/railzwaylabs/sitepnl/internal/pnl/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SupportServices bills payroll support as a flat amount or a percentage of
// payroll. "Total" payroll includes the PTEB computed earlier in this pass.
type SupportServices struct {
	billable domain.BillableExpenseRepository
	log      *zap.Logger
	recorder ErrorRecorder
}

func (*SupportServices) Name() string { return "support_services" }

func (c *SupportServices) Apply(ctx context.Context, pass *Pass) error {
	if !pass.billingAccount() {
		return nil
	}
	cfg := pass.Input.Contract.FirstBillableAccountConfig()
	if cfg == nil || !cfg.PayrollSupportEnabled {
		return nil
	}

	amount := decimal.Zero
	switch cfg.PayrollSupportBillingType {
	case domain.SupportBillingTypeFixed:
		amount = domain.ValueOrZero(cfg.PayrollSupportAmount)
	case domain.SupportBillingTypePercentage:
		if cfg.PayrollSupportAmount.Valid && !validPercentage(cfg.PayrollSupportAmount.Decimal) {
			return fmt.Errorf("%w: payroll support percentage %s", domain.ErrInvalidPercentage, cfg.PayrollSupportAmount.Decimal)
		}
		payroll, err := c.payroll(ctx, pass, cfg.PayrollSupportPayrollType)
		if err != nil {
			c.log.Warn("payroll expense budget lookup failed, support services contributes zero",
				zap.String("site_number", pass.Input.SiteNumber),
				zap.String("period", pass.Period()),
				zap.Error(err),
			)
			c.recorder.ProviderError(c.Name())
		} else if payroll.IsPositive() && cfg.PayrollSupportAmount.Valid {
			amount = percentOf(payroll, cfg.PayrollSupportAmount.Decimal)
		}
	}

	internal := pass.Detail.Internal()
	billable := internal.Billable()
	billable.SupportServices = &domain.SupportServicesBreakdown{Total: decimal.NewNullDecimal(amount)}
	billable.Add(amount)
	internal.Recalculate()
	return nil
}

func (c *SupportServices) payroll(ctx context.Context, pass *Pass, payrollType domain.SupportPayrollType) (decimal.Decimal, error) {
	payroll, err := c.billable.GetPayrollExpenseBudget(ctx, pass.Input.SiteID, pass.Year, pass.Month)
	if err != nil {
		return decimal.Zero, err
	}
	if payrollType == domain.SupportPayrollTypeTotal {
		if ba := pass.Detail.InternalRevenueBreakdown; ba != nil && ba.BillableAccounts != nil && ba.BillableAccounts.Pteb != nil {
			payroll = payroll.Add(domain.ValueOrZero(ba.BillableAccounts.Pteb.Total))
		}
	}
	return payroll, nil
}

func (*SupportServices) Aggregate(sites []*domain.SiteMonthlyDetail, month *domain.MonthValue) {
	total := decimal.Zero
	found := false
	for _, site := range sites {
		ba := billableOf(site)
		if ba == nil || ba.SupportServices == nil {
			continue
		}
		found = true
		total = total.Add(domain.ValueOrZero(ba.SupportServices.Total))
	}
	if !found {
		return
	}

	internal := month.Internal()
	billable := internal.Billable()
	billable.SupportServices = &domain.SupportServicesBreakdown{Total: decimal.NewNullDecimal(total)}
	billable.RecalculateTotal()
	internal.Recalculate()
}
