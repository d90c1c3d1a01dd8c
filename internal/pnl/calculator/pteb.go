package calculator

import (
	"context"
	"fmt"

	"github.com/railzwaylabs/sitepnl/internal/pnl/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Pteb bills payroll taxes and employee benefits, either as a percentage of
// the included payroll budget or as the budgeted actual.
type Pteb struct {
	billable domain.BillableExpenseRepository
	log      *zap.Logger
	recorder ErrorRecorder
}

func (*Pteb) Name() string { return "pteb" }

func (c *Pteb) Apply(ctx context.Context, pass *Pass) error {
	if !pass.billingAccount() {
		return nil
	}
	cfg := pass.Input.Contract.FirstBillableAccountConfig()
	if cfg == nil || !cfg.PayrollTaxesEnabled {
		return nil
	}

	var out *domain.PtebBreakdown
	switch cfg.PayrollTaxesBillingType {
	case domain.PtebBillingTypePercentage:
		var err error
		out, err = c.percentage(ctx, pass, cfg)
		if err != nil {
			return err
		}
	case domain.PtebBillingTypeActual:
		out = c.actual(pass)
	default:
		return nil
	}

	internal := pass.Detail.Internal()
	billable := internal.Billable()
	billable.Pteb = out
	billable.Add(domain.ValueOrZero(out.Total))
	internal.Recalculate()
	return nil
}

func (c *Pteb) percentage(ctx context.Context, pass *Pass, cfg *domain.BillableAccountConfig) (*domain.PtebBreakdown, error) {
	out := &domain.PtebBreakdown{
		Total:             decimal.NewNullDecimal(decimal.Zero),
		CalculationType:   domain.PtebBillingTypePercentage,
		AppliedPercentage: cfg.PayrollTaxesPercentage,
	}
	if cfg.PayrollTaxesPercentage.Valid && !validPercentage(cfg.PayrollTaxesPercentage.Decimal) {
		return nil, fmt.Errorf("%w: payroll taxes percentage %s", domain.ErrInvalidPercentage, cfg.PayrollTaxesPercentage.Decimal)
	}

	payroll, err := c.billable.GetPayrollExpenseBudget(ctx, pass.Input.SiteID, pass.Year, pass.Month)
	if err != nil {
		c.log.Warn("payroll expense budget lookup failed, pteb contributes zero",
			zap.String("site_number", pass.Input.SiteNumber),
			zap.String("period", pass.Period()),
			zap.Error(err),
		)
		c.recorder.ProviderError(c.Name())
		return out, nil
	}
	out.BaseAmount = decimal.NewNullDecimal(payroll)

	if !payroll.IsPositive() || !cfg.PayrollTaxesPercentage.Valid {
		return out, nil
	}

	amount := percentOf(payroll, cfg.PayrollTaxesPercentage.Decimal)
	amount, err = applyPtebEscalator(amount, cfg, pass.Month)
	if err != nil {
		return nil, err
	}
	out.Total = decimal.NewNullDecimal(amount)
	return out, nil
}

// applyPtebEscalator bumps the amount once the target month reaches the
// configured escalator month.
func applyPtebEscalator(amount decimal.Decimal, cfg *domain.BillableAccountConfig, month int) (decimal.Decimal, error) {
	if !cfg.PayrollTaxesEscalatorEnable || cfg.PayrollTaxesEscalatorMonth == nil ||
		!cfg.PayrollTaxesEscalatorValue.Valid || cfg.PayrollTaxesEscalatorValue.Decimal.IsZero() {
		return amount, nil
	}
	escMonth := *cfg.PayrollTaxesEscalatorMonth
	if escMonth < 1 || escMonth > 12 {
		return decimal.Zero, fmt.Errorf("%w: pteb escalator month %d", domain.ErrInvalidEscalatorMonth, escMonth)
	}
	if month < escMonth {
		return amount, nil
	}

	value := cfg.PayrollTaxesEscalatorValue.Decimal
	switch cfg.PayrollTaxesEscalatorType {
	case domain.EscalatorTypeAmount:
		return amount.Add(value), nil
	case domain.EscalatorTypePercentage:
		return amount.Add(percentOf(amount, value)), nil
	}
	return amount, nil
}

func (c *Pteb) actual(pass *Pass) *domain.PtebBreakdown {
	value := decimal.Zero
	if d := pass.budgetDetail(domain.ColumnPteb); d != nil {
		value = domain.ValueOrZero(d.Value)
	}
	return &domain.PtebBreakdown{
		Total:           decimal.NewNullDecimal(value),
		CalculationType: domain.PtebBillingTypeActual,
	}
}

func (*Pteb) Aggregate(sites []*domain.SiteMonthlyDetail, month *domain.MonthValue) {
	total := decimal.Zero
	found := false
	for _, site := range sites {
		ba := billableOf(site)
		if ba == nil || ba.Pteb == nil {
			continue
		}
		found = true
		total = total.Add(domain.ValueOrZero(ba.Pteb.Total))
	}
	if !found {
		return
	}

	internal := month.Internal()
	billable := internal.Billable()
	billable.Pteb = &domain.PtebBreakdown{Total: decimal.NewNullDecimal(total)}
	billable.RecalculateTotal()
	internal.Recalculate()
}
