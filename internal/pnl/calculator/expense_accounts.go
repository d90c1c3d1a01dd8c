package calculator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/railzwaylabs/sitepnl/internal/pnl/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ExpenseAccounts bills the billable expense budget plus the forecasted
// other-expense accounts of the month.
type ExpenseAccounts struct {
	billable     domain.BillableExpenseRepository
	otherExpense domain.OtherExpenseRepository
	log          *zap.Logger
	recorder     ErrorRecorder
}

func (*ExpenseAccounts) Name() string { return "expense_accounts" }

func (c *ExpenseAccounts) Apply(ctx context.Context, pass *Pass) error {
	if !pass.billingAccount() {
		return nil
	}

	amount, err := c.amount(ctx, pass)
	if err != nil {
		c.log.Warn("expense account lookup failed, expense accounts contributes zero",
			zap.String("site_number", pass.Input.SiteNumber),
			zap.String("period", pass.Period()),
			zap.Error(err),
		)
		c.recorder.ProviderError(c.Name())
		amount = decimal.Zero
	}

	internal := pass.Detail.Internal()
	billable := internal.Billable()
	billable.ExpenseAccounts = &domain.ExpenseAccountsBreakdown{Total: decimal.NewNullDecimal(amount)}
	billable.Add(amount)
	internal.Recalculate()
	return nil
}

func (c *ExpenseAccounts) amount(ctx context.Context, pass *Pass) (decimal.Decimal, error) {
	siteID := pass.Input.SiteID
	if siteID == uuid.Nil {
		return decimal.Zero, domain.ErrSiteIDMissing
	}

	nonForecast, err := c.billable.GetBillableExpenseBudget(ctx, siteID, pass.Year, pass.Month)
	if err != nil {
		return decimal.Zero, fmt.Errorf("billable expense budget: %w", err)
	}

	forecast, err := c.forecast(ctx, pass)
	if err != nil {
		return decimal.Zero, err
	}
	return nonForecast.Add(forecast), nil
}

// forecast sums the twelve forecasted accounts of the month. Without a
// forecast row the full other-expense budget is used as-is.
func (c *ExpenseAccounts) forecast(ctx context.Context, pass *Pass) (decimal.Decimal, error) {
	siteID := pass.Input.SiteID
	cache := pass.Cache
	if cache == nil {
		cache = NewExpenseDetailCache()
	}

	yearly, err := cache.Yearly(ctx, siteID, pass.Year, func(ctx context.Context) ([]domain.OtherExpenseDetail, error) {
		return c.otherExpense.GetOtherExpenseDetail(ctx, siteID, fmt.Sprintf("%04d-01", pass.Year))
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("other expense detail: %w", err)
	}

	period := pass.Period()
	for _, d := range yearly {
		if d.Period == period {
			return d.Sum(), nil
		}
	}

	budget, err := c.billable.GetOtherExpenseBudget(ctx, siteID, pass.Year, pass.Month)
	if err != nil {
		return decimal.Zero, fmt.Errorf("other expense budget: %w", err)
	}
	return budget, nil
}

func (*ExpenseAccounts) Aggregate(sites []*domain.SiteMonthlyDetail, month *domain.MonthValue) {
	total := decimal.Zero
	found := false
	for _, site := range sites {
		ba := billableOf(site)
		if ba == nil || ba.ExpenseAccounts == nil {
			continue
		}
		found = true
		total = total.Add(domain.ValueOrZero(ba.ExpenseAccounts.Total))
	}
	if !found {
		return
	}

	internal := month.Internal()
	billable := internal.Billable()
	billable.ExpenseAccounts = &domain.ExpenseAccountsBreakdown{Total: decimal.NewNullDecimal(total)}
	billable.RecalculateTotal()
	internal.Recalculate()
}
