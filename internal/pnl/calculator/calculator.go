package calculator

import (
	"context"
	"fmt"
	"time"

	"github.com/railzwaylabs/sitepnl/internal/pnl/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Calculator is one revenue mechanism. Apply computes a single site and month
// into pass.Detail; Aggregate sums the mechanism across the sites of a month.
type Calculator interface {
	Name() string
	Apply(ctx context.Context, pass *Pass) error
	Aggregate(sites []*domain.SiteMonthlyDetail, month *domain.MonthValue)
}

// BudgetLookup is the read-only view of the budget rows used by fallbacks.
type BudgetLookup interface {
	SiteDetail(column string, month int, siteNumber string) *domain.SiteMonthlyDetail
}

// ErrorRecorder counts data provider failures absorbed by a calculator.
type ErrorRecorder interface {
	ProviderError(component string)
}

// Pass is the state of one site and one month flowing through the chain.
type Pass struct {
	Input *domain.SiteRevenueInput
	Year  int
	Month int

	Detail *domain.SiteMonthlyDetail
	Budget BudgetLookup
	Cache  *ExpenseDetailCache
}

// ExternalRevenue is the site's calculated external revenue for the month,
// zero when no statistics were recorded.
func (p *Pass) ExternalRevenue() decimal.Decimal {
	return p.Detail.ExternalRevenueBreakdown.Total()
}

func (p *Pass) FirstOfMonth() time.Time {
	return domain.FirstOfMonth(p.Year, p.Month)
}

// Period formats the month as YYYY-MM.
func (p *Pass) Period() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

func (p *Pass) budgetDetail(column string) *domain.SiteMonthlyDetail {
	if p.Budget == nil {
		return nil
	}
	return p.Budget.SiteDetail(column, p.Month, p.Input.SiteNumber)
}

func (p *Pass) billingAccount() bool {
	return p.Input.Contract.HasType(domain.ContractTypeBillingAccount)
}

// Chain holds the external calculator and the internal calculators in their
// execution order. The order is load-bearing: revenue share reads external
// revenue and support services reads the PTEB total of the same pass.
type Chain struct {
	External Calculator
	Internal []Calculator
}

type Params struct {
	fx.In

	Log             *zap.Logger
	Payroll         domain.PayrollRepository
	BillableExpense domain.BillableExpenseRepository
	OtherExpense    domain.OtherExpenseRepository
	Recorder        ErrorRecorder `optional:"true"`
}

func NewChain(p Params) *Chain {
	log := p.Log.Named("pnl.calculator")
	recorder := p.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &Chain{
		External: &ExternalRevenue{},
		Internal: []Calculator{
			&FixedFee{},
			&PerOccupiedRoom{},
			&PerLaborHour{payroll: p.Payroll, log: log, recorder: recorder},
			&RevenueShare{},
			&AdditionalPayroll{},
			&Pteb{billable: p.BillableExpense, log: log, recorder: recorder},
			&SupportServices{billable: p.BillableExpense, log: log, recorder: recorder},
			&ExpenseAccounts{billable: p.BillableExpense, otherExpense: p.OtherExpense, log: log, recorder: recorder},
			&ManagementAgreement{},
			&OtherRevenue{},
		},
	}
}

// Apply runs every calculator for one site and month.
func (c *Chain) Apply(ctx context.Context, pass *Pass) error {
	if err := c.External.Apply(ctx, pass); err != nil {
		return fmt.Errorf("%s: %w", c.External.Name(), err)
	}
	for _, calc := range c.Internal {
		if err := calc.Apply(ctx, pass); err != nil {
			return fmt.Errorf("%s: %w", calc.Name(), err)
		}
	}
	return nil
}

// AggregateInternal runs the monthly aggregation of the internal calculators
// in chain order.
func (c *Chain) AggregateInternal(sites []*domain.SiteMonthlyDetail, month *domain.MonthValue) {
	for _, calc := range c.Internal {
		calc.Aggregate(sites, month)
	}
}

type nopRecorder struct{}

func (nopRecorder) ProviderError(string) {}

func percentOf(amount, percentage decimal.Decimal) decimal.Decimal {
	return amount.Mul(percentage).Div(hundred)
}

func validPercentage(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(hundred)
}

var hundred = decimal.NewFromInt(100)
