package calculator

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/railzwaylabs/sitepnl/internal/pnl/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockPayrollRepo struct {
	mock.Mock
}

func (m *mockPayrollRepo) GetPayroll(ctx context.Context, siteID uuid.UUID, period string) ([]domain.PayrollDetail, error) {
	args := m.Called(ctx, siteID, period)
	details, _ := args.Get(0).([]domain.PayrollDetail)
	return details, args.Error(1)
}

type mockBillableExpenseRepo struct {
	mock.Mock
}

func (m *mockBillableExpenseRepo) GetPayrollExpenseBudget(ctx context.Context, siteID uuid.UUID, year, month int) (decimal.Decimal, error) {
	args := m.Called(ctx, siteID, year, month)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockBillableExpenseRepo) GetBillableExpenseBudget(ctx context.Context, siteID uuid.UUID, year, month int) (decimal.Decimal, error) {
	args := m.Called(ctx, siteID, year, month)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockBillableExpenseRepo) GetOtherExpenseBudget(ctx context.Context, siteID uuid.UUID, year, month int) (decimal.Decimal, error) {
	args := m.Called(ctx, siteID, year, month)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type mockOtherExpenseRepo struct {
	mock.Mock
}

func (m *mockOtherExpenseRepo) GetOtherExpenseDetail(ctx context.Context, siteID uuid.UUID, monthYear string) ([]domain.OtherExpenseDetail, error) {
	args := m.Called(ctx, siteID, monthYear)
	details, _ := args.Get(0).([]domain.OtherExpenseDetail)
	return details, args.Error(1)
}

type countingRecorder struct {
	counts map[string]int
}

func (r *countingRecorder) ProviderError(component string) {
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[component]++
}

type testDeps struct {
	payroll  *mockPayrollRepo
	billable *mockBillableExpenseRepo
	other    *mockOtherExpenseRepo
	recorder *countingRecorder
	chain    *Chain
}

func newTestDeps() *testDeps {
	d := &testDeps{
		payroll:  new(mockPayrollRepo),
		billable: new(mockBillableExpenseRepo),
		other:    new(mockOtherExpenseRepo),
		recorder: &countingRecorder{},
	}
	d.chain = NewChain(Params{
		Log:             zap.NewNop(),
		Payroll:         d.payroll,
		BillableExpense: d.billable,
		OtherExpense:    d.other,
		Recorder:        d.recorder,
	})
	return d
}

func (d *testDeps) calculator(name string) Calculator {
	for _, c := range d.chain.Internal {
		if c.Name() == name {
			return c
		}
	}
	if d.chain.External.Name() == name {
		return d.chain.External
	}
	return nil
}

func newPass(in *domain.SiteRevenueInput, year, month int) *Pass {
	return &Pass{
		Input:  in,
		Year:   year,
		Month:  month,
		Detail: &domain.SiteMonthlyDetail{SiteID: in.SiteNumber},
		Budget: domain.PnlRows{},
		Cache:  NewExpenseDetailCache(),
	}
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func nullDec(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(v))
}

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int {
	return &v
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func requireNullDecimal(t *testing.T, want string, got decimal.NullDecimal) {
	t.Helper()
	require.True(t, got.Valid, "want %s, got null", want)
	requireDecimal(t, want, got.Decimal)
}

// budgetRowsWithSite builds budget rows carrying one site's detail for a
// 1-based month.
func budgetRowsWithSite(column string, month int, detail *domain.SiteMonthlyDetail) domain.PnlRows {
	row := domain.NewPnlRow(column)
	row.Month(month).SiteDetails = []*domain.SiteMonthlyDetail{detail}
	return domain.PnlRows{row}
}

func billingContract(cfg *domain.BillableAccountConfig) *domain.Contract {
	c := &domain.Contract{ContractTypes: []domain.ContractType{domain.ContractTypeBillingAccount}}
	if cfg != nil {
		c.BillableAccountConfigs = []domain.BillableAccountConfig{*cfg}
	}
	return c
}

var testSiteID = uuid.MustParse("6f1c2a55-3f36-4c8e-9c3c-0b7cf1f1a001")
