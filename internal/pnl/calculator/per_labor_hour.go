package calculator

import (
	"context"

	"github.com/railzwaylabs/sitepnl/internal/pnl/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PerLaborHour bills payroll hours per job code at the contracted job rate.
type PerLaborHour struct {
	payroll  domain.PayrollRepository
	log      *zap.Logger
	recorder ErrorRecorder
}

func (*PerLaborHour) Name() string { return "per_labor_hour" }

func (c *PerLaborHour) Apply(ctx context.Context, pass *Pass) error {
	esc, hasEscalator, err := pass.Input.Contract.Escalator()
	if err != nil {
		return err
	}

	internal := pass.Detail.Internal()
	hours, err := c.hoursByJobCode(ctx, pass)
	if err != nil {
		c.log.Warn("payroll lookup failed, per labor hour contributes zero",
			zap.String("site_number", pass.Input.SiteNumber),
			zap.String("period", pass.Period()),
			zap.Error(err),
		)
		c.recorder.ProviderError(c.Name())
		internal.PerLaborHour = &domain.PerLaborHourBreakdown{Total: decimal.NewNullDecimal(decimal.Zero)}
		internal.Recalculate()
		return nil
	}

	monthStart := pass.FirstOfMonth()
	total := decimal.Zero
	for _, job := range pass.Input.LaborHourJobs {
		if !job.ActiveAt(monthStart) {
			continue
		}

		jobHours, ok := hours[job.JobCode]
		if !ok {
			jobHours = budgetLaborHours(pass)
		}

		value := jobHours.Mul(job.Rate)
		if hasEscalator {
			value, _ = escalate(value, job.StartDate, job.EndDate, esc, pass.Year, pass.Month)
		}
		total = total.Add(value)
	}

	internal.PerLaborHour = &domain.PerLaborHourBreakdown{Total: decimal.NewNullDecimal(total)}
	internal.Recalculate()
	return nil
}

func (c *PerLaborHour) hoursByJobCode(ctx context.Context, pass *Pass) (map[string]decimal.Decimal, error) {
	hours := make(map[string]decimal.Decimal)
	if len(pass.Input.LaborHourJobs) == 0 {
		return hours, nil
	}

	details, err := c.payroll.GetPayroll(ctx, pass.Input.SiteID, pass.Period())
	if err != nil {
		return nil, err
	}
	for _, d := range details {
		if d.JobCode == "" || !d.RegularHours.Valid {
			continue
		}
		hours[d.JobCode] = hours[d.JobCode].Add(d.RegularHours.Decimal)
	}
	return hours, nil
}

// budgetLaborHours reads the site level PerLaborHour budget total. It is not
// job code specific; every job without payroll hours receives the same value.
// TODO: switch to per job code budget hours once the budget source carries them.
func budgetLaborHours(pass *Pass) decimal.Decimal {
	d := pass.budgetDetail(domain.ColumnPerLaborHour)
	if d == nil || d.InternalRevenueBreakdown == nil || d.InternalRevenueBreakdown.PerLaborHour == nil {
		return decimal.Zero
	}
	return domain.ValueOrZero(d.InternalRevenueBreakdown.PerLaborHour.Total)
}

func (*PerLaborHour) Aggregate(sites []*domain.SiteMonthlyDetail, month *domain.MonthValue) {
	total := decimal.Zero
	for _, site := range sites {
		if site == nil || site.InternalRevenueBreakdown == nil || site.InternalRevenueBreakdown.PerLaborHour == nil {
			continue
		}
		total = total.Add(domain.ValueOrZero(site.InternalRevenueBreakdown.PerLaborHour.Total))
	}

	internal := month.Internal()
	internal.PerLaborHour = &domain.PerLaborHourBreakdown{Total: decimal.NewNullDecimal(total)}
	internal.Recalculate()
}
