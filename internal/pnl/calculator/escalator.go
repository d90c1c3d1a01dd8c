package calculator

import (
	"fmt"
	"time"

	"github.com/railzwaylabs/sitepnl/internal/pnl/domain"
	"github.com/shopspring/decimal"
)

type escalationStep struct {
	description string
	amount      decimal.Decimal
}

// escalate compounds a dated line by the contract escalator. The first
// anniversary is the increment month of the year after the line started;
// historical anniversaries only count while the line was active. The target
// year's own step applies once the target month reaches the increment month.
func escalate(base decimal.Decimal, start time.Time, end *time.Time, esc domain.Escalator, year, month int) (decimal.Decimal, []escalationStep) {
	value := base
	rate := esc.Rate()
	var steps []escalationStep

	for y := start.Year() + 1; y < year; y++ {
		if !domain.ActiveAt(start, end, domain.FirstOfMonth(y, esc.Month)) {
			continue
		}
		step := value.Mul(rate)
		value = value.Add(step)
		steps = append(steps, escalationStep{
			description: fmt.Sprintf("Automatic Contract Escalator of %s%% (%d/%d)", esc.Percentage.StringFixed(2), esc.Month, y),
			amount:      step,
		})
	}

	if year > start.Year() && month >= esc.Month && value.IsPositive() {
		step := value.Mul(rate)
		value = value.Add(step)
		steps = append(steps, escalationStep{
			description: fmt.Sprintf("Annual Fixed Fee Escalator (%d/%d)", esc.Month, year),
			amount:      step,
		})
	}

	return value, steps
}
