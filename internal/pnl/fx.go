package pnl

import (
	"github.com/railzwaylabs/sitepnl/internal/observability"
	"github.com/railzwaylabs/sitepnl/internal/pnl/calculator"
	"github.com/railzwaylabs/sitepnl/internal/pnl/repository"
	"github.com/railzwaylabs/sitepnl/internal/pnl/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pnl.service",
	fx.Provide(
		repository.NewSiteRevenueRepository,
		repository.NewFiguresRepository,
		repository.NewPayrollRepository,
		repository.NewBillableExpenseRepository,
		repository.NewOtherExpenseRepository,
		func(m *observability.Metrics) calculator.ErrorRecorder { return m },
		func(m *observability.Metrics) service.Recorder { return m },
		calculator.NewChain,
		service.NewService,
	),
)
