package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/sitepnl/internal/config"
	"github.com/railzwaylabs/sitepnl/internal/pnl/calculator"
	"github.com/railzwaylabs/sitepnl/internal/pnl/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

// Recorder observes computations. Implemented by the observability metrics.
type Recorder interface {
	ObserveCompute(duration time.Duration, sites int, err error)
	SiteFailed()
	ProviderError(component string)
}

type Service struct {
	log    *zap.Logger
	tracer trace.Tracer
	genID  *snowflake.Node

	workers  int
	chain    *calculator.Chain
	sites    domain.SiteRevenueRepository
	figures  domain.FiguresRepository
	recorder Recorder
}

type ServiceParam struct {
	fx.In

	Log      *zap.Logger
	GenID    *snowflake.Node
	Config   config.Config `optional:"true"`
	Chain    *calculator.Chain
	Sites    domain.SiteRevenueRepository
	Figures  domain.FiguresRepository
	Recorder Recorder `optional:"true"`
}

func NewService(p ServiceParam) domain.Service {
	workers := p.Config.PnL.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	recorder := p.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &Service{
		log:    p.Log.Named("pnl.service"),
		tracer: otel.Tracer("github.com/railzwaylabs/sitepnl/internal/pnl/service"),
		genID:  p.GenID,

		workers:  workers,
		chain:    p.Chain,
		sites:    p.Sites,
		figures:  p.Figures,
		recorder: recorder,
	}
}

// siteForecast holds the frozen per-month details of one site. Index 0 is
// January.
type siteForecast struct {
	external [domain.MonthsPerYear]*domain.SiteMonthlyDetail
	internal [domain.MonthsPerYear]*domain.SiteMonthlyDetail
	failure  *domain.SiteFailure
}

func (s *Service) Compute(ctx context.Context, req domain.ComputeRequest) (result *domain.PnlResult, err error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	runID := s.genID.Generate().String()
	log := s.log.With(zap.String("run_id", runID), zap.Int("year", req.Year))

	ctx, span := s.tracer.Start(ctx, "pnl.compute", trace.WithAttributes(
		attribute.String("pnl.run_id", runID),
		attribute.Int("pnl.year", req.Year),
		attribute.Int("pnl.sites", len(req.SiteIDs)),
	))
	start := time.Now()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		s.recorder.ObserveCompute(time.Since(start), len(req.SiteIDs), err)
	}()

	budgetFigures, err := s.monthlyFigures(ctx, log, req, domain.ScenarioBudget)
	if err != nil {
		return nil, err
	}
	actualFigures, err := s.monthlyFigures(ctx, log, req, domain.ScenarioActual)
	if err != nil {
		return nil, err
	}

	budgetRows := buildFigureRows(req.SiteIDs, budgetFigures)
	actualRows := buildFigureRows(req.SiteIDs, actualFigures)

	forecasts, err := s.forecastSites(ctx, log, req, budgetRows)
	if err != nil {
		log.Error("pnl computation failed", zap.Error(err))
		return nil, err
	}

	forecastRows := budgetRows.Clone()
	external, internal := s.aggregate(forecasts, budgetRows)
	forecastRows.Replace(external)
	forecastRows.Replace(internal)

	failures := make([]domain.SiteFailure, 0)
	for _, f := range forecasts {
		if f.failure != nil {
			failures = append(failures, *f.failure)
		}
	}

	log.Info("pnl computed",
		zap.Int("sites", len(req.SiteIDs)),
		zap.Int("site_failures", len(failures)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &domain.PnlResult{
		Year:         req.Year,
		ActualRows:   actualRows,
		BudgetRows:   budgetRows,
		ForecastRows: forecastRows,
		VarianceRows: buildVarianceRows(actualRows, budgetRows),
		SiteFailures: failures,
	}, nil
}

// monthlyFigures reads one scenario. A failing figures store leaves the
// scenario empty so its rows read zero; only cancellation aborts.
func (s *Service) monthlyFigures(ctx context.Context, log *zap.Logger, req domain.ComputeRequest, scenario domain.Scenario) ([]domain.MonthlyFigures, error) {
	figures, err := s.figures.ListMonthlyFigures(ctx, req.SiteIDs, req.Year, scenario)
	if err == nil {
		return figures, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("list %s figures: %w", scenario, ctxErr)
	}
	log.Warn("monthly figures unavailable, rows read zero",
		zap.String("scenario", string(scenario)),
		zap.Error(err),
	)
	s.recorder.ProviderError(string(scenario) + "_figures")
	return nil, nil
}

// forecastSites runs the calculator chain for every site on a bounded pool.
// Each worker writes only its own slot; results keep the request order.
func (s *Service) forecastSites(ctx context.Context, log *zap.Logger, req domain.ComputeRequest, budget domain.PnlRows) ([]*siteForecast, error) {
	forecasts := make([]*siteForecast, len(req.SiteIDs))
	cache := calculator.NewExpenseDetailCache()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, siteNumber := range req.SiteIDs {
		g.Go(func() error {
			f, err := s.forecastSite(gctx, log, siteNumber, req.Year, budget, cache)
			if err != nil {
				return fmt.Errorf("site %s: %w", siteNumber, err)
			}
			forecasts[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return forecasts, nil
}

func (s *Service) forecastSite(ctx context.Context, log *zap.Logger, siteNumber string, year int, budget domain.PnlRows, cache *calculator.ExpenseDetailCache) (*siteForecast, error) {
	ctx, span := s.tracer.Start(ctx, "pnl.site", trace.WithAttributes(attribute.String("pnl.site_number", siteNumber)))
	defer span.End()

	input, err := s.sites.GetSiteRevenueInput(ctx, siteNumber, year)
	if err == nil && input == nil {
		err = domain.ErrSiteNotFound
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Warn("site inputs unavailable, site contributes zero",
			zap.String("site_number", siteNumber),
			zap.Error(err),
		)
		span.RecordError(err)
		s.recorder.SiteFailed()
		return zeroForecast(siteNumber, failureReason(err)), nil
	}

	f := &siteForecast{}
	for month := 1; month <= domain.MonthsPerYear; month++ {
		pass := &calculator.Pass{
			Input:  input,
			Year:   year,
			Month:  month,
			Detail: &domain.SiteMonthlyDetail{SiteID: siteNumber},
			Budget: budget,
			Cache:  cache,
		}
		if err := s.chain.Apply(ctx, pass); err != nil {
			return nil, fmt.Errorf("month %d: %w", month, err)
		}
		f.external[month-1] = externalDetail(pass.Detail, budget, month)
		f.internal[month-1] = internalDetail(pass.Detail)
	}
	return f, nil
}

// externalDetail freezes the external part of a pass. Months without
// statistics report the budgeted site value instead.
func externalDetail(d *domain.SiteMonthlyDetail, budget domain.PnlRows, month int) *domain.SiteMonthlyDetail {
	out := &domain.SiteMonthlyDetail{
		SiteID:                   d.SiteID,
		ExternalRevenueBreakdown: d.ExternalRevenueBreakdown.Clone(),
		IsForecast:               true,
	}
	if out.ExternalRevenueBreakdown != nil {
		out.Value = out.ExternalRevenueBreakdown.CalculatedTotalExternalRevenue
		return out
	}

	out.IsForecast = false
	out.Value = zeroValue()
	if b := budget.SiteDetail(domain.ColumnExternalRevenue, month, d.SiteID); b != nil && b.Value.Valid {
		out.Value = b.Value
	}
	return out
}

func internalDetail(d *domain.SiteMonthlyDetail) *domain.SiteMonthlyDetail {
	out := &domain.SiteMonthlyDetail{
		SiteID:                   d.SiteID,
		InternalRevenueBreakdown: d.InternalRevenueBreakdown.Clone(),
		IsForecast:               true,
	}
	out.Value = zeroValue()
	if out.InternalRevenueBreakdown != nil {
		out.Value = out.InternalRevenueBreakdown.CalculatedTotalInternalRevenue
	}
	return out
}

func zeroForecast(siteNumber, reason string) *siteForecast {
	f := &siteForecast{failure: &domain.SiteFailure{SiteID: siteNumber, Reason: reason}}
	for i := range domain.MonthsPerYear {
		f.external[i] = &domain.SiteMonthlyDetail{SiteID: siteNumber, Value: zeroValue()}
		f.internal[i] = &domain.SiteMonthlyDetail{SiteID: siteNumber, Value: zeroValue()}
	}
	return f
}

func failureReason(err error) string {
	if errors.Is(err, domain.ErrSiteNotFound) {
		return domain.ErrSiteNotFound.Error()
	}
	return "site_inputs_unavailable"
}

// aggregate assembles the forecast revenue rows once every site is done.
func (s *Service) aggregate(forecasts []*siteForecast, budget domain.PnlRows) (*domain.PnlRow, *domain.PnlRow) {
	external := domain.NewPnlRow(domain.ColumnExternalRevenue)
	internal := domain.NewPnlRow(domain.ColumnInternalRevenue)

	for i := range domain.MonthsPerYear {
		extSites := make([]*domain.SiteMonthlyDetail, 0, len(forecasts))
		intSites := make([]*domain.SiteMonthlyDetail, 0, len(forecasts))
		for _, f := range forecasts {
			extSites = append(extSites, f.external[i])
			intSites = append(intSites, f.internal[i])
		}

		extMonth := external.MonthlyValues[i]
		extMonth.SiteDetails = extSites
		s.chain.External.Aggregate(extSites, extMonth)
		if extMonth.ExternalRevenueBreakdown != nil {
			if b := budget.Find(domain.ColumnExternalRevenue).Month(i + 1); b != nil {
				extMonth.ExternalRevenueBreakdown.BudgetTotalExternalRevenue = newValue(b.Value)
			}
		}
		extMonth.Value = sumValues(extSites)

		intMonth := internal.MonthlyValues[i]
		intMonth.SiteDetails = intSites
		s.chain.AggregateInternal(intSites, intMonth)
		intMonth.Value = intMonth.InternalRevenueBreakdown.Total()
	}

	external.RecalculateTotal()
	internal.RecalculateTotal()
	return external, internal
}

type nopRecorder struct{}

func (nopRecorder) ObserveCompute(time.Duration, int, error) {}
func (nopRecorder) SiteFailed()                              {}
func (nopRecorder) ProviderError(string)                     {}
