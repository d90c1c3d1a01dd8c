package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/railzwaylabs/sitepnl/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordComputations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveCompute(150*time.Millisecond, 3, nil)
	m.ObserveCompute(time.Second, 1, errors.New("boom"))
	m.SiteFailed()
	m.ProviderError("pteb")
	m.ProviderError("pteb")
	m.ProviderError("expense_accounts")
	m.ObserveHTTP("POST", "/pnl", 200, 20*time.Millisecond)
	m.RateLimited()

	assert.Equal(t, 2, testutil.CollectAndCount(m.computeDuration))

	var failures dto.Metric
	require.NoError(t, m.siteFailures.Write(&failures))
	assert.Equal(t, float64(1), failures.GetCounter().GetValue())

	assert.Equal(t, float64(2), testutil.ToFloat64(m.providerErrors.WithLabelValues("pteb")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.providerErrors.WithLabelValues("expense_accounts")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/pnl", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.rateLimited))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestBuildLogger(t *testing.T) {
	cfg := config.Config{AppName: "sitepnl", Environment: config.EnvProduction}
	cfg.Observability.LogLevel = "warn"
	cfg.Observability.LogFormat = "json"

	logger, err := buildLogger(cfg)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))
	assert.True(t, logger.Core().Enabled(1))

	cfg.Observability.LogLevel = "loud"
	_, err = buildLogger(cfg)
	assert.Error(t, err)
}

func TestBuildTracerProviderWithoutEndpoint(t *testing.T) {
	cfg := config.Config{AppName: "sitepnl", Environment: config.EnvDevelopment}
	cfg.Observability.SampleRatio = 1

	tp, err := buildTracerProvider(context.Background(), cfg)
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "unit")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
	require.NoError(t, tp.Shutdown(context.Background()))
}

func TestNewExporter(t *testing.T) {
	ctx := context.Background()
	for _, protocol := range []string{"", "http", "grpc"} {
		exp, err := newExporter(ctx, config.ObservabilityConfig{
			OTLPEndpoint: "localhost:4318",
			OTLPProtocol: protocol,
			OTLPInsecure: true,
		})
		require.NoError(t, err, protocol)
		require.NoError(t, exp.Shutdown(ctx))
	}

	_, err := newExporter(ctx, config.ObservabilityConfig{OTLPEndpoint: "localhost:4318", OTLPProtocol: "udp"})
	assert.ErrorIs(t, err, ErrUnsupportedProtocol)
}
