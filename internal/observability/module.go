package observability

import (
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		NewLogger,
		NewRegistry,
		NewMetrics,
		NewTracerProvider,
	),
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
)
