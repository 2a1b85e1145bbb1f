package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Observability owns the OpenTelemetry meter and tracer providers. A zero
// value is usable and records nothing.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	turnCounter    otelmetric.Int64Counter
	turnDuration   otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	tracerProvider := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tracerProvider)
	obs := &Observability{
		tracerProvider: tracerProvider,
		tracer:         tracerProvider.Tracer(serviceName),
	}

	exporter, err := prometheus.New()
	if err != nil {
		return obs
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	obs.meterProvider = provider

	obs.bindInstruments(provider.Meter(serviceName))
	return obs
}

// NewNoop returns an Observability backed by no-op providers, for tests.
func NewNoop() *Observability {
	obs := &Observability{tracer: tracenoop.NewTracerProvider().Tracer("noop")}
	obs.bindInstruments(noop.NewMeterProvider().Meter("noop"))
	return obs
}

func (o *Observability) bindInstruments(meter otelmetric.Meter) {
	o.turnCounter, _ = meter.Int64Counter(
		"dialogue.turns",
		otelmetric.WithDescription("Number of dialogue turns processed"),
	)
	o.turnDuration, _ = meter.Float64Histogram(
		"dialogue.turn.duration",
		otelmetric.WithDescription("Dialogue turn processing duration"),
		otelmetric.WithUnit("ms"),
	)
}

func (o *Observability) Tracer() trace.Tracer {
	if o == nil || o.tracer == nil {
		return tracenoop.NewTracerProvider().Tracer("noop")
	}
	return o.tracer
}

func (o *Observability) RecordTurnProcessed(ctx context.Context, intent, resultType string) {
	if o == nil || o.turnCounter == nil {
		return
	}
	o.turnCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("intent", intent),
		attribute.String("result_type", resultType),
	))
}

func (o *Observability) RecordTurnDuration(ctx context.Context, duration time.Duration, intent string) {
	if o == nil || o.turnDuration == nil {
		return
	}
	o.turnDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("intent", intent),
	))
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
