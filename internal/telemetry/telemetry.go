// Package telemetry wires OpenTelemetry tracing and metrics for the cache
// engine: package-level instruments registered against the global
// providers, which are no-ops until Init is called, so the engine is
// fully usable (and its spans/counters harmlessly discarded) without any
// telemetry setup in tests or simple embeddings.
package telemetry

import (
	"context"
	"io"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// instanceID tags every span and metric this process emits with a stable
// service.instance.id, generated once per process so a fleet of kvlite
// engines sharing one service.name can still be told apart in a trace
// backend.
var instanceID = uuid.NewString()

const instrumentationName = "github.com/kvlite/kvlite/internal/engine"

var (
	tracer = otel.Tracer(instrumentationName)
	meter  = otel.Meter(instrumentationName)

	// Metrics groups the engine's instruments:
	// registered once at package init against the global delegating
	// provider, so they start forwarding the moment Init runs.
	Metrics struct {
		RetryCount       metric.Int64Counter
		BackendLatencyMs metric.Float64Histogram
		AutoCleanupRuns  metric.Int64Counter
		TamperDetected   metric.Int64Counter
	}
)

func init() {
	Metrics.RetryCount, _ = meter.Int64Counter("kvlite.backend.retry_count",
		metric.WithDescription("backend operations retried after a transient failure"),
		metric.WithUnit("{retry}"),
	)
	Metrics.BackendLatencyMs, _ = meter.Float64Histogram("kvlite.backend.latency_ms",
		metric.WithDescription("backend round-trip latency"),
		metric.WithUnit("ms"),
	)
	Metrics.AutoCleanupRuns, _ = meter.Int64Counter("kvlite.engine.auto_cleanup_runs",
		metric.WithDescription("fire-and-forget auto-cleanup sweeps triggered on write"),
		metric.WithUnit("{run}"),
	)
	Metrics.TamperDetected, _ = meter.Int64Counter("kvlite.engine.tamper_detected",
		metric.WithDescription("rows removed after failing the anti-tamper check"),
		metric.WithUnit("{row}"),
	)
}

// Option configures Init.
type Option func(*initConfig)

type initConfig struct {
	serviceName  string
	traceWriter  io.Writer
	metricWriter io.Writer
}

// WithServiceName sets the OTel resource's service.name attribute.
func WithServiceName(name string) Option {
	return func(c *initConfig) { c.serviceName = name }
}

// WithStdoutExporters directs spans and metrics to the given writers
// (stdouttrace/stdoutmetric), a local development choice of
// stdout exporters for local development; an OTLP exporter can be wired in
// the same fashion by a caller that needs to ship telemetry off-box.
func WithStdoutExporters(traceW, metricW io.Writer) Option {
	return func(c *initConfig) {
		c.traceWriter = traceW
		c.metricWriter = metricW
	}
}

// Shutdown flushes and releases the providers installed by Init.
type Shutdown func(context.Context) error

// Init installs real tracer/meter providers in place of the no-op
// defaults. Safe to call at most once per process; callers that never call
// Init get fully functional, zero-cost no-op telemetry.
func Init(ctx context.Context, opts ...Option) (Shutdown, error) {
	cfg := &initConfig{serviceName: "kvlite"}
	for _, opt := range opts {
		opt(cfg)
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.serviceName),
		semconv.ServiceInstanceID(instanceID),
	))
	if err != nil {
		return nil, err
	}

	var shutdowns []Shutdown

	if cfg.traceWriter != nil {
		exp, err := stdouttrace.New(stdouttrace.WithWriter(cfg.traceWriter))
		if err != nil {
			return nil, err
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exp),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
		shutdowns = append(shutdowns, tp.Shutdown)
	}

	if cfg.metricWriter != nil {
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(cfg.metricWriter))
		if err != nil {
			return nil, err
		}
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
			sdkmetric.WithResource(res),
		)
		otel.SetMeterProvider(mp)
		shutdowns = append(shutdowns, mp.Shutdown)
	}

	return func(ctx context.Context) error {
		var firstErr error
		for _, sd := range shutdowns {
			if err := sd(ctx); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}, nil
}

// StartBackendSpan starts a client-kind span around a single backend call,
// following a conventional execContext span shape (db.system/db.operation/
// db.statement attributes).
func StartBackendSpan(ctx context.Context, dialect, operation, statement string) (context.Context, trace.Span) {
	if len(statement) > 300 {
		statement = statement[:300] + "…"
	}
	return tracer.Start(ctx, "kvlite.backend."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", dialect),
			attribute.String("db.operation", operation),
			attribute.String("db.statement", statement),
		),
	)
}

// EndSpan records err (if any) on span and ends it, following the usual
// endSpan helper.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
