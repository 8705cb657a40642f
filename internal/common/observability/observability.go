// internal/common/observability/observability.go
package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Options configures the telemetry stack. Metrics are always exported via
// the Prometheus reader; tracing ships to Jaeger only when enabled.
type Options struct {
	TracingEnabled bool
	JaegerEndpoint string
}

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         oteltrace.Tracer
	jobCounter     otelmetric.Int64Counter
	jobDuration    otelmetric.Float64Histogram
}

func New(serviceName string, opts Options) *Observability {
	o := &Observability{}

	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
	} else {
		o.meterProvider = metric.NewMeterProvider(metric.WithReader(exporter))
		otel.SetMeterProvider(o.meterProvider)

		o.meter = o.meterProvider.Meter(serviceName)

		o.jobCounter, _ = o.meter.Int64Counter(
			"jobs.processed",
			otelmetric.WithDescription("Number of jobs processed"),
		)

		o.jobDuration, _ = o.meter.Float64Histogram(
			"jobs.duration",
			otelmetric.WithDescription("Job processing duration"),
			otelmetric.WithUnit("ms"),
		)
	}

	if opts.TracingEnabled && opts.JaegerEndpoint != "" {
		exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(opts.JaegerEndpoint)))
		if err != nil {
			log.Printf("Failed to create Jaeger exporter: %v", err)
		} else {
			o.tracerProvider = sdktrace.NewTracerProvider(
				sdktrace.WithBatcher(exp),
				sdktrace.WithResource(resource.NewSchemaless(
					attribute.String("service.name", serviceName),
				)),
			)
			otel.SetTracerProvider(o.tracerProvider)
		}
	}

	if o.tracerProvider != nil {
		o.tracer = o.tracerProvider.Tracer(serviceName)
	} else {
		// Global provider: no-op unless something else installed one.
		o.tracer = otel.Tracer(serviceName)
	}

	return o
}

// StartSpan opens a span around one unit of work. Callers must End the
// returned span.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, oteltrace.Span) {
	return o.tracer.Start(ctx, name, oteltrace.WithAttributes(attrs...))
}

func (o *Observability) RecordJobProcessed(ctx context.Context, status string) {
	if o.jobCounter != nil {
		o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordJobDuration(ctx context.Context, duration time.Duration, status string) {
	if o.jobDuration != nil {
		o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
}
