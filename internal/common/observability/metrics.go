// Package observability records submission outcomes through an OpenTelemetry
// meter exported to Prometheus.
package observability

import (
	"context"
	"time"

	"professionals-admin/internal/common/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider      *metric.MeterProvider
	submissionCounter  otelmetric.Int64Counter
	submissionDuration otelmetric.Float64Histogram
}

// New registers a Prometheus exporter on the default registry, so the
// instruments appear on the /metrics endpoint. Call it once per process.
// On exporter failure it logs and returns an Observability that records
// nothing.
func New(serviceName string, log logger.Logger) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Error("failed to create prometheus exporter", map[string]interface{}{"error": err.Error()})
		return &Observability{}
	}
	o := newWithReader(serviceName, exporter)
	otel.SetMeterProvider(o.meterProvider)
	return o
}

func newWithReader(serviceName string, reader metric.Reader) *Observability {
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	meter := provider.Meter(serviceName)

	submissionCounter, _ := meter.Int64Counter(
		"submissions.finished",
		otelmetric.WithDescription("Number of create, bulk and upload submissions by outcome"),
	)

	submissionDuration, _ := meter.Float64Histogram(
		"submissions.duration",
		otelmetric.WithDescription("Time from submitting to a final state"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:      provider,
		submissionCounter:  submissionCounter,
		submissionDuration: submissionDuration,
	}
}

// RecordSubmission counts a finished submission and records its duration.
func (o *Observability) RecordSubmission(ctx context.Context, kind, outcome string, duration time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	)
	if o.submissionCounter != nil {
		o.submissionCounter.Add(ctx, 1, attrs)
	}
	if o.submissionDuration != nil {
		o.submissionDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = o.meterProvider.Shutdown(ctx)
	}
}
