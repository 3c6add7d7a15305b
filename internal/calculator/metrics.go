package calculator

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metric instruments. They start as no-ops so handlers are safe to call
// before InitMetrics; InitMetrics swaps in instruments from the global provider.
var (
	opsCounter     metric.Int64Counter       = noop.Int64Counter{}
	opsHistogram   metric.Float64Histogram   = noop.Float64Histogram{}
	errorCounter   metric.Int64Counter       = noop.Int64Counter{}
	resultGauge    metric.Float64Gauge       = noop.Float64Gauge{}
	eventsCounter  metric.Int64Counter       = noop.Int64Counter{}
	activeSessions metric.Int64UpDownCounter = noop.Int64UpDownCounter{}
)

// InitMetrics registers custom OTel metric instruments for the calculator domain.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("calculator")

	var err error

	opsCounter, err = meter.Int64Counter("calculator.operations.total",
		metric.WithDescription("Total number of calculator operations performed"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return fmt.Errorf("creating ops counter: %w", err)
	}

	opsHistogram, err = meter.Float64Histogram("calculator.operation.duration",
		metric.WithDescription("Duration of calculator operations in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10),
	)
	if err != nil {
		return fmt.Errorf("creating ops histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("calculator.errors.total",
		metric.WithDescription("Total number of calculator errors, including Error displays"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	resultGauge, err = meter.Float64Gauge("calculator.last_result",
		metric.WithDescription("The result of the last finite calculator operation"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating result gauge: %w", err)
	}

	eventsCounter, err = meter.Int64Counter("calculator.session.events.total",
		metric.WithDescription("Total number of engine events applied to sessions"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return fmt.Errorf("creating events counter: %w", err)
	}

	activeSessions, err = meter.Int64UpDownCounter("calculator.sessions.active",
		metric.WithDescription("Number of live calculator sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return fmt.Errorf("creating sessions counter: %w", err)
	}

	return nil
}
