package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds pipeline metrics using OTEL semantic conventions
type Metrics struct {
	unitsProcessed      metric.Int64Counter
	unitDuration        metric.Float64Histogram
	resourcesDiscovered metric.Int64Counter
	fetchRetries        metric.Int64Counter
	storageWrites       metric.Int64Counter
	failureEvents       metric.Int64Counter
}

// NewMetrics creates pipeline metrics following OTEL semantic conventions
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("caravel.inventory")

	unitsProcessed, err := meter.Int64Counter(
		"caravel.units.processed",
		metric.WithDescription("Number of work units processed"),
		metric.WithUnit("{unit}"),
	)
	if err != nil {
		return nil, err
	}

	unitDuration, err := meter.Float64Histogram(
		"caravel.unit.duration",
		metric.WithDescription("Duration of work unit processing"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	resourcesDiscovered, err := meter.Int64Counter(
		"caravel.resources.discovered",
		metric.WithDescription("Number of resources discovered and normalized"),
		metric.WithUnit("{resource}"),
	)
	if err != nil {
		return nil, err
	}

	fetchRetries, err := meter.Int64Counter(
		"caravel.fetch.retries",
		metric.WithDescription("Number of page fetch retries"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, err
	}

	storageWrites, err := meter.Int64Counter(
		"caravel.storage.writes",
		metric.WithDescription("Number of inventory objects written"),
		metric.WithUnit("{write}"),
	)
	if err != nil {
		return nil, err
	}

	failureEvents, err := meter.Int64Counter(
		"caravel.failure.events",
		metric.WithDescription("Number of failure events published"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		unitsProcessed:      unitsProcessed,
		unitDuration:        unitDuration,
		resourcesDiscovered: resourcesDiscovered,
		fetchRetries:        fetchRetries,
		storageWrites:       storageWrites,
		failureEvents:       failureEvents,
	}, nil
}

// RecordUnit records one processed work unit and its duration in seconds.
func (m *Metrics) RecordUnit(ctx context.Context, seconds float64) {
	if m == nil {
		return
	}
	m.unitsProcessed.Add(ctx, 1)
	m.unitDuration.Record(ctx, seconds)
}

// RecordResources records discovered resources for one kind.
func (m *Metrics) RecordResources(ctx context.Context, kind string, n int64) {
	if m == nil {
		return
	}
	m.resourcesDiscovered.Add(ctx, n, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordFetchRetry records one page fetch retry.
func (m *Metrics) RecordFetchRetry(ctx context.Context) {
	if m == nil {
		return
	}
	m.fetchRetries.Add(ctx, 1)
}

// RecordStorageWrite records one inventory object write.
func (m *Metrics) RecordStorageWrite(ctx context.Context) {
	if m == nil {
		return
	}
	m.storageWrites.Add(ctx, 1)
}

// RecordFailureEvent records one published failure event.
func (m *Metrics) RecordFailureEvent(ctx context.Context, class string) {
	if m == nil {
		return
	}
	m.failureEvents.Add(ctx, 1, metric.WithAttributes(attribute.String("class", class)))
}
