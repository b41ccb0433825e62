package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// TransitionMetricsMeterName is the name used for the scene transition meter
	TransitionMetricsMeterName = "github.com/stacklok/toolhive-scene-server/transition"
)

// Transition outcomes recorded on the transitions counter
const (
	OutcomeSuccess           = "success"
	OutcomeFailed            = "failed"
	OutcomeContractViolation = "contract_violation"
	OutcomeAbandoned         = "abandoned"
)

// TransitionMetrics holds the OpenTelemetry instruments for scene transitions
type TransitionMetrics struct {
	duration     metric.Float64Histogram
	transitions  metric.Int64Counter
	objectsTotal metric.Int64Gauge
}

// NewTransitionMetrics creates a new TransitionMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewTransitionMetrics(provider metric.MeterProvider) (*TransitionMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(TransitionMetricsMeterName)

	duration, err := meter.Float64Histogram(
		"thv_scene_transition_duration_seconds",
		metric.WithDescription("Duration of scene transitions in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60),
	)
	if err != nil {
		return nil, err
	}

	transitions, err := meter.Int64Counter(
		"thv_scene_transitions_total",
		metric.WithDescription("Number of finished scene transitions by outcome"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	objectsTotal, err := meter.Int64Gauge(
		"thv_scene_objects_total",
		metric.WithDescription("Number of scene objects published by the last successful transition"),
		metric.WithUnit("{object}"),
	)
	if err != nil {
		return nil, err
	}

	return &TransitionMetrics{
		duration:     duration,
		transitions:  transitions,
		objectsTotal: objectsTotal,
	}, nil
}

// RecordTransition records a finished transition for a peer
func (m *TransitionMetrics) RecordTransition(ctx context.Context, peer string, duration time.Duration, outcome string) {
	if m == nil {
		return
	}

	m.duration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("peer", peer),
		attribute.Bool("success", outcome == OutcomeSuccess),
	))
	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("peer", peer),
		attribute.String("outcome", outcome),
	))
}

// RecordObjectsTotal records the size of a peer's published registry
func (m *TransitionMetrics) RecordObjectsTotal(ctx context.Context, peer string, count int64) {
	if m == nil {
		return
	}

	m.objectsTotal.Record(ctx, count, metric.WithAttributes(attribute.String("peer", peer)))
}
