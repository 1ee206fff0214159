package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Recording helpers for the detection pipeline. Each is a no-op until
// InitOTEL has created the instruments, so library code and tests can
// run without a telemetry backend.

// RecordEventProcessed counts one scored event by alert level
func RecordEventProcessed(ctx context.Context, level string) {
	if EventsProcessed == nil {
		return
	}
	EventsProcessed.Add(ctx, 1,
		metric.WithAttributes(attribute.String("alert_level", level)),
	)
}

// RecordEventRejected counts one event rejected before scoring
func RecordEventRejected(ctx context.Context, reason string) {
	if EventsRejected == nil {
		return
	}
	EventsRejected.Add(ctx, 1,
		metric.WithAttributes(attribute.String("reason", reason)),
	)
}

// RecordAlertGenerated counts one persisted alert by level
func RecordAlertGenerated(ctx context.Context, level string) {
	if AlertsGenerated == nil {
		return
	}
	AlertsGenerated.Add(ctx, 1,
		metric.WithAttributes(attribute.String("alert_level", level)),
	)
}

// RecordScoringDuration records one event's resolution-through-verdict time
func RecordScoringDuration(ctx context.Context, seconds float64) {
	if ScoringDuration == nil {
		return
	}
	ScoringDuration.Record(ctx, seconds)
}

// RecordStorageStats publishes current storage gauges
func RecordStorageStats(ctx context.Context, activityCount int, currentSeq int64) {
	if ActivityInStorage == nil || StorageSequence == nil {
		return
	}
	ActivityInStorage.Record(ctx, int64(activityCount))
	StorageSequence.Record(ctx, currentSeq)
}
