package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("assist-metrics")

// AssistMetrics provides metrics collection for assist rounds and the
// modifications they produce. All record methods are safe on a nil receiver
// so callers can treat metrics as optional.
type AssistMetrics struct {
	roundsStartedCounter   metric.Int64Counter
	roundsCompletedCounter metric.Int64Counter
	roundsFailedCounter    metric.Int64Counter
	roundDurationHistogram metric.Float64Histogram
	roundsActiveGauge      metric.Int64UpDownCounter
	modsAppliedCounter     metric.Int64Counter
	modsFailedCounter      metric.Int64Counter
}

// NewAssistMetrics creates a new assist metrics collector.
func NewAssistMetrics() (*AssistMetrics, error) {
	roundsStartedCounter, err := meter.Int64Counter(
		"canvas_copilot.rounds.started",
		metric.WithDescription("Total number of assist rounds started"),
		metric.WithUnit("{round}"),
	)
	if err != nil {
		return nil, err
	}

	roundsCompletedCounter, err := meter.Int64Counter(
		"canvas_copilot.rounds.completed",
		metric.WithDescription("Total number of assist rounds completed successfully"),
		metric.WithUnit("{round}"),
	)
	if err != nil {
		return nil, err
	}

	roundsFailedCounter, err := meter.Int64Counter(
		"canvas_copilot.rounds.failed",
		metric.WithDescription("Total number of assist rounds that failed"),
		metric.WithUnit("{round}"),
	)
	if err != nil {
		return nil, err
	}

	roundDurationHistogram, err := meter.Float64Histogram(
		"canvas_copilot.round.duration",
		metric.WithDescription("Duration of assist rounds in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	roundsActiveGauge, err := meter.Int64UpDownCounter(
		"canvas_copilot.rounds.active",
		metric.WithDescription("Number of assist rounds currently in flight"),
		metric.WithUnit("{round}"),
	)
	if err != nil {
		return nil, err
	}

	modsAppliedCounter, err := meter.Int64Counter(
		"canvas_copilot.modifications.applied",
		metric.WithDescription("Total number of component modifications applied"),
		metric.WithUnit("{modification}"),
	)
	if err != nil {
		return nil, err
	}

	modsFailedCounter, err := meter.Int64Counter(
		"canvas_copilot.modifications.failed",
		metric.WithDescription("Total number of component modifications that failed to apply"),
		metric.WithUnit("{modification}"),
	)
	if err != nil {
		return nil, err
	}

	return &AssistMetrics{
		roundsStartedCounter:   roundsStartedCounter,
		roundsCompletedCounter: roundsCompletedCounter,
		roundsFailedCounter:    roundsFailedCounter,
		roundDurationHistogram: roundDurationHistogram,
		roundsActiveGauge:      roundsActiveGauge,
		modsAppliedCounter:     modsAppliedCounter,
		modsFailedCounter:      modsFailedCounter,
	}, nil
}

// RecordRoundStarted records the start of an assist round.
func (am *AssistMetrics) RecordRoundStarted(ctx context.Context) {
	if am == nil {
		return
	}
	am.roundsStartedCounter.Add(ctx, 1)
	am.roundsActiveGauge.Add(ctx, 1)
}

// RecordRoundCompleted records a successful assist round.
func (am *AssistMetrics) RecordRoundCompleted(ctx context.Context, duration time.Duration) {
	if am == nil {
		return
	}
	am.roundsCompletedCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", "completed")),
	)
	am.roundDurationHistogram.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("status", "completed")),
	)
	am.roundsActiveGauge.Add(ctx, -1)
}

// RecordRoundFailed records a failed assist round.
func (am *AssistMetrics) RecordRoundFailed(ctx context.Context, errorKind string, duration time.Duration) {
	if am == nil {
		return
	}
	am.roundsFailedCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("status", "failed"),
			attribute.String("error.kind", errorKind),
		),
	)
	am.roundDurationHistogram.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("status", "failed")),
	)
	am.roundsActiveGauge.Add(ctx, -1)
}

// RecordModifications records the per-component outcomes of one merge batch.
func (am *AssistMetrics) RecordModifications(ctx context.Context, applied, failed int) {
	if am == nil {
		return
	}
	if applied > 0 {
		am.modsAppliedCounter.Add(ctx, int64(applied))
	}
	if failed > 0 {
		am.modsFailedCounter.Add(ctx, int64(failed))
	}
}
