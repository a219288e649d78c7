package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "dqcli.pipeline"

// Tracer provides OpenTelemetry instrumentation for pipeline runs: one span
// per run, one per stage, plus counters and a stage-duration histogram.
type Tracer struct {
	tracer        trace.Tracer
	runsTotal     metric.Int64Counter
	stageDuration metric.Float64Histogram
	stageOutcomes metric.Int64Counter
	mutations     metric.Int64Counter
}

// NewTracer creates pipeline instrumentation on the given meter.
func NewTracer(meter metric.Meter) (*Tracer, error) {
	runsTotal, err := meter.Int64Counter("dq_pipeline_runs_total",
		metric.WithDescription("Total pipeline runs by final status"))
	if err != nil {
		return nil, fmt.Errorf("failed to create runs counter: %w", err)
	}
	stageDuration, err := meter.Float64Histogram("dq_stage_duration_seconds",
		metric.WithDescription("Stage execution duration in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("failed to create stage duration histogram: %w", err)
	}
	stageOutcomes, err := meter.Int64Counter("dq_stage_outcomes_total",
		metric.WithDescription("Stage invocations by outcome"))
	if err != nil {
		return nil, fmt.Errorf("failed to create stage outcomes counter: %w", err)
	}
	mutations, err := meter.Int64Counter("dq_mutations_total",
		metric.WithDescription("Data mutations recorded in the audit trail"))
	if err != nil {
		return nil, fmt.Errorf("failed to create mutations counter: %w", err)
	}
	return &Tracer{
		tracer:        otel.Tracer(tracerName),
		runsTotal:     runsTotal,
		stageDuration: stageDuration,
		stageOutcomes: stageOutcomes,
		mutations:     mutations,
	}, nil
}

// StartRun opens the run-level span. The returned func ends the span with
// the run's final status.
func (t *Tracer) StartRun(ctx context.Context, pipelineID string) (context.Context, func(status string)) {
	ctx, span := t.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("pipeline.id", pipelineID)),
	)
	return ctx, func(status string) {
		t.runsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
		span.SetAttributes(attribute.String("pipeline.status", status))
		if status == "failed" {
			span.SetStatus(codes.Error, "pipeline blocked")
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}

// StartStage opens a stage-level span. The returned func ends the span with
// the stage's outcome and records the duration histogram.
func (t *Tracer) StartStage(ctx context.Context, stage string) (context.Context, func(Outcome)) {
	start := time.Now()
	ctx, span := t.tracer.Start(ctx, "pipeline.stage."+stage,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("stage.id", stage)),
	)
	return ctx, func(outcome Outcome) {
		attrs := metric.WithAttributes(
			attribute.String("stage", stage),
			attribute.String("outcome", outcome.String()),
		)
		t.stageDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		t.stageOutcomes.Add(ctx, 1, attrs)
		span.SetAttributes(attribute.String("stage.outcome", outcome.String()))
		if outcome == OutcomeFail {
			span.SetStatus(codes.Error, "stage failed")
		}
		span.End()
	}
}

// RecordMutations adds to the mutation counter after a run, attributed to
// the run's final status.
func (t *Tracer) RecordMutations(ctx context.Context, count int, status string) {
	t.mutations.Add(ctx, int64(count),
		metric.WithAttributes(attribute.String("status", status)))
}
