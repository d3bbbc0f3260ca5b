package observer

import (
	"context"
	"time"

	caravan "github.com/nevindra/caravan"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// PlanRunner is the plan flow surface the wrapper instruments.
// *caravan.Flow implements it.
type PlanRunner interface {
	Run(ctx context.Context, req caravan.PlanRequest) error
}

// ObservedFlow wraps a PlanRunner with a plan.run span and run-level
// metrics. The span is the parent of every LLM call span emitted inside the
// plan via context propagation.
type ObservedFlow struct {
	inner PlanRunner
	inst  *Instruments
}

// WrapFlow returns an instrumented plan runner.
func WrapFlow(inner PlanRunner, inst *Instruments) *ObservedFlow {
	return &ObservedFlow{inner: inner, inst: inst}
}

// Run executes the plan, recording its runtime and outcome.
func (o *ObservedFlow) Run(ctx context.Context, req caravan.PlanRequest) error {
	ctx, span := o.inst.Tracer.Start(ctx, "plan.run", trace.WithAttributes(
		attribute.String("plan.channel_id", req.ChannelID),
	))
	defer span.End()
	start := time.Now()

	err := o.inner.Run(ctx, req)

	durationMs := float64(time.Since(start).Milliseconds())
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	o.inst.PlanRuns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
	o.inst.PlanRuntime.Record(ctx, durationMs, metric.WithAttributes(
		attribute.String("status", status),
	))
	return err
}
