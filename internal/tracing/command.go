package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Outcome is what a traced command reports about itself.
type Outcome struct {
	Passed   bool
	Messages []string
}

// CommandFunc is the body of a traced command.
type CommandFunc func(ctx context.Context) (Outcome, error)

// RunCommand runs fn inside a span named "govkit.<name>". The span records
// pass/fail and the message count; a returned error marks the span as
// failed. A nil tracer runs fn untraced.
func RunCommand(ctx context.Context, tracer trace.Tracer, name string, fn CommandFunc, attrs ...attribute.KeyValue) (Outcome, error) {
	if tracer == nil {
		return fn(ctx)
	}

	ctx, span := tracer.Start(ctx, SpanPrefixCommand+name, trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	span.SetAttributes(attribute.String(AttrCommandName, name))
	span.SetAttributes(attrs...)

	out, err := fn(ctx)

	span.AddEvent(EventChecksFinished, trace.WithAttributes(
		attribute.Bool(AttrPassed, out.Passed),
		attribute.Int(AttrMessageCount, len(out.Messages)),
	))
	span.SetAttributes(
		attribute.Bool(AttrPassed, out.Passed),
		attribute.Int(AttrMessageCount, len(out.Messages)),
	)

	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case !out.Passed:
		span.SetStatus(codes.Error, "checks failed")
	default:
		span.SetStatus(codes.Ok, "")
	}
	return out, err
}

// TraceID returns the trace id of the span in ctx, or "" when there is none.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}
