package llm

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingProvider is a decorator that wraps every call in an
// "llm.generate" span.
type TracingProvider struct {
	inner  Provider
	tracer trace.Tracer
}

// WithTracing wraps a Provider with OpenTelemetry spans.
func WithTracing(p Provider, tracer trace.Tracer) Provider {
	return &TracingProvider{inner: p, tracer: tracer}
}

func (t *TracingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, span := t.tracer.Start(ctx, "llm.generate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("llm.model", t.inner.ModelID()),
			attribute.String("llm.purpose", PurposeFrom(ctx)),
			attribute.Int("llm.max_tokens", req.MaxTokens),
			attribute.Bool("llm.structured", req.Schema != nil),
		),
	)
	defer span.End()
	if id := SessionFrom(ctx); id != "" {
		span.SetAttributes(attribute.String("practice.session", id))
	}

	resp, err := t.inner.Generate(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("llm.input_tokens", resp.Usage.InputTokens),
		attribute.Int("llm.output_tokens", resp.Usage.OutputTokens),
		attribute.String("llm.stop_reason", resp.StopReason),
	)
	return resp, nil
}

func (t *TracingProvider) ModelID() string {
	return t.inner.ModelID()
}
