// Package tracing opens OpenTelemetry spans around the unary and
// streaming generate calls; Live sessions are not traced.
package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/google-gemini/genai-go")

// GenerateSpan records attributes of a single unary or streaming generate
// call. Fields are populated incrementally as the call progresses.
type GenerateSpan struct {
	span             trace.Span
	startTime        time.Time
	timeToFirstToken time.Duration
	firstTokenSet    bool
}

// StartGenerate opens a span for a generate call against model on dialect.
func StartGenerate(ctx context.Context, dialect, model string) (context.Context, *GenerateSpan) {
	ctx, span := tracer.Start(ctx, "genai.generate",
		trace.WithAttributes(
			attribute.String("genai.dialect", dialect),
			attribute.String("genai.model", model),
		),
	)
	return ctx, &GenerateSpan{span: span, startTime: time.Now()}
}

// OnFirstChunk records time-to-first-chunk, called once per stream.
func (s *GenerateSpan) OnFirstChunk() {
	if s.firstTokenSet {
		return
	}
	s.firstTokenSet = true
	s.timeToFirstToken = time.Since(s.startTime)
	s.span.SetAttributes(attribute.Int64("genai.ttft_ms", s.timeToFirstToken.Milliseconds()))
}

// OnUsage records token usage once known.
func (s *GenerateSpan) OnUsage(inputTokens, outputTokens int) {
	s.span.SetAttributes(
		attribute.Int("genai.usage.input_tokens", inputTokens),
		attribute.Int("genai.usage.output_tokens", outputTokens),
	)
}

// OnError records a terminal error on the span.
func (s *GenerateSpan) OnError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// End closes the span. Safe to call via defer.
func (s *GenerateSpan) End() {
	s.span.End()
}
