package courier

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ZapTrafficLogger is an implementation of TrafficLogger using zap.Logger.
//
// Bodies are logged at debug level. When the context carries a recording
// OpenTelemetry span, the log entry includes the trace ID.
type ZapTrafficLogger struct {
	// Target is the destination for log messages.
	Target *zap.Logger
}

var _ TrafficLogger = (*ZapTrafficLogger)(nil)

// LogSend logs the body of a request that is about to be sent.
func (l ZapTrafficLogger) LogSend(ctx context.Context, body string, size int) {
	fields := []zap.Field{
		zap.String("body", body),
		zap.Int("size", size),
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		fields = append(fields, zap.String("trace_id", span.SpanContext().TraceID().String()))
	}

	l.Target.Debug(
		"send",
		fields...,
	)
}

// LogReceive logs the body of a response that has been read in full.
func (l ZapTrafficLogger) LogReceive(ctx context.Context, body string, size int) {
	fields := []zap.Field{
		zap.String("body", body),
		zap.Int("size", size),
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		fields = append(fields, zap.String("trace_id", span.SpanContext().TraceID().String()))
	}

	l.Target.Debug(
		"receive",
		fields...,
	)
}
