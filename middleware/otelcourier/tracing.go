package otelcourier

import (
	"context"
	"net/http"
	"sync"

	"github.com/dogmatiq/courier"
	"github.com/dogmatiq/courier/internal/version"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// Tracing is an implementation of courier.Exchanger that records an
// OpenTelemetry span for each HTTP exchange.
//
// Each attempt of a redirected request is recorded as its own span. It
// adheres to the OpenTelemetry RPC semantic conventions as specified in
// https://github.com/open-telemetry/opentelemetry-specification/blob/main/specification/trace/semantic_conventions/rpc.md.
type Tracing struct {
	// Next is the next exchanger in the pipeline.
	Next courier.Exchanger

	// TracerProvider is the OpenTelemetry TracerProvider to use for creating
	// spans.
	TracerProvider trace.TracerProvider

	// ServiceName is an application specific service name to use in the span
	// name and attributes.
	//
	// It may be prefixed with a dot-separated "package name", for example
	// "myapp.test.EchoService".
	//
	// It may be empty, in which case it is omitted from the span.
	ServiceName string

	once           sync.Once
	tracer         trace.Tracer
	spanNamePrefix string
	attributes     []attribute.KeyValue
}

var _ courier.Exchanger = (*Tracing)(nil)

// NewTracingStage returns a pipeline stage that wraps an exchanger in
// Tracing middleware, for use with courier.WithPipeline().
func NewTracingStage(provider trace.TracerProvider, serviceName string) courier.Stage {
	return func(next courier.Exchanger) courier.Exchanger {
		return &Tracing{
			Next:           next,
			TracerProvider: provider,
			ServiceName:    serviceName,
		}
	}
}

// Ready blocks until the exchanger is able to perform one more exchange.
func (t *Tracing) Ready(ctx context.Context) error {
	return t.Next.Ready(ctx)
}

// Exchange performs a single HTTP exchange within a new client span.
func (t *Tracing) Exchange(req *http.Request) (*http.Response, error) {
	t.init()

	ctx, span := t.tracer.Start(
		req.Context(),
		t.spanNamePrefix+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	span.SetAttributes(t.attributes...)
	span.SetAttributes(requestAttributes(req)...)

	res, err := t.Next.Exchange(req.WithContext(ctx))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)

		return nil, err
	}

	span.SetAttributes(semconv.HTTPStatusCode(res.StatusCode))

	if res.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, res.Status)
	} else {
		span.SetStatus(codes.Ok, "")
	}

	return res, nil
}

// init initializes the tracer if it has not already been initialized.
func (t *Tracing) init() {
	t.once.Do(func() {
		t.tracer = t.TracerProvider.Tracer(
			"github.com/dogmatiq/courier/middleware/otelcourier",
			trace.WithInstrumentationVersion(version.Version),
		)

		t.attributes = commonAttributes(t.ServiceName)

		if t.ServiceName != "" {
			t.spanNamePrefix = t.ServiceName + "/"
		}
	})
}
