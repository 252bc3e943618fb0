package otelcourier

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dogmatiq/courier"
	"github.com/dogmatiq/courier/internal/version"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics is an implementation of courier.Exchanger that records
// OpenTelemetry metrics for each HTTP exchange.
type Metrics struct {
	// Next is the next exchanger in the pipeline.
	Next courier.Exchanger

	// MeterProvider is the OpenTelemetry MeterProvider used to create meters.
	MeterProvider metric.MeterProvider

	// ServiceName is an application specific service name to use in the
	// meter attributes.
	//
	// It may be empty, in which case it is omitted.
	ServiceName string

	once       sync.Once
	exchanges  metric.Int64Counter
	errors     metric.Int64Counter
	duration   metric.Int64Histogram
	attributes []attribute.KeyValue
}

var _ courier.Exchanger = (*Metrics)(nil)

// NewMetricsStage returns a pipeline stage that wraps an exchanger in
// Metrics middleware, for use with courier.WithPipeline().
func NewMetricsStage(provider metric.MeterProvider, serviceName string) courier.Stage {
	return func(next courier.Exchanger) courier.Exchanger {
		return &Metrics{
			Next:          next,
			MeterProvider: provider,
			ServiceName:   serviceName,
		}
	}
}

// Ready blocks until the exchanger is able to perform one more exchange.
func (m *Metrics) Ready(ctx context.Context) error {
	return m.Next.Ready(ctx)
}

// Exchange performs a single HTTP exchange, recording metrics about it.
func (m *Metrics) Exchange(req *http.Request) (*http.Response, error) {
	m.init()

	ctx := req.Context()

	attrs := requestAttributes(req)
	attrs = append(attrs, m.attributes...)
	attrOption := metric.WithAttributes(attrs...)

	m.exchanges.Add(ctx, 1, attrOption)

	start := time.Now()
	res, err := m.Next.Exchange(req)
	elapsed := time.Since(start)

	m.duration.Record(ctx, durationToMillis(elapsed), attrOption)

	if err != nil || res.StatusCode >= http.StatusBadRequest {
		m.errors.Add(ctx, 1, attrOption)
	}

	return res, err
}

// init initializes the meter if it has not already been initialized.
func (m *Metrics) init() {
	m.once.Do(func() {
		meter := m.MeterProvider.Meter(
			"github.com/dogmatiq/courier/middleware/otelcourier",
			metric.WithInstrumentationVersion(version.Version),
		)

		var err error

		m.exchanges, err = meter.Int64Counter(
			"rpc.client.exchanges",
			metric.WithDescription("The number of HTTP exchanges attempted, including redirections."),
			metric.WithUnit("1"),
		)
		if err != nil {
			panic(err)
		}

		m.errors, err = meter.Int64Counter(
			"rpc.client.errors",
			metric.WithDescription("The number of HTTP exchanges that fail, or respond with a 4xx or 5xx status code."),
			metric.WithUnit("1"),
		)
		if err != nil {
			panic(err)
		}

		m.duration, err = meter.Int64Histogram(
			"rpc.client.duration",
			metric.WithDescription("The amount of time it takes the server to respond to a request."),
			metric.WithUnit("ms"),
		)
		if err != nil {
			panic(err)
		}

		m.attributes = commonAttributes(m.ServiceName)
	})
}

// durationToMillis converts a duration to milliseconds.
func durationToMillis(d time.Duration) int64 {
	return int64(d / time.Millisecond)
}
