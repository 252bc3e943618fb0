package courier

import "net/http"

const (
	// DefaultMaxBodySize is the default maximum size of request and
	// response bodies, in bytes.
	DefaultMaxBodySize = 10 * 1024 * 1024

	// DefaultMaxLogLength is the default maximum number of bytes of a
	// request or response body that is reproduced in a log message.
	DefaultMaxLogLength = 4096
)

// Option is a configuration option for a client, accepted by New().
type Option func(*options)

// options is the aggregate configuration produced by applying a set of
// Options to the defaults.
type options struct {
	maxRequestSize  uint32
	maxResponseSize uint32
	maxLogLength    uint32
	store           CertificateStore
	headers         []headerPair
	stages          []Stage
	httpOnly        bool
	logger          TrafficLogger
}

func defaultOptions() options {
	return options{
		maxRequestSize:  DefaultMaxBodySize,
		maxResponseSize: DefaultMaxBodySize,
		maxLogLength:    DefaultMaxLogLength,
		store:           NativeCertificateStore,
	}
}

// WithMaxRequestSize sets the maximum size of a request body, in bytes.
//
// A request with a larger body fails with ErrRequestTooLarge without
// anything being sent.
func WithMaxRequestSize(n uint32) Option {
	return func(o *options) {
		o.maxRequestSize = n
	}
}

// WithMaxResponseSize sets the maximum size of a response body, in bytes.
//
// A response with a larger body fails with ErrRequestTooLarge as soon as
// the excess is detected, without buffering the remainder.
func WithMaxResponseSize(n uint32) Option {
	return func(o *options) {
		o.maxResponseSize = n
	}
}

// WithMaxLogLength sets the maximum number of bytes of a request or
// response body that is reproduced in a log message. Longer bodies are
// truncated at a rune boundary.
func WithMaxLogLength(n uint32) Option {
	return func(o *options) {
		o.maxLogLength = n
	}
}

// WithCertificateStore sets the source of the root certificates that the
// client trusts when connecting over TLS.
//
// It has no effect on a client with an "http" target.
func WithCertificateStore(s CertificateStore) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithHeader adds a header that is sent with every request.
//
// Headers are applied in the order they are configured. A header whose key
// matches an already-present key, including the Content-Type and Accept
// defaults, replaces its value.
func WithHeader(name, value string) Option {
	return func(o *options) {
		o.headers = append(o.headers, headerPair{name, value})
	}
}

// WithHeaders adds each header in h to the headers that are sent with
// every request, as if by WithHeader().
//
// Only the first value of each key is used; keys are unique within the
// client's header set.
func WithHeaders(h http.Header) Option {
	return func(o *options) {
		for name, values := range h {
			if len(values) > 0 {
				o.headers = append(o.headers, headerPair{name, values[0]})
			}
		}
	}
}

// WithPipeline appends stages to the client's exchange pipeline.
//
// The stages wrap the client's backend in order: the first stage is the
// outermost, it sees each request first and its response last.
func WithPipeline(stages ...Stage) Option {
	return func(o *options) {
		o.stages = append(o.stages, stages...)
	}
}

// WithHTTPOnly forces every request to be sent over unencrypted HTTP, by
// rewriting "https" URLs to "http" before each attempt. The rewrite
// applies to the client's own target and to any URL it is redirected to.
func WithHTTPOnly() Option {
	return func(o *options) {
		o.httpOnly = true
	}
}

// WithTrafficLogger sets the logger used to record the bodies of requests
// and responses. By default nothing is logged.
func WithTrafficLogger(l TrafficLogger) Option {
	return func(o *options) {
		o.logger = l
	}
}
