package fixtures

import (
	"context"
	"net/http"
)

// ExchangerStub is a test implementation of the Exchanger interface.
type ExchangerStub struct {
	ReadyFunc    func(context.Context) error
	ExchangeFunc func(*http.Request) (*http.Response, error)
}

// Ready blocks until the exchanger is able to perform one more exchange.
func (s *ExchangerStub) Ready(ctx context.Context) error {
	if s.ReadyFunc != nil {
		return s.ReadyFunc(ctx)
	}

	return nil
}

// Exchange performs a single HTTP exchange.
func (s *ExchangerStub) Exchange(req *http.Request) (*http.Response, error) {
	if s.ExchangeFunc != nil {
		return s.ExchangeFunc(req)
	}

	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{},
		Body:       http.NoBody,
	}, nil
}

// TrafficLoggerStub is a test implementation of the TrafficLogger interface.
type TrafficLoggerStub struct {
	LogSendFunc    func(context.Context, string, int)
	LogReceiveFunc func(context.Context, string, int)
}

func (s *TrafficLoggerStub) LogSend(ctx context.Context, body string, size int) {
	if s.LogSendFunc != nil {
		s.LogSendFunc(ctx, body, size)
	}
}

func (s *TrafficLoggerStub) LogReceive(ctx context.Context, body string, size int) {
	if s.LogReceiveFunc != nil {
		s.LogReceiveFunc(ctx, body, size)
	}
}
