package throttle

import (
	"context"
	"net/http"

	"github.com/dogmatiq/courier"
	"golang.org/x/time/rate"
)

// RateLimiter is an implementation of courier.Exchanger that limits the
// rate at which exchanges are started.
type RateLimiter struct {
	// Next is the next exchanger in the pipeline.
	Next courier.Exchanger

	// Limiter is the token bucket that paces the exchanges.
	Limiter *rate.Limiter
}

var _ courier.Exchanger = (*RateLimiter)(nil)

// NewRateLimiterStage returns a pipeline stage that paces exchanges with a
// token bucket, for use with courier.WithPipeline().
//
// limit is the sustained number of exchanges permitted per second. burst
// is the number of exchanges that may be started at once after idling.
func NewRateLimiterStage(limit rate.Limit, burst int) courier.Stage {
	return func(next courier.Exchanger) courier.Exchanger {
		return &RateLimiter{
			Next:    next,
			Limiter: rate.NewLimiter(limit, burst),
		}
	}
}

// Ready blocks until the rate limiter permits one more exchange and the
// next exchanger is itself ready.
func (l *RateLimiter) Ready(ctx context.Context) error {
	if err := l.Limiter.Wait(ctx); err != nil {
		return err
	}

	return l.Next.Ready(ctx)
}

// Exchange performs a single HTTP exchange.
func (l *RateLimiter) Exchange(req *http.Request) (*http.Response, error) {
	return l.Next.Exchange(req)
}
