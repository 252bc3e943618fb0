package throttle

import (
	"context"
	"net/http"
	"sync"

	"github.com/dogmatiq/courier"
	"golang.org/x/sync/semaphore"
)

// ConcurrencyLimiter is an implementation of courier.Exchanger that limits
// the number of exchanges that are in flight at any one time.
//
// It applies backpressure via the readiness protocol: Ready() blocks until
// one of the limiter's slots is free, and the slot is held until the
// exchange completes.
type ConcurrencyLimiter struct {
	// Next is the next exchanger in the pipeline.
	Next courier.Exchanger

	// Limit is the maximum number of exchanges that may be in flight at
	// once.
	Limit int64

	once sync.Once
	sem  *semaphore.Weighted
}

var _ courier.Exchanger = (*ConcurrencyLimiter)(nil)

// NewConcurrencyLimiterStage returns a pipeline stage that allows at most
// limit exchanges to be in flight at once, for use with
// courier.WithPipeline().
func NewConcurrencyLimiterStage(limit int64) courier.Stage {
	return func(next courier.Exchanger) courier.Exchanger {
		return &ConcurrencyLimiter{
			Next:  next,
			Limit: limit,
		}
	}
}

// Ready blocks until the number of exchanges in flight is below the limit
// and the next exchanger is itself ready.
func (l *ConcurrencyLimiter) Ready(ctx context.Context) error {
	l.init()

	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	if err := l.Next.Ready(ctx); err != nil {
		l.sem.Release(1)
		return err
	}

	return nil
}

// Exchange performs a single HTTP exchange, releasing the slot acquired by
// Ready() when the exchange completes.
func (l *ConcurrencyLimiter) Exchange(req *http.Request) (*http.Response, error) {
	defer l.sem.Release(1)

	return l.Next.Exchange(req)
}

// init initializes the semaphore if it has not already been initialized.
func (l *ConcurrencyLimiter) init() {
	l.once.Do(func() {
		l.sem = semaphore.NewWeighted(l.Limit)
	})
}
