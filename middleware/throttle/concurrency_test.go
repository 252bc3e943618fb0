package throttle_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	. "github.com/dogmatiq/courier/internal/fixtures"
	. "github.com/dogmatiq/courier/middleware/throttle"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"golang.org/x/sync/errgroup"
)

var _ = Describe("type ConcurrencyLimiter", func() {
	var (
		request   *http.Request
		exchanger *ExchangerStub
		limiter   *ConcurrencyLimiter
	)

	BeforeEach(func() {
		request = &http.Request{
			Method: http.MethodPost,
			Header: http.Header{},
			Body:   http.NoBody,
		}

		exchanger = &ExchangerStub{}

		limiter = &ConcurrencyLimiter{
			Next:  exchanger,
			Limit: 2,
		}
	})

	It("forwards to the next exchanger", func() {
		response := &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{},
			Body:       http.NoBody,
		}

		exchanger.ExchangeFunc = func(req *http.Request) (*http.Response, error) {
			Expect(req).To(BeIdenticalTo(request))
			return response, nil
		}

		err := limiter.Ready(context.Background())
		Expect(err).ShouldNot(HaveOccurred())

		res, err := limiter.Exchange(request)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(res).To(BeIdenticalTo(response))
	})

	It("limits the number of exchanges in flight", func() {
		var (
			mu       sync.Mutex
			inFlight int
			maxSeen  int
		)

		release := make(chan struct{})

		exchanger.ExchangeFunc = func(*http.Request) (*http.Response, error) {
			mu.Lock()
			inFlight++
			if inFlight > maxSeen {
				maxSeen = inFlight
			}
			mu.Unlock()

			<-release

			mu.Lock()
			inFlight--
			mu.Unlock()

			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{},
				Body:       http.NoBody,
			}, nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		g, gctx := errgroup.WithContext(ctx)

		for i := 0; i < 8; i++ {
			g.Go(func() error {
				if err := limiter.Ready(gctx); err != nil {
					return err
				}

				_, err := limiter.Exchange(request)
				return err
			})
		}

		current := func() int {
			mu.Lock()
			defer mu.Unlock()
			return inFlight
		}

		Eventually(current).Should(Equal(2))
		Consistently(current).Should(BeNumerically("<=", 2))

		close(release)

		Expect(g.Wait()).ShouldNot(HaveOccurred())
		Expect(maxSeen).To(Equal(2))
	})

	It("returns an error if the context is canceled while waiting", func() {
		limiter.Limit = 1

		err := limiter.Ready(context.Background())
		Expect(err).ShouldNot(HaveOccurred())

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err = limiter.Ready(ctx)
		Expect(err).To(MatchError(context.DeadlineExceeded))
	})

	It("releases the slot if the next exchanger is not ready", func() {
		limiter.Limit = 1

		exchanger.ReadyFunc = func(context.Context) error {
			return errors.New("<not ready>")
		}

		err := limiter.Ready(context.Background())
		Expect(err).To(MatchError("<not ready>"))

		exchanger.ReadyFunc = nil

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		err = limiter.Ready(ctx)
		Expect(err).ShouldNot(HaveOccurred())
	})

	It("releases the slot when the exchange completes", func() {
		limiter.Limit = 1

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		for i := 0; i < 3; i++ {
			err := limiter.Ready(ctx)
			Expect(err).ShouldNot(HaveOccurred())

			_, err = limiter.Exchange(request)
			Expect(err).ShouldNot(HaveOccurred())
		}
	})

	Describe("func NewConcurrencyLimiterStage()", func() {
		It("builds a limiter around the next exchanger", func() {
			stage := NewConcurrencyLimiterStage(1)

			called := false
			exchanger.ExchangeFunc = func(*http.Request) (*http.Response, error) {
				called = true
				return &http.Response{
					StatusCode: http.StatusOK,
					Header:     http.Header{},
					Body:       http.NoBody,
				}, nil
			}

			wrapped := stage(exchanger)

			err := wrapped.Ready(context.Background())
			Expect(err).ShouldNot(HaveOccurred())

			_, err = wrapped.Exchange(request)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(called).To(BeTrue())
		})
	})
})
