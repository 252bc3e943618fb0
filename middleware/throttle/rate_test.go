package throttle_test

import (
	"context"
	"errors"
	"net/http"
	"time"

	. "github.com/dogmatiq/courier/internal/fixtures"
	. "github.com/dogmatiq/courier/middleware/throttle"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"golang.org/x/time/rate"
)

var _ = Describe("type RateLimiter", func() {
	var (
		request   *http.Request
		exchanger *ExchangerStub
	)

	BeforeEach(func() {
		request = &http.Request{
			Method: http.MethodPost,
			Header: http.Header{},
			Body:   http.NoBody,
		}

		exchanger = &ExchangerStub{}
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

		limiter := &RateLimiter{
			Next:    exchanger,
			Limiter: rate.NewLimiter(rate.Inf, 1),
		}

		err := limiter.Ready(context.Background())
		Expect(err).ShouldNot(HaveOccurred())

		res, err := limiter.Exchange(request)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(res).To(BeIdenticalTo(response))
	})

	It("propagates readiness errors from the next exchanger", func() {
		exchanger.ReadyFunc = func(context.Context) error {
			return errors.New("<not ready>")
		}

		limiter := &RateLimiter{
			Next:    exchanger,
			Limiter: rate.NewLimiter(rate.Inf, 1),
		}

		err := limiter.Ready(context.Background())
		Expect(err).To(MatchError("<not ready>"))
	})

	It("allows an initial burst of exchanges", func() {
		limiter := &RateLimiter{
			Next:    exchanger,
			Limiter: rate.NewLimiter(rate.Every(time.Hour), 2),
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		Expect(limiter.Ready(ctx)).ShouldNot(HaveOccurred())
		Expect(limiter.Ready(ctx)).ShouldNot(HaveOccurred())
	})

	It("blocks once the burst is exhausted", func() {
		limiter := &RateLimiter{
			Next:    exchanger,
			Limiter: rate.NewLimiter(rate.Every(time.Hour), 1),
		}

		Expect(limiter.Ready(context.Background())).ShouldNot(HaveOccurred())

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err := limiter.Ready(ctx)
		Expect(err).Should(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("exceed context deadline"))
	})

	It("does not block when the rate is unlimited", func() {
		limiter := &RateLimiter{
			Next:    exchanger,
			Limiter: rate.NewLimiter(rate.Inf, 1),
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		for i := 0; i < 100; i++ {
			Expect(limiter.Ready(ctx)).ShouldNot(HaveOccurred())
		}
	})

	Describe("func NewRateLimiterStage()", func() {
		It("builds a limiter around the next exchanger", func() {
			stage := NewRateLimiterStage(rate.Inf, 1)

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
