package guru

import (
	"context"

	"golang.org/x/time/rate"
)

// RateGate combines a token-bucket pacer with a concurrency cap so
// that parallel collection tasks share one request budget against the
// transactional platform's limits.
type RateGate struct {
	limiter *rate.Limiter
	slots   chan struct{}
}

// NewRateGate paces requests at qps with a burst of twice that, and
// caps in-flight requests at maxConcurrency.
func NewRateGate(qps float64, maxConcurrency int) *RateGate {
	if qps <= 0 {
		qps = 1
	}
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	burst := int(qps * 2)
	if burst < 1 {
		burst = 1
	}
	return &RateGate{
		limiter: rate.NewLimiter(rate.Limit(qps), burst),
		slots:   make(chan struct{}, maxConcurrency),
	}
}

// Acquire blocks until both a concurrency slot and a rate token are
// available, then returns the release func for the slot. The caller
// must invoke release exactly once; ctx cancellation aborts the wait.
func (g *RateGate) Acquire(ctx context.Context) (func(), error) {
	select {
	case g.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if err := g.limiter.Wait(ctx); err != nil {
		<-g.slots
		return nil, err
	}
	return func() { <-g.slots }, nil
}
