package guru

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateGate_CapsConcurrency(t *testing.T) {
	gate := NewRateGate(10000, 3)

	var (
		inFlight atomic.Int32
		peak     atomic.Int32
		wg       sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := gate.Acquire(context.Background())
			require.NoError(t, err)
			defer release()

			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestRateGate_SustainedPacing(t *testing.T) {
	// qps 20 gives a burst of 40; 50 acquisitions must take at least
	// (50-40)/20 = 0.5s of sustained pacing.
	gate := NewRateGate(20, 50)

	start := time.Now()
	for i := 0; i < 50; i++ {
		release, err := gate.Acquire(context.Background())
		require.NoError(t, err)
		release()
	}
	assert.GreaterOrEqual(t, time.Since(start), 400*time.Millisecond)
}

func TestRateGate_CancelledContext(t *testing.T) {
	gate := NewRateGate(1, 1)

	release, err := gate.Acquire(context.Background())
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = gate.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateGate_ZeroConfigStillServes(t *testing.T) {
	gate := NewRateGate(0, 0)
	release, err := gate.Acquire(context.Background())
	require.NoError(t, err)
	release()
}
