package retry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mash-protocol/provisioning-go/pkg/errs"
)

// fakeClock advances instantly whenever a wait is requested.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	waits []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.waits = append(c.waits, d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Waits() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.waits...)
}

// fixedPolicy retries everything with a constant delay.
type fixedPolicy struct {
	delay time.Duration
}

func (fixedPolicy) ShouldRetry(err error) bool { return err != nil }

func (p fixedPolicy) NextRetryTimeout(int, bool) time.Duration { return p.delay }

func TestOperation_SuccessFirstAttempt(t *testing.T) {
	clock := newFakeClock()
	op := NewOperation("connect", NewExponentialBackOffWithJitter(), time.Minute, WithClock(clock))

	calls := 0
	err := op.Run(context.Background(), func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, clock.Waits())
}

func TestOperation_NonRetryableIsTerminal(t *testing.T) {
	clock := newFakeClock()
	op := NewOperation("connect", NewExponentialBackOffWithJitter(), time.Minute, WithClock(clock))

	authErr := errs.New(errs.KindUnauthorized, "bad key")
	calls := 0
	err := op.Run(context.Background(), func(context.Context) error {
		calls++
		return authErr
	})

	assert.Same(t, authErr, err)
	assert.Equal(t, 1, calls)
}

func TestOperation_RetriesUntilSuccess(t *testing.T) {
	clock := newFakeClock()
	policy := NewExponentialBackOffWithJitter(WithRandom(fixedRandom(0)))
	op := NewOperation("connect", policy, time.Minute, WithClock(clock))

	calls := 0
	err := op.Run(context.Background(), func(context.Context) error {
		calls++
		if calls < 4 {
			return errs.New(errs.KindServiceUnavailable, "busy")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, []time.Duration{0, 100 * time.Millisecond, 150 * time.Millisecond}, clock.Waits())
}

func TestOperation_ZeroMinDelayKeepsRetrying(t *testing.T) {
	clock := newFakeClock()
	policy := NewExponentialBackOffWithJitter(
		WithImmediateFirstRetry(false),
		WithRandom(fixedRandom(0)),
		WithNormalParams(JitterParams{InitialDelay: time.Second, MaxDelay: 10 * time.Second, JitterUp: 0.5, JitterDown: 0.5}),
	)
	op := NewOperation("connect", policy, time.Hour, WithClock(clock))

	calls := 0
	err := op.Run(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errs.New(errs.KindServiceUnavailable, "busy")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{0, 0}, clock.Waits())
}

func TestOperation_ThrottledUsesThrottledParams(t *testing.T) {
	clock := newFakeClock()
	policy := NewExponentialBackOffWithJitter(WithRandom(fixedRandom(0)))
	op := NewOperation("send", policy, time.Hour, WithClock(clock))

	calls := 0
	err := op.Run(context.Background(), func(context.Context) error {
		calls++
		if calls == 1 {
			return errs.New(errs.KindThrottling, "slow down")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{8125 * time.Millisecond}, clock.Waits())
}

func TestOperation_DeadlineReturnsLastError(t *testing.T) {
	clock := newFakeClock()
	op := NewOperation("connect", fixedPolicy{delay: time.Second}, 5*time.Second, WithClock(clock))

	var last error
	calls := 0
	err := op.Run(context.Background(), func(context.Context) error {
		calls++
		last = errs.Newf(errs.KindTimeout, "attempt %d", calls)
		return last
	})

	require.Error(t, err)
	assert.Same(t, last, err)

	// Attempts start at t=0..5s; the attempt at t=5s is not followed by another.
	assert.Equal(t, 6, calls)
	for _, w := range clock.Waits() {
		assert.Equal(t, time.Second, w)
	}
}

func TestOperation_NeverSchedulesPastExpiry(t *testing.T) {
	clock := newFakeClock()
	start := clock.Now()
	expiry := start.Add(3 * time.Second)
	op := NewOperation("connect", fixedPolicy{delay: 500 * time.Millisecond}, 3*time.Second, WithClock(clock))

	var starts []time.Time
	err := op.Run(context.Background(), func(context.Context) error {
		starts = append(starts, clock.Now())
		clock.Advance(700 * time.Millisecond)
		return errs.New(errs.KindNotConnected, "down")
	})

	require.Error(t, err)
	require.NotEmpty(t, starts)
	// Every attempt after the first was scheduled while the deadline had not passed.
	for i := 1; i < len(starts); i++ {
		scheduledAt := starts[i].Add(-500 * time.Millisecond)
		assert.True(t, scheduledAt.Before(expiry), "attempt %d scheduled at %v", i, scheduledAt)
	}
	assert.False(t, clock.Now().Before(expiry))
}

func TestOperation_NegativeTimeoutStops(t *testing.T) {
	op := NewOperation("connect", fixedPolicy{delay: NoRetryTimeout}, time.Hour, WithClock(newFakeClock()))

	calls := 0
	err := op.Run(context.Background(), func(context.Context) error {
		calls++
		return errs.New(errs.KindTimeout, "timeout")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestOperation_NilPolicyNeverRetries(t *testing.T) {
	op := NewOperation("connect", nil, time.Hour)

	calls := 0
	err := op.Run(context.Background(), func(context.Context) error {
		calls++
		return errs.New(errs.KindTimeout, "timeout")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestOperation_ContextCancelledWhileWaiting(t *testing.T) {
	op := NewOperation("connect", fixedPolicy{delay: time.Hour}, 2*time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	attemptErr := errs.New(errs.KindNotConnected, "down")

	done := make(chan error, 1)
	go func() {
		done <- op.Run(ctx, func(context.Context) error { return attemptErr })
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, attemptErr))
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestOperation_RunAsync(t *testing.T) {
	op := NewOperation("send", NoRetry{}, time.Second)

	done := make(chan error, 1)
	op.RunAsync(context.Background(), func(context.Context) error { return nil }, func(err error) {
		done <- err
	})

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("RunAsync callback not invoked")
	}
}

func TestDo(t *testing.T) {
	clock := newFakeClock()
	op := NewOperation("query", fixedPolicy{delay: time.Millisecond}, time.Minute, WithClock(clock))

	calls := 0
	got, err := Do(context.Background(), op, func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "partial", errs.New(errs.KindInternalServer, "oops")
		}
		return "assigned", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "assigned", got)

	_, err = Do(context.Background(), NewOperation("query", nil, 0), func(context.Context) (int, error) {
		return 7, errs.New(errs.KindFormat, "bad body")
	})
	assert.Equal(t, errs.KindFormat, errs.KindOf(err))
}

func TestSequence(t *testing.T) {
	var seq Sequence

	a := NewOperation("a", nil, 0, WithSequence(&seq))
	b := NewOperation("b", nil, 0, WithSequence(&seq))
	c := NewOperation("c", nil, 0)

	assert.Equal(t, uint64(1), a.ID())
	assert.Equal(t, uint64(2), b.ID())
	assert.Equal(t, uint64(0), c.ID())
	assert.Equal(t, "c", c.Name())
}
