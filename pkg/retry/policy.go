package retry

import (
	"math"
	"math/rand"
	"time"

	"github.com/mash-protocol/provisioning-go/pkg/errs"
)

// NoRetryTimeout is returned by NextRetryTimeout when no retry should be made.
const NoRetryTimeout time.Duration = -1

// Policy decides whether and when a failed attempt is retried.
type Policy interface {
	// ShouldRetry reports whether err may be retried at all.
	ShouldRetry(err error) bool

	// NextRetryTimeout returns the delay before retry number retryCount
	// (0 for the first retry). A negative value means do not retry.
	NextRetryTimeout(retryCount int, throttled bool) time.Duration
}

// NoRetry is a Policy that never retries.
type NoRetry struct{}

// ShouldRetry always returns false.
func (NoRetry) ShouldRetry(error) bool { return false }

// NextRetryTimeout always returns NoRetryTimeout.
func (NoRetry) NextRetryTimeout(int, bool) time.Duration { return NoRetryTimeout }

// JitterParams parameterizes ExponentialBackOffWithJitter.
type JitterParams struct {
	// InitialDelay is the base c the jitter window is computed from.
	InitialDelay time.Duration

	// MinDelay (cMin) is the delay of the first non-immediate retry.
	MinDelay time.Duration

	// MaxDelay (cMax) caps every delay.
	MaxDelay time.Duration

	// JitterUp (ju) and JitterDown (jd) bound the jitter window
	// [c*(1-jd), c*(1-ju)].
	JitterUp   float64
	JitterDown float64
}

// Default backoff parameters.
var (
	// DefaultNormalParams apply to ordinary retryable errors.
	DefaultNormalParams = JitterParams{
		InitialDelay: 100 * time.Millisecond,
		MinDelay:     100 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		JitterUp:     0.25,
		JitterDown:   0.5,
	}

	// DefaultThrottledParams apply when the service throttled the caller.
	DefaultThrottledParams = JitterParams{
		InitialDelay: 5 * time.Second,
		MinDelay:     10 * time.Second,
		MaxDelay:     60 * time.Second,
		JitterUp:     0.5,
		JitterDown:   0.25,
	}
)

// ExponentialBackOffWithJitter retries errors its filter allows, with
// exponentially growing jittered delays.
type ExponentialBackOffWithJitter struct {
	immediateFirstRetry bool
	filter              ErrorFilter
	normal              JitterParams
	throttled           JitterParams

	// random returns values in [0, 1). Must be safe for concurrent use.
	random func() float64
}

// BackOffOption configures an ExponentialBackOffWithJitter.
type BackOffOption func(*ExponentialBackOffWithJitter)

// WithImmediateFirstRetry sets whether the first non-throttled retry is immediate.
func WithImmediateFirstRetry(immediate bool) BackOffOption {
	return func(b *ExponentialBackOffWithJitter) {
		b.immediateFirstRetry = immediate
	}
}

// WithErrorFilter sets the filter used by ShouldRetry.
func WithErrorFilter(f ErrorFilter) BackOffOption {
	return func(b *ExponentialBackOffWithJitter) {
		if f != nil {
			b.filter = f
		}
	}
}

// WithNormalParams overrides the parameters for ordinary errors.
func WithNormalParams(p JitterParams) BackOffOption {
	return func(b *ExponentialBackOffWithJitter) {
		b.normal = p
	}
}

// WithThrottledParams overrides the parameters for throttling errors.
func WithThrottledParams(p JitterParams) BackOffOption {
	return func(b *ExponentialBackOffWithJitter) {
		b.throttled = p
	}
}

// WithRandom replaces the jitter source. Tests use it for deterministic delays.
func WithRandom(f func() float64) BackOffOption {
	return func(b *ExponentialBackOffWithJitter) {
		if f != nil {
			b.random = f
		}
	}
}

// NewExponentialBackOffWithJitter creates the default retry policy.
// The first retry is immediate unless WithImmediateFirstRetry(false) is given.
func NewExponentialBackOffWithJitter(opts ...BackOffOption) *ExponentialBackOffWithJitter {
	b := &ExponentialBackOffWithJitter{
		immediateFirstRetry: true,
		filter:              DefaultErrorFilter(),
		normal:              DefaultNormalParams,
		throttled:           DefaultThrottledParams,
		random:              rand.Float64,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ShouldRetry reports whether the filter allows retrying err's kind.
// Unclassified errors are not retried.
func (b *ExponentialBackOffWithJitter) ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	return b.filter.Retryable(errs.KindOf(err))
}

// NextRetryTimeout computes the delay before retry number retryCount.
func (b *ExponentialBackOffWithJitter) NextRetryTimeout(retryCount int, throttled bool) time.Duration {
	if b.immediateFirstRetry && retryCount == 0 && !throttled {
		return 0
	}

	p := b.normal
	if throttled {
		p = b.throttled
	}

	lo := float64(p.InitialDelay) * (1 - p.JitterDown)
	hi := float64(p.InitialDelay) * (1 - p.JitterUp)
	u := lo + b.random()*(hi-lo)

	// Clamped to [0, MaxDelay]; the n=0 term is negative when MinDelay < U/2.
	delay := float64(p.MinDelay) + (math.Pow(2, float64(retryCount-1))-1)*u
	if delay > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return max(time.Duration(delay), 0)
}

// Compile-time interface satisfaction checks.
var (
	_ Policy = NoRetry{}
	_ Policy = (*ExponentialBackOffWithJitter)(nil)
)
