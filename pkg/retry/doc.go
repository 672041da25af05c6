// Package retry provides the retry policies and the bounded-duration retry
// operation used by the provisioning transports.
//
// # Policies
//
// A Policy answers two questions about a failed attempt: should it be
// retried, and how long to wait first. Two policies are provided:
//
//   - NoRetry never retries.
//   - ExponentialBackOffWithJitter retries errors its ErrorFilter marks as
//     retryable, waiting an exponentially growing, jittered delay.
//
// The backoff delay for retry n is
//
//	delay = min(cMin + (2^(n-1) - 1) * U, cMax)
//
// where U is drawn uniformly between c*(1-jd) and c*(1-ju). Throttling errors
// select a second, wider parameter set. With ImmediateFirstRetry the first
// retry of a non-throttled error happens without delay.
//
// # Operations
//
// An Operation runs a single logical operation, retrying failures through a
// Policy until it succeeds, fails with a non-retryable error, or its maximum
// duration elapses. The deadline is checked before each retry is scheduled,
// so the last attempt may complete slightly after the deadline.
//
//	op := retry.NewOperation("connect", retry.NewExponentialBackOffWithJitter(), 4*time.Minute)
//	err := op.Run(ctx, func(ctx context.Context) error {
//	    return transport.Connect(ctx)
//	})
package retry
