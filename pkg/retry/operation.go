package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/mash-protocol/provisioning-go/pkg/errs"
)

// Operation retries one logical operation through a Policy, bounded by a
// maximum total duration.
type Operation struct {
	name        string
	id          uint64
	policy      Policy
	maxDuration time.Duration
	clock       Clock
	logger      *slog.Logger
}

// OperationOption configures an Operation.
type OperationOption func(*Operation)

// WithClock replaces the wall clock.
func WithClock(c Clock) OperationOption {
	return func(o *Operation) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithSequence assigns the operation a diagnostic id from seq.
func WithSequence(seq *Sequence) OperationOption {
	return func(o *Operation) {
		if seq != nil {
			o.id = seq.Next()
		}
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l *slog.Logger) OperationOption {
	return func(o *Operation) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewOperation creates an Operation. A nil policy means NoRetry.
func NewOperation(name string, policy Policy, maxDuration time.Duration, opts ...OperationOption) *Operation {
	if policy == nil {
		policy = NoRetry{}
	}
	o := &Operation{
		name:        name,
		policy:      policy,
		maxDuration: maxDuration,
		clock:       SystemClock(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Name returns the operation name.
func (o *Operation) Name() string { return o.name }

// ID returns the diagnostic id, 0 when no Sequence was given.
func (o *Operation) ID() uint64 { return o.id }

// Run invokes fn until it succeeds, fails with an error the policy will not
// retry, or the maximum duration has elapsed. The error of the last attempt
// is returned. If ctx is cancelled while waiting to retry, the last error is
// returned joined with the context error.
func (o *Operation) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	start := o.clock.Now()
	expiry := start.Add(o.maxDuration)
	retryCount := 0

	for {
		err := fn(ctx)
		if err == nil {
			if retryCount > 0 {
				o.logger.Debug("retry: operation succeeded", "op", o.name, "id", o.id, "retries", retryCount)
			}
			return nil
		}

		if !o.policy.ShouldRetry(err) {
			o.logger.Debug("retry: non-retryable error", "op", o.name, "id", o.id, "error", err)
			return err
		}

		delay := o.policy.NextRetryTimeout(retryCount, errs.IsThrottling(err))
		if delay < 0 || !o.clock.Now().Before(expiry) {
			o.logger.Debug("retry: giving up", "op", o.name, "id", o.id,
				"retries", retryCount, "elapsed", o.clock.Now().Sub(start), "error", err)
			return err
		}

		o.logger.Debug("retry: scheduling", "op", o.name, "id", o.id,
			"attempt", retryCount+1, "delay", delay, "error", err)

		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-o.clock.After(delay):
		}
		retryCount++
	}
}

// RunAsync runs the operation on a new goroutine and reports the outcome to done.
func (o *Operation) RunAsync(ctx context.Context, fn func(ctx context.Context) error, done func(error)) {
	go func() {
		done(o.Run(ctx, fn))
	}()
}

// Do runs fn through op and returns its result from the successful attempt.
func Do[T any](ctx context.Context, op *Operation, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := op.Run(ctx, func(ctx context.Context) error {
		r, err := fn(ctx)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
