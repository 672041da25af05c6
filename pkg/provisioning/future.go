package provisioning

import (
	"context"
	"sync"
)

// future is a single asynchronous result. It completes at most once; later
// completions are ignored.
type future[T any] struct {
	once sync.Once
	done chan struct{}
	val  T
	err  error
}

func newFuture[T any]() *future[T] {
	return &future[T]{done: make(chan struct{})}
}

// complete sets the result. It reports whether this call completed the future.
func (f *future[T]) complete(val T, err error) bool {
	completed := false
	f.once.Do(func() {
		f.val = val
		f.err = err
		close(f.done)
		completed = true
	})
	return completed
}

// Done is closed once the future has completed.
func (f *future[T]) Done() <-chan struct{} {
	return f.done
}

// wait blocks until the future completes or ctx is done.
func (f *future[T]) wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// result blocks until the future completes.
func (f *future[T]) result() (T, error) {
	<-f.done
	return f.val, f.err
}
