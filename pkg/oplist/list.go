package oplist

import "sync"

// List is a set of pending operation tokens. It is safe for concurrent use.
type List[T comparable] struct {
	mu      sync.Mutex
	pending []T
}

// New creates an empty list.
func New[T comparable]() *List[T] {
	return &List[T]{}
}

// Started records op as pending.
func (l *List[T]) Started(op T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = append(l.pending, op)
}

// IsPending reports whether op is still pending. A completion whose token is
// no longer pending is stale and must not change any state.
func (l *List[T]) IsPending(op T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.indexOf(op) >= 0
}

// Ended removes op. It is a no-op when op is not pending.
func (l *List[T]) Ended(op T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexOf(op); i >= 0 {
		l.pending = append(l.pending[:i], l.pending[i+1:]...)
	}
}

// PopAll removes every pending op, most recent first, and calls visit for each.
// The list is empty before the first visit, so visit may start new operations.
func (l *List[T]) PopAll(visit func(op T)) {
	l.mu.Lock()
	drained := l.pending
	l.pending = nil
	l.mu.Unlock()

	for i := len(drained) - 1; i >= 0; i-- {
		visit(drained[i])
	}
}

// Len returns the number of pending operations.
func (l *List[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

func (l *List[T]) indexOf(op T) int {
	for i, p := range l.pending {
		if p == op {
			return i
		}
	}
	return -1
}
