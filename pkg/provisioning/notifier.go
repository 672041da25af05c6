package provisioning

import "sync"

// notifier runs observer callbacks on its own goroutine, one at a time and
// in the order the event loop queued them. An observer may call back into
// the client because the loop never waits on it.
type notifier struct {
	mu     sync.Mutex
	queue  []func()
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

func newNotifier() *notifier {
	n := &notifier{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go n.run()
	return n
}

// observe queues fn behind everything queued before it.
func (n *notifier) observe(fn func()) {
	n.mu.Lock()
	n.queue = append(n.queue, fn)
	n.mu.Unlock()

	select {
	case n.wake <- struct{}{}:
	default:
	}
}

// close runs what is queued and stops the notifier.
func (n *notifier) close() {
	n.mu.Lock()
	n.closed = true
	n.mu.Unlock()

	select {
	case n.wake <- struct{}{}:
	default:
	}
	<-n.done
}

func (n *notifier) run() {
	defer close(n.done)
	for {
		n.mu.Lock()
		queue, closed := n.queue, n.closed
		n.queue = nil
		n.mu.Unlock()

		for _, fn := range queue {
			fn()
		}
		if len(queue) > 0 {
			continue
		}
		if closed {
			return
		}
		<-n.wake
	}
}
