package provisioning

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mash-protocol/provisioning-go/pkg/errs"
	"github.com/mash-protocol/provisioning-go/pkg/log"
	"github.com/mash-protocol/provisioning-go/pkg/oplist"
	"github.com/mash-protocol/provisioning-go/pkg/retry"
)

// ErrClosed is returned for calls made on, or outstanding at, a closed client.
var ErrClosed = errors.New("provisioning client closed")

// operation is one register call. Its pointer is the operation token.
type operation struct {
	id  uuid.UUID
	req RegistrationRequest

	// ctx is passed to transport calls and cancelled when the operation ends.
	ctx    context.Context
	cancel context.CancelFunc

	// callerCtx is the context given to Register.
	callerCtx context.Context
	stopAbort func() bool

	// serviceOpID is the operation id to poll, from the last assigning response.
	serviceOpID string

	result *future[*RegistrationResult]
}

// finish releases the operation's context and caller watch.
func (op *operation) finish() {
	if op.stopAbort != nil {
		op.stopAbort()
	}
	op.cancel()
}

// Client registers a device through a Transport. It is safe for concurrent use.
type Client struct {
	transport Transport
	connector Connector
	config    Config
	logger    *slog.Logger
	eventLog  log.Logger
	seq       *retry.Sequence
	notify    *notifier

	events    chan event
	closing   chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	// Owned by the event loop.
	table     map[State]map[eventKind]func(event)
	current   *operation
	ops       *oplist.List[*operation]
	deferred  []event
	lastSeq   uint64
	awaiting  uint64
	call      log.Operation
	callStart time.Time
	timeout   *time.Timer
	pollTimer *time.Timer
	hook      *hookCall

	mu            sync.RWMutex
	state         State
	onStatus      func(*RegistrationResult)
	onStateChange func(oldState, newState State)
}

// New creates a Client for transport and starts its event loop. If transport
// implements Connector the client starts disconnected and connects on the
// first Register; otherwise it starts idle.
func New(transport Transport, config Config) (*Client, error) {
	if transport == nil {
		return nil, errs.New(errs.KindArgument, "transport is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		transport: transport,
		config:    config,
		logger:    config.Logger,
		eventLog:  config.EventLogger,
		seq:       config.Sequence,
		events:    make(chan event),
		closing:   make(chan struct{}),
		done:      make(chan struct{}),
		ops:       oplist.New[*operation](),
		notify:    newNotifier(),
		state:     StateIdle,
	}
	if c.seq == nil {
		c.seq = &retry.Sequence{}
	}
	if conn, ok := transport.(Connector); ok {
		c.connector = conn
		c.state = StateDisconnected
	}
	c.table = c.transitions()

	go c.run()
	return c, nil
}

// State returns the current state.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// OnOperationStatus sets a callback invoked whenever the service reports
// assigning, assigned or failed.
func (c *Client) OnOperationStatus(fn func(result *RegistrationResult)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStatus = fn
}

// OnStateChange sets a callback invoked on every state transition.
func (c *Client) OnStateChange(fn func(oldState, newState State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStateChange = fn
}

// Register registers the device and blocks until the registration is
// assigned, fails, or is cancelled. Cancelling ctx cancels the registration.
func (c *Client) Register(ctx context.Context, req RegistrationRequest) (*RegistrationResult, error) {
	return c.start(ctx, req).result()
}

// RegisterAsync starts a registration and invokes done with its outcome on
// another goroutine.
func (c *Client) RegisterAsync(ctx context.Context, req RegistrationRequest, done func(*RegistrationResult, error)) {
	f := c.start(ctx, req)
	go func() {
		done(f.result())
	}()
}

// Cancel cancels the outstanding registration, if any. The registration
// fails with an operation-cancelled error and the transport's Cancel is
// called. Without an outstanding registration Cancel returns immediately.
func (c *Client) Cancel(ctx context.Context) error {
	return c.command(ctx, evCancel)
}

// Disconnect cancels the outstanding registration, if any, and disconnects
// the transport. Disconnecting a disconnected client is a no-op.
func (c *Client) Disconnect(ctx context.Context) error {
	return c.command(ctx, evDisconnect)
}

// Close stops the event loop. Outstanding calls fail with ErrClosed. The
// transport is not disconnected. Close waits for queued observer callbacks
// and must not be called from one.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.closing)
	})
	<-c.done
	c.notify.close()
	return nil
}

func (c *Client) start(ctx context.Context, req RegistrationRequest) *future[*RegistrationResult] {
	f := newFuture[*RegistrationResult]()
	if err := req.Validate(); err != nil {
		f.complete(nil, err)
		return f
	}
	if err := ctx.Err(); err != nil {
		f.complete(nil, callerError(err))
		return f
	}

	opCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	op := &operation{
		id:        uuid.New(),
		req:       req,
		ctx:       opCtx,
		cancel:    cancel,
		callerCtx: ctx,
		result:    f,
	}
	if err := c.post(ctx, event{kind: evRegister, op: op}); err != nil {
		cancel()
		if !errors.Is(err, ErrClosed) {
			err = callerError(err)
		}
		f.complete(nil, err)
	}
	return f
}

func (c *Client) command(ctx context.Context, kind eventKind) error {
	f := newFuture[struct{}]()
	if err := c.post(ctx, event{kind: kind, done: f}); err != nil {
		return err
	}
	_, err := f.wait(ctx)
	return err
}

// post hands ev to the event loop.
func (c *Client) post(ctx context.Context, ev event) error {
	select {
	case c.events <- ev:
		return nil
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// postAsync posts a completion from a transport goroutine or timer.
func (c *Client) postAsync(ev event) {
	_ = c.post(context.Background(), ev)
}

func (c *Client) run() {
	defer close(c.done)
	for {
		select {
		case ev := <-c.events:
			c.dispatch(ev)
		case <-c.closing:
			c.shutdown()
			return
		}
	}
}

// shutdown fails every outstanding caller with ErrClosed.
func (c *Client) shutdown() {
	c.stopTimers()
	c.awaiting = 0
	c.current = nil

	c.ops.PopAll(func(op *operation) {
		op.finish()
		op.result.complete(nil, ErrClosed)
	})

	if h := c.hook; h != nil {
		c.hook = nil
		if h.deliver != nil {
			h.deliver()
		}
		if h.waiter != nil {
			h.waiter.complete(struct{}{}, ErrClosed)
		}
	}

	for _, ev := range c.deferred {
		switch {
		case ev.op != nil:
			ev.op.finish()
			ev.op.result.complete(nil, ErrClosed)
		case ev.done != nil:
			ev.done.complete(struct{}{}, ErrClosed)
		}
	}
	c.deferred = nil

	c.debugLog("client closed")
}

// callerError classifies the error of a Register caller's context.
func callerError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errs.Wrap(errs.KindTimeout, "registration deadline exceeded", err)
	}
	return errs.Wrap(errs.KindOperationCancelled, "registration cancelled", err)
}

// debugLog logs a debug message if a logger is configured.
func (c *Client) debugLog(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
