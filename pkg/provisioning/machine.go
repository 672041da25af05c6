package provisioning

import (
	"context"
	"fmt"
	"time"

	"github.com/mash-protocol/provisioning-go/pkg/errs"
	"github.com/mash-protocol/provisioning-go/pkg/log"
	"github.com/mash-protocol/provisioning-go/pkg/retry"
)

// eventKind identifies an event on the client's event loop.
type eventKind uint8

const (
	// Commands from the public API.
	evRegister eventKind = iota
	evCancel
	evDisconnect

	// Completions, tagged with the call or operation they belong to.
	evAbort
	evConnected
	evResponse
	evRequestTimeout
	evPollTimer
	evHookDone
)

// String returns the event name.
func (k eventKind) String() string {
	switch k {
	case evRegister:
		return "register"
	case evCancel:
		return "cancel"
	case evDisconnect:
		return "disconnect"
	case evAbort:
		return "abort"
	case evConnected:
		return "connected"
	case evResponse:
		return "response"
	case evRequestTimeout:
		return "request_timeout"
	case evPollTimer:
		return "poll_timer"
	case evHookDone:
		return "hook_done"
	default:
		return "unknown"
	}
}

// command reports whether k comes from the public API. Commands a state
// does not handle are deferred; completions it does not handle are dropped.
func (k eventKind) command() bool {
	return k <= evDisconnect
}

type event struct {
	kind eventKind

	// seq tags completions of transport calls and timers.
	seq uint64

	// op is set for evRegister and evAbort.
	op *operation

	// done is set for evCancel and evDisconnect.
	done *future[struct{}]

	resp *Response
	err  error
}

// hookCall is an in-flight transport Cancel or Disconnect.
type hookCall struct {
	op      log.Operation
	waiter  *future[struct{}]
	deliver func()
}

// transitions returns the state x event table. States missing from the
// table (response_received, response_complete, response_error) are only
// passed through inside a single transition and never receive events.
// Busy states reject a second register.
func (c *Client) transitions() map[State]map[eventKind]func(event) {
	ready := map[eventKind]func(event){
		evRegister:   c.beginRegister,
		evCancel:     c.completeCommand,
		evDisconnect: c.disconnectIdle,
	}
	table := map[State]map[eventKind]func(event){
		StateDisconnected: {
			evRegister:   c.beginRegister,
			evCancel:     c.completeCommand,
			evDisconnect: c.completeCommand,
		},
		StateIdle:      ready,
		StateConnected: ready,
		StateConnecting: {
			evConnected: c.connectDone,
		},
		StateSendingRequest: {
			evResponse:       c.responseReceived,
			evRequestTimeout: c.requestTimedOut,
		},
		StateWaitingToPoll: {
			evPollTimer: c.poll,
		},
		StatePolling: {
			evResponse:       c.responseReceived,
			evRequestTimeout: c.requestTimedOut,
		},
		StateCancelling: {
			evHookDone: c.hookDone,
		},
		StateDisconnecting: {
			evHookDone: c.hookDone,
		},
	}
	for s, row := range table {
		if !s.busy() {
			continue
		}
		row[evRegister] = c.rejectRegister
		row[evCancel] = c.cancelCurrent
		row[evDisconnect] = c.disconnectCurrent
		row[evAbort] = c.abortCurrent
	}
	return table
}

// dispatch runs one event and then replays deferred events.
func (c *Client) dispatch(ev event) {
	if ev.kind.command() && len(c.deferred) > 0 {
		c.deferred = append(c.deferred, ev)
		return
	}
	c.handle(ev)
	c.drainDeferred()
}

func (c *Client) handle(ev event) {
	if !ev.kind.command() && !c.isCurrent(ev) {
		c.debugLog("dropping stale completion", "event", ev.kind, "state", c.state)
		return
	}

	// The registration whose error is delivered after the disconnect hook
	// is still outstanding.
	if ev.kind == evRegister && c.hook != nil && c.hook.deliver != nil {
		c.rejectRegister(ev)
		return
	}

	h, ok := c.table[c.state][ev.kind]
	if !ok {
		if ev.kind.command() {
			c.debugLog("deferring event", "event", ev.kind, "state", c.state)
			c.deferred = append(c.deferred, ev)
			return
		}
		c.debugLog("dropping unexpected event", "event", ev.kind, "state", c.state)
		return
	}
	h(ev)
}

// drainDeferred replays deferred events in arrival order while the current
// state handles the oldest one.
func (c *Client) drainDeferred() {
	for len(c.deferred) > 0 {
		ev := c.deferred[0]
		if _, ok := c.table[c.state][ev.kind]; !ok {
			return
		}
		c.deferred = c.deferred[1:]
		c.handle(ev)
	}
}

func (c *Client) isCurrent(ev event) bool {
	if ev.kind == evAbort {
		return ev.op != nil && ev.op == c.current && c.ops.IsPending(ev.op)
	}
	return ev.seq != 0 && ev.seq == c.awaiting
}

func (c *Client) setState(next State, reason string) {
	c.mu.Lock()
	old := c.state
	c.state = next
	fn := c.onStateChange
	c.mu.Unlock()

	if old == next {
		return
	}
	c.debugLog("state change", "from", old, "to", next, "reason", reason)
	c.emit(log.Event{
		Layer:    log.LayerRegistration,
		Category: log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityRegistration,
			OldState: old.String(),
			NewState: next.String(),
			Reason:   reason,
		},
	})
	if fn != nil {
		c.notify.observe(func() { fn(old, next) })
	}
}

// readyState is the state between registrations.
func (c *Client) readyState() State {
	if c.connector != nil {
		return StateConnected
	}
	return StateIdle
}

func (c *Client) completeCommand(ev event) {
	ev.done.complete(struct{}{}, nil)
}

func (c *Client) rejectRegister(ev event) {
	ev.op.finish()
	ev.op.result.complete(nil, errs.New(errs.KindInvalidOperation, "a registration is already in progress"))
}

func (c *Client) beginRegister(ev event) {
	op := ev.op
	c.current = op
	c.ops.Started(op)
	op.stopAbort = context.AfterFunc(op.callerCtx, func() {
		c.postAsync(event{kind: evAbort, op: op})
	})
	c.debugLog("register", "op", op.id, "registrationID", op.req.RegistrationID)

	if c.connector != nil && c.state == StateDisconnected {
		c.connect()
		return
	}
	c.sendRequest()
}

func (c *Client) connect() {
	op := c.current
	c.setState(StateConnecting, "register")
	seq := c.beginCall(log.OpConnect)

	ro := retry.NewOperation("connect", c.config.ConnectRetryPolicy, c.config.ConnectTimeout,
		retry.WithSequence(c.seq), retry.WithLogger(c.logger))
	go func() {
		err := ro.Run(op.ctx, c.connector.Connect)
		c.postAsync(event{kind: evConnected, seq: seq, err: err})
	}()
}

func (c *Client) connectDone(ev event) {
	c.logCompletion(ev)
	c.awaiting = 0
	if ev.err != nil {
		c.logError(log.LayerTransport, ev.err, "connect")
		op := c.takeCurrent()
		c.setState(StateDisconnected, "connect failed")
		op.result.complete(nil, ev.err)
		return
	}
	c.setState(StateConnected, "connected")
	c.sendRequest()
}

func (c *Client) sendRequest() {
	op := c.current
	c.setState(StateSendingRequest, "register")
	seq := c.beginCall(log.OpRegister)
	c.armTimeout(seq)

	req := op.req
	go func() {
		resp, err := c.transport.RegistrationRequest(op.ctx, req)
		c.postAsync(event{kind: evResponse, seq: seq, resp: resp, err: err})
	}()
}

func (c *Client) poll(event) {
	c.pollTimer = nil
	op := c.current
	c.setState(StatePolling, "poll")
	seq := c.beginCall(log.OpQueryStatus)
	c.armTimeout(seq)

	req, opID := op.req, op.serviceOpID
	go func() {
		resp, err := c.transport.QueryOperationStatus(op.ctx, req, opID)
		c.postAsync(event{kind: evResponse, seq: seq, resp: resp, err: err})
	}()
}

func (c *Client) responseReceived(ev event) {
	c.stopTimers()
	c.logCompletion(ev)
	c.awaiting = 0
	c.setState(StateResponseReceived, c.call.String())

	if ev.err != nil {
		c.fail(ev.err)
		return
	}

	resp := ev.resp
	if resp == nil || resp.Result == nil {
		var raw []byte
		if resp != nil {
			raw = resp.Raw
		}
		err := c.transport.ErrorResult(raw)
		if err == nil {
			err = &errs.Error{Kind: errs.KindFormat, Message: "response carried neither result nor error", Raw: raw}
		}
		c.fail(err)
		return
	}

	result := resp.Result
	switch result.Status.Canonical() {
	case StatusAssigned:
		c.complete(result)
	case StatusAssigning:
		c.notifyStatus(result)
		c.current.serviceOpID = result.OperationID
		interval := c.config.PollingInterval
		if resp.PollingInterval != nil {
			interval = max(*resp.PollingInterval, 0)
		}
		c.waitToPoll(interval)
	case StatusFailed:
		c.notifyStatus(result)
		c.fail(&errs.Error{
			Kind:    errs.KindDeviceRegistrationFailed,
			Message: failureMessage(result),
			Result:  result,
			Raw:     resp.Raw,
		})
	default:
		c.fail(&errs.Error{
			Kind:    errs.KindFormat,
			Message: fmt.Sprintf("unexpected registration status %q", result.Status),
			Result:  result,
			Raw:     resp.Raw,
		})
	}
}

func failureMessage(result *RegistrationResult) string {
	if s := result.RegistrationState; s != nil && s.ErrorMessage != "" {
		return fmt.Sprintf("registration failed: %s (code %d)", s.ErrorMessage, s.ErrorCode)
	}
	return "registration failed"
}

func (c *Client) waitToPoll(interval time.Duration) {
	c.setState(StateWaitingToPoll, "assigning")
	c.lastSeq++
	seq := c.lastSeq
	c.awaiting = seq
	c.pollTimer = time.AfterFunc(interval, func() {
		c.postAsync(event{kind: evPollTimer, seq: seq})
	})
}

func (c *Client) complete(result *RegistrationResult) {
	c.setState(StateResponseComplete, "assigned")
	c.notifyStatus(result)
	op := c.takeCurrent()
	c.setState(c.readyState(), "registration complete")
	op.result.complete(result, nil)
}

// fail ends the current registration with err. Every registration error is
// fatal here: a connected transport is disconnected before err is delivered.
func (c *Client) fail(err error) {
	c.setState(StateResponseError, errs.KindOf(err).String())
	c.logError(log.LayerRegistration, err, "register")
	op := c.takeCurrent()

	if c.connector != nil {
		c.setState(StateDisconnecting, "registration failed")
		c.callHook(log.OpDisconnect, nil, func() {
			op.result.complete(nil, err)
		})
		return
	}
	c.setState(StateIdle, "registration failed")
	op.result.complete(nil, err)
}

func (c *Client) requestTimedOut(event) {
	err := errs.Newf(errs.KindTimeout, "%s timed out after %v",
		c.call, c.config.RequestTimeout)
	c.interrupt(StateCancelling, log.OpCancel, err, nil)
}

func (c *Client) cancelCurrent(ev event) {
	c.interrupt(StateCancelling, log.OpCancel,
		errs.New(errs.KindOperationCancelled, "registration cancelled"), ev.done)
}

func (c *Client) disconnectCurrent(ev event) {
	c.interrupt(StateDisconnecting, log.OpDisconnect,
		errs.New(errs.KindOperationCancelled, "registration cancelled by disconnect"), ev.done)
}

func (c *Client) abortCurrent(ev event) {
	c.interrupt(StateCancelling, log.OpCancel, callerError(ev.op.callerCtx.Err()), nil)
}

// interrupt ends the current registration with cause and calls the
// transport hook. Timers are stopped first so a late tick is a no-op.
func (c *Client) interrupt(next State, hook log.Operation, cause error, waiter *future[struct{}]) {
	c.stopTimers()
	c.awaiting = 0
	op := c.takeCurrent()

	c.setState(next, cause.Error())
	c.logError(log.LayerRegistration, cause, hook.String())
	op.result.complete(nil, cause)
	c.callHook(hook, waiter, nil)
}

func (c *Client) disconnectIdle(ev event) {
	c.setState(StateDisconnecting, "disconnect")
	c.callHook(log.OpDisconnect, ev.done, nil)
}

// callHook calls the transport's Cancel or Disconnect. The client settles
// in disconnected when it returns.
func (c *Client) callHook(hook log.Operation, waiter *future[struct{}], deliver func()) {
	c.hook = &hookCall{op: hook, waiter: waiter, deliver: deliver}
	seq := c.beginCall(hook)

	call := c.transport.Cancel
	if hook == log.OpDisconnect {
		call = c.transport.Disconnect
	}
	timeout := c.config.RequestTimeout
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := call(ctx)
		c.postAsync(event{kind: evHookDone, seq: seq, err: err})
	}()
}

func (c *Client) hookDone(ev event) {
	c.logCompletion(ev)
	c.awaiting = 0
	h := c.hook
	c.hook = nil

	if ev.err != nil {
		c.logError(log.LayerTransport, ev.err, h.op.String())
	}
	c.setState(StateDisconnected, h.op.String())

	if h.deliver != nil {
		h.deliver()
	}
	if h.waiter != nil {
		h.waiter.complete(struct{}{}, ev.err)
	}
}

// takeCurrent clears and returns the current operation.
func (c *Client) takeCurrent() *operation {
	op := c.current
	c.current = nil
	c.ops.Ended(op)
	op.finish()
	return op
}

// beginCall records a new awaited transport call and returns its tag.
func (c *Client) beginCall(call log.Operation) uint64 {
	c.lastSeq++
	c.awaiting = c.lastSeq
	c.call = call
	c.callStart = time.Now()

	msg := &log.MessageEvent{Operation: call}
	if call == log.OpQueryStatus && c.current != nil {
		msg.ServiceOperationID = c.current.serviceOpID
	}
	c.emit(log.Event{
		Direction: log.DirectionOut,
		Layer:     log.LayerTransport,
		Category:  log.CategoryMessage,
		Message:   msg,
	})
	return c.awaiting
}

func (c *Client) armTimeout(seq uint64) {
	c.timeout = time.AfterFunc(c.config.RequestTimeout, func() {
		c.postAsync(event{kind: evRequestTimeout, seq: seq})
	})
}

func (c *Client) stopTimers() {
	if c.timeout != nil {
		c.timeout.Stop()
		c.timeout = nil
	}
	if c.pollTimer != nil {
		c.pollTimer.Stop()
		c.pollTimer = nil
	}
}

func (c *Client) notifyStatus(result *RegistrationResult) {
	c.emit(log.Event{
		Layer:    log.LayerRegistration,
		Category: log.CategoryStatus,
		Status: &log.StatusEvent{
			Status:             string(result.Status),
			ServiceOperationID: result.OperationID,
			AssignedHub:        result.AssignedHub(),
			DeviceID:           result.DeviceID(),
		},
	})

	c.mu.RLock()
	fn := c.onStatus
	c.mu.RUnlock()
	if fn != nil {
		c.notify.observe(func() { fn(result) })
	}
}
