package provisioning

import (
	"time"

	"github.com/mash-protocol/provisioning-go/pkg/errs"
	"github.com/mash-protocol/provisioning-go/pkg/log"
)

// emit sends ev to the event logger, stamped with the current operation.
func (c *Client) emit(ev log.Event) {
	if c.eventLog == nil {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	if op := c.current; op != nil {
		ev.OperationID = op.id.String()
		ev.RegistrationID = op.req.RegistrationID
		ev.IDScope = op.req.IDScope
	}
	c.eventLog.Log(ev)
}

// logCompletion records the completion of the awaited transport call.
func (c *Client) logCompletion(ev event) {
	if c.eventLog == nil {
		return
	}
	rtt := time.Since(c.callStart)
	msg := &log.MessageEvent{
		Operation: c.call,
		RoundTrip: &rtt,
		Failed:    ev.err != nil,
	}
	if resp := ev.resp; resp != nil {
		if resp.Result != nil {
			msg.ServiceOperationID = resp.Result.OperationID
			msg.Status = string(resp.Result.Status)
		}
		if resp.PollingInterval != nil {
			interval := *resp.PollingInterval
			msg.PollingInterval = &interval
		}
		if len(resp.Raw) > 0 {
			msg.SetRaw(resp.Raw)
		}
	}
	c.emit(log.Event{
		Direction: log.DirectionIn,
		Layer:     log.LayerTransport,
		Category:  log.CategoryMessage,
		Message:   msg,
	})
}

func (c *Client) logError(layer log.Layer, err error, context string) {
	c.debugLog("registration error", "context", context, "error", err)
	if c.eventLog == nil {
		return
	}
	data := &log.ErrorEventData{
		Layer:   layer,
		Message: err.Error(),
		Context: context,
	}
	if k := errs.KindOf(err); k != errs.KindUnknown {
		data.Kind = k.String()
	}
	c.emit(log.Event{
		Layer:    layer,
		Category: log.CategoryError,
		Error:    data,
	})
}
