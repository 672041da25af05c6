package provisioning

// State is the registration state machine state.
type State uint8

const (
	// StateDisconnected indicates the transport is not connected.
	StateDisconnected State = iota

	// StateIdle indicates the client is ready and the transport has no
	// connect step.
	StateIdle

	// StateConnecting indicates the transport connect step is running.
	StateConnecting

	// StateConnected indicates the transport is connected and no
	// registration is outstanding.
	StateConnected

	// StateSendingRequest indicates a registration request is in flight.
	StateSendingRequest

	// StateResponseReceived indicates a response is being interpreted.
	StateResponseReceived

	// StateResponseComplete indicates the device was assigned.
	StateResponseComplete

	// StateResponseError indicates the registration failed.
	StateResponseError

	// StateWaitingToPoll indicates the client waits before the next status query.
	StateWaitingToPoll

	// StatePolling indicates a status query is in flight.
	StatePolling

	// StateCancelling indicates the transport cancel hook is running.
	StateCancelling

	// StateDisconnecting indicates the transport disconnect hook is running.
	StateDisconnecting
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateIdle:
		return "IDLE"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateSendingRequest:
		return "SENDING_REQUEST"
	case StateResponseReceived:
		return "RESPONSE_RECEIVED"
	case StateResponseComplete:
		return "RESPONSE_COMPLETE"
	case StateResponseError:
		return "RESPONSE_ERROR"
	case StateWaitingToPoll:
		return "WAITING_TO_POLL"
	case StatePolling:
		return "POLLING"
	case StateCancelling:
		return "CANCELLING"
	case StateDisconnecting:
		return "DISCONNECTING"
	default:
		return "UNKNOWN"
	}
}

// busy reports whether a registration is outstanding in s.
func (s State) busy() bool {
	switch s {
	case StateConnecting, StateSendingRequest, StateWaitingToPoll, StatePolling:
		return true
	default:
		return false
	}
}
