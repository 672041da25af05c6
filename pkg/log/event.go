package log

import (
	"time"
)

// MaxRawCapture is the largest raw response body stored in a MessageEvent.
const MaxRawCapture = 4096

// Event represents a registration log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// OperationID identifies the register call the event belongs to (UUID).
	// Empty for events outside any operation, such as a plain disconnect.
	OperationID string `cbor:"2,keyasint,omitempty"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// RegistrationID is the device registration identifier.
	RegistrationID string `cbor:"6,keyasint,omitempty"`

	// IDScope is the provisioning service scope.
	IDScope string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Message     *MessageEvent     `cbor:"10,keyasint,omitempty"` // Transport layer
	StateChange *StateChangeEvent `cbor:"11,keyasint,omitempty"` // State machine
	Status      *StatusEvent      `cbor:"12,keyasint,omitempty"` // Operation status
	Error       *ErrorEventData   `cbor:"13,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates a completion received from the transport.
	DirectionIn Direction = 0
	// DirectionOut indicates a request handed to the transport.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which layer captured the event.
type Layer uint8

const (
	// LayerTransport is the transport boundary.
	LayerTransport Layer = 0
	// LayerRegistration is the registration state machine.
	LayerRegistration Layer = 1
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerRegistration:
		return "REGISTRATION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a transport request or completion.
	CategoryMessage Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 1
	// CategoryStatus indicates an operation-status notification.
	CategoryStatus Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryStatus:
		return "STATUS"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Operation names the transport call a MessageEvent describes.
type Operation uint8

const (
	// OpRegister is a registration request.
	OpRegister Operation = 0
	// OpQueryStatus is an operation-status query.
	OpQueryStatus Operation = 1
	// OpCancel is a transport cancel.
	OpCancel Operation = 2
	// OpDisconnect is a transport disconnect.
	OpDisconnect Operation = 3
	// OpConnect is a transport connect.
	OpConnect Operation = 4
)

// String returns the operation name.
func (o Operation) String() string {
	switch o {
	case OpRegister:
		return "REGISTER"
	case OpQueryStatus:
		return "QUERY_STATUS"
	case OpCancel:
		return "CANCEL"
	case OpDisconnect:
		return "DISCONNECT"
	case OpConnect:
		return "CONNECT"
	default:
		return "UNKNOWN"
	}
}

// MessageEvent captures a transport request (OUT) or its completion (IN).
type MessageEvent struct {
	// Operation is the transport call.
	Operation Operation `cbor:"1,keyasint"`

	// ServiceOperationID is the operation id assigned by the service, if known.
	ServiceOperationID string `cbor:"2,keyasint,omitempty"`

	// Status is the registration status reported in a completion.
	Status string `cbor:"3,keyasint,omitempty"`

	// PollingInterval is the service-suggested delay before the next query.
	PollingInterval *time.Duration `cbor:"4,keyasint,omitempty"`

	// RoundTrip is the time between request and completion (completion only).
	RoundTrip *time.Duration `cbor:"5,keyasint,omitempty"`

	// Raw is the raw response body (truncated to MaxRawCapture).
	Raw []byte `cbor:"6,keyasint,omitempty"`

	// Truncated indicates if Raw was truncated.
	Truncated bool `cbor:"7,keyasint,omitempty"`

	// Failed indicates the transport call completed with an error.
	Failed bool `cbor:"8,keyasint,omitempty"`
}

// SetRaw stores raw, truncating it to MaxRawCapture.
func (m *MessageEvent) SetRaw(raw []byte) {
	if len(raw) > MaxRawCapture {
		m.Raw = append([]byte(nil), raw[:MaxRawCapture]...)
		m.Truncated = true
		return
	}
	m.Raw = append([]byte(nil), raw...)
	m.Truncated = false
}

// StateChangeEvent captures state machine transitions.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityRegistration indicates a registration state machine change.
	StateEntityRegistration StateEntity = 0
	// StateEntityConnection indicates a transport connection change.
	StateEntityConnection StateEntity = 1
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityRegistration:
		return "REGISTRATION"
	case StateEntityConnection:
		return "CONNECTION"
	default:
		return "UNKNOWN"
	}
}

// StatusEvent captures an operation-status notification.
type StatusEvent struct {
	// Status is the registration status (assigning, assigned, failed).
	Status string `cbor:"1,keyasint"`

	// ServiceOperationID is the operation id assigned by the service.
	ServiceOperationID string `cbor:"2,keyasint,omitempty"`

	// AssignedHub is the hub the device was assigned to (assigned only).
	AssignedHub string `cbor:"3,keyasint,omitempty"`

	// DeviceID is the assigned device identity (assigned only).
	DeviceID string `cbor:"4,keyasint,omitempty"`
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Kind is the error kind name, when the error was classified.
	Kind string `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
