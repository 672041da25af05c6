package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error surfaced by the SDK.
type Kind uint8

const (
	// KindUnknown is reported for errors that carry no kind (foreign errors).
	KindUnknown Kind = iota

	// KindArgument indicates bad caller input.
	KindArgument

	// KindArgumentOutOfRange indicates a caller value outside its allowed range.
	KindArgumentOutOfRange

	// KindInvalidOperation indicates an operation not allowed in the current state,
	// such as a second register while one is outstanding.
	KindInvalidOperation

	// KindOperationCancelled indicates cancel or disconnect interrupted a pending operation.
	KindOperationCancelled

	// KindTimeout indicates a deadline was exceeded.
	KindTimeout

	// KindDeviceRegistrationFailed indicates the service reported a failed registration.
	KindDeviceRegistrationFailed

	// KindFormat indicates an unrecognized or malformed service response.
	KindFormat

	// KindNotConnected indicates the transport is not connected.
	KindNotConnected

	// KindThrottling indicates the service asked the caller to slow down.
	KindThrottling

	// KindInternalServer indicates a server-side failure.
	KindInternalServer

	// KindServiceUnavailable indicates the service is temporarily unavailable.
	KindServiceUnavailable

	// KindUnauthorized indicates rejected credentials.
	KindUnauthorized

	// KindDeviceNotFound indicates the registration or device is unknown to the service.
	KindDeviceNotFound

	// KindQuotaExceeded indicates the hub quota is exhausted.
	KindQuotaExceeded

	// KindMessageTooLarge indicates the payload exceeded the service limit.
	KindMessageTooLarge

	// KindNotImplemented indicates the service does not implement the request.
	KindNotImplemented

	// KindGatewayTimeout indicates an intermediate gateway timed out.
	KindGatewayTimeout

	// KindBadDeviceResponse indicates the device answered with an invalid response.
	KindBadDeviceResponse

	// KindDeviceTimeout indicates the device did not answer in time.
	KindDeviceTimeout
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindArgument:
		return "ArgumentError"
	case KindArgumentOutOfRange:
		return "ArgumentOutOfRangeError"
	case KindInvalidOperation:
		return "InvalidOperationError"
	case KindOperationCancelled:
		return "OperationCancelledError"
	case KindTimeout:
		return "TimeoutError"
	case KindDeviceRegistrationFailed:
		return "DeviceRegistrationFailedError"
	case KindFormat:
		return "FormatError"
	case KindNotConnected:
		return "NotConnectedError"
	case KindThrottling:
		return "ThrottlingError"
	case KindInternalServer:
		return "InternalServerError"
	case KindServiceUnavailable:
		return "ServiceUnavailableError"
	case KindUnauthorized:
		return "UnauthorizedError"
	case KindDeviceNotFound:
		return "DeviceNotFoundError"
	case KindQuotaExceeded:
		return "QuotaExceededError"
	case KindMessageTooLarge:
		return "MessageTooLargeError"
	case KindNotImplemented:
		return "NotImplementedError"
	case KindGatewayTimeout:
		return "GatewayTimeoutError"
	case KindBadDeviceResponse:
		return "BadDeviceResponseError"
	case KindDeviceTimeout:
		return "DeviceTimeoutError"
	default:
		return "UnknownError"
	}
}

// Error is a classified SDK error.
//
// Result and Raw carry the service response that produced the error, when
// there was one, so callers can inspect it.
type Error struct {
	Kind    Kind
	Message string

	// Err is the underlying cause, if any.
	Err error

	// Result is the decoded service result associated with the error.
	Result any

	// Raw is the raw service response body.
	Raw []byte
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind. This lets callers
// match with the kind sentinels below: errors.Is(err, errs.ErrTimeout).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Kind sentinels for errors.Is matching.
var (
	ErrArgument                 = &Error{Kind: KindArgument}
	ErrInvalidOperation         = &Error{Kind: KindInvalidOperation}
	ErrOperationCancelled       = &Error{Kind: KindOperationCancelled}
	ErrTimeout                  = &Error{Kind: KindTimeout}
	ErrDeviceRegistrationFailed = &Error{Kind: KindDeviceRegistrationFailed}
	ErrFormat                   = &Error{Kind: KindFormat}
	ErrNotConnected             = &Error{Kind: KindNotConnected}
	ErrThrottling               = &Error{Kind: KindThrottling}
)

// New creates a classified error with a message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an existing error. It returns nil for a nil err.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsThrottling reports whether err was classified as a throttling error.
func IsThrottling(err error) bool {
	return KindOf(err) == KindThrottling
}
