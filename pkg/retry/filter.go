package retry

import "github.com/mash-protocol/provisioning-go/pkg/errs"

// ErrorFilter decides whether errors of a given kind may be retried.
type ErrorFilter interface {
	Retryable(kind errs.Kind) bool
}

// defaultErrorFilter retries transient connectivity and server-side failures.
type defaultErrorFilter struct{}

// DefaultErrorFilter returns the filter used when none is configured.
func DefaultErrorFilter() ErrorFilter {
	return defaultErrorFilter{}
}

// Retryable implements ErrorFilter.
func (defaultErrorFilter) Retryable(kind errs.Kind) bool {
	switch kind {
	case errs.KindNotConnected,
		errs.KindInternalServer,
		errs.KindServiceUnavailable,
		errs.KindTimeout,
		errs.KindThrottling:
		return true
	case errs.KindArgument,
		errs.KindArgumentOutOfRange,
		errs.KindInvalidOperation,
		errs.KindOperationCancelled,
		errs.KindDeviceRegistrationFailed,
		errs.KindFormat,
		errs.KindUnauthorized,
		errs.KindDeviceNotFound,
		errs.KindQuotaExceeded,
		errs.KindMessageTooLarge,
		errs.KindNotImplemented,
		errs.KindGatewayTimeout,
		errs.KindBadDeviceResponse,
		errs.KindDeviceTimeout:
		return false
	default:
		return false
	}
}

// ErrorFilterMap is a table-driven ErrorFilter. Kinds missing from the map
// are not retryable.
type ErrorFilterMap map[errs.Kind]bool

// Retryable implements ErrorFilter.
func (m ErrorFilterMap) Retryable(kind errs.Kind) bool {
	return m[kind]
}

// Compile-time interface satisfaction checks.
var (
	_ ErrorFilter = defaultErrorFilter{}
	_ ErrorFilter = ErrorFilterMap(nil)
)
