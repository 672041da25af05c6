package cli

import (
	"errors"

	"github.com/mash-protocol/provisioning-go/pkg/errs"
	"github.com/mash-protocol/provisioning-go/pkg/provisioning"
)

// Exit codes.
const (
	ExitSuccess            = 0
	ExitGeneralError       = 1
	ExitUsageError         = 2
	ExitPanic              = 3
	ExitConfigError        = 10
	ExitConnectionError    = 11
	ExitRegistrationFailed = 12
	ExitInterrupted        = 13
)

// ErrUsage marks command line mistakes.
var ErrUsage = errors.New("usage error")

// ExitCodeForError maps an error to a process exit code.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrUsage):
		return ExitUsageError
	case errors.Is(err, provisioning.ErrInvalidConfig):
		return ExitConfigError
	}

	switch errs.KindOf(err) {
	case errs.KindArgument, errs.KindArgumentOutOfRange:
		return ExitConfigError
	case errs.KindNotConnected, errs.KindServiceUnavailable, errs.KindGatewayTimeout:
		return ExitConnectionError
	case errs.KindDeviceRegistrationFailed, errs.KindUnauthorized, errs.KindDeviceNotFound,
		errs.KindQuotaExceeded, errs.KindFormat, errs.KindThrottling:
		return ExitRegistrationFailed
	case errs.KindTimeout, errs.KindOperationCancelled:
		return ExitInterrupted
	default:
		return ExitGeneralError
	}
}
