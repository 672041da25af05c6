package provisioning

import (
	"strings"
	"time"

	"github.com/mash-protocol/provisioning-go/pkg/errs"
)

// Status is a registration status as reported by the service. The raw
// string is kept as received; use Canonical to compare it.
type Status string

// Registration statuses.
const (
	StatusUnassigned Status = "unassigned"
	StatusAssigning  Status = "assigning"
	StatusAssigned   Status = "assigned"
	StatusFailed     Status = "failed"
	StatusDisabled   Status = "disabled"

	// StatusUnknown is the canonical form of any status not listed above.
	StatusUnknown Status = "unknown"
)

// ParseStatus returns the canonical status for s, matched case-insensitively.
// Unrecognised strings map to StatusUnknown.
func ParseStatus(s string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusUnassigned:
		return StatusUnassigned
	case StatusAssigning:
		return StatusAssigning
	case StatusAssigned:
		return StatusAssigned
	case StatusFailed:
		return StatusFailed
	case StatusDisabled:
		return StatusDisabled
	default:
		return StatusUnknown
	}
}

// Canonical returns the canonical form of s.
func (s Status) Canonical() Status {
	return ParseStatus(string(s))
}

// RegistrationRequest identifies the device to register. It is copied into
// the client and never modified.
type RegistrationRequest struct {
	// RegistrationID is the device registration identifier. Required.
	RegistrationID string

	// ProvisioningHost is the provisioning service endpoint.
	ProvisioningHost string

	// IDScope is the provisioning service scope.
	IDScope string

	// ForceRegistration asks the service to re-register an already assigned device.
	ForceRegistration bool

	// Payload is optional custom data sent with the request.
	Payload any
}

// Validate checks that the request can be sent.
func (r RegistrationRequest) Validate() error {
	if strings.TrimSpace(r.RegistrationID) == "" {
		return errs.New(errs.KindArgument, "registration id is required")
	}
	return nil
}

// RegistrationState is the device state returned by the service once a
// registration has progressed far enough to have one.
type RegistrationState struct {
	RegistrationID         string    `json:"registrationId"`
	CreatedDateTimeUTC     time.Time `json:"createdDateTimeUtc,omitzero"`
	AssignedHub            string    `json:"assignedHub,omitempty"`
	DeviceID               string    `json:"deviceId,omitempty"`
	Status                 Status    `json:"status,omitempty"`
	SubStatus              string    `json:"substatus,omitempty"`
	ErrorCode              int       `json:"errorCode,omitempty"`
	ErrorMessage           string    `json:"errorMessage,omitempty"`
	LastUpdatedDateTimeUTC time.Time `json:"lastUpdatedDateTimeUtc,omitzero"`
	ETag                   string    `json:"etag,omitempty"`
	Payload                any       `json:"payload,omitempty"`
}

// RegistrationResult is a registration response from the service.
type RegistrationResult struct {
	// OperationID is the service operation to poll while assigning.
	OperationID string `json:"operationId"`

	// Status is the status string as sent by the service.
	Status Status `json:"status"`

	// RegistrationState is set once the service has a device record.
	RegistrationState *RegistrationState `json:"registrationState,omitempty"`
}

// AssignedHub returns the assigned hub, or "" when not assigned.
func (r *RegistrationResult) AssignedHub() string {
	if r == nil || r.RegistrationState == nil {
		return ""
	}
	return r.RegistrationState.AssignedHub
}

// DeviceID returns the assigned device id, or "" when not assigned.
func (r *RegistrationResult) DeviceID() string {
	if r == nil || r.RegistrationState == nil {
		return ""
	}
	return r.RegistrationState.DeviceID
}
