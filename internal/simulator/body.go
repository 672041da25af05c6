package simulator

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/mash-protocol/provisioning-go/pkg/errs"
	"github.com/mash-protocol/provisioning-go/pkg/provisioning"
)

// body is the CBOR response body the simulated service sends. Exactly one of
// the result fields or the error fields is set.
type body struct {
	OperationID     string `cbor:"1,keyasint,omitempty"`
	Status          string `cbor:"2,keyasint,omitempty"`
	AssignedHub     string `cbor:"3,keyasint,omitempty"`
	DeviceID        string `cbor:"4,keyasint,omitempty"`
	SubStatus       string `cbor:"5,keyasint,omitempty"`
	RetryAfterMilli int64  `cbor:"6,keyasint,omitempty"`

	ErrorCode    int    `cbor:"10,keyasint,omitempty"`
	ErrorMessage string `cbor:"11,keyasint,omitempty"`
	TrackingID   string `cbor:"12,keyasint,omitempty"`
}

var bodyEncMode cbor.EncMode

func init() {
	var err error
	bodyEncMode, err = cbor.EncOptions{Sort: cbor.SortCanonical}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create body CBOR encoder mode: %v", err))
	}
}

func encodeBody(b body) []byte {
	data, err := bodyEncMode.Marshal(b)
	if err != nil {
		// Only fixed-shape structs are encoded here.
		panic(fmt.Sprintf("encode body: %v", err))
	}
	return data
}

func decodeBody(raw []byte) (body, error) {
	var b body
	if err := cbor.Unmarshal(raw, &b); err != nil {
		return body{}, err
	}
	return b, nil
}

// response builds the transport response for b.
func response(regID string, b body, now time.Time) *provisioning.Response {
	resp := &provisioning.Response{Raw: encodeBody(b)}
	if b.RetryAfterMilli > 0 {
		interval := time.Duration(b.RetryAfterMilli) * time.Millisecond
		resp.PollingInterval = &interval
	}
	if b.ErrorCode != 0 {
		return resp
	}

	result := &provisioning.RegistrationResult{
		OperationID: b.OperationID,
		Status:      provisioning.Status(b.Status),
	}
	if b.Status != string(provisioning.StatusAssigning) {
		result.RegistrationState = &provisioning.RegistrationState{
			RegistrationID:         regID,
			CreatedDateTimeUTC:     now,
			AssignedHub:            b.AssignedHub,
			DeviceID:               b.DeviceID,
			Status:                 provisioning.Status(b.Status),
			SubStatus:              b.SubStatus,
			ErrorCode:              b.ErrorCode,
			ErrorMessage:           b.ErrorMessage,
			LastUpdatedDateTimeUTC: now,
		}
	}
	resp.Result = result
	return resp
}

// errorResult classifies an error body by the HTTP status encoded in the
// first three digits of its error code.
func errorResult(raw []byte) error {
	if len(raw) == 0 {
		return nil
	}
	b, err := decodeBody(raw)
	if err != nil {
		return &errs.Error{Kind: errs.KindFormat, Message: "undecodable response body", Err: err, Raw: raw}
	}
	if b.ErrorCode == 0 {
		return nil
	}

	msg := fmt.Sprintf("%s (code %d, tracking %s)", b.ErrorMessage, b.ErrorCode, b.TrackingID)
	return &errs.Error{Kind: kindForCode(b.ErrorCode), Message: msg, Raw: raw}
}

func kindForCode(code int) errs.Kind {
	switch code / 1000 {
	case 400:
		return errs.KindArgument
	case 401, 403:
		return errs.KindUnauthorized
	case 404:
		return errs.KindDeviceNotFound
	case 412:
		return errs.KindDeviceRegistrationFailed
	case 429:
		return errs.KindThrottling
	case 500:
		return errs.KindInternalServer
	case 503:
		return errs.KindServiceUnavailable
	case 504:
		return errs.KindGatewayTimeout
	default:
		return errs.KindDeviceRegistrationFailed
	}
}
