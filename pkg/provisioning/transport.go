package provisioning

import (
	"context"
	"time"
)

// Transport carries registration traffic to the provisioning service.
//
// The client never issues two RegistrationRequest/QueryOperationStatus calls
// at once. Cancel and Disconnect may be called while one of them is still in
// flight; the context of the in-flight call is cancelled at the same time.
type Transport interface {
	// RegistrationRequest sends the initial registration request.
	RegistrationRequest(ctx context.Context, req RegistrationRequest) (*Response, error)

	// QueryOperationStatus queries the status of a registration operation.
	QueryOperationStatus(ctx context.Context, req RegistrationRequest, operationID string) (*Response, error)

	// Cancel aborts any in-flight request.
	Cancel(ctx context.Context) error

	// Disconnect tears down any connection held by the transport.
	Disconnect(ctx context.Context) error

	// ErrorResult derives an error from a raw response that carried neither
	// an error nor a result.
	ErrorResult(raw []byte) error
}

// Connector is implemented by transports that connect before registering.
type Connector interface {
	// Connect establishes the connection. Errors classified as retryable by
	// the configured connect policy are retried.
	Connect(ctx context.Context) error
}

// Response is the outcome of a successful transport call.
type Response struct {
	// Result is the decoded registration result. Nil when the service sent
	// no decodable body.
	Result *RegistrationResult

	// Raw is the raw response body.
	Raw []byte

	// PollingInterval is the service-suggested delay before the next status
	// query. Nil when the service did not suggest one; zero polls at once.
	PollingInterval *time.Duration
}
