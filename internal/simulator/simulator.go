// Package simulator provides an in-process provisioning service that
// implements provisioning.Transport and provisioning.Connector.
//
// A Service follows a Script: how many status polls stay in "assigning",
// the final outcome, throttling and connect failures, and response latency.
// Response bodies are CBOR, so the client's ErrorResult path is exercised
// the same way a wire transport would exercise it.
package simulator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mash-protocol/provisioning-go/pkg/errs"
	"github.com/mash-protocol/provisioning-go/pkg/oplist"
	"github.com/mash-protocol/provisioning-go/pkg/provisioning"
	"github.com/mash-protocol/provisioning-go/pkg/version"
)

// Outcome is the final answer the simulated service gives.
type Outcome string

const (
	OutcomeAssigned Outcome = "assigned"
	OutcomeFailed   Outcome = "failed"
	OutcomeDisabled Outcome = "disabled"

	// OutcomeRejected answers with an error body instead of a result.
	OutcomeRejected Outcome = "rejected"
)

// ParseOutcome parses an outcome name. Empty means OutcomeAssigned.
func ParseOutcome(s string) (Outcome, error) {
	switch Outcome(s) {
	case "":
		return OutcomeAssigned, nil
	case OutcomeAssigned, OutcomeFailed, OutcomeDisabled, OutcomeRejected:
		return Outcome(s), nil
	default:
		return "", fmt.Errorf("unknown outcome %q", s)
	}
}

// Script drives a Service.
type Script struct {
	// AssigningPolls is the number of responses reporting "assigning"
	// before the outcome, counting the registration response itself.
	AssigningPolls int

	// Outcome is the final status.
	Outcome Outcome

	// AssignedHub is reported with OutcomeAssigned.
	AssignedHub string

	// RejectCode is the error code sent with OutcomeRejected.
	RejectCode int

	// PollingInterval is suggested with every assigning response. Zero
	// leaves the choice to the client.
	PollingInterval time.Duration

	// Latency delays every response.
	Latency time.Duration

	// ThrottleFirst rejects the first n registration requests with a
	// throttling error.
	ThrottleFirst int

	// ConnectFailures fails the first n connect attempts.
	ConnectFailures int

	// APIVersion is the version the service speaks. Zero means the
	// client's version. Registrations from newer clients are rejected.
	APIVersion version.APIVersion
}

// DefaultScript assigns after one poll.
func DefaultScript() Script {
	return Script{
		AssigningPolls: 1,
		Outcome:        OutcomeAssigned,
		AssignedHub:    "hub-01.simulated.local",
		RejectCode:     401002,
	}
}

// Stats counts the calls a Service has received.
type Stats struct {
	Connects      int
	Registrations int
	Queries       int
	Cancels       int
	Disconnects   int
	Interrupted   int
}

// registration is one service-side operation.
type registration struct {
	regID     string
	remaining int
}

// Service is a scripted provisioning service.
type Service struct {
	mu         sync.Mutex
	script     Script
	connected  bool
	connectErr int
	throttled  int
	ops        map[string]*registration
	stats      Stats

	// inflight tracks calls that Cancel and Disconnect must interrupt.
	inflight *oplist.List[uuid.UUID]
	cancels  map[uuid.UUID]context.CancelFunc

	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Service that follows script.
func New(script Script, opts ...Option) *Service {
	if script.Outcome == "" {
		script.Outcome = OutcomeAssigned
	}
	if script.APIVersion.IsZero() {
		script.APIVersion = version.CurrentAPIVersion()
	}
	s := &Service{
		script:   script,
		ops:      make(map[string]*registration),
		inflight: oplist.New[uuid.UUID](),
		cancels:  make(map[uuid.UUID]context.CancelFunc),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compile-time interface satisfaction checks.
var (
	_ provisioning.Transport = (*Service)(nil)
	_ provisioning.Connector = (*Service)(nil)
)

// Stats returns a snapshot of the call counters.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Connected reports whether the client is connected.
func (s *Service) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Connect implements provisioning.Connector.
func (s *Service) Connect(ctx context.Context) error {
	return s.call(ctx, func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.stats.Connects++
		if s.connectErr < s.script.ConnectFailures {
			s.connectErr++
			s.logger.Debug("simulator: refusing connect", "attempt", s.connectErr)
			return errs.Newf(errs.KindNotConnected, "simulated connect failure %d", s.connectErr)
		}
		s.connected = true
		return nil
	})
}

// RegistrationRequest implements provisioning.Transport.
func (s *Service) RegistrationRequest(ctx context.Context, req provisioning.RegistrationRequest) (*provisioning.Response, error) {
	var resp *provisioning.Response
	err := s.call(ctx, func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.stats.Registrations++

		if err := s.checkConnected(); err != nil {
			return err
		}
		if s.throttled < s.script.ThrottleFirst {
			s.throttled++
			s.logger.Debug("simulator: throttling registration", "registration_id", req.RegistrationID)
			return errs.New(errs.KindThrottling, "simulated throttling")
		}

		if client := version.CurrentAPIVersion(); !s.script.APIVersion.Supports(client) {
			s.logger.Debug("simulator: unsupported api version", "service", s.script.APIVersion, "client", client)
			resp = response(req.RegistrationID, body{
				ErrorCode:    400001,
				ErrorMessage: fmt.Sprintf("api-version %s is not supported", client),
				TrackingID:   uuid.NewString(),
			}, s.now())
			return nil
		}

		opID := uuid.NewString()
		reg := &registration{regID: req.RegistrationID, remaining: s.script.AssigningPolls}
		s.ops[opID] = reg
		s.logger.Debug("simulator: registration accepted", "registration_id", req.RegistrationID, "operation_id", opID)

		resp = s.answer(opID, reg)
		return nil
	})
	return resp, err
}

// QueryOperationStatus implements provisioning.Transport.
func (s *Service) QueryOperationStatus(ctx context.Context, req provisioning.RegistrationRequest, operationID string) (*provisioning.Response, error) {
	var resp *provisioning.Response
	err := s.call(ctx, func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.stats.Queries++

		if err := s.checkConnected(); err != nil {
			return err
		}
		reg, ok := s.ops[operationID]
		if !ok || reg.regID != req.RegistrationID {
			resp = response(req.RegistrationID, body{
				ErrorCode:    404201,
				ErrorMessage: "operation not found",
				TrackingID:   uuid.NewString(),
			}, s.now())
			return nil
		}

		resp = s.answer(operationID, reg)
		return nil
	})
	return resp, err
}

// answer advances reg by one response. Callers hold s.mu.
func (s *Service) answer(opID string, reg *registration) *provisioning.Response {
	if reg.remaining > 0 {
		reg.remaining--
		return response(reg.regID, body{
			OperationID:     opID,
			Status:          string(provisioning.StatusAssigning),
			RetryAfterMilli: s.script.PollingInterval.Milliseconds(),
		}, s.now())
	}

	delete(s.ops, opID)
	switch s.script.Outcome {
	case OutcomeRejected:
		return response(reg.regID, body{
			ErrorCode:    s.script.RejectCode,
			ErrorMessage: "registration rejected",
			TrackingID:   uuid.NewString(),
		}, s.now())
	case OutcomeFailed:
		return response(reg.regID, body{
			OperationID:  opID,
			Status:       string(provisioning.StatusFailed),
			ErrorMessage: "enrollment not found",
			SubStatus:    "initialAssignment",
		}, s.now())
	case OutcomeDisabled:
		return response(reg.regID, body{
			OperationID: opID,
			Status:      string(provisioning.StatusDisabled),
		}, s.now())
	default:
		return response(reg.regID, body{
			OperationID: opID,
			Status:      string(provisioning.StatusAssigned),
			AssignedHub: s.script.AssignedHub,
			DeviceID:    reg.regID,
			SubStatus:   "initialAssignment",
		}, s.now())
	}
}

func (s *Service) checkConnected() error {
	if !s.connected {
		return errs.New(errs.KindNotConnected, "simulated service: not connected")
	}
	return nil
}

// Cancel implements provisioning.Transport.
func (s *Service) Cancel(ctx context.Context) error {
	s.mu.Lock()
	s.stats.Cancels++
	s.mu.Unlock()

	s.interruptAll()
	return nil
}

// Disconnect implements provisioning.Transport.
func (s *Service) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	s.stats.Disconnects++
	s.connected = false
	s.mu.Unlock()

	s.interruptAll()
	return nil
}

// ErrorResult implements provisioning.Transport.
func (s *Service) ErrorResult(raw []byte) error {
	return errorResult(raw)
}

// call runs fn after the scripted latency. The call is interruptible by
// Cancel and Disconnect while it waits.
func (s *Service) call(ctx context.Context, fn func() error) error {
	token := uuid.New()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.cancels[token] = cancel
	s.mu.Unlock()
	s.inflight.Started(token)
	defer func() {
		s.inflight.Ended(token)
		s.mu.Lock()
		delete(s.cancels, token)
		s.mu.Unlock()
	}()

	if s.script.Latency > 0 {
		t := time.NewTimer(s.script.Latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return errs.Wrap(errs.KindOperationCancelled, "simulated request interrupted", ctx.Err())
		case <-t.C:
		}
	} else if err := ctx.Err(); err != nil {
		return errs.Wrap(errs.KindOperationCancelled, "simulated request interrupted", err)
	}
	return fn()
}

func (s *Service) interruptAll() {
	s.inflight.PopAll(func(token uuid.UUID) {
		s.mu.Lock()
		cancel := s.cancels[token]
		s.stats.Interrupted++
		s.mu.Unlock()
		if cancel != nil {
			cancel()
		}
	})
}
