package provisioning

import (
	"errors"
	"log/slog"
	"time"

	"github.com/mash-protocol/provisioning-go/pkg/log"
	"github.com/mash-protocol/provisioning-go/pkg/retry"
)

// Default timing values.
const (
	// DefaultPollingInterval is used when the service does not suggest one.
	DefaultPollingInterval = 2 * time.Second

	// DefaultRequestTimeout bounds each transport request.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultConnectTimeout bounds the connect step including retries.
	DefaultConnectTimeout = 4 * time.Minute
)

// ErrInvalidConfig is returned when a Config fails validation.
var ErrInvalidConfig = errors.New("invalid provisioning config")

// Config configures a Client.
type Config struct {
	// PollingInterval is the delay between status queries when the service
	// does not supply one.
	PollingInterval time.Duration

	// RequestTimeout bounds each registration request and status query.
	// A request that exceeds it is cancelled and fails with a timeout error.
	RequestTimeout time.Duration

	// ConnectRetryPolicy decides whether a failed connect is retried.
	// Nil means connect failures are not retried.
	ConnectRetryPolicy retry.Policy

	// ConnectTimeout bounds the connect step including retries.
	ConnectTimeout time.Duration

	// Sequence supplies diagnostic ids for the client's retry operations.
	// The client creates its own when nil.
	Sequence *retry.Sequence

	// Logger is the optional logger for debug output.
	// If nil, no logging is performed.
	Logger *slog.Logger

	// EventLogger receives registration events for capture.
	// If nil, events are discarded.
	EventLogger log.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		PollingInterval:    DefaultPollingInterval,
		RequestTimeout:     DefaultRequestTimeout,
		ConnectRetryPolicy: retry.NewExponentialBackOffWithJitter(),
		ConnectTimeout:     DefaultConnectTimeout,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.PollingInterval <= 0 {
		return ErrInvalidConfig
	}
	if c.RequestTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.ConnectTimeout < 0 {
		return ErrInvalidConfig
	}
	return nil
}
