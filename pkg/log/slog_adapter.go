package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes registration events to an slog.Logger.
// Useful for development when you want to see the registration flow in console.
type SlogAdapter struct {
	logger *slog.Logger
	level  slog.Level
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger
// at Debug level.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger, level: slog.LevelDebug}
}

// WithLevel returns a copy of the adapter that logs at level.
func (a *SlogAdapter) WithLevel(level slog.Level) *SlogAdapter {
	return &SlogAdapter{logger: a.logger, level: level}
}

// Log writes the event to the slog logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	if event.OperationID != "" {
		attrs = append(attrs, slog.String("op_id", event.OperationID))
	}
	if event.RegistrationID != "" {
		attrs = append(attrs, slog.String("registration_id", event.RegistrationID))
	}
	if event.IDScope != "" {
		attrs = append(attrs, slog.String("id_scope", event.IDScope))
	}

	switch {
	case event.Message != nil:
		attrs = append(attrs, slog.String("operation", event.Message.Operation.String()))
		if event.Message.ServiceOperationID != "" {
			attrs = append(attrs, slog.String("service_op_id", event.Message.ServiceOperationID))
		}
		if event.Message.Status != "" {
			attrs = append(attrs, slog.String("status", event.Message.Status))
		}
		if event.Message.PollingInterval != nil {
			attrs = append(attrs, slog.Duration("polling_interval", *event.Message.PollingInterval))
		}
		if event.Message.RoundTrip != nil {
			attrs = append(attrs, slog.Duration("round_trip", *event.Message.RoundTrip))
		}
		if event.Message.Failed {
			attrs = append(attrs, slog.Bool("failed", true))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Status != nil:
		attrs = append(attrs, slog.String("status", event.Status.Status))
		if event.Status.AssignedHub != "" {
			attrs = append(attrs, slog.String("assigned_hub", event.Status.AssignedHub))
		}
		if event.Status.DeviceID != "" {
			attrs = append(attrs, slog.String("device_id", event.Status.DeviceID))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
		if event.Error.Kind != "" {
			attrs = append(attrs, slog.String("error_kind", event.Error.Kind))
		}
	}

	a.logger.LogAttrs(context.Background(), a.level, "registration", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
