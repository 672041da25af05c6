// Package commands implements the prov-log CLI commands.
package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mash-protocol/provisioning-go/pkg/log"
)

// ViewOptions controls how events are rendered.
type ViewOptions struct {
	// ShowRaw prints captured response bodies.
	ShowRaw bool
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event, opts ViewOptions) {
	// Header line: timestamp [op:id] DIRECTION LAYER Label
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")

	var label string
	switch {
	case event.Message != nil:
		label = event.Message.Operation.String()
	case event.StateChange != nil:
		label = "State"
	case event.Status != nil:
		label = "Status"
	case event.Error != nil:
		label = "Error"
	default:
		label = "Unknown"
	}

	fmt.Fprintf(w, "%s [op:%s] %-3s %s %s\n", ts, shortenID(event.OperationID),
		event.Direction.String(), event.Layer.String(), label)
	if event.RegistrationID != "" {
		fmt.Fprintf(w, "  Registration: %s", event.RegistrationID)
		if event.IDScope != "" {
			fmt.Fprintf(w, " (scope %s)", event.IDScope)
		}
		fmt.Fprintln(w)
	}

	switch {
	case event.Message != nil:
		formatMessageDetails(w, event.Message, opts)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Status != nil:
		formatStatusDetails(w, event.Status)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

// shortenID returns the first 8 characters of an operation ID, or "-".
func shortenID(id string) string {
	if id == "" {
		return "-"
	}
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatMessageDetails(w io.Writer, msg *log.MessageEvent, opts ViewOptions) {
	if msg.ServiceOperationID != "" {
		fmt.Fprintf(w, "  ServiceOperation: %s\n", msg.ServiceOperationID)
	}
	if msg.Status != "" {
		fmt.Fprintf(w, "  Status: %s\n", msg.Status)
	}
	if msg.PollingInterval != nil {
		fmt.Fprintf(w, "  PollingInterval: %s\n", formatDuration(*msg.PollingInterval))
	}
	if msg.RoundTrip != nil {
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(*msg.RoundTrip))
	}
	if msg.Failed {
		fmt.Fprintln(w, "  Failed: true")
	}
	if opts.ShowRaw && len(msg.Raw) > 0 {
		fmt.Fprintf(w, "  Raw: %s", formatRaw(msg.Raw))
		if msg.Truncated {
			fmt.Fprint(w, " (truncated)")
		}
		fmt.Fprintln(w)
	}
}

// formatRaw prints printable bodies as text and everything else as hex.
func formatRaw(raw []byte) string {
	if utf8.Valid(raw) && !strings.ContainsFunc(string(raw), func(r rune) bool {
		return r < 0x20 && r != '\n' && r != '\t'
	}) {
		return string(raw)
	}
	return hex.EncodeToString(raw)
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity.String())
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatStatusDetails(w io.Writer, st *log.StatusEvent) {
	fmt.Fprintf(w, "  Status: %s\n", st.Status)
	if st.ServiceOperationID != "" {
		fmt.Fprintf(w, "  ServiceOperation: %s\n", st.ServiceOperationID)
	}
	if st.AssignedHub != "" {
		fmt.Fprintf(w, "  AssignedHub: %s\n", st.AssignedHub)
	}
	if st.DeviceID != "" {
		fmt.Fprintf(w, "  DeviceID: %s\n", st.DeviceID)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer.String())
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Kind != "" {
		fmt.Fprintf(w, "  Kind: %s\n", err.Kind)
	}
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseLayerFlag parses a layer string (case-insensitive).
func ParseLayerFlag(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "registration":
		return log.LayerRegistration, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be transport or registration)", s)
	}
}

// ParseDirectionFlag parses a direction string (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategoryFlag parses a category string (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "message":
		return log.CategoryMessage, nil
	case "state":
		return log.CategoryState, nil
	case "status":
		return log.CategoryStatus, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be message, state, status, or error)", s)
	}
}

// RunView prints every event of the log file that matches filter.
func RunView(path string, filter log.Filter, opts ViewOptions, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event, opts)
	}

	return nil
}
