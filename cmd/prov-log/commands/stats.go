package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/mash-protocol/provisioning-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	Operations        map[string]*OperationStats
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// OperationStats holds statistics for a single register operation.
type OperationStats struct {
	FirstSeen      time.Time
	LastSeen       time.Time
	Events         int
	RegistrationID string
	Requests       int
	Polls          int
	FinalStatus    string
	AssignedHub    string
	Failed         bool
}

// CollectStats reads every event of path.
func CollectStats(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		Operations:        make(map[string]*OperationStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}
	return stats, nil
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByLayer[event.Layer]++
	s.EventsByCategory[event.Category]++
	s.EventsByDirection[event.Direction]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}
	if event.Error != nil {
		s.Errors++
	}

	// Events outside an operation (idle disconnects) only count globally.
	if event.OperationID == "" {
		return
	}

	op, ok := s.Operations[event.OperationID]
	if !ok {
		op = &OperationStats{FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
		s.Operations[event.OperationID] = op
	}
	op.Events++
	if event.Timestamp.After(op.LastSeen) {
		op.LastSeen = event.Timestamp
	}
	if op.RegistrationID == "" {
		op.RegistrationID = event.RegistrationID
	}

	switch {
	case event.Message != nil && event.Direction == log.DirectionOut:
		switch event.Message.Operation {
		case log.OpRegister:
			op.Requests++
		case log.OpQueryStatus:
			op.Polls++
		}
	case event.Status != nil:
		op.FinalStatus = event.Status.Status
		if event.Status.AssignedHub != "" {
			op.AssignedHub = event.Status.AssignedHub
		}
	case event.Error != nil:
		op.Failed = true
	}
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := CollectStats(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Registration Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerTransport, log.LayerRegistration} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryMessage, log.CategoryState, log.CategoryStatus, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Direction:")
	for _, dir := range []log.Direction{log.DirectionIn, log.DirectionOut} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", dir.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Operations: %d\n", len(stats.Operations))
	if len(stats.Operations) > 0 {
		type opInfo struct {
			id    string
			stats *OperationStats
		}
		ops := make([]opInfo, 0, len(stats.Operations))
		for id, st := range stats.Operations {
			ops = append(ops, opInfo{id, st})
		}
		sort.Slice(ops, func(i, j int) bool {
			return ops[i].stats.FirstSeen.Before(ops[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, o := range ops {
			duration := o.stats.LastSeen.Sub(o.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, duration %s\n", shortenID(o.id), o.stats.Events, duration)
			if o.stats.RegistrationID != "" {
				fmt.Fprintf(w, "             Registration: %s\n", o.stats.RegistrationID)
			}
			fmt.Fprintf(w, "             Requests: %d, Polls: %d\n", o.stats.Requests, o.stats.Polls)
			if o.stats.FinalStatus != "" {
				fmt.Fprintf(w, "             Status: %s\n", o.stats.FinalStatus)
			}
			if o.stats.AssignedHub != "" {
				fmt.Fprintf(w, "             Hub: %s\n", o.stats.AssignedHub)
			}
			if o.stats.Failed {
				fmt.Fprintln(w, "             Failed: yes")
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
