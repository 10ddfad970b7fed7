package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/scada-studio/rtac-cim/pkg/log"
)

// FilterOptions holds the textual filter flags shared by the log commands.
type FilterOptions struct {
	RunID      string
	SourceFile string
	Substation string
	Stage      string
	Category   string
	TimeStart  string
	TimeEnd    string
}

// Filter converts the options into a log.Filter.
func (o FilterOptions) Filter() (log.Filter, error) {
	filter := log.Filter{
		RunID:      o.RunID,
		SourceFile: o.SourceFile,
		Substation: o.Substation,
	}

	if o.Stage != "" {
		s, ok := log.ParseStage(o.Stage)
		if !ok {
			return log.Filter{}, fmt.Errorf("invalid stage: %s (valid: fetch, parse, build, encode, commit)", o.Stage)
		}
		filter.Stage = &s
	}
	if o.Category != "" {
		c, ok := log.ParseCategory(o.Category)
		if !ok {
			return log.Filter{}, fmt.Errorf("invalid category: %s (valid: info, unresolved, error)", o.Category)
		}
		filter.Category = &c
	}
	if o.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, o.TimeStart)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}
	if o.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, o.TimeEnd)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}
	return filter, nil
}

// RunView prints the events of a run log in human-readable form.
func RunView(path string, opts FilterOptions, w io.Writer) error {
	filter, err := opts.Filter()
	if err != nil {
		return err
	}
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [run:%s] %-6s %s\n", ts, shortenRunID(event.RunID), event.Stage, event.Category)

	if event.SourceFile != "" {
		fmt.Fprintf(w, "  File: %s", event.SourceFile)
		if event.Repo != "" {
			fmt.Fprintf(w, " (repo %s)", event.Repo)
		}
		fmt.Fprintln(w)
	}
	if event.Substation != "" {
		fmt.Fprintf(w, "  Substation: %s\n", event.Substation)
	}
	if event.Revision != "" {
		fmt.Fprintf(w, "  Revision: %s\n", shortenRunID(event.Revision))
	}
	if event.Duration > 0 {
		fmt.Fprintf(w, "  Duration: %s\n", event.Duration)
	}
	if event.Detail != "" {
		fmt.Fprintf(w, "  Detail: %s\n", event.Detail)
	}

	switch {
	case event.Summary != nil:
		formatSummaryDetails(w, event.Summary)
	case event.Unresolved != nil:
		fmt.Fprintf(w, "  Unresolved %s: tag=%s", event.Unresolved.Kind, event.Unresolved.Tag)
		if event.Unresolved.MapName != "" {
			fmt.Fprintf(w, " map=%s", event.Unresolved.MapName)
		}
		fmt.Fprintln(w)
	case event.Error != nil:
		fmt.Fprintf(w, "  Error: %s", event.Error.Message)
		if event.Error.Permanent {
			fmt.Fprint(w, " (permanent)")
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w)
}

func formatSummaryDetails(w io.Writer, s *log.SummaryData) {
	if s.Devices > 0 || s.Points > 0 {
		fmt.Fprintf(w, "  Devices: %d, Points: %d\n", s.Devices, s.Points)
	}
	if s.RemoteUnits > 0 {
		fmt.Fprintf(w, "  RemoteUnits: %d\n", s.RemoteUnits)
		fmt.Fprintf(w, "  Analog: %d, Discrete: %d, Accumulator: %d, Control: %d\n",
			s.AnalogPoints, s.DiscretePoints, s.AccumulatorPoints, s.ControlPoints)
	}
	if s.ModelURN != "" {
		fmt.Fprintf(w, "  Model: %s\n", s.ModelURN)
	}
	if s.Bytes > 0 {
		fmt.Fprintf(w, "  Bytes: %d\n", s.Bytes)
	}
}

// shortenRunID returns the first 8 characters of an identifier.
func shortenRunID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}
