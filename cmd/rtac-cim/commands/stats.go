package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/scada-studio/rtac-cim/pkg/log"
)

// LogStats holds aggregate statistics about a run log.
type LogStats struct {
	TotalEvents      int
	EventsByStage    map[log.Stage]int
	EventsByCategory map[log.Category]int
	Runs             map[string]*RunStats
	Errors           int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// RunStats holds statistics for a single conversion run.
type RunStats struct {
	FirstSeen  time.Time
	LastSeen   time.Time
	Events     int
	SourceFile string
	Substation string
	ModelURN   string
	Points     int
	Unresolved int
	Failed     bool
}

// RunLogStats analyzes the log file and prints statistics.
func RunLogStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &LogStats{
		EventsByStage:    make(map[log.Stage]int),
		EventsByCategory: make(map[log.Category]int),
		Runs:             make(map[string]*RunStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func (s *LogStats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByStage[event.Stage]++
	s.EventsByCategory[event.Category]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	run, ok := s.Runs[event.RunID]
	if !ok {
		run = &RunStats{FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
		s.Runs[event.RunID] = run
	}
	run.Events++
	if event.Timestamp.After(run.LastSeen) {
		run.LastSeen = event.Timestamp
	}
	if run.SourceFile == "" {
		run.SourceFile = event.SourceFile
	}
	if run.Substation == "" {
		run.Substation = event.Substation
	}

	switch {
	case event.Summary != nil:
		if event.Summary.ModelURN != "" {
			run.ModelURN = event.Summary.ModelURN
		}
		if event.Stage == log.StageParse {
			run.Points = event.Summary.Points
		}
	case event.Unresolved != nil:
		run.Unresolved++
	case event.Error != nil:
		run.Failed = true
		s.Errors++
	}
}

func printStats(w io.Writer, stats *LogStats) {
	fmt.Fprintln(w, "=== RTAC to CIM Run Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Stage:")
	for _, stage := range []log.Stage{log.StageFetch, log.StageParse, log.StageBuild, log.StageEncode, log.StageCommit} {
		if count := stats.EventsByStage[stage]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", stage.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryInfo, log.CategoryUnresolved, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Runs: %d\n", len(stats.Runs))
	if len(stats.Runs) > 0 {
		type runInfo struct {
			id    string
			stats *RunStats
		}
		runs := make([]runInfo, 0, len(stats.Runs))
		for id, rs := range stats.Runs {
			runs = append(runs, runInfo{id, rs})
		}
		sort.Slice(runs, func(i, j int) bool {
			return runs[i].stats.FirstSeen.Before(runs[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, r := range runs {
			status := "ok"
			if r.stats.Failed {
				status = "failed"
			}
			duration := r.stats.LastSeen.Sub(r.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %s, %d events, duration %s\n", shortenRunID(r.id), status, r.stats.Events, duration)
			if r.stats.SourceFile != "" {
				fmt.Fprintf(w, "           File: %s\n", r.stats.SourceFile)
			}
			if r.stats.Substation != "" {
				fmt.Fprintf(w, "           Substation: %s\n", r.stats.Substation)
			}
			if r.stats.Points > 0 {
				fmt.Fprintf(w, "           Points: %d\n", r.stats.Points)
			}
			if r.stats.Unresolved > 0 {
				fmt.Fprintf(w, "           Unresolved: %d\n", r.stats.Unresolved)
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
