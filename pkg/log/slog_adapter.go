package log

import (
	"context"
	"log/slog"
)

// SlogAdapter mirrors run events to an slog.Logger.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter returns an adapter writing to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event. Errors are logged at Error level, unresolved
// references at Warn, everything else at Debug.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("run_id", event.RunID),
		slog.String("stage", event.Stage.String()),
		slog.String("category", event.Category.String()),
	}
	if event.SourceFile != "" {
		attrs = append(attrs, slog.String("source_file", event.SourceFile))
	}
	if event.Substation != "" {
		attrs = append(attrs, slog.String("substation", event.Substation))
	}
	if event.Revision != "" {
		attrs = append(attrs, slog.String("revision", event.Revision))
	}
	if event.Duration > 0 {
		attrs = append(attrs, slog.Duration("duration", event.Duration))
	}
	if event.Detail != "" {
		attrs = append(attrs, slog.String("detail", event.Detail))
	}

	level := slog.LevelDebug
	switch {
	case event.Summary != nil:
		s := event.Summary
		attrs = append(attrs,
			slog.Int("devices", s.Devices),
			slog.Int("points", s.Points),
			slog.Int("remote_units", s.RemoteUnits),
		)
		if s.ModelURN != "" {
			attrs = append(attrs, slog.String("model_urn", s.ModelURN))
		}
		if s.Bytes > 0 {
			attrs = append(attrs, slog.Int("bytes", s.Bytes))
		}
	case event.Unresolved != nil:
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("kind", event.Unresolved.Kind),
			slog.String("tag", event.Unresolved.Tag),
			slog.String("map_name", event.Unresolved.MapName),
		)
	case event.Error != nil:
		level = slog.LevelError
		attrs = append(attrs,
			slog.String("error", event.Error.Message),
			slog.Bool("permanent", event.Error.Permanent),
		)
	}

	a.logger.LogAttrs(context.Background(), level, "run event", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
