// Package log records pipeline run events for rtac-cim.
//
// Every conversion run gets a RunID and emits one Event per stage (fetch,
// parse, build, encode, commit) plus one event per unresolved reference. It is
// separate from operational logging (slog): the event log is a
// machine-readable trace of what each run did with which file.
//
// # Basic Usage
//
//	// Console only
//	events := log.NewSlogAdapter(slog.Default())
//
//	// Console and file
//	file, _ := log.NewFileLogger("/var/log/rtac-cim/runs.rlog")
//	events := log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), file)
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with the .rlog extension.
// NewRotatingFileLogger caps a log's size by keeping one previous generation
// at path.1. The rtac-cim log subcommand views and summarizes them, reading
// standard input when the path is "-".
package log
