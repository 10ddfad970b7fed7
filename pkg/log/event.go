package log

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event is one step of a conversion run.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// RunID groups the events of one run.
	RunID string `cbor:"2,keyasint"`

	Stage    Stage    `cbor:"3,keyasint"`
	Category Category `cbor:"4,keyasint"`

	Repo       string `cbor:"5,keyasint,omitempty"`
	SourceFile string `cbor:"6,keyasint,omitempty"`
	Substation string `cbor:"7,keyasint,omitempty"`
	Revision   string `cbor:"8,keyasint,omitempty"`

	// Duration of the stage, stored as nanoseconds.
	Duration time.Duration `cbor:"9,keyasint,omitempty"`

	// Detail is a short free-text note, e.g. why a file was skipped.
	Detail string `cbor:"10,keyasint,omitempty"`

	// Type-specific payload (at most one is set).
	Summary    *SummaryData    `cbor:"11,keyasint,omitempty"`
	Unresolved *UnresolvedData `cbor:"12,keyasint,omitempty"`
	Error      *ErrorData      `cbor:"13,keyasint,omitempty"`
}

// NewRunID returns a fresh random run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// Stage is the pipeline step that produced an event.
type Stage uint8

const (
	StageFetch  Stage = 0
	StageParse  Stage = 1
	StageBuild  Stage = 2
	StageEncode Stage = 3
	StageCommit Stage = 4
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageFetch:
		return "FETCH"
	case StageParse:
		return "PARSE"
	case StageBuild:
		return "BUILD"
	case StageEncode:
		return "ENCODE"
	case StageCommit:
		return "COMMIT"
	default:
		return "UNKNOWN"
	}
}

// ParseStage returns the stage with the given name (case-insensitive).
func ParseStage(name string) (Stage, bool) {
	for s := StageFetch; s <= StageCommit; s++ {
		if strings.EqualFold(s.String(), name) {
			return s, true
		}
	}
	return 0, false
}

// Category classifies an event.
type Category uint8

const (
	// CategoryInfo is a completed stage.
	CategoryInfo Category = 0
	// CategoryUnresolved is a link omitted from the profile.
	CategoryUnresolved Category = 1
	// CategoryError is a failed stage.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryInfo:
		return "INFO"
	case CategoryUnresolved:
		return "UNRESOLVED"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseCategory returns the category with the given name (case-insensitive).
func ParseCategory(name string) (Category, bool) {
	for c := CategoryInfo; c <= CategoryError; c++ {
		if strings.EqualFold(c.String(), name) {
			return c, true
		}
	}
	return 0, false
}

// SummaryData carries the counters of a parse or build stage.
type SummaryData struct {
	Devices           int    `cbor:"1,keyasint,omitempty"`
	Points            int    `cbor:"2,keyasint,omitempty"`
	RemoteUnits       int    `cbor:"3,keyasint,omitempty"`
	AnalogPoints      int    `cbor:"4,keyasint,omitempty"`
	DiscretePoints    int    `cbor:"5,keyasint,omitempty"`
	AccumulatorPoints int    `cbor:"6,keyasint,omitempty"`
	ControlPoints     int    `cbor:"7,keyasint,omitempty"`
	ModelURN          string `cbor:"8,keyasint,omitempty"`
	Bytes             int    `cbor:"9,keyasint,omitempty"`
}

// UnresolvedData describes a reference that could not be linked.
type UnresolvedData struct {
	Kind    string `cbor:"1,keyasint"`
	Tag     string `cbor:"2,keyasint"`
	MapName string `cbor:"3,keyasint,omitempty"`
}

// ErrorData describes a failed stage.
type ErrorData struct {
	Message string `cbor:"1,keyasint"`

	// Permanent is set when retrying cannot succeed.
	Permanent bool `cbor:"2,keyasint,omitempty"`
}
