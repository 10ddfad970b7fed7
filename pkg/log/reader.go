package log

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// StdinPath names standard input in place of a run log path.
const StdinPath = "-"

// Filter selects events. Empty or nil fields match everything.
type Filter struct {
	RunID      string
	Stage      *Stage
	Category   *Category
	SourceFile string
	Substation string

	// TimeStart matches events at or after this time.
	TimeStart *time.Time
	// TimeEnd matches events before this time.
	TimeEnd *time.Time
}

// Match reports whether event passes the filter.
func (f Filter) Match(event Event) bool {
	switch {
	case f.RunID != "" && event.RunID != f.RunID,
		f.SourceFile != "" && event.SourceFile != f.SourceFile,
		f.Substation != "" && event.Substation != f.Substation,
		f.Stage != nil && event.Stage != *f.Stage,
		f.Category != nil && event.Category != *f.Category,
		f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart),
		f.TimeEnd != nil && !event.Timestamp.Before(*f.TimeEnd):
		return false
	}
	return true
}

// Reader yields the events of a run log that pass its filter.
type Reader struct {
	src     io.Closer
	dec     *cbor.Decoder
	filter  Filter
	decoded int
}

// NewReader opens a run log and reads every event.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader opens a run log, or standard input when path is
// StdinPath, and reads the events matching filter.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	if path == StdinPath {
		return NewStreamReader(io.NopCloser(os.Stdin), filter), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return NewStreamReader(f, filter), nil
}

// NewStreamReader reads events from rc, which Close closes.
func NewStreamReader(rc io.ReadCloser, filter Filter) *Reader {
	return &Reader{src: rc, dec: NewDecoder(rc), filter: filter}
}

// Next returns the next matching event, or io.EOF once the log is
// exhausted. A log cut off mid-event reports io.ErrUnexpectedEOF.
func (r *Reader) Next() (Event, error) {
	for {
		var event Event
		if err := r.dec.Decode(&event); err != nil {
			if errors.Is(err, io.EOF) {
				return Event{}, io.EOF
			}
			return Event{}, err
		}
		r.decoded++
		if r.filter.Match(event) {
			return event, nil
		}
	}
}

// Decoded returns how many events were decoded, matching or not.
func (r *Reader) Decoded() int {
	return r.decoded
}

// Close releases the underlying stream.
func (r *Reader) Close() error {
	return r.src.Close()
}
