package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileLogger appends CBOR-encoded events to a run log. When a size limit
// is set, a log that would grow past it is moved to path.1 and a fresh log
// is started, so at most two generations exist on disk.
type FileLogger struct {
	mu sync.Mutex

	path     string
	maxBytes int64
	file     *os.File
	size     int64
	closed   bool
}

// NewFileLogger opens path for appending without a size limit.
func NewFileLogger(path string) (*FileLogger, error) {
	return NewRotatingFileLogger(path, 0)
}

// NewRotatingFileLogger opens path for appending and rotates it once it
// would exceed maxBytes. A maxBytes of zero or less disables rotation.
// Missing parent directories are created.
func NewRotatingFileLogger(path string, maxBytes int64) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	l := &FileLogger{path: path, maxBytes: maxBytes}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *FileLogger) open() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	l.file = f
	l.size = info.Size()
	return nil
}

func (l *FileLogger) rotate() error {
	if err := l.file.Close(); err != nil {
		return err
	}
	if err := os.Rename(l.path, l.path+".1"); err != nil {
		return fmt.Errorf("rotate %s: %w", l.path, err)
	}
	return l.open()
}

// Log appends an event. Write failures are dropped; a broken run log must
// not fail the conversion it describes.
func (l *FileLogger) Log(event Event) {
	data, err := EncodeEvent(event)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	if l.maxBytes > 0 && l.size > 0 && l.size+int64(len(data)) > l.maxBytes {
		if err := l.rotate(); err != nil {
			l.closed = true
			return
		}
	}
	n, _ := l.file.Write(data)
	l.size += int64(n)
}

// Size returns the number of bytes in the current generation.
func (l *FileLogger) Size() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

// Close closes the file. Later Log calls are ignored.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}

var _ Logger = (*FileLogger)(nil)
