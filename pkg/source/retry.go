package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/scada-studio/rtac-cim/pkg/rtac"
)

// ErrRetriesExhausted wraps the last error once every attempt has failed.
var ErrRetriesExhausted = errors.New("retries exhausted")

// permanentError marks an error that retrying cannot fix.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err so that Retry returns it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether retrying err is pointless.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidPath) ||
		errors.Is(err, ErrRevisionMismatch) ||
		errors.Is(err, rtac.ErrMalformedInput) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// Retry calls fn until it succeeds, returns a permanent error, attempts run
// out, or ctx is done. The returned error wraps the last failure.
func Retry(ctx context.Context, backoff *Backoff, attempts int, fn func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if IsPermanent(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		timer := time.NewTimer(backoff.Next())
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
		case <-timer.C:
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempts, err)
}

// RetryFetcher retries a Fetcher's transient failures.
type RetryFetcher struct {
	Fetcher  Fetcher
	Backoff  BackoffConfig
	Attempts int
}

// Fetch implements Fetcher.
func (r *RetryFetcher) Fetch(ctx context.Context, repo, path, revision string) ([]byte, error) {
	var data []byte
	err := Retry(ctx, NewBackoff(r.Backoff), r.Attempts, func(ctx context.Context) error {
		var err error
		data, err = r.Fetcher.Fetch(ctx, repo, path, revision)
		return err
	})
	return data, err
}

// RetryCommitter retries a Committer's transient failures.
type RetryCommitter struct {
	Committer Committer
	Backoff   BackoffConfig
	Attempts  int
}

// Commit implements Committer.
func (r *RetryCommitter) Commit(ctx context.Context, repo, path string, content []byte, message string) (string, error) {
	var rev string
	err := Retry(ctx, NewBackoff(r.Backoff), r.Attempts, func(ctx context.Context) error {
		var err error
		rev, err = r.Committer.Commit(ctx, repo, path, content, message)
		return err
	})
	return rev, err
}
