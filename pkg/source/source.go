package source

import (
	"context"
	"errors"
)

// Errors returned by repository implementations.
var (
	ErrNotFound         = errors.New("file not found")
	ErrInvalidPath      = errors.New("path escapes repository")
	ErrRevisionMismatch = errors.New("revision does not match content")
)

// Fetcher reads a file at a revision. An empty revision means the latest.
type Fetcher interface {
	Fetch(ctx context.Context, repo, path, revision string) ([]byte, error)
}

// Committer writes a file and returns the new revision.
type Committer interface {
	Commit(ctx context.Context, repo, path string, content []byte, message string) (string, error)
}

// Repository is a Fetcher that can also commit.
type Repository interface {
	Fetcher
	Committer
}
