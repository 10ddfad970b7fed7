package source

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
)

// HeadRevision selects the current content of a file.
const HeadRevision = "HEAD"

// CommitLogName is the per-repository commit message log.
const CommitLogName = ".commits.log"

// DirRepository serves repositories stored as directories under Root.
// Revisions are BLAKE2b-256 digests of file content.
type DirRepository struct {
	Root string

	mu sync.Mutex
}

// NewDirRepository returns a repository rooted at root.
func NewDirRepository(root string) *DirRepository {
	return &DirRepository{Root: root}
}

// Digest returns the revision identifier for content.
func Digest(content []byte) string {
	sum := blake2b.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// resolve maps repo and path to a file below Root.
func (d *DirRepository) resolve(repo, path string) (string, string, error) {
	if repo == "" || path == "" {
		return "", "", fmt.Errorf("%w: empty repository or path", ErrInvalidPath)
	}
	repoDir := filepath.Join(d.Root, filepath.FromSlash(repo))
	if !within(d.Root, repoDir) || repoDir == filepath.Clean(d.Root) {
		return "", "", fmt.Errorf("%w: repository %q", ErrInvalidPath, repo)
	}
	full := filepath.Join(repoDir, filepath.FromSlash(path))
	if !within(repoDir, full) || full == repoDir {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return repoDir, full, nil
}

func within(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Fetch implements Fetcher.
func (d *DirRepository) Fetch(ctx context.Context, repo, path, revision string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, full, err := d.resolve(repo, path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, repo, path)
		}
		return nil, fmt.Errorf("reading %s/%s: %w", repo, path, err)
	}

	if revision != "" && revision != HeadRevision && revision != Digest(data) {
		return nil, fmt.Errorf("%w: %s/%s@%s", ErrRevisionMismatch, repo, path, revision)
	}
	return data, nil
}

// Commit implements Committer. The file is replaced atomically and the
// message is appended to the repository's commit log.
func (d *DirRepository) Commit(ctx context.Context, repo, path string, content []byte, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	repoDir, full, err := d.resolve(repo, path)
	if err != nil {
		return "", err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".commit-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, full); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("replace %s: %w", path, err)
	}

	rev := Digest(content)
	entry := fmt.Sprintf("%s %s %s %s\n", time.Now().UTC().Format(time.RFC3339), rev, filepath.ToSlash(path), oneLine(message))
	f, err := os.OpenFile(filepath.Join(repoDir, CommitLogName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("open commit log: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(entry); err != nil {
		return "", fmt.Errorf("append commit log: %w", err)
	}
	return rev, nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
