// Package source defines how RTAC exports are fetched from and profiles
// committed to a source repository.
//
// The converter core never talks to a repository itself. Fetcher and
// Committer are the boundary: implementations are fallible, and callers
// decide whether to retry with Retry.
package source
