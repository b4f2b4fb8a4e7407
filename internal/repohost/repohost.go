// Package repohost abstracts the remote source-hosting provider: a versioned
// file store that can also serve a repository as a static website.
package repohost

import (
	"context"
)

// Host is implemented by remote providers. UploadOrUpdate has create-or-update
// semantics with optimistic concurrency: a stale version identifier makes the
// write fail, and the returned identifier of a successful write is the round's
// completion marker.
type Host interface {
	// CreateRepository creates a public, auto-initialized repository.
	CreateRepository(ctx context.Context, name string) error
	// Snapshot recursively fetches every file's current content.
	Snapshot(ctx context.Context, name string) (map[string]string, error)
	// UploadOrUpdate writes content at path, creating or replacing the file,
	// and returns the resulting commit identifier.
	UploadOrUpdate(ctx context.Context, name, path string, content []byte) (string, error)
	// EnablePages turns on static hosting for the repository.
	EnablePages(ctx context.Context, name string) error
	RepoURL(name string) string
	PagesURL(name string) string
}
