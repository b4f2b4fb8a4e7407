package repohost

import (
	"context"
	"fmt"
	"sync"

	"sitewright/pkg/cerr"
)

// Fake is an in-memory Host for tests. Writes are recorded in order and each
// successful write yields a fresh commit identifier, mirroring the real
// store's behavior of assigning a new version even for identical content.
type Fake struct {
	mu           sync.Mutex
	repos        map[string]map[string][]byte
	pagesEnabled map[string]bool
	writeSeq     int
	WriteLog     []string

	// FailWriteAt, when > 0, fails the Nth write with a conflict.
	FailWriteAt int
}

func NewFake() *Fake {
	return &Fake{
		repos:        map[string]map[string][]byte{},
		pagesEnabled: map[string]bool{},
	}
}

func (f *Fake) CreateRepository(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.repos[name]; ok {
		return cerr.NewError(cerr.AlreadyExists, "repository already exists", nil)
	}
	f.repos[name] = map[string][]byte{}
	return nil
}

// Seed populates a repository without going through the write log.
func (f *Fake) Seed(name string, files map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	repo := map[string][]byte{}
	for p, c := range files {
		repo[p] = []byte(c)
	}
	f.repos[name] = repo
}

func (f *Fake) Snapshot(_ context.Context, name string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	repo, ok := f.repos[name]
	if !ok {
		return nil, cerr.NewError(cerr.NotFound, "repository not found", nil)
	}
	out := make(map[string]string, len(repo))
	for p, c := range repo {
		out[p] = string(c)
	}
	return out, nil
}

func (f *Fake) UploadOrUpdate(_ context.Context, name, path string, content []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	repo, ok := f.repos[name]
	if !ok {
		return "", cerr.NewError(cerr.NotFound, "repository not found", nil)
	}
	f.writeSeq++
	if f.FailWriteAt > 0 && f.writeSeq == f.FailWriteAt {
		return "", cerr.NewError(cerr.Aborted, "upload failed", fmt.Errorf("stale version identifier for %s", path))
	}
	repo[path] = content
	f.WriteLog = append(f.WriteLog, path)
	return fmt.Sprintf("commit-%04d", f.writeSeq), nil
}

func (f *Fake) EnablePages(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pagesEnabled[name] = true
	return nil
}

func (f *Fake) RepoURL(name string) string {
	return "https://example.test/fake/" + name
}

func (f *Fake) PagesURL(name string) string {
	return "https://fake.example.test/" + name + "/"
}

// File returns the current content at path, for assertions.
func (f *Fake) File(name, path string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	repo, ok := f.repos[name]
	if !ok {
		return nil, false
	}
	c, ok := repo[path]
	return c, ok
}

// PagesEnabled reports whether static hosting was turned on for name.
func (f *Fake) PagesEnabled(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pagesEnabled[name]
}
