// Package tagstore is the target-store collaborator: the locally managed
// hierarchy of folders and OPC tag records the engine mirrors into. Paths
// are slash-separated and relative to the provider root ("BRX001/AI-1/PV").
package tagstore

import (
	"context"
	"fmt"
)

// TagConfig describes one tag to create.
type TagConfig struct {
	Path     string // full target path, last segment is the tag name
	Source   string // remote node reference the tag points at
	DataType string
}

// ItemResult is the per-item outcome of a batched create. The store never
// guarantees atomicity across a batch; each item's outcome is independent.
type ItemResult struct {
	Path string
	Err  error
}

// Snapshot is the set of folder and tag paths that existed under a root at
// capture time. The engine captures it once per run, before planning;
// concurrent external mutation after capture is out of scope and surfaces
// as DuplicateEntityError at commit time.
type Snapshot struct {
	Folders map[string]struct{}
	Tags    map[string]struct{}
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		Folders: make(map[string]struct{}),
		Tags:    make(map[string]struct{}),
	}
}

func (s *Snapshot) HasFolder(path string) bool {
	if s == nil {
		return false
	}
	_, ok := s.Folders[path]
	return ok
}

func (s *Snapshot) HasTag(path string) bool {
	if s == nil {
		return false
	}
	_, ok := s.Tags[path]
	return ok
}

// Store is the persistence boundary for the local tag hierarchy.
type Store interface {
	// Exists reports whether a folder or tag exists at path.
	Exists(ctx context.Context, path string) (bool, error)

	// Snapshot captures all folder and tag paths at or under root.
	Snapshot(ctx context.Context, root string) (*Snapshot, error)

	// CreateFolders creates the given folder paths. It returns one
	// ItemResult per input path; a non-nil error means the batch as a
	// whole could not be applied.
	CreateFolders(ctx context.Context, paths []string) ([]ItemResult, error)

	// CreateTags creates the given tags, one ItemResult per input.
	CreateTags(ctx context.Context, tags []TagConfig) ([]ItemResult, error)
}

// DuplicateEntityError reports that an entity already existed at commit
// time despite the plan-time pre-check.
type DuplicateEntityError struct {
	Path string
}

func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("entity already exists at %s", e.Path)
}
