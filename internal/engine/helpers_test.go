package engine

import (
	"context"
	"strings"
	"sync"

	"opcmirror/internal/output"
	"opcmirror/internal/tagstore"
)

// reportCounter returns a report func that counts events of one type.
func reportCounter(n *int, eventType string) func(any) {
	return func(v any) {
		if ev, ok := v.(output.Event); ok && ev.Type == eventType {
			*n++
		}
	}
}

// eventCollector gathers everything reported during a run for assertions.
type eventCollector struct {
	mu      sync.Mutex
	events  []output.Event
	records []output.ItemRecord
}

func (c *eventCollector) report(v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch x := v.(type) {
	case output.Event:
		c.events = append(c.events, x)
	case output.ItemRecord:
		c.records = append(c.records, x)
	}
}

func (c *eventCollector) countEvents(eventType string) int {
	n := 0
	for _, ev := range c.events {
		if ev.Type == eventType {
			n++
		}
	}
	return n
}

// memStore is an in-memory tagstore.Store that records call shapes so
// tests can assert batching and dry-run behavior. Locked because RunAll
// tests drive it from several goroutines.
type memStore struct {
	mu      sync.Mutex
	folders map[string]struct{}
	tags    map[string]tagstore.TagConfig

	folderBatches [][]string
	tagBatches    []int

	// failFolderBatch and failTagBatch make the Nth batch (1-based) fail
	// wholesale with the given error. Zero disables.
	failFolderBatch int
	failTagBatch    int
	batchErr        error
}

func newMemStore() *memStore {
	return &memStore{
		folders: make(map[string]struct{}),
		tags:    make(map[string]tagstore.TagConfig),
	}
}

func (s *memStore) Exists(ctx context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.folders[path]; ok {
		return true, nil
	}
	_, ok := s.tags[path]
	return ok, nil
}

func (s *memStore) Snapshot(ctx context.Context, root string) (*tagstore.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := tagstore.NewSnapshot()
	for p := range s.folders {
		if underRoot(p, root) {
			snap.Folders[p] = struct{}{}
		}
	}
	for p := range s.tags {
		if underRoot(p, root) {
			snap.Tags[p] = struct{}{}
		}
	}
	return snap, nil
}

func underRoot(path, root string) bool {
	return path == root || strings.HasPrefix(path, root+"/")
}

func (s *memStore) CreateFolders(ctx context.Context, paths []string) ([]tagstore.ItemResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folderBatches = append(s.folderBatches, paths)
	if s.failFolderBatch == len(s.folderBatches) {
		return nil, s.batchErr
	}
	results := make([]tagstore.ItemResult, len(paths))
	for i, p := range paths {
		results[i] = tagstore.ItemResult{Path: p}
		if _, ok := s.folders[p]; ok {
			results[i].Err = &tagstore.DuplicateEntityError{Path: p}
			continue
		}
		s.folders[p] = struct{}{}
	}
	return results, nil
}

func (s *memStore) CreateTags(ctx context.Context, tags []tagstore.TagConfig) ([]tagstore.ItemResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tagBatches = append(s.tagBatches, len(tags))
	if s.failTagBatch == len(s.tagBatches) {
		return nil, s.batchErr
	}
	results := make([]tagstore.ItemResult, len(tags))
	for i, tc := range tags {
		results[i] = tagstore.ItemResult{Path: tc.Path}
		if _, ok := s.tags[tc.Path]; ok {
			results[i].Err = &tagstore.DuplicateEntityError{Path: tc.Path}
			continue
		}
		s.tags[tc.Path] = tc
	}
	return results, nil
}
