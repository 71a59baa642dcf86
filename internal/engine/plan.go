package engine

import (
	"opcmirror/internal/opc"
	"opcmirror/internal/tagstore"
)

// DiscoveredTag is one leaf found by the traversal: where it goes locally,
// what it is called, and which remote node it points at. Immutable once
// created.
type DiscoveredTag struct {
	FolderPath []string // relative to the traversal base
	Name       string
	Ref        opc.NodeRef
	DataType   string
}

// TargetPath returns the tag's full local path under the run's root.
func (t DiscoveredTag) TargetPath(root []string) string {
	segs := make([]string, 0, len(root)+len(t.FolderPath)+1)
	segs = append(segs, root...)
	segs = append(segs, t.FolderPath...)
	segs = append(segs, t.Name)
	return JoinPath(segs)
}

// FolderRequirement is one folder the plan needs, identified by its full
// local path. Set-like: the same path implied by several tags collapses to
// a single requirement.
type FolderRequirement struct {
	Path []string
}

// CreationPlan is the ordered output of planning: folders with parents
// strictly before children, then the tags they contain. Built once per
// run; read-only thereafter.
type CreationPlan struct {
	Root    []string
	Folders []FolderRequirement
	Tags    []DiscoveredTag

	// SkippedTags are discovered tags omitted because they already exist
	// in the target store.
	SkippedTags []DiscoveredTag
}

// BuildPlan deduplicates discovered tags against the store snapshot and
// produces the creation order. Folder requirements cover the root path
// chain plus every ancestor prefix of every tag's folder path. Existence is
// decided against the snapshot captured at plan time; a concurrent external
// writer surfaces later as a duplicate error at commit time.
func BuildPlan(tags []DiscoveredTag, rootPath string, snap *tagstore.Snapshot) *CreationPlan {
	root := SplitPath(rootPath)
	plan := &CreationPlan{Root: root}

	seenFolders := make(map[string]struct{})
	needFolder := func(segs []string) {
		key := JoinPath(segs)
		if _, ok := seenFolders[key]; ok {
			return
		}
		seenFolders[key] = struct{}{}
		if snap.HasFolder(key) {
			return
		}
		req := FolderRequirement{Path: make([]string, len(segs))}
		copy(req.Path, segs)
		plan.Folders = append(plan.Folders, req)
	}

	// The (possibly nested) root chain comes first; every tag folder chain
	// emits its prefixes in ascending length, so a parent always precedes
	// its children in plan order.
	for i := 1; i <= len(root); i++ {
		needFolder(root[:i])
	}

	seenTags := make(map[string]struct{})
	for _, tag := range tags {
		chain := make([]string, 0, len(root)+len(tag.FolderPath))
		chain = append(chain, root...)
		for _, seg := range tag.FolderPath {
			chain = append(chain, seg)
			needFolder(chain)
		}

		target := tag.TargetPath(root)
		if _, ok := seenTags[target]; ok {
			continue
		}
		seenTags[target] = struct{}{}

		if snap.HasTag(target) {
			plan.SkippedTags = append(plan.SkippedTags, tag)
			continue
		}
		plan.Tags = append(plan.Tags, tag)
	}

	return plan
}
