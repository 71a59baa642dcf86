package engine

import (
	"context"

	"opcmirror/internal/opc"
	"opcmirror/internal/output"
)

// progressInterval is how many visits pass between liveness events. Long
// traversals must produce periodic signals even when nothing matches.
const progressInterval = 10

// propertiesNodeName is the metadata pseudo-node some servers attach to
// every object. It is never a process value and never worth descending into.
const propertiesNodeName = "#Properties"

// traversal walks the remote namespace iteratively, breadth-first.
type traversal struct {
	browser   opc.Browser
	filter    NameFilter
	dataType  string
	maxDepth  int
	maxVisits int
	run       string
	report    func(v any)
}

type traversalResult struct {
	tags      []DiscoveredTag
	visits    int
	truncated bool
	errs      []RunError
}

// traverse expands nodes from an explicit frontier until the queue drains
// or the visit budget is spent. A node that fails to browse (after retries)
// costs one error and its subtree; it never aborts the run. Leaf emission
// and folder expansion are independent checks: a folder-class node whose
// name matches the filter is recorded as a tag and still expanded.
func (t *traversal) traverse(ctx context.Context, base opc.NodeRef) traversalResult {
	var res traversalResult

	fr := newFrontier()
	fr.push(frontierItem{ref: base})

	for fr.len() > 0 {
		if err := ctx.Err(); err != nil {
			res.addErrorf("traversal", err)
			res.truncated = true
			break
		}
		if res.visits >= t.maxVisits {
			res.truncated = true
			t.report(output.Event{
				Type:   "traversal.truncated",
				Run:    t.run,
				Visits: res.visits,
				Queue:  fr.len(),
				Found:  len(res.tags),
			})
			break
		}

		it, ok := fr.pop()
		if !ok {
			break
		}
		res.visits++

		if res.visits%progressInterval == 0 {
			t.report(output.Event{
				Type:   "traversal.progress",
				Run:    t.run,
				Visits: res.visits,
				Queue:  fr.len(),
				Found:  len(res.tags),
			})
		}

		children, err := t.browser.Browse(ctx, it.ref)
		if err != nil {
			// Subtree skipped; siblings proceed.
			res.addErrorf(string(it.ref), err)
			continue
		}

		for _, child := range children {
			if child.Name == propertiesNodeName {
				continue
			}

			segs := childSegments(it.segments, child.Name)

			// A node named by an explicit search criterion is recorded
			// even when it is folder-class and about to be expanded.
			// Under an accept-all filter only variable nodes are tags;
			// otherwise every intermediate folder would become one.
			emit := t.filter.Matches(child.Name) && (!child.IsFolder || !t.filter.AcceptAll())
			if emit {
				res.tags = append(res.tags, DiscoveredTag{
					FolderPath: segs[:len(segs)-1],
					Name:       child.Name,
					Ref:        child.Ref,
					DataType:   t.dataType,
				})
			}

			if child.IsFolder && it.depth+1 <= t.maxDepth {
				fr.push(frontierItem{
					ref:      child.Ref,
					segments: segs,
					depth:    it.depth + 1,
				})
			}
		}
	}

	return res
}

func (r *traversalResult) addErrorf(context string, err error) {
	r.errs = append(r.errs, RunError{Context: context, Message: err.Error()})
}
