package engine

import "opcmirror/internal/opc"

// frontierItem is one pending expansion: a node discovered but not yet
// browsed. It lives only inside the frontier; it is consumed exactly once
// when dequeued. depth always equals len(segments).
type frontierItem struct {
	ref      opc.NodeRef
	segments []string
	depth    int
}

// frontier is the explicit FIFO work queue that stands in for the call
// stack of a recursive walk. One worker drives the whole run, so no
// locking is needed. The seen set deduplicates by node reference, which
// also protects against cyclic namespaces.
type frontier struct {
	items []frontierItem
	seen  map[opc.NodeRef]struct{}
}

func newFrontier() *frontier {
	return &frontier{
		seen: make(map[opc.NodeRef]struct{}),
	}
}

// push enqueues the item unless its node was seen before.
// Returns true if the item was added.
func (f *frontier) push(it frontierItem) bool {
	if _, ok := f.seen[it.ref]; ok {
		return false
	}
	f.seen[it.ref] = struct{}{}
	f.items = append(f.items, it)
	return true
}

func (f *frontier) pop() (frontierItem, bool) {
	if len(f.items) == 0 {
		return frontierItem{}, false
	}
	it := f.items[0]
	f.items = f.items[1:]
	return it, true
}

func (f *frontier) len() int {
	return len(f.items)
}
