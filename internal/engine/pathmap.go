package engine

import "strings"

// Path mapping is pure bookkeeping: a node's place in the local hierarchy
// is its relative segment sequence under the traversal base, prefixed with
// the configured root path. The joined slash form doubles as the
// local-hierarchy key used for deduplication.

// SplitPath splits a slash-separated path into segments, dropping empty
// segments so "BRX001/" and "/BRX001" behave like "BRX001".
func SplitPath(p string) []string {
	if p == "" {
		return nil
	}
	parts := strings.Split(p, "/")
	segs := make([]string, 0, len(parts))
	for _, s := range parts {
		s = strings.TrimSpace(s)
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// JoinPath is the inverse of SplitPath.
func JoinPath(segs []string) string {
	return strings.Join(segs, "/")
}

// childSegments extends a parent's relative segments with one child name.
// The result is a fresh slice; frontier items must not alias each other's
// backing arrays.
func childSegments(parent []string, name string) []string {
	segs := make([]string, 0, len(parent)+1)
	segs = append(segs, parent...)
	return append(segs, name)
}
