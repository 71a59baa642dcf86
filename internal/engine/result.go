package engine

import "fmt"

// CommitBatchError reports a store call that failed for an entire batch
// rather than for individual items within it.
type CommitBatchError struct {
	Kind string
	Size int
	Err  error
}

func (e *CommitBatchError) Error() string {
	return fmt.Sprintf("%s batch of %d failed: %v", e.Kind, e.Size, e.Err)
}

func (e *CommitBatchError) Unwrap() error { return e.Err }

// RunError is one accumulated failure: the entity or node it concerns and
// what went wrong. Per-node and per-item errors never interrupt sibling
// work; they end up here.
type RunError struct {
	Context string `json:"context"`
	Message string `json:"message"`
}

// RunResult summarizes one import run. It is mutated additively while the
// run executes and finalized exactly once at run end; it is the only value
// that outlives the run.
type RunResult struct {
	Root           string     `json:"root"`
	Found          int        `json:"found"`
	Created        int        `json:"created"`
	FoldersCreated int        `json:"folders_created"`
	Succeeded      bool       `json:"succeeded"`
	Truncated      bool       `json:"truncated"`
	Errors         []RunError `json:"errors,omitempty"`
}
