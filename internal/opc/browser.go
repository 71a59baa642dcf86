package opc

import (
	"context"
	"fmt"
)

// NodeRef identifies a single node in the remote address space. It is an
// opaque token understood by the server (for OPC UA, the text form of a
// NodeID such as "ns=2;s=0:/BRX001"). Never parsed or composed locally.
type NodeRef string

// BrowseItem is one child returned by a browse call.
type BrowseItem struct {
	Ref      NodeRef
	Name     string // display name
	IsFolder bool   // object/folder node class, eligible for expansion
}

// Browser lists the children of a node. Implementations may fail with
// transient errors on network, timeout, or permission problems; callers
// treat every failure as potentially transient and retry via WithRetry.
type Browser interface {
	Browse(ctx context.Context, ref NodeRef) ([]BrowseItem, error)
}

// RemoteCallError reports a browse call that failed after exhausting its
// retry budget. The subtree under Ref is skipped; the run continues.
type RemoteCallError struct {
	Ref      NodeRef
	Attempts int
	Err      error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("browse %s failed after %d attempts: %v", e.Ref, e.Attempts, e.Err)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}
