package output

// Status classifies the outcome of one planned entity.
type Status string

const (
	StatusCreated Status = "CREATED"
	StatusPlanned Status = "PLANNED"
	StatusSkipped Status = "SKIPPED"
	StatusFailed  Status = "FAILED"
)

// ItemRecord is the per-entity outcome of an import run: one folder or tag
// that was created, planned (dry run), skipped (already present), or failed.
type ItemRecord struct {
	Run     string `json:"run,omitempty"` // root path identifying the run
	Kind    string `json:"kind"`          // "folder" or "tag"
	Path    string `json:"path"`
	Source  string `json:"source,omitempty"` // remote node reference (tags only)
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Event is a lifecycle record for NDJSON streaming output.
//
// In NDJSON mode, sinks emit Events (one JSON object per line), including:
// - run.started
// - traversal.progress
// - traversal.retry
// - traversal.truncated
// - plan.built
// - commit.batch
// - item.result
// - run.finished
//
// JSON mode remains an aggregate of ItemRecord values.
type Event struct {
	Type string `json:"type"`
	Run  string `json:"run,omitempty"`
	*ItemRecord
	Message string `json:"message,omitempty"`
	Visits  int    `json:"visits,omitempty"`
	Queue   int    `json:"queue,omitempty"`
	Found   int    `json:"found,omitempty"`
	Folders int    `json:"folders,omitempty"`
	Tags    int    `json:"tags,omitempty"`
	Batch   int    `json:"batch,omitempty"`
	Batches int    `json:"batches,omitempty"`
	Created int    `json:"created,omitempty"`
	Errors  int    `json:"errors,omitempty"`
}

func eventFromRecord(r ItemRecord) Event {
	return Event{Type: "item.result", Run: r.Run, ItemRecord: &r}
}
