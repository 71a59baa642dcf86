package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestConsoleSink_TextRecords(t *testing.T) {
	tests := []struct {
		name  string
		input ItemRecord
		want  []string
	}{
		{
			name:  "created tag with source",
			input: ItemRecord{Kind: "tag", Path: "BRX001/AI-1/CV", Source: "ns=2;s=cv1", Status: StatusCreated},
			want:  []string{"CREATED", "tag BRX001/AI-1/CV", "-> ns=2;s=cv1"},
		},
		{
			name:  "failed folder with message",
			input: ItemRecord{Kind: "folder", Path: "BRX001/AI-1", Status: StatusFailed, Message: "store unavailable"},
			want:  []string{"FAILED", "folder BRX001/AI-1", "- store unavailable"},
		},
		{
			name:  "planned tag in dry run",
			input: ItemRecord{Kind: "tag", Path: "BRX001/AI-1/CV", Status: StatusPlanned},
			want:  []string{"PLANNED", "tag BRX001/AI-1/CV"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			sink := NewConsoleSink(&buf, "text")
			if err := sink.Write(tt.input); err != nil {
				t.Fatalf("Write error: %v", err)
			}
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output %q missing %q", out, w)
				}
			}
		})
	}
}

func TestConsoleSink_TextEvents(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, "text")

	events := []Event{
		{Type: "run.started", Run: "BRX001"},
		{Type: "traversal.progress", Visits: 10, Queue: 4, Found: 2},
		{Type: "traversal.truncated", Visits: 2000},
		{Type: "plan.built", Folders: 5, Tags: 2, Found: 2},
		{Type: "commit.batch", Batch: 1, Batches: 1, Created: 5},
		{Type: "run.finished", Run: "BRX001", Found: 2, Created: 2, Folders: 5},
	}
	for _, e := range events {
		if err := sink.Write(e); err != nil {
			t.Fatalf("Write(%s) error: %v", e.Type, err)
		}
	}

	out := buf.String()
	for _, w := range []string{
		"Importing BRX001",
		"[visit 10] queue=4 found=2",
		"visit limit (2000)",
		"Plan: 5 folders, 2 tags",
		"Committed batch 1/1",
		"Run BRX001 finished: found=2 created=2 folders=5",
	} {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
}

func TestConsoleSink_NDJSONStreamsEvents(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, "ndjson")

	if err := sink.Write(Event{Type: "run.started", Run: "BRX001"}); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if err := sink.Write(ItemRecord{Kind: "tag", Path: "BRX001/CV", Status: StatusCreated}); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 NDJSON lines, got %d: %q", len(lines), buf.String())
	}

	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 1 is not JSON: %v", err)
	}
	if first["type"] != "run.started" {
		t.Errorf("line 1 type = %v", first["type"])
	}

	var second map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("line 2 is not JSON: %v", err)
	}
	if second["type"] != "item.result" {
		t.Errorf("line 2 type = %v", second["type"])
	}
	if second["path"] != "BRX001/CV" {
		t.Errorf("line 2 path = %v", second["path"])
	}
}

func TestConsoleSink_JSONAggregatesOnClose(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, "json")

	_ = sink.Write(Event{Type: "run.started", Run: "BRX001"}) // ignored in json mode
	_ = sink.Write(ItemRecord{Kind: "folder", Path: "BRX001", Status: StatusCreated})
	_ = sink.Write(ItemRecord{Kind: "tag", Path: "BRX001/CV", Status: StatusCreated})

	if buf.Len() != 0 {
		t.Errorf("json mode should buffer until Close, wrote %q", buf.String())
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	var records []ItemRecord
	if err := json.Unmarshal(buf.Bytes(), &records); err != nil {
		t.Fatalf("output is not a JSON array: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1].Path != "BRX001/CV" {
		t.Errorf("records[1].Path = %s", records[1].Path)
	}
}
