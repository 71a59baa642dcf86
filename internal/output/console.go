package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

var statusColors = map[Status]*color.Color{
	StatusCreated: color.New(color.FgGreen),
	StatusPlanned: color.New(color.FgCyan),
	StatusSkipped: color.New(color.FgYellow),
	StatusFailed:  color.New(color.FgRed),
}

type ConsoleSink struct {
	writer  io.Writer
	format  string // "text", "json", "ndjson"
	mu      sync.Mutex
	records []ItemRecord // For JSON array output
}

func NewConsoleSink(w io.Writer, format string) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	if format == "" {
		format = "text"
	}
	return &ConsoleSink{
		writer: w,
		format: format,
	}
}

func (s *ConsoleSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(v)
}

func (s *ConsoleSink) writeLocked(v any) error {
	switch s.format {
	case "json":
		r, ok := v.(ItemRecord)
		if !ok {
			// Ignore lifecycle events in JSON console mode.
			return nil
		}
		s.records = append(s.records, r)
		return nil
	case "ndjson":
		encoder := json.NewEncoder(s.writer)
		switch t := v.(type) {
		case Event:
			if err := encoder.Encode(t); err != nil {
				return err
			}
			return flushIfPossible(s.writer)
		case ItemRecord:
			e := eventFromRecord(t)
			if err := encoder.Encode(e); err != nil {
				return err
			}
			return flushIfPossible(s.writer)
		default:
			return nil
		}
	case "text":
		switch t := v.(type) {
		case ItemRecord:
			return s.printRecord(t)
		case Event:
			return s.printEvent(t)
		default:
			return nil
		}
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}

func (s *ConsoleSink) printRecord(r ItemRecord) error {
	status := string(r.Status)
	if c, ok := statusColors[r.Status]; ok {
		status = c.Sprint(status)
	}
	line := fmt.Sprintf("[%s] %s %s", status, r.Kind, r.Path)
	if r.Source != "" {
		line += " -> " + r.Source
	}
	if r.Message != "" {
		line += " - " + r.Message
	}
	if _, err := fmt.Fprintln(s.writer, line); err != nil {
		return err
	}
	return flushIfPossible(s.writer)
}

func (s *ConsoleSink) printEvent(e Event) error {
	var line string
	switch e.Type {
	case "run.started":
		line = fmt.Sprintf("Importing %s ...", e.Run)
	case "traversal.progress":
		line = fmt.Sprintf("[visit %d] queue=%d found=%d", e.Visits, e.Queue, e.Found)
	case "traversal.retry":
		line = fmt.Sprintf("retrying browse: %s", e.Message)
	case "traversal.truncated":
		line = fmt.Sprintf("WARNING: traversal stopped at visit limit (%d); results may be incomplete", e.Visits)
	case "plan.built":
		line = fmt.Sprintf("Plan: %d folders, %d tags (found %d)", e.Folders, e.Tags, e.Found)
	case "commit.batch":
		line = fmt.Sprintf("Committed batch %d/%d (%d created)", e.Batch, e.Batches, e.Created)
	case "run.finished":
		line = fmt.Sprintf("Run %s finished: found=%d created=%d folders=%d errors=%d",
			e.Run, e.Found, e.Created, e.Folders, e.Errors)
	default:
		if e.Message == "" {
			return nil
		}
		line = e.Message
	}
	if _, err := fmt.Fprintln(s.writer, line); err != nil {
		return err
	}
	return flushIfPossible(s.writer)
}

func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == "json" {
		encoder := json.NewEncoder(s.writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(s.records); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	}
	return nil
}
