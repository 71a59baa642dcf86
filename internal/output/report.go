package output

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// ReportSink collects item records and run summaries and writes a Markdown
// report on Close.
type ReportSink struct {
	path    string
	file    *os.File
	mu      sync.Mutex
	records []ItemRecord
	runs    []Event // run.finished events in arrival order
}

func NewReportSink(path string) (*ReportSink, error) {
	if path == "" {
		return nil, fmt.Errorf("report path required")
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}

	return &ReportSink{
		path: path,
		file: f,
	}, nil
}

func (s *ReportSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch t := v.(type) {
	case ItemRecord:
		s.records = append(s.records, t)
	case Event:
		if t.Type == "run.finished" {
			s.runs = append(s.runs, t)
		}
	}
	return nil
}

func (s *ReportSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Aggregate per-run status counts.
	type runStats struct {
		created, planned, skipped, failed int
	}
	perRun := make(map[string]*runStats)
	runOrder := make([]string, 0)
	statsFor := func(run string) *runStats {
		rs, ok := perRun[run]
		if !ok {
			rs = &runStats{}
			perRun[run] = rs
			runOrder = append(runOrder, run)
		}
		return rs
	}

	var failures []ItemRecord
	for _, r := range s.records {
		rs := statsFor(r.Run)
		switch r.Status {
		case StatusCreated:
			rs.created++
		case StatusPlanned:
			rs.planned++
		case StatusSkipped:
			rs.skipped++
		case StatusFailed:
			rs.failed++
			failures = append(failures, r)
		}
	}
	sort.Strings(runOrder)

	var b strings.Builder
	b.WriteString("# OPC Tag Import Report\n\n")

	b.WriteString("## Runs\n\n")
	if len(s.runs) == 0 && len(runOrder) == 0 {
		b.WriteString("No runs recorded.\n\n")
	} else {
		b.WriteString("| Root | Found | Created | Folders | Errors |\n")
		b.WriteString("|------|-------|---------|---------|--------|\n")
		for _, e := range s.runs {
			b.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d |\n",
				e.Run, e.Found, e.Created, e.Folders, e.Errors))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Entities\n\n")
	b.WriteString("| Root | Created | Planned | Skipped | Failed |\n")
	b.WriteString("|------|---------|---------|---------|--------|\n")
	for _, run := range runOrder {
		rs := perRun[run]
		b.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d |\n",
			run, rs.created, rs.planned, rs.skipped, rs.failed))
	}
	b.WriteString("\n")

	if len(failures) > 0 {
		b.WriteString("## Failures\n\n")
		for _, r := range failures {
			b.WriteString(fmt.Sprintf("- `%s` (%s): %s\n", r.Path, r.Kind, r.Message))
		}
		b.WriteString("\n")
	}

	if _, err := s.file.WriteString(b.String()); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}
