package pipeline

import (
	"fmt"
	"sort"
)

// Status is the typed outcome of seeding one record.
type Status int

const (
	// StatusCreated means the record was inserted into the platform.
	StatusCreated Status = iota
	// StatusSkipped means a record with the same natural key already existed.
	StatusSkipped
	// StatusFailed means the create call errored; the batch continues.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome for a single record, identified by its natural key.
type Result struct {
	Key    string
	Status Status
	Err    error
}

// Summary aggregates per-record results for one seeding run. Callers report
// from the summary, never by scraping logs.
type Summary struct {
	Entity  string
	Total   int
	Created int
	Skipped int
	Failed  int

	// Failures holds the failed results, sorted by key, for reporting.
	Failures []Result
}

func newSummary(entity string, results []Result) Summary {
	s := Summary{Entity: entity, Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusCreated:
			s.Created++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
			s.Failures = append(s.Failures, r)
		}
	}
	sort.Slice(s.Failures, func(i, j int) bool { return s.Failures[i].Key < s.Failures[j].Key })
	return s
}

// String renders the run outcome, e.g.
// "Successfully added 3 out of 5 agents (1 skipped, 1 failed)".
func (s Summary) String() string {
	line := fmt.Sprintf("Successfully added %d out of %d %s", s.Created, s.Total, s.Entity)
	if s.Skipped > 0 || s.Failed > 0 {
		line += fmt.Sprintf(" (%d skipped, %d failed)", s.Skipped, s.Failed)
	}
	return line
}

// Ok reports whether every record was created or skipped.
func (s Summary) Ok() bool {
	return s.Failed == 0
}
