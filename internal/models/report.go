package models

import "time"

// SourceReport is the per-source tally for a single ingestion run.
type SourceReport struct {
	Source    string        `json:"source"`
	Fetched   int           `json:"fetched"`
	Saved     int           `json:"saved"`
	Duplicate int           `json:"duplicate"`
	Dropped   int           `json:"dropped"`
	Failed    bool          `json:"failed"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// RunReport aggregates every source's outcome for one ingestion run. It is
// transient state: it exists for reporting only and is never persisted.
type RunReport struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Sources    []SourceReport `json:"sources"`
}

// Totals sums the per-source tallies across the run.
func (r *RunReport) Totals() SourceReport {
	var total SourceReport
	total.Source = "total"
	for i := range r.Sources {
		s := &r.Sources[i]
		total.Fetched += s.Fetched
		total.Saved += s.Saved
		total.Duplicate += s.Duplicate
		total.Dropped += s.Dropped
		if s.Failed {
			total.Failed = true
		}
	}
	return total
}

// FailedSources returns the names of sources that failed during the run.
func (r *RunReport) FailedSources() []string {
	var failed []string
	for i := range r.Sources {
		if r.Sources[i].Failed {
			failed = append(failed, r.Sources[i].Source)
		}
	}
	return failed
}
