package domain

import "time"

// RunReport keeps only the first errors verbatim; the Errors counter is
// never capped.
const MaxErrorDetails = 10

type ItemError struct {
	Item    string `json:"item"`
	Message string `json:"message"`
}

// RunReport is the aggregate outcome of one orchestrator invocation.
// Transient: returned to the caller and logged, never persisted.
type RunReport struct {
	Source       string      `json:"source"`
	StartedAt    time.Time   `json:"started_at"`
	CompletedAt  time.Time   `json:"completed_at"`
	Total        int         `json:"total"`
	New          int         `json:"new"`
	Updated      int         `json:"updated"`
	Errors       int         `json:"errors"`
	ErrorDetails []ItemError `json:"error_details,omitempty"`
	Failed       bool        `json:"failed"`
}

func NewRunReport(source string) *RunReport {
	return &RunReport{
		Source:    source,
		StartedAt: time.Now().UTC(),
	}
}

// AddError records one per-item failure.
func (r *RunReport) AddError(item, message string) {
	r.Errors++
	if len(r.ErrorDetails) < MaxErrorDetails {
		r.ErrorDetails = append(r.ErrorDetails, ItemError{Item: item, Message: message})
	}
}

// Success reports a clean run: completed, not failed, zero item errors.
func (r *RunReport) Success() bool {
	if r == nil {
		return false
	}
	return !r.Failed && r.Errors == 0
}

func (r *RunReport) Duration() time.Duration {
	if r == nil || r.CompletedAt.IsZero() {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// Processed is the number of items handled so far, successes and failures.
func (r *RunReport) Processed() int {
	if r == nil {
		return 0
	}
	return r.New + r.Updated + r.Errors
}
