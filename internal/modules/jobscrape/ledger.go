package jobscrape

import (
	"context"
	"sync"
	"time"
)

// State of one scrape process in the ledger.
type State string

const (
	StateTriggered State = "triggered"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Process is the ledger's record of one scrape run.
type Process struct {
	ProcessID string    `json:"process_id"`
	JobID     string    `json:"job_id"`
	JobURL    string    `json:"job_url,omitempty"`
	State     State     `json:"state"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ledger tracks scrape processes by process id. All transitions are
// idempotent: reapplying a state an event already established leaves the
// ledger unchanged, which is what at-least-once delivery requires.
type Ledger struct {
	mu        sync.RWMutex
	processes map[string]Process
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{processes: make(map[string]Process)}
}

// MarkTriggered records the start of a process. A process already in a
// terminal state keeps it: a late or duplicated trigger event must not
// resurrect a finished run.
func (l *Ledger) MarkTriggered(processID, jobID, jobURL string, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.processes[processID]; ok && existing.State != StateTriggered {
		return
	}
	l.processes[processID] = Process{
		ProcessID: processID,
		JobID:     jobID,
		JobURL:    jobURL,
		State:     StateTriggered,
		UpdatedAt: at,
	}
}

// MarkSucceeded transitions a process to succeeded.
func (l *Ledger) MarkSucceeded(processID, jobID, jobURL string, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.processes[processID]
	if !ok {
		// Success for a trigger this instance never saw; record it anyway
		// so the ledger converges regardless of event interleaving.
		p = Process{ProcessID: processID, JobID: jobID, JobURL: jobURL}
	}
	if p.State == StateSucceeded {
		return
	}
	p.State = StateSucceeded
	p.Error = ""
	p.UpdatedAt = at
	l.processes[processID] = p
}

// MarkFailed transitions a process to failed with its error message.
func (l *Ledger) MarkFailed(processID, jobID, errMsg string, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.processes[processID]
	if !ok {
		p = Process{ProcessID: processID, JobID: jobID}
	}
	if p.State == StateFailed && p.Error == errMsg {
		return
	}
	p.State = StateFailed
	p.Error = errMsg
	p.UpdatedAt = at
	l.processes[processID] = p
}

// Get returns the recorded process, if any.
func (l *Ledger) Get(processID string) (Process, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.processes[processID]
	return p, ok
}

// Len returns the number of tracked processes.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.processes)
}

// Name identifies the ledger to the maintenance aggregator.
func (l *Ledger) Name() string { return "job-scrapes" }

// ClearData drops every tracked process. Clearing an empty ledger is a
// no-op success.
func (l *Ledger) ClearData(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.processes = make(map[string]Process)
	return nil
}
