// Package delivery records the outcome of sending finalized records to the
// append store.
package delivery

import (
	"sort"
	"sync"
	"time"

	"github.com/okian/roster/internal/domain/dedupe"
)

// Status is the classified outcome of one delivery.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusDuplicate Status = "duplicate"
	StatusRejected  Status = "rejected"
	StatusFailed    Status = "failed"
)

// Outcome is the latest known delivery state of one record.
type Outcome struct {
	ID     string    `json:"id"`
	JobID  string    `json:"jobId,omitempty"`
	Status Status    `json:"status"`
	Error  string    `json:"error,omitempty"`
	At     time.Time `json:"at"`
}

// Ledger keeps the latest outcome per normalized id.
type Ledger struct {
	mu       sync.RWMutex
	outcomes map[string]Outcome
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{outcomes: make(map[string]Outcome)}
}

// Record stores o, replacing any earlier outcome for the same id.
func (l *Ledger) Record(o Outcome) {
	o.ID = dedupe.Normalize(o.ID)
	if o.At.IsZero() {
		o.At = time.Now()
	}
	l.mu.Lock()
	l.outcomes[o.ID] = o
	l.mu.Unlock()
}

// Get returns the outcome for id, if any.
func (l *Ledger) Get(id string) (Outcome, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	o, ok := l.outcomes[dedupe.Normalize(id)]
	return o, ok
}

// Snapshot returns all outcomes ordered by time, then id.
func (l *Ledger) Snapshot() []Outcome {
	l.mu.RLock()
	out := make([]Outcome, 0, len(l.outcomes))
	for _, o := range l.outcomes {
		out = append(out, o)
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].At.Equal(out[j].At) {
			return out[i].At.Before(out[j].At)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Counts returns the number of outcomes per status.
func (l *Ledger) Counts() map[Status]int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	counts := make(map[Status]int)
	for _, o := range l.outcomes {
		counts[o.Status]++
	}
	return counts
}
