package monitor

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"
)

const maxLastErrors = 20

type ErrorEntry struct {
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
	At        time.Time `json:"at"`
}

type Summary struct {
	TotalErrors int            `json:"total_errors"`
	Counts      map[string]int `json:"error_counts"`
	LastErrors  []ErrorEntry   `json:"last_errors"`
	Timestamp   time.Time      `json:"timestamp"`
}

// Tracker counts request failures by kind for the monitoring surface. Safe
// for concurrent use. With a persist path set, each update writes a JSON
// snapshot so counts survive restarts; persistence failures are logged and
// otherwise ignored.
type Tracker struct {
	mu          sync.Mutex
	counts      map[string]int
	last        []ErrorEntry
	persistPath string
}

func NewTracker(persistPath string) *Tracker {
	t := &Tracker{counts: make(map[string]int), persistPath: persistPath}
	t.load()
	return t
}

func (t *Tracker) Record(kind, message, requestID string) {
	t.mu.Lock()
	t.counts[kind]++
	t.last = append(t.last, ErrorEntry{Kind: kind, Message: message, RequestID: requestID, At: time.Now().UTC()})
	if len(t.last) > maxLastErrors {
		t.last = t.last[len(t.last)-maxLastErrors:]
	}
	snap := t.snapshotLocked()
	t.mu.Unlock()

	if t.persistPath != "" {
		t.persist(snap)
	}
}

func (t *Tracker) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() Summary {
	counts := make(map[string]int, len(t.counts))
	total := 0
	for k, v := range t.counts {
		counts[k] = v
		total += v
	}
	return Summary{
		TotalErrors: total,
		Counts:      counts,
		LastErrors:  append([]ErrorEntry(nil), t.last...),
		Timestamp:   time.Now().UTC(),
	}
}

func (t *Tracker) persist(s Summary) {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(t.persistPath, b, 0o644); err != nil {
		slog.Warn("error metrics persist", "err", err)
	}
}

func (t *Tracker) load() {
	if t.persistPath == "" {
		return
	}
	b, err := os.ReadFile(t.persistPath)
	if err != nil {
		return
	}
	var s Summary
	if err := json.Unmarshal(b, &s); err != nil {
		return
	}
	for k, v := range s.Counts {
		t.counts[k] = v
	}
	t.last = s.LastErrors
}
