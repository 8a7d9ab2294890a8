// Package exportdiag keeps a short in-process history of solve requests so
// operators can pull the iteration-by-iteration detail of a recent run
// without the service persisting anything to disk.
package exportdiag

import (
	"sync"

	"github.com/fieldopt/fieldopt-server/pkg/fieldopt"
)

// Report is one recorded solve, keyed by RequestID for later lookup.
type Report struct {
	RequestID  string
	Result     string
	DurationMs float64
	Iterations []fieldopt.IterationDetail
}

// capacity bounds memory use; this service keeps no history beyond the
// process lifetime (no Non-goal-violating persistence).
const capacity = 64

// Ring is a fixed-size, concurrency-safe history of the most recent Reports.
type Ring struct {
	mu      sync.Mutex
	entries map[string]Report
	order   []string // insertion order, oldest first
}

func NewRing() *Ring {
	return &Ring{entries: make(map[string]Report, capacity)}
}

// Record stores r, evicting the oldest entry if the ring is full.
func (ring *Ring) Record(r Report) {
	ring.mu.Lock()
	defer ring.mu.Unlock()

	if _, exists := ring.entries[r.RequestID]; !exists {
		if len(ring.order) >= capacity {
			oldest := ring.order[0]
			ring.order = ring.order[1:]
			delete(ring.entries, oldest)
		}
		ring.order = append(ring.order, r.RequestID)
	}
	ring.entries[r.RequestID] = r
}

// Get returns the report for id, if still retained.
func (ring *Ring) Get(id string) (Report, bool) {
	ring.mu.Lock()
	defer ring.mu.Unlock()

	r, ok := ring.entries[id]
	return r, ok
}
