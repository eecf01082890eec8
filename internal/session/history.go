package session

import (
	"sync"

	"github.com/cognitio-libera/cognitio/internal/record"
)

// History is the append-only list of attempts in a session. It is safe for
// concurrent use.
type History struct {
	mu      sync.Mutex
	entries []record.HistoryEntry
}

// Append adds an entry at the end.
func (h *History) Append(e record.HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, e)
}

// Entries returns a copy of all entries, oldest first.
func (h *History) Entries() []record.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]record.HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// RecentTopics returns the titles of all entries in the order they were
// answered.
func (h *History) RecentTopics() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.Title
	}
	return out
}

// ModeStats counts attempts for one mode.
type ModeStats struct {
	Attempted int
	Correct   int
}

// Stats summarizes a history.
type Stats struct {
	Attempted int
	Correct   int
	ByMode    map[record.Mode]ModeStats
}

// Accuracy returns Correct / Attempted, or 0 for an empty history.
func (s Stats) Accuracy() float64 {
	if s.Attempted == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Attempted)
}

// Stats counts attempted and correct entries overall and per mode.
func (h *History) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	st := Stats{ByMode: make(map[record.Mode]ModeStats)}
	for _, e := range h.entries {
		ms := st.ByMode[e.Mode]
		ms.Attempted++
		st.Attempted++
		if e.Correct {
			ms.Correct++
			st.Correct++
		}
		st.ByMode[e.Mode] = ms
	}
	return st
}
