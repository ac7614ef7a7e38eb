// AngelaMos | 2026
// ringlog.go

package deeplink

import (
	"sync"
	"time"
)

type LogEntry struct {
	Time    time.Time `json:"time"`
	Event   string    `json:"event"`
	Payload string    `json:"payload,omitempty"`
}

// RingLog keeps the last N deep-link events for diagnostics. In-memory
// only; cleared on process restart.
type RingLog struct {
	mu       sync.Mutex
	entries  []LogEntry
	capacity int
	next     int
	full     bool
}

func NewRingLog(capacity int) *RingLog {
	if capacity <= 0 {
		capacity = 50
	}
	return &RingLog{
		entries:  make([]LogEntry, capacity),
		capacity: capacity,
	}
}

func (l *RingLog) Append(event, payload string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries[l.next] = LogEntry{
		Time:    time.Now(),
		Event:   event,
		Payload: payload,
	}
	l.next = (l.next + 1) % l.capacity
	if l.next == 0 {
		l.full = true
	}
}

// Entries returns a copy in chronological order.
func (l *RingLog) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.full {
		out := make([]LogEntry, l.next)
		copy(out, l.entries[:l.next])
		return out
	}

	out := make([]LogEntry, 0, l.capacity)
	out = append(out, l.entries[l.next:]...)
	out = append(out, l.entries[:l.next]...)
	return out
}

func (l *RingLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.full {
		return l.capacity
	}
	return l.next
}
