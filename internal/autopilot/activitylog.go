package autopilot

import (
	"fmt"
	"sync"
	"time"

	"pagepilot/internal/core/domain"

	"github.com/google/uuid"
)

// DefaultLogCapacity bounds the activity log to the 50 most recent entries.
const DefaultLogCapacity = 50

// ActivityLog is a bounded, time-ordered append-only log of scanner events.
// It is the one channel through which automatic-path outcomes reach the
// operator. Oldest entries are evicted first.
type ActivityLog struct {
	mu       sync.Mutex
	capacity int
	entries  []domain.LogEntry
	subs     []func(domain.LogEntry)
}

func NewActivityLog(capacity int) *ActivityLog {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &ActivityLog{capacity: capacity}
}

func (a *ActivityLog) Info(format string, args ...any) domain.LogEntry {
	return a.append(domain.LogInfo, format, args...)
}

func (a *ActivityLog) Action(format string, args ...any) domain.LogEntry {
	return a.append(domain.LogAction, format, args...)
}

func (a *ActivityLog) Success(format string, args ...any) domain.LogEntry {
	return a.append(domain.LogSuccess, format, args...)
}

func (a *ActivityLog) Error(format string, args ...any) domain.LogEntry {
	return a.append(domain.LogError, format, args...)
}

func (a *ActivityLog) append(kind domain.LogKind, format string, args ...any) domain.LogEntry {
	entry := domain.LogEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Kind:      kind,
		Message:   fmt.Sprintf(format, args...),
	}

	a.mu.Lock()
	a.entries = append(a.entries, entry)
	if overflow := len(a.entries) - a.capacity; overflow > 0 {
		a.entries = append([]domain.LogEntry(nil), a.entries[overflow:]...)
	}
	subs := append([]func(domain.LogEntry){}, a.subs...)
	a.mu.Unlock()

	for _, fn := range subs {
		fn(entry)
	}
	return entry
}

// Entries returns a copy of the current log, oldest first.
func (a *ActivityLog) Entries() []domain.LogEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.LogEntry(nil), a.entries...)
}

// Subscribe registers a callback invoked for every appended entry.
func (a *ActivityLog) Subscribe(fn func(domain.LogEntry)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.subs = append(a.subs, fn)
}
