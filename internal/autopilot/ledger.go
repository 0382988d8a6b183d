package autopilot

import "sync"

// Ledger is the single source of truth for "already answered" comment IDs.
// Every reply path, automatic or manual, goes through the same instance, so
// Auto-Pilot never re-answers a comment a human just handled. It lives for
// the process only; a restart resets it, which keeps the at-most-once
// guarantee scoped to one session.
type Ledger struct {
	mu   sync.RWMutex
	ids  map[string]struct{}
	subs []func(commentID string)
}

func NewLedger() *Ledger {
	return &Ledger{ids: make(map[string]struct{})}
}

func (l *Ledger) Has(commentID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.ids[commentID]
	return ok
}

// MarkReplied records the comment as answered. Marking twice is a no-op and
// does not notify subscribers again.
func (l *Ledger) MarkReplied(commentID string) {
	l.mu.Lock()
	if _, ok := l.ids[commentID]; ok {
		l.mu.Unlock()
		return
	}
	l.ids[commentID] = struct{}{}
	subs := append([]func(string){}, l.subs...)
	l.mu.Unlock()

	for _, fn := range subs {
		fn(commentID)
	}
}

// Subscribe registers a callback invoked once per newly marked comment ID.
// Used by the presentation layer to track replied state without keeping its
// own copy of the set.
func (l *Ledger) Subscribe(fn func(commentID string)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subs = append(l.subs, fn)
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.ids)
}

func (l *Ledger) Snapshot() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, 0, len(l.ids))
	for id := range l.ids {
		out = append(out, id)
	}
	return out
}
