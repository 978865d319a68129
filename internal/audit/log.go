package audit

import (
	"sync"
	"time"
)

// Log captures structured audit entries for display, newest first. It is
// append-only, unbounded, and session-scoped: acceptable because nothing here
// outlives the process.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
	actorFn func() string
	now     func() time.Time
}

// NewLog builds a log whose actor label is derived per entry via actorFn
// (admin panel mode versus the onboarding agent). A nil actorFn pins the
// agent label.
func NewLog(actorFn func() string) *Log {
	if actorFn == nil {
		actorFn = func() string { return ActorAgent }
	}
	return &Log{actorFn: actorFn, now: time.Now}
}

// Record prepends one entry.
func (l *Log) Record(action, target string, status EntryStatus) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := Entry{
		Timestamp: l.now(),
		Actor:     l.actorFn(),
		Action:    action,
		Target:    target,
		Status:    status,
	}
	l.entries = append([]Entry{entry}, l.entries...)
}

// Entries returns a copy of the log, newest first.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Entry{}, l.entries...)
}

// Len reports the number of recorded entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
