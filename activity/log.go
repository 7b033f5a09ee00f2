// Package activity keeps the rolling log of recent board changes.
package activity

import (
	"time"

	"github.com/google/uuid"

	"github.com/Abhijadhav03/momentum/domain"
)

// MaxEntries is the number of entries kept; older ones are evicted.
const MaxEntries = 20

// Snapshot is the persisted form of the log.
type Snapshot struct {
	Logs []domain.ActivityLogEntry `json:"logs"`
}

// Log is a bounded, newest-first list of activity entries. It is not safe
// for concurrent use.
type Log struct {
	entries []domain.ActivityLogEntry
	newID   func() string
	now     func() time.Time
}

func NewLog() *Log {
	return &Log{
		entries: []domain.ActivityLogEntry{},
		newID:   uuid.NewString,
		now:     time.Now,
	}
}

// Add prepends an entry and truncates the log to MaxEntries.
func (l *Log) Add(action domain.ActivityAction, taskID, taskTitle, details string) domain.ActivityLogEntry {
	e := domain.ActivityLogEntry{
		ID:        l.newID(),
		Timestamp: l.now().UTC(),
		TaskID:    taskID,
		TaskTitle: taskTitle,
		Action:    action,
		Details:   details,
	}
	n := len(l.entries) + 1
	if n > MaxEntries {
		n = MaxEntries
	}
	next := make([]domain.ActivityLogEntry, 0, n)
	next = append(next, e)
	next = append(next, l.entries[:n-1]...)
	l.entries = next
	return e
}

func (l *Log) Clear() { l.entries = []domain.ActivityLogEntry{} }

// Entries returns a copy of the log, newest first.
func (l *Log) Entries() []domain.ActivityLogEntry {
	return append([]domain.ActivityLogEntry{}, l.entries...)
}

func (l *Log) Len() int { return len(l.entries) }

func (l *Log) Snapshot() Snapshot { return Snapshot{Logs: l.Entries()} }

// Restore replaces the log, keeping at most MaxEntries of the given entries.
func (l *Log) Restore(s Snapshot) {
	logs := s.Logs
	if len(logs) > MaxEntries {
		logs = logs[:MaxEntries]
	}
	l.entries = append([]domain.ActivityLogEntry{}, logs...)
}
