package activity

import (
	"fmt"
	"testing"

	"github.com/Abhijadhav03/momentum/domain"
)

func TestAddPrependsNewestFirst(t *testing.T) {
	l := NewLog()
	l.Add(domain.ActionCreated, "t1", "First", "Created")
	l.Add(domain.ActionMoved, "t1", "First", "to doing")

	entries := l.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Action != domain.ActionMoved || entries[0].Details != "to doing" {
		t.Fatalf("unexpected newest entry %#v", entries[0])
	}
	if entries[0].ID == "" || entries[0].ID == entries[1].ID {
		t.Fatalf("expected distinct ids")
	}
	if entries[0].Timestamp.IsZero() {
		t.Fatalf("expected timestamp")
	}
}

func TestLogIsCappedAtTwenty(t *testing.T) {
	l := NewLog()
	for i := 0; i < MaxEntries+1; i++ {
		l.Add(domain.ActionUpdated, fmt.Sprintf("t%d", i), "task", "Updated")
		if l.Len() > MaxEntries {
			t.Fatalf("log grew past %d entries", MaxEntries)
		}
	}

	entries := l.Entries()
	if len(entries) != MaxEntries {
		t.Fatalf("expected %d entries, got %d", MaxEntries, len(entries))
	}
	if entries[0].TaskID != "t20" {
		t.Fatalf("expected newest first, got %q", entries[0].TaskID)
	}
	for _, e := range entries {
		if e.TaskID == "t0" {
			t.Fatalf("oldest entry was not evicted")
		}
	}
	if entries[MaxEntries-1].TaskID != "t1" {
		t.Fatalf("expected t1 to be the oldest kept, got %q", entries[MaxEntries-1].TaskID)
	}
}

func TestClear(t *testing.T) {
	l := NewLog()
	l.Add(domain.ActionDeleted, "t1", "gone", "Deleted")
	l.Clear()
	if l.Len() != 0 || l.Entries() == nil {
		t.Fatalf("expected empty non-nil log")
	}
}

func TestEntriesIsACopy(t *testing.T) {
	l := NewLog()
	l.Add(domain.ActionCreated, "t1", "a", "Created")
	entries := l.Entries()
	entries[0].TaskTitle = "mutated"
	if l.Entries()[0].TaskTitle != "a" {
		t.Fatalf("entries leaked internal state")
	}
}

func TestRestoreTruncates(t *testing.T) {
	logs := make([]domain.ActivityLogEntry, 25)
	for i := range logs {
		logs[i] = domain.ActivityLogEntry{ID: fmt.Sprint(i)}
	}
	l := NewLog()
	l.Restore(Snapshot{Logs: logs})
	if l.Len() != MaxEntries {
		t.Fatalf("expected %d entries, got %d", MaxEntries, l.Len())
	}
	if l.Entries()[0].ID != "0" {
		t.Fatalf("restore should keep the newest entries")
	}
}
