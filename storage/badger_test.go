package storage

import (
	"context"
	"errors"
	"testing"
)

func TestBadgerRoundTrip(t *testing.T) {
	db, err := OpenBadger(BadgerConfig{InMemory: true})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	ctx := context.Background()

	if _, err := db.Get(ctx, ActivityKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	want := sampleState{Tasks: []string{"x"}}
	if err := Save(ctx, db, ActivityKey, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	var got sampleState
	if err := Load(ctx, db, ActivityKey, &got); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Tasks) != 1 || got.Tasks[0] != "x" {
		t.Fatalf("unexpected state %#v", got)
	}
}

func TestBadgerPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db, err := OpenBadger(BadgerConfig{Path: dir, SyncWrites: true})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.Set(ctx, TasksKey, []byte("persisted")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := OpenBadger(BadgerConfig{Path: dir})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	got, err := reopened.Get(ctx, TasksKey)
	if err != nil || string(got) != "persisted" {
		t.Fatalf("unexpected value %q err=%v", got, err)
	}
}

func TestOpenBadgerRequiresPath(t *testing.T) {
	if _, err := OpenBadger(BadgerConfig{}); err == nil {
		t.Fatalf("expected error without path")
	}
}
