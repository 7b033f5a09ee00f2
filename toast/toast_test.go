package toast

import (
	"testing"
	"time"
)

func TestShowQueuesOldestFirst(t *testing.T) {
	tt := New(time.Minute)
	t.Cleanup(tt.Close)

	first := tt.Show("Task created", "", VariantSuccess)
	second := tt.Show("Board reset", "", VariantWarning)
	if first == second {
		t.Fatalf("expected unique ids, got %s twice", first)
	}

	active := tt.Active()
	if len(active) != 2 {
		t.Fatalf("expected 2 toasts, got %d", len(active))
	}
	if active[0].ID != first || active[1].ID != second {
		t.Fatalf("unexpected order: %#v", active)
	}
	if active[1].Variant != VariantWarning {
		t.Fatalf("unexpected variant %q", active[1].Variant)
	}
}

func TestShowUnknownVariantFallsBack(t *testing.T) {
	tt := New(time.Minute)
	t.Cleanup(tt.Close)

	tt.Show("Hello", "", Variant("loud"))
	if got := tt.Active()[0].Variant; got != VariantDefault {
		t.Fatalf("expected default variant, got %q", got)
	}
}

func TestDismiss(t *testing.T) {
	tt := New(time.Minute)
	t.Cleanup(tt.Close)

	id := tt.Show("Task deleted", "", VariantSuccess)
	if !tt.Dismiss(id) {
		t.Fatalf("expected dismiss to find toast")
	}
	if tt.Dismiss(id) {
		t.Fatalf("second dismiss should be a no-op")
	}
	if len(tt.Active()) != 0 {
		t.Fatalf("expected no active toasts")
	}
}

func TestAutoDismiss(t *testing.T) {
	tt := New(20 * time.Millisecond)
	t.Cleanup(tt.Close)

	tt.Show("Welcome back!", "Successfully logged in to Momentum", VariantSuccess)
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(tt.Active()) == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("toast was not dismissed after its TTL")
}

func TestNextTimestampMonotonic(t *testing.T) {
	prev := nextTimestamp()
	for i := 0; i < 1000; i++ {
		next := nextTimestamp()
		if next <= prev {
			t.Fatalf("timestamp went backwards: %d <= %d", next, prev)
		}
		prev = next
	}
}
