package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/Abhijadhav03/momentum/domain"
)

type recordingPublisher struct {
	mu    sync.Mutex
	block chan struct{}
	times []int64
}

func (r *recordingPublisher) Publish(_ context.Context, ev domain.BoardEvent) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.times = append(r.times, ev.Time)
	return nil
}

func (r *recordingPublisher) Times() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.times...)
}

func TestDispatcherPreservesOrder(t *testing.T) {
	pub := &recordingPublisher{block: make(chan struct{})}
	d := NewDispatcher(pub, log.New(), time.Second)
	t.Cleanup(d.Close)

	start := time.Now()
	for i := int64(1); i <= 50; i++ {
		if err := d.Publish(context.Background(), domain.BoardEvent{Type: domain.TaskMoved, Time: i}); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("publish blocked on a stalled publisher for %v", elapsed)
	}
	close(pub.block)
	if err := d.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	got := pub.Times()
	if len(got) != 50 {
		t.Fatalf("expected 50 deliveries, got %d", len(got))
	}
	for i, v := range got {
		if v != int64(i+1) {
			t.Fatalf("delivery %d out of order: %v", i, got)
		}
	}
}

func TestDispatcherLogsFailures(t *testing.T) {
	logger, hook := test.NewNullLogger()
	d := NewDispatcher(failingPublisher{errors.New("queue down")}, logger, time.Second)

	_ = d.Publish(context.Background(), sampleEvent())
	d.Close()

	entry := hook.LastEntry()
	if entry == nil || entry.Level != log.ErrorLevel || entry.Data["type"] != domain.TaskMoved {
		t.Fatalf("expected error log with event type, got %#v", entry)
	}
}

func TestDispatcherDeliversInlineAfterClose(t *testing.T) {
	pub := &recordingPublisher{}
	d := NewDispatcher(pub, log.New(), time.Second)
	_ = d.Publish(context.Background(), domain.BoardEvent{Time: 1})
	d.Close()
	d.Close()

	_ = d.Publish(context.Background(), domain.BoardEvent{Time: 2})
	if got := pub.Times(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("unexpected deliveries %v", got)
	}
	if err := d.Flush(context.Background()); err != nil {
		t.Fatalf("flush after close: %v", err)
	}
}

func TestDispatcherNilPublisher(t *testing.T) {
	d := NewDispatcher(nil, log.New(), 0)
	t.Cleanup(d.Close)
	if err := d.Publish(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := d.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
}
