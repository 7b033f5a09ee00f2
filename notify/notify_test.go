package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/Abhijadhav03/momentum/domain"
)

func sampleEvent() domain.BoardEvent {
	return domain.BoardEvent{Type: domain.TaskMoved, TaskID: "t1", Time: 42}
}

func TestBrokerFanOut(t *testing.T) {
	b := NewBroker(1)
	a := b.Subscribe()
	c := b.Subscribe()
	if b.Subscribers() != 2 {
		t.Fatalf("expected 2 subscribers, got %d", b.Subscribers())
	}

	if err := b.Publish(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	for _, ch := range []chan domain.BoardEvent{a, c} {
		select {
		case ev := <-ch:
			if ev.TaskID != "t1" {
				t.Fatalf("unexpected event %#v", ev)
			}
		default:
			t.Fatalf("subscriber did not receive event")
		}
	}

	b.Unsubscribe(c)
	if b.Subscribers() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", b.Subscribers())
	}
}

func TestBrokerDropsForSlowSubscribers(t *testing.T) {
	b := NewBroker(1)
	ch := b.Subscribe()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			_ = b.Publish(context.Background(), sampleEvent())
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("publish blocked on a full subscriber")
	}
	if len(ch) != 1 {
		t.Fatalf("expected buffered event, got %d", len(ch))
	}
}

func TestRedisPublisher(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	ctx := context.Background()
	sub := rc.Subscribe(ctx, "board-events")
	t.Cleanup(func() { _ = sub.Close() })
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := NewRedisPublisher(rc, "").Publish(ctx, sampleEvent()); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case msg := <-sub.Channel():
		var ev domain.BoardEvent
		if err := sonic.UnmarshalString(msg.Payload, &ev); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if ev.Type != domain.TaskMoved || ev.TaskID != "t1" {
			t.Fatalf("unexpected event %#v", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for message")
	}
}

type fakeQueue struct {
	messages []string
	err      error
}

func (f *fakeQueue) EnqueueMessage(ctx context.Context, content string, o *azqueue.EnqueueMessageOptions) (azqueue.EnqueueMessagesResponse, error) {
	if f.err != nil {
		return azqueue.EnqueueMessagesResponse{}, f.err
	}
	f.messages = append(f.messages, content)
	return azqueue.EnqueueMessagesResponse{}, nil
}

func TestQueuePublisher(t *testing.T) {
	q := &fakeQueue{}
	p := &QueuePublisher{queue: q}
	if err := p.Publish(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(q.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(q.messages))
	}
	var ev domain.BoardEvent
	if err := sonic.UnmarshalString(q.messages[0], &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Time != 42 {
		t.Fatalf("unexpected event %#v", ev)
	}

	q.err = errors.New("queue down")
	if err := p.Publish(context.Background(), sampleEvent()); !errors.Is(err, q.err) {
		t.Fatalf("expected wrapped queue error, got %v", err)
	}
}

type failingPublisher struct{ err error }

func (f failingPublisher) Publish(context.Context, domain.BoardEvent) error { return f.err }

func TestMultiPublishesToAll(t *testing.T) {
	b := NewBroker(4)
	ch := b.Subscribe()
	boom := errors.New("boom")

	err := Multi{failingPublisher{boom}, nil, b, Nop{}}.Publish(context.Background(), sampleEvent())
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if len(ch) != 1 {
		t.Fatalf("later publishers must still run")
	}
}
