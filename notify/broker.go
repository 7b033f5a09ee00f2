package notify

import (
	"context"
	"sync"

	"github.com/Abhijadhav03/momentum/domain"
)

const defaultSubscriberBuffer = 16

// Broker fans events out to in-process subscribers such as SSE streams.
// Slow subscribers miss events instead of blocking the publisher.
type Broker struct {
	buffer int

	mu   sync.Mutex
	subs map[chan domain.BoardEvent]struct{}
}

func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	return &Broker{buffer: buffer, subs: make(map[chan domain.BoardEvent]struct{})}
}

func (b *Broker) Subscribe() chan domain.BoardEvent {
	ch := make(chan domain.BoardEvent, b.buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(ch chan domain.BoardEvent) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

// Subscribers reports the number of live subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broker) Publish(_ context.Context, ev domain.BoardEvent) error {
	b.mu.Lock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	b.mu.Unlock()
	return nil
}
