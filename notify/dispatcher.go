package notify

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Abhijadhav03/momentum/domain"
)

const defaultPublishTimeout = 30 * time.Second

// Dispatcher hands events to a Publisher from a single background worker.
// Events are delivered in the order Publish was called and Publish never
// blocks on the underlying publisher.
type Dispatcher struct {
	pub     Publisher
	logger  *log.Logger
	timeout time.Duration

	mu      sync.Mutex
	queue   []domain.BoardEvent
	closed  bool
	sending sync.Mutex

	wake     chan struct{}
	flushReq chan chan struct{}
	stop     chan struct{}
	wg       sync.WaitGroup
}

// NewDispatcher starts the background worker. A non-positive timeout selects
// the default per-event timeout.
func NewDispatcher(pub Publisher, logger *log.Logger, timeout time.Duration) *Dispatcher {
	if pub == nil {
		pub = Nop{}
	}
	if logger == nil {
		panic("notify.NewDispatcher: logger is nil")
	}
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	d := &Dispatcher{
		pub:      pub,
		logger:   logger,
		timeout:  timeout,
		wake:     make(chan struct{}, 1),
		flushReq: make(chan chan struct{}),
		stop:     make(chan struct{}),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Publish queues ev and returns immediately. After Close it delivers inline.
func (d *Dispatcher) Publish(_ context.Context, ev domain.BoardEvent) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		// The final drain must land first.
		d.wg.Wait()
		d.send(ev)
		return nil
	}
	d.queue = append(d.queue, ev)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
	return nil
}

// Flush blocks until every event queued before the call is delivered.
func (d *Dispatcher) Flush(ctx context.Context) error {
	done := make(chan struct{})
	select {
	case d.flushReq <- done:
	case <-d.stop:
		d.wg.Wait()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close delivers queued events and stops the worker.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()
	close(d.stop)
	d.wg.Wait()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case <-d.wake:
			d.drain()
		case done := <-d.flushReq:
			d.drain()
			close(done)
		case <-d.stop:
			d.drain()
			return
		}
	}
}

func (d *Dispatcher) drain() {
	d.mu.Lock()
	queue := d.queue
	d.queue = nil
	d.mu.Unlock()

	for _, ev := range queue {
		d.send(ev)
	}
}

// send delivers one event at a time.
func (d *Dispatcher) send(ev domain.BoardEvent) {
	d.sending.Lock()
	defer d.sending.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := d.pub.Publish(ctx, ev); err != nil {
		d.logger.WithError(err).WithField("type", ev.Type).Error("unable to publish board event")
	}
}
