package storage

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const defaultSaveTimeout = 10 * time.Second

// Saver writes snapshots in the background. Only the latest snapshot per key
// is kept while a write is pending, so the last write always wins.
type Saver struct {
	kv      KV
	logger  *log.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending map[string]any
	order   []string
	closed  bool
	writing sync.Mutex

	wake     chan struct{}
	flushReq chan chan struct{}
	stop     chan struct{}
	wg       sync.WaitGroup
}

// NewSaver starts the background writer. A non-positive timeout selects the
// default per-write timeout.
func NewSaver(kv KV, logger *log.Logger, timeout time.Duration) *Saver {
	if kv == nil {
		panic("storage.NewSaver: kv is nil")
	}
	if logger == nil {
		panic("storage.NewSaver: logger is nil")
	}
	if timeout <= 0 {
		timeout = defaultSaveTimeout
	}
	s := &Saver{
		kv:       kv,
		logger:   logger,
		timeout:  timeout,
		pending:  make(map[string]any),
		wake:     make(chan struct{}, 1),
		flushReq: make(chan chan struct{}),
		stop:     make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// Save schedules state to be written under key and returns immediately.
// After Close it writes inline.
func (s *Saver) Save(key string, state any) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		// Older pending snapshots from the final drain must land first.
		s.wg.Wait()
		s.write(key, state)
		return
	}
	if _, ok := s.pending[key]; !ok {
		s.order = append(s.order, key)
	}
	s.pending[key] = state
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until every snapshot scheduled before the call is written.
func (s *Saver) Flush(ctx context.Context) error {
	done := make(chan struct{})
	select {
	case s.flushReq <- done:
	case <-s.stop:
		// Close drains everything before the writer exits.
		s.wg.Wait()
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

// Close writes pending snapshots and stops the background writer.
func (s *Saver) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	close(s.stop)
	s.wg.Wait()
}

func (s *Saver) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.wake:
			s.drain()
		case done := <-s.flushReq:
			s.drain()
			close(done)
		case <-s.stop:
			s.drain()
			return
		}
	}
}

func (s *Saver) drain() {
	s.mu.Lock()
	pending, order := s.pending, s.order
	s.pending = make(map[string]any)
	s.order = nil
	s.mu.Unlock()

	for _, key := range order {
		s.write(key, pending[key])
	}
}

func (s *Saver) write(key string, state any) {
	s.writing.Lock()
	defer s.writing.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := Save(ctx, s.kv, key, state); err != nil {
		s.logger.WithError(err).WithField("key", key).Error("snapshot save failed")
		return
	}
	s.logger.WithField("key", key).Debug("snapshot saved")
}
