// Package toast keeps the queue of transient notifications shown to the user.
package toast

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultTTL is how long a toast stays visible.
const DefaultTTL = 3 * time.Second

type Variant string

const (
	VariantDefault Variant = "default"
	VariantSuccess Variant = "success"
	VariantError   Variant = "error"
	VariantWarning Variant = "warning"
)

func (v Variant) Valid() bool {
	switch v {
	case VariantDefault, VariantSuccess, VariantError, VariantWarning:
		return true
	}
	return false
}

type Toast struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Variant     Variant   `json:"variant"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Toaster holds active toasts and removes each one after its TTL.
type Toaster struct {
	ttl time.Duration

	mu     sync.Mutex
	toasts []Toast
	timers map[string]*time.Timer
}

// New returns a Toaster. A non-positive ttl selects DefaultTTL.
func New(ttl time.Duration) *Toaster {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Toaster{ttl: ttl, timers: make(map[string]*time.Timer)}
}

// Show queues a toast and returns its id.
func (t *Toaster) Show(title, description string, variant Variant) string {
	if !variant.Valid() {
		variant = VariantDefault
	}
	ts := nextTimestamp()
	toast := Toast{
		ID:          strconv.FormatInt(ts, 36),
		Title:       title,
		Description: description,
		Variant:     variant,
		CreatedAt:   time.Unix(0, ts).UTC(),
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.toasts = append(t.toasts, toast)
	id := toast.ID
	t.timers[id] = time.AfterFunc(t.ttl, func() { t.Dismiss(id) })
	return id
}

// Dismiss removes a toast. Unknown ids are ignored.
func (t *Toaster) Dismiss(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if timer, ok := t.timers[id]; ok {
		timer.Stop()
		delete(t.timers, id)
	}
	for i, toast := range t.toasts {
		if toast.ID == id {
			t.toasts = append(t.toasts[:i], t.toasts[i+1:]...)
			return true
		}
	}
	return false
}

// Active returns the visible toasts, oldest first.
func (t *Toaster) Active() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Toast, len(t.toasts))
	copy(out, t.toasts)
	return out
}

// Close stops pending dismiss timers.
func (t *Toaster) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, timer := range t.timers {
		timer.Stop()
		delete(t.timers, id)
	}
}

var lastTimestamp int64

func nextTimestamp() int64 {
	for {
		now := time.Now().UnixNano()
		last := atomic.LoadInt64(&lastTimestamp)
		if now <= last {
			now = last + 1
		}
		if atomic.CompareAndSwapInt64(&lastTimestamp, last, now) {
			return now
		}
	}
}
