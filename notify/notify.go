// Package notify fans board change events out to live clients and
// downstream consumers.
package notify

import (
	"context"
	"errors"

	"github.com/Abhijadhav03/momentum/domain"
)

// Publisher delivers a board event. Callers treat failures as non-fatal.
type Publisher interface {
	Publish(ctx context.Context, ev domain.BoardEvent) error
}

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev domain.BoardEvent) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, domain.BoardEvent) error { return nil }
