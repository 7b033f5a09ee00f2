package api

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/Abhijadhav03/momentum/notify"
)

// Authenticator is implemented by types able to extract user IDs from
// request headers or raw bearer tokens.
type Authenticator interface {
	UserIDFromHeader(http.Header) (string, error)
	UserIDFromBearer([]byte) (string, error)
}

// Deduper prevents processing of duplicate create requests.
type Deduper interface {
	// Add records the idempotency key and returns true if it was newly added.
	Add(ctx context.Context, userID, key string) (bool, error)
	// Remove deletes a previously added key, used when processing fails.
	Remove(ctx context.Context, userID, key string) error
}

// Options carries the optional collaborators of the HTTP surface.
type Options struct {
	Logger *log.Logger
	Auth   Authenticator
	// Deduper enables Idempotency-Key handling on task creation.
	Deduper Deduper
	// Broker feeds the SSE stream. Without it the stream route is not registered.
	Broker *notify.Broker
	// Registry backs /metrics. A fresh registry is used when nil.
	Registry *prometheus.Registry
	// Health reports backend readiness for /healthz.
	Health func(ctx context.Context) error
}
