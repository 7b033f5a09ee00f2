// Package storage persists board state as versioned JSON blobs in a
// key-value store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// Keys of the persisted blobs.
const (
	TasksKey    = "task-storage"
	ActivityKey = "activity-storage"
	AuthKey     = "auth-storage"
)

// SnapshotVersion is bumped whenever a persisted state shape changes
// incompatibly. Blobs with another version are treated as absent.
const SnapshotVersion = 1

var (
	// ErrNotFound is returned by KV implementations for missing keys.
	ErrNotFound = errors.New("key not found")
	// ErrCorrupt marks blobs that exist but cannot be decoded.
	ErrCorrupt = errors.New("corrupt snapshot")
)

// KV is the persistence capability consumed by the board.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

type envelope struct {
	Version int                    `json:"version"`
	SavedAt time.Time              `json:"savedAt"`
	State   sonic.NoCopyRawMessage `json:"state"`
}

// Encode wraps state in a versioned envelope.
func Encode(state any, savedAt time.Time) ([]byte, error) {
	raw, err := sonic.Marshal(state)
	if err != nil {
		return nil, err
	}
	return sonic.Marshal(envelope{Version: SnapshotVersion, SavedAt: savedAt.UTC(), State: raw})
}

// Decode unwraps an envelope produced by Encode into dst.
func Decode(data []byte, dst any) error {
	var env envelope
	if err := decodeEnvelope(data, &env); err != nil {
		return err
	}
	if err := sonic.Unmarshal(env.State, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return nil
}

func decodeEnvelope(data []byte, env *envelope) error {
	if err := sonic.Unmarshal(data, env); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if env.Version != SnapshotVersion {
		return fmt.Errorf("%w: version %d", ErrCorrupt, env.Version)
	}
	if len(env.State) == 0 || string(env.State) == "null" {
		return fmt.Errorf("%w: empty state", ErrCorrupt)
	}
	return nil
}

// Save encodes state and writes it under key.
func Save(ctx context.Context, kv KV, key string, state any) error {
	data, err := Encode(state, time.Now())
	if err != nil {
		return err
	}
	return kv.Set(ctx, key, data)
}

// Load reads key into dst. It returns ErrNotFound for missing keys and an
// error wrapping ErrCorrupt for undecodable blobs.
func Load(ctx context.Context, kv KV, key string, dst any) error {
	data, err := kv.Get(ctx, key)
	if err != nil {
		return err
	}
	return Decode(data, dst)
}
