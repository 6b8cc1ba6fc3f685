// Package rtdb provides access to the hosted realtime database. The store
// is a JSON tree addressed by slash-separated paths; reads return the raw
// value at a path, writes replace it, and watches re-deliver the full
// current value after every change.
package rtdb

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned by point reads when no value exists at the path.
var ErrNotFound = errors.New("rtdb: no value at path")

// WatchFunc receives the full value at the watched path after each change.
// A JSON null is delivered when the value is deleted.
type WatchFunc func(value json.RawMessage)

// StopFunc tears down a watch. It must be called when the consumer goes
// away or the underlying stream leaks.
type StopFunc func()

// Store is the interface to the realtime database. Client implements it
// over HTTP; MemoryStore implements it in-process for tests and local
// development.
type Store interface {
	// Get reads the value at path into v. Returns ErrNotFound when the
	// path holds no value (JSON null).
	Get(ctx context.Context, path string, v any) error

	// Set replaces the value at path.
	Set(ctx context.Context, path string, v any) error

	// Push appends v under path with a server-assigned key and returns
	// that key.
	Push(ctx context.Context, path string, v any) (string, error)

	// Delete removes the value at path.
	Delete(ctx context.Context, path string) error

	// Watch delivers the full value at path to fn after every change,
	// starting with the current value. Delivery stops when the returned
	// StopFunc is called or ctx is cancelled.
	Watch(ctx context.Context, path string, fn WatchFunc) (StopFunc, error)
}
