package rtdb

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for tests and local development. It
// keeps the same JSON-tree semantics as the hosted database, including
// watch fan-out with a full snapshot per change.
type MemoryStore struct {
	mu       sync.RWMutex
	tree     any
	watchers map[int]*memoryWatcher
	nextID   int
}

type memoryWatcher struct {
	path string
	fn   WatchFunc
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		watchers: make(map[int]*memoryWatcher),
	}
}

// Get reads the value at path into v.
func (s *MemoryStore) Get(ctx context.Context, path string, v any) error {
	s.mu.RLock()
	raw, err := s.snapshotLocked(path)
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	if isJSONNull(raw) {
		return ErrNotFound
	}
	return json.Unmarshal(raw, v)
}

// Set replaces the value at path and notifies watchers.
func (s *MemoryStore) Set(ctx context.Context, path string, v any) error {
	value, err := reencode(v)
	if err != nil {
		return err
	}

	s.mu.Lock()
	setAtPath(&s.tree, path, value)
	notify := s.pendingNotificationsLocked()
	s.mu.Unlock()

	deliver(notify)
	return nil
}

// Push appends v under path with a generated key.
func (s *MemoryStore) Push(ctx context.Context, path string, v any) (string, error) {
	value, err := reencode(v)
	if err != nil {
		return "", err
	}

	key := "-" + uuid.NewString()

	s.mu.Lock()
	setAtPath(&s.tree, joinPath(path, key), value)
	notify := s.pendingNotificationsLocked()
	s.mu.Unlock()

	deliver(notify)
	return key, nil
}

// Delete removes the value at path and notifies watchers.
func (s *MemoryStore) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	setAtPath(&s.tree, path, nil)
	notify := s.pendingNotificationsLocked()
	s.mu.Unlock()

	deliver(notify)
	return nil
}

// Watch registers fn for the path and immediately delivers the current
// value.
func (s *MemoryStore) Watch(ctx context.Context, path string, fn WatchFunc) (StopFunc, error) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = &memoryWatcher{path: path, fn: fn}
	initial, err := s.snapshotLocked(path)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	fn(initial)

	stop := func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
	return stop, nil
}

// snapshotLocked marshals the value at path; absent paths marshal to null.
func (s *MemoryStore) snapshotLocked(path string) (json.RawMessage, error) {
	node := s.tree
	for _, key := range splitPath(path) {
		m, ok := node.(map[string]any)
		if !ok {
			node = nil
			break
		}
		node = m[key]
	}
	return json.Marshal(node)
}

type notification struct {
	fn    WatchFunc
	value json.RawMessage
}

// pendingNotificationsLocked captures the post-write snapshot for every
// registered watcher. Every watcher fires on every write; the hosted
// database scopes deliveries to the changed subtree, but over-delivery is
// harmless since each delivery carries the full value.
func (s *MemoryStore) pendingNotificationsLocked() []notification {
	out := make([]notification, 0, len(s.watchers))
	for _, w := range s.watchers {
		raw, err := s.snapshotLocked(w.path)
		if err != nil {
			continue
		}
		out = append(out, notification{fn: w.fn, value: raw})
	}
	return out
}

func deliver(notify []notification) {
	for _, n := range notify {
		n.fn(n.value)
	}
}

// reencode round-trips v through JSON so the stored tree holds only plain
// decoded values.
func reencode(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, err
	}
	return value, nil
}

func joinPath(base, key string) string {
	trimmed := splitPath(base)
	if len(trimmed) == 0 {
		return key
	}
	return base + "/" + key
}

var _ Store = (*MemoryStore)(nil)
