package history

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu       sync.RWMutex
	readings []Reading
	nextID   int64
}

// NewInMemoryRepository creates a new in-memory reading repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

// Append records one reading.
func (r *InMemoryRepository) Append(_ context.Context, reading Reading) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reading.ID = r.nextID
	r.nextID++
	r.readings = append(r.readings, reading)
	return nil
}

// ListSince returns readings recorded at or after the cutoff, oldest
// first.
func (r *InMemoryRepository) ListSince(_ context.Context, cutoff time.Time) ([]Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(reading Reading) bool {
		return !reading.RecordedAt.Before(cutoff)
	}), nil
}

// ListDeviceSince returns one device's readings at or after the cutoff,
// oldest first.
func (r *InMemoryRepository) ListDeviceSince(_ context.Context, deviceID string, cutoff time.Time) ([]Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(reading Reading) bool {
		return reading.DeviceID == deviceID && !reading.RecordedAt.Before(cutoff)
	}), nil
}

func (r *InMemoryRepository) collect(keep func(Reading) bool) []Reading {
	out := make([]Reading, 0)
	for _, reading := range r.readings {
		if keep(reading) {
			out = append(out, reading)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RecordedAt.Before(out[j].RecordedAt)
	})
	return out
}
