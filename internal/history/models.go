// Package history persists fill-level readings so the dashboard trend
// chart has a real event source instead of only the latest snapshot.
package history

import (
	"context"
	"time"
)

// Reading is one recorded fill-level sample for a device.
type Reading struct {
	ID         int64
	DeviceID   string
	Percent    float64
	RecordedAt time.Time
}

// Repository stores and queries fill readings.
type Repository interface {
	// Append records one reading.
	Append(ctx context.Context, r Reading) error

	// ListSince returns readings recorded at or after the cutoff, oldest
	// first.
	ListSince(ctx context.Context, cutoff time.Time) ([]Reading, error)

	// ListDeviceSince returns one device's readings at or after the
	// cutoff, oldest first.
	ListDeviceSince(ctx context.Context, deviceID string, cutoff time.Time) ([]Reading, error)
}
