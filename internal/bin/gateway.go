package bin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/greenbops/greenbops/internal/rtdb"
)

const (
	devicesPath = "devices"
	alertsPath  = "alerts"
)

// GatewayConfig holds the dependencies for a Gateway.
type GatewayConfig struct {
	Store rtdb.Store

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Gateway is the typed access layer over the realtime database for
// devices and alerts. Reads project loose snapshots into normalized
// records; writes go through validation first. Remote failures pass
// through to the caller untouched.
type Gateway struct {
	store rtdb.Store
	now   func() time.Time
}

// NewGateway creates a Gateway.
func NewGateway(cfg GatewayConfig) *Gateway {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Gateway{store: cfg.Store, now: now}
}

// FetchDevices returns all devices, normalized. When owner is non-empty
// only that owner's devices are returned; the filter runs here so an
// unscoped record never crosses the gateway.
func (g *Gateway) FetchDevices(ctx context.Context, owner string) ([]Device, error) {
	var raw json.RawMessage
	if err := g.store.Get(ctx, devicesPath, &raw); err != nil {
		if errors.Is(err, rtdb.ErrNotFound) {
			return []Device{}, nil
		}
		return nil, fmt.Errorf("fetch devices: %w", err)
	}
	return filterOwner(DevicesFromSnapshot(raw, g.now()), owner), nil
}

// SubscribeDevices delivers the full normalized device list after every
// change.
func (g *Gateway) SubscribeDevices(ctx context.Context, owner string, fn func([]Device)) (rtdb.StopFunc, error) {
	return g.store.Watch(ctx, devicesPath, func(value json.RawMessage) {
		fn(filterOwner(DevicesFromSnapshot(value, g.now()), owner))
	})
}

// FetchDevice returns the device with the given id, or nil when absent.
// A direct key lookup runs first; records stored under a different key
// than their embedded id are found by scanning the list.
func (g *Gateway) FetchDevice(ctx context.Context, id string) (*Device, error) {
	var fields map[string]any
	err := g.store.Get(ctx, devicesPath+"/"+id, &fields)
	if err == nil {
		d := NormalizeDevice(id, fields, g.now())
		return &d, nil
	}
	if !errors.Is(err, rtdb.ErrNotFound) {
		return nil, fmt.Errorf("fetch device %s: %w", id, err)
	}

	all, err := g.FetchDevices(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, nil
}

// SubscribeDevice delivers the normalized device after every change and
// nil when the record is deleted.
func (g *Gateway) SubscribeDevice(ctx context.Context, id string, fn func(*Device)) (rtdb.StopFunc, error) {
	return g.store.Watch(ctx, devicesPath+"/"+id, func(value json.RawMessage) {
		var fields map[string]any
		if err := json.Unmarshal(value, &fields); err != nil || fields == nil {
			fn(nil)
			return
		}
		d := NormalizeDevice(id, fields, g.now())
		fn(&d)
	})
}

// CreateDevice validates and registers a new bin. Validation failures
// abort before anything is written.
func (g *Gateway) CreateDevice(ctx context.Context, input CreateDeviceInput) (Device, error) {
	if input.ID == "" {
		return Device{}, ErrDeviceIDRequired
	}
	if !validCoordinates(input.Latitude, input.Longitude) {
		return Device{}, ErrInvalidCoordinates
	}

	var existing map[string]any
	err := g.store.Get(ctx, devicesPath+"/"+input.ID, &existing)
	if err == nil {
		return Device{}, ErrDeviceExists
	}
	if !errors.Is(err, rtdb.ErrNotFound) {
		return Device{}, fmt.Errorf("check device %s: %w", input.ID, err)
	}

	pct := 0.0
	if input.BinPercentage != nil {
		pct = clampPercent(*input.BinPercentage)
	}
	battery := 100.0
	if input.BatteryLevel != nil {
		battery = *input.BatteryLevel
	}

	d := Device{
		ID:            input.ID,
		BinPercentage: pct,
		IsFull:        pct >= 100,
		Latitude:      input.Latitude,
		Longitude:     input.Longitude,
		BatteryLevel:  battery,
		Timestamp:     g.now().Format(time.RFC3339),
		Status:        StatusOnline,
		Name:          input.Name,
		Location:      input.Location,
		OwnerID:       input.OwnerID,
		OwnerEmail:    input.OwnerEmail,
	}

	if err := g.store.Set(ctx, devicesPath+"/"+d.ID, d); err != nil {
		return Device{}, fmt.Errorf("create device %s: %w", d.ID, err)
	}
	return d, nil
}

// WriteDeviceState replaces a device record with a normalized telemetry
// snapshot. Unlike CreateDevice this is the ingest path: it overwrites
// freely and never checks for existence.
func (g *Gateway) WriteDeviceState(ctx context.Context, d Device) error {
	if d.ID == "" {
		return ErrDeviceIDRequired
	}
	if err := g.store.Set(ctx, devicesPath+"/"+d.ID, d); err != nil {
		return fmt.Errorf("write device state %s: %w", d.ID, err)
	}
	return nil
}

// DeleteDevice removes a device record.
func (g *Gateway) DeleteDevice(ctx context.Context, id string) error {
	if id == "" {
		return ErrDeviceIDRequired
	}
	if err := g.store.Delete(ctx, devicesPath+"/"+id); err != nil {
		return fmt.Errorf("delete device %s: %w", id, err)
	}
	return nil
}

// FetchAlerts returns all alerts, normalized.
func (g *Gateway) FetchAlerts(ctx context.Context) ([]Alert, error) {
	var raw json.RawMessage
	if err := g.store.Get(ctx, alertsPath, &raw); err != nil {
		if errors.Is(err, rtdb.ErrNotFound) {
			return []Alert{}, nil
		}
		return nil, fmt.Errorf("fetch alerts: %w", err)
	}
	return AlertsFromSnapshot(raw, g.now()), nil
}

// SubscribeAlerts delivers the full normalized alert list after every
// change.
func (g *Gateway) SubscribeAlerts(ctx context.Context, fn func([]Alert)) (rtdb.StopFunc, error) {
	return g.store.Watch(ctx, alertsPath, func(value json.RawMessage) {
		fn(AlertsFromSnapshot(value, g.now()))
	})
}

// AppendAlert pushes a new alert and returns its assigned id.
func (g *Gateway) AppendAlert(ctx context.Context, a Alert) (string, error) {
	id, err := g.store.Push(ctx, alertsPath, a)
	if err != nil {
		return "", fmt.Errorf("append alert: %w", err)
	}
	return id, nil
}

// AcknowledgeAlert persists the acknowledgment flag on an alert.
func (g *Gateway) AcknowledgeAlert(ctx context.Context, id string) error {
	if err := g.store.Set(ctx, alertsPath+"/"+id+"/acknowledged", true); err != nil {
		return fmt.Errorf("acknowledge alert %s: %w", id, err)
	}
	return nil
}

func filterOwner(devices []Device, owner string) []Device {
	if owner == "" {
		return devices
	}
	out := make([]Device, 0, len(devices))
	for _, d := range devices {
		if d.OwnerID == owner {
			out = append(out, d)
		}
	}
	return out
}

func validCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
