// Package ingest is the worker-side terminus for device telemetry. It
// consumes raw telemetry messages from Pub/Sub and MQTT, normalizes
// them, writes device state to the realtime database, appends history
// readings, derives alerts, and fans notifications out.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/greenbops/greenbops/internal/bin"
	"github.com/greenbops/greenbops/internal/history"
)

const lowBatteryThreshold = 20

// TelemetryMessage is one raw telemetry push: the device id plus the
// loosely typed fields the firmware reports.
type TelemetryMessage struct {
	DeviceID string         `json:"deviceId"`
	Fields   map[string]any `json:"fields"`
}

// Notifier delivers derived alerts.
type Notifier interface {
	SendAlert(ctx context.Context, alert bin.Alert) error
}

// PipelineConfig holds the dependencies for the ingest pipeline.
type PipelineConfig struct {
	Gateway  *bin.Gateway
	History  history.Repository
	Notifier Notifier
	Logger   zerolog.Logger

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Pipeline processes telemetry messages end to end.
type Pipeline struct {
	gateway  *bin.Gateway
	history  history.Repository
	notifier Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

// NewPipeline creates a Pipeline.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		gateway:  cfg.Gateway,
		history:  cfg.History,
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
		now:      now,
	}
}

// Process runs one message through the pipeline: normalize, write
// device state, append the history reading, derive alerts, notify.
// A notification failure is logged but never fails the ingest; the
// reading is already durable by then.
func (p *Pipeline) Process(ctx context.Context, msg TelemetryMessage) error {
	if msg.DeviceID == "" {
		return bin.ErrDeviceIDRequired
	}

	now := p.now()
	device := bin.NormalizeDevice(msg.DeviceID, msg.Fields, now)

	if err := p.gateway.WriteDeviceState(ctx, device); err != nil {
		return fmt.Errorf("write state for %s: %w", device.ID, err)
	}

	reading := history.Reading{
		DeviceID:   device.ID,
		Percent:    device.BinPercentage,
		RecordedAt: now,
	}
	if err := p.history.Append(ctx, reading); err != nil {
		return fmt.Errorf("append reading for %s: %w", device.ID, err)
	}

	battery, ok := msg.Fields["batteryLevel"]
	batteryReported := ok && battery != nil

	for _, alert := range DeriveAlerts(device, batteryReported, now) {
		if _, err := p.gateway.AppendAlert(ctx, alert); err != nil {
			return fmt.Errorf("append %s alert for %s: %w", alert.Type, device.ID, err)
		}
		if p.notifier != nil {
			if err := p.notifier.SendAlert(ctx, alert); err != nil {
				p.logger.Warn().
					Err(err).
					Str("device_id", device.ID).
					Str("type", alert.Type).
					Msg("alert notification failed")
			}
		}
	}

	p.logger.Debug().
		Str("device_id", device.ID).
		Float64("bin_percentage", device.BinPercentage).
		Msg("telemetry ingested")
	return nil
}

// DeriveAlerts applies the alert rules to a normalized device state.
// Messages that omit batteryLevel normalize to 0, so the low-battery
// rule only runs when the field was actually reported.
func DeriveAlerts(d bin.Device, batteryReported bool, now time.Time) []bin.Alert {
	base := bin.Alert{
		DeviceID:      d.ID,
		BinPercentage: d.BinPercentage,
		IsFull:        d.IsFull,
		Timestamp:     now.Format(time.RFC3339),
	}

	var alerts []bin.Alert
	add := func(alertType, message string) {
		a := base
		a.ID = uuid.NewString()
		a.Type = alertType
		a.Message = message
		alerts = append(alerts, a)
	}

	if d.IsFull {
		add(bin.AlertFull, fmt.Sprintf("Bin %s is full", d.ID))
	}
	if d.TamperDetected {
		add(bin.AlertTamper, fmt.Sprintf("Tamper detected on bin %s", d.ID))
	}
	if batteryReported && d.BatteryLevel <= lowBatteryThreshold {
		add(bin.AlertLowBattery, fmt.Sprintf("Bin %s battery at %.0f%%", d.ID, d.BatteryLevel))
	}
	if d.WakeupReason != 0 {
		add(bin.AlertWake, fmt.Sprintf("Bin %s woke up (reason %d)", d.ID, d.WakeupReason))
	}
	return alerts
}
