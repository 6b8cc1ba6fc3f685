// Package bin holds the smart-bin fleet domain: device and alert records,
// normalization of the loosely typed telemetry stored in the realtime
// database, and the gateway the rest of the system reads and writes
// through.
package bin

import (
	"errors"
	"time"
)

// Device statuses.
const (
	StatusOnline      = "online"
	StatusOffline     = "offline"
	StatusMaintenance = "maintenance"
)

// Alert types.
const (
	AlertFull       = "full"
	AlertTamper     = "tamper"
	AlertLowBattery = "low_battery"
	AlertWake       = "wake"
)

var (
	ErrDeviceIDRequired   = errors.New("device id is required")
	ErrDeviceExists       = errors.New("device already exists")
	ErrInvalidCoordinates = errors.New("latitude/longitude must be valid numbers")
)

// Device is a normalized smart-bin record. Every field carries a value
// after normalization; optional telemetry uses pointers to keep absence
// distinguishable from zero.
type Device struct {
	ID             string   `json:"id"`
	BinPercentage  float64  `json:"binPercentage"`
	IsFull         bool     `json:"isFull"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	Altitude       *float64 `json:"altitude,omitempty"`
	TamperDetected bool     `json:"tamperDetected"`
	BatteryLevel   float64  `json:"batteryLevel"`
	BatteryVoltage float64  `json:"batteryVoltage"`
	Timestamp      string   `json:"timestamp"`
	GPSTime        string   `json:"gpsTime,omitempty"`
	Message        string   `json:"message,omitempty"`
	WakeupReason   int      `json:"wakeupReason"`
	BootCount      int      `json:"bootCount"`
	RandomValue    *float64 `json:"randomValue,omitempty"`
	Status         string   `json:"status"`
	Name           string   `json:"name,omitempty"`
	Type           string   `json:"type,omitempty"`
	Location       string   `json:"location,omitempty"`
	OwnerID        string   `json:"ownerId,omitempty"`
	OwnerEmail     string   `json:"ownerEmail,omitempty"`
}

// ObservedAt parses the record timestamp. Unparseable timestamps sort as
// the zero time.
func (d Device) ObservedAt() time.Time {
	t, err := time.Parse(time.RFC3339, d.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Alert is a normalized fleet alert.
type Alert struct {
	ID            string  `json:"id"`
	DeviceID      string  `json:"deviceId"`
	Type          string  `json:"type"`
	BinPercentage float64 `json:"binPercentage"`
	IsFull        bool    `json:"isFull"`
	Timestamp     string  `json:"timestamp"`
	Message       string  `json:"message"`
	Acknowledged  bool    `json:"acknowledged"`
}

// RaisedAt parses the alert timestamp.
func (a Alert) RaisedAt() time.Time {
	t, err := time.Parse(time.RFC3339, a.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// CreateDeviceInput registers a new bin. BinPercentage and BatteryLevel
// default to 0 and 100 when nil.
type CreateDeviceInput struct {
	ID            string   `json:"id"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	BinPercentage *float64 `json:"binPercentage,omitempty"`
	BatteryLevel  *float64 `json:"batteryLevel,omitempty"`
	Name          string   `json:"name,omitempty"`
	Location      string   `json:"location,omitempty"`
	OwnerID       string   `json:"ownerId,omitempty"`
	OwnerEmail    string   `json:"ownerEmail,omitempty"`
}
