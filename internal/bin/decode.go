package bin

import (
	"encoding/json"
	"sort"
	"strconv"
	"time"
)

// The realtime database stores records written by firmware, scripts, and
// older dashboard versions, so field types are unreliable: numbers arrive
// as strings, booleans as numbers, and most fields can be absent. All
// defaulting happens here and nowhere else.

// DevicesFromSnapshot projects the devices subtree into a normalized
// slice. Map keys become ids unless the record embeds its own; array
// snapshots use the index and skip null entries.
func DevicesFromSnapshot(raw json.RawMessage, now time.Time) []Device {
	entries := snapshotEntries(raw)
	devices := make([]Device, 0, len(entries))
	for _, e := range entries {
		devices = append(devices, NormalizeDevice(e.id, e.fields, now))
	}
	return devices
}

// AlertsFromSnapshot projects the alerts subtree into a normalized slice.
func AlertsFromSnapshot(raw json.RawMessage, now time.Time) []Alert {
	entries := snapshotEntries(raw)
	alerts := make([]Alert, 0, len(entries))
	for _, e := range entries {
		alerts = append(alerts, NormalizeAlert(e.id, e.fields, now))
	}
	return alerts
}

// NormalizeDevice builds a fully defaulted Device from raw record fields.
func NormalizeDevice(id string, fields map[string]any, now time.Time) Device {
	pct := asFloat(fields["binPercentage"], 0)
	isFull := pct >= 100
	if v, ok := fields["isFull"]; ok && v != nil {
		isFull = asBool(v)
	}

	d := Device{
		ID:             id,
		BinPercentage:  clampPercent(pct),
		IsFull:         isFull,
		Latitude:       asFloat(fields["latitude"], 0),
		Longitude:      asFloat(fields["longitude"], 0),
		TamperDetected: asBool(fields["tamperDetected"]),
		BatteryLevel:   asFloat(fields["batteryLevel"], 0),
		BatteryVoltage: asFloat(fields["batteryVoltage"], 0),
		Timestamp:      asString(fields["timestamp"], now.Format(time.RFC3339)),
		GPSTime:        asString(fields["gpsTime"], ""),
		Message:        asString(fields["message"], ""),
		WakeupReason:   int(asFloat(fields["wakeupReason"], 0)),
		BootCount:      int(asFloat(fields["bootCount"], 0)),
		Status:         asString(fields["status"], StatusOnline),
		Name:           asString(fields["name"], ""),
		Type:           asString(fields["type"], ""),
		Location:       asString(fields["location"], ""),
		OwnerID:        asString(fields["ownerId"], ""),
		OwnerEmail:     asString(fields["ownerEmail"], ""),
	}

	if v, ok := fields["altitude"]; ok && v != nil {
		alt := asFloat(v, 0)
		d.Altitude = &alt
	}
	if v, ok := fields["randomValue"]; ok && v != nil {
		rv := asFloat(v, 0)
		d.RandomValue = &rv
	}

	if embedded := asString(fields["id"], ""); embedded != "" {
		d.ID = embedded
	}
	return d
}

// NormalizeAlert builds a fully defaulted Alert from raw record fields.
func NormalizeAlert(id string, fields map[string]any, now time.Time) Alert {
	pct := asFloat(fields["binPercentage"], 0)
	isFull := pct >= 100
	if v, ok := fields["isFull"]; ok && v != nil {
		isFull = asBool(v)
	}

	a := Alert{
		ID:            id,
		DeviceID:      asString(fields["deviceId"], ""),
		Type:          asString(fields["type"], AlertFull),
		BinPercentage: clampPercent(pct),
		IsFull:        isFull,
		Timestamp:     asString(fields["timestamp"], now.Format(time.RFC3339)),
		Message:       asString(fields["message"], ""),
		Acknowledged:  asBool(fields["acknowledged"]),
	}

	if embedded := asString(fields["id"], ""); embedded != "" {
		a.ID = embedded
	}
	return a
}

type snapshotEntry struct {
	id     string
	fields map[string]any
}

// snapshotEntries decodes a subtree snapshot into keyed records. Handles
// both the map form and the array form the database produces for
// sequential integer keys.
func snapshotEntries(raw json.RawMessage) []snapshotEntry {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var asMap map[string]map[string]any
	if err := json.Unmarshal(raw, &asMap); err == nil {
		keys := make([]string, 0, len(asMap))
		for k := range asMap {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		entries := make([]snapshotEntry, 0, len(keys))
		for _, k := range keys {
			entries = append(entries, snapshotEntry{id: k, fields: asMap[k]})
		}
		return entries
	}

	var asList []map[string]any
	if err := json.Unmarshal(raw, &asList); err == nil {
		entries := make([]snapshotEntry, 0, len(asList))
		for i, fields := range asList {
			if fields == nil {
				continue
			}
			entries = append(entries, snapshotEntry{id: strconv.Itoa(i), fields: fields})
		}
		return entries
	}

	return nil
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func asFloat(v any, def float64) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return f
		}
	case bool:
		if x {
			return 1
		}
		return 0
	}
	return def
}

func asBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != "" && x != "false" && x != "0"
	}
	return false
}

func asString(v any, def string) string {
	switch x := v.(type) {
	case string:
		if x != "" {
			return x
		}
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return def
}
