// Package view derives render-ready state from entity arrays: search,
// filter, sort, aggregate statistics, and chart series. Everything here
// is a pure function re-run on every subscription delivery; there is no
// I/O and no diffing.
package view

import (
	"sort"
	"strings"

	"github.com/greenbops/greenbops/internal/bin"
)

// FilterAll is the sentinel meaning "no filter".
const FilterAll = "all"

// Fill filter values.
const (
	FillFull    = "full"
	FillNotFull = "not-full"
)

// Tamper filter values.
const (
	TamperTampered = "tampered"
	TamperSecure   = "secure"
)

// Device sort keys.
const (
	SortByID        = "id"
	SortByFill      = "binPercentage"
	SortByBattery   = "batteryLevel"
	SortByTimestamp = "timestamp"
)

// Sort orders.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// DeviceQuery describes one device-list view: a free-text search, two
// exact-match filters, and a sort. Zero values mean no search, no
// filters, and the default sort (fill percentage, descending).
type DeviceQuery struct {
	Search  string `json:"search"`
	Fill    string `json:"fill"`
	Tamper  string `json:"tamper"`
	SortKey string `json:"sortKey"`
	Order   string `json:"order"`
}

// Apply filters and sorts a copy of devices. Ties keep their incoming
// order.
func (q DeviceQuery) Apply(devices []bin.Device) []bin.Device {
	list := make([]bin.Device, 0, len(devices))

	search := strings.ToLower(q.Search)
	for _, d := range devices {
		if search != "" && !matchesDevice(d, search) {
			continue
		}
		if q.Fill != "" && q.Fill != FilterAll {
			if (q.Fill == FillFull) != d.IsFull {
				continue
			}
		}
		if q.Tamper != "" && q.Tamper != FilterAll {
			if (q.Tamper == TamperTampered) != d.TamperDetected {
				continue
			}
		}
		list = append(list, d)
	}

	key := q.SortKey
	if key == "" {
		key = SortByFill
	}
	order := q.Order
	if order == "" {
		order = OrderDesc
	}

	sort.SliceStable(list, func(i, j int) bool {
		c := compareDevices(list[i], list[j], key)
		if order == OrderAsc {
			return c < 0
		}
		return c > 0
	})
	return list
}

func matchesDevice(d bin.Device, search string) bool {
	return strings.Contains(strings.ToLower(d.ID), search) ||
		strings.Contains(strings.ToLower(d.Name), search) ||
		strings.Contains(strings.ToLower(d.Location), search)
}

func compareDevices(a, b bin.Device, key string) int {
	switch key {
	case SortByID:
		return strings.Compare(a.ID, b.ID)
	case SortByBattery:
		return compareFloats(a.BatteryLevel, b.BatteryLevel)
	case SortByTimestamp:
		return a.ObservedAt().Compare(b.ObservedAt())
	default:
		return compareFloats(a.BinPercentage, b.BinPercentage)
	}
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
