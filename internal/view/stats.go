package view

import (
	"math"

	"github.com/greenbops/greenbops/internal/bin"
)

// FleetStats summarizes the current device set for the dashboard cards.
type FleetStats struct {
	Total       int `json:"total"`
	Online      int `json:"online"`
	Full        int `json:"full"`
	Tampered    int `json:"tampered"`
	AverageFill int `json:"averageFill"`
}

// DeriveFleetStats computes the dashboard summary. The average is the
// rounded mean fill percentage, 0 for an empty fleet.
func DeriveFleetStats(devices []bin.Device) FleetStats {
	s := FleetStats{Total: len(devices)}

	var sum float64
	for _, d := range devices {
		if d.Status == bin.StatusOnline {
			s.Online++
		}
		if d.IsFull {
			s.Full++
		}
		if d.TamperDetected {
			s.Tampered++
		}
		sum += d.BinPercentage
	}

	if len(devices) > 0 {
		s.AverageFill = int(math.Round(sum / float64(len(devices))))
	}
	return s
}

// AlertStats summarizes the current alert set.
type AlertStats struct {
	Total          int `json:"total"`
	Unacknowledged int `json:"unacknowledged"`
	Full           int `json:"full"`
	Tamper         int `json:"tamper"`
}

// DeriveAlertStats computes the alert summary.
func DeriveAlertStats(alerts []bin.Alert) AlertStats {
	s := AlertStats{Total: len(alerts)}
	for _, a := range alerts {
		if !a.Acknowledged {
			s.Unacknowledged++
		}
		switch a.Type {
		case bin.AlertFull:
			s.Full++
		case bin.AlertTamper:
			s.Tamper++
		}
	}
	return s
}
