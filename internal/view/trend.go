package view

import (
	"math"
	"sort"
	"time"

	"github.com/greenbops/greenbops/internal/bin"
)

// Reading is one historical fill-level sample.
type Reading struct {
	DeviceID   string    `json:"deviceId"`
	Percent    float64   `json:"percent"`
	RecordedAt time.Time `json:"recordedAt"`
}

// TrendPoint is one charted bucket.
type TrendPoint struct {
	Label   string  `json:"label"`
	Average float64 `json:"average"`
}

// TrendSeries buckets fill readings into a chart series. Readings are
// sorted ascending and grouped by an hour:minute label; each device's
// last known value carries forward into later buckets, and each bucket
// averages across the devices known so far. When fewer than two buckets
// come out of the history, the live fleet snapshot is appended as a
// synthetic final point so the chart never renders a single dot.
func TrendSeries(readings []Reading, live []bin.Device, now time.Time) []TrendPoint {
	sorted := make([]Reading, len(readings))
	copy(sorted, readings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RecordedAt.Before(sorted[j].RecordedAt)
	})

	lastKnown := make(map[string]float64)
	var labels []string
	bucketAverages := make(map[string]float64)

	i := 0
	for i < len(sorted) {
		label := sorted[i].RecordedAt.Format("15:04")
		for i < len(sorted) && sorted[i].RecordedAt.Format("15:04") == label {
			lastKnown[sorted[i].DeviceID] = sorted[i].Percent
			i++
		}
		if _, seen := bucketAverages[label]; !seen {
			labels = append(labels, label)
		}
		bucketAverages[label] = average(lastKnown)
	}

	points := make([]TrendPoint, 0, len(labels)+1)
	for _, label := range labels {
		points = append(points, TrendPoint{Label: label, Average: bucketAverages[label]})
	}

	if len(points) < 2 && len(live) > 0 {
		var sum float64
		for _, d := range live {
			sum += d.BinPercentage
		}
		points = append(points, TrendPoint{
			Label:   now.Format("15:04"),
			Average: round1(sum / float64(len(live))),
		})
	}
	return points
}

func average(values map[string]float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return round1(sum / float64(len(values)))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
