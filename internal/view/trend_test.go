package view

import (
	"testing"
	"time"

	"github.com/greenbops/greenbops/internal/bin"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 6, 1, hour, minute, 0, 0, time.UTC)
}

func TestTrendSeriesBucketsAndForwardFill(t *testing.T) {
	readings := []Reading{
		{DeviceID: "bin-a", Percent: 20, RecordedAt: at(8, 0)},
		{DeviceID: "bin-b", Percent: 40, RecordedAt: at(8, 0)},
		// Only bin-a reports at 08:05; bin-b's 40 carries forward.
		{DeviceID: "bin-a", Percent: 60, RecordedAt: at(8, 5)},
		{DeviceID: "bin-b", Percent: 80, RecordedAt: at(8, 10)},
	}

	points := TrendSeries(readings, nil, at(8, 15))
	if len(points) != 3 {
		t.Fatalf("expected 3 buckets, got %d: %+v", len(points), points)
	}

	if points[0].Label != "08:00" || points[0].Average != 30 {
		t.Errorf("bucket 0 = %+v, want 08:00 avg 30", points[0])
	}
	if points[1].Label != "08:05" || points[1].Average != 50 {
		t.Errorf("bucket 1 = %+v, want 08:05 avg 50 (forward-filled)", points[1])
	}
	if points[2].Label != "08:10" || points[2].Average != 70 {
		t.Errorf("bucket 2 = %+v, want 08:10 avg 70", points[2])
	}
}

func TestTrendSeriesSortsUnorderedReadings(t *testing.T) {
	readings := []Reading{
		{DeviceID: "bin-a", Percent: 90, RecordedAt: at(9, 0)},
		{DeviceID: "bin-a", Percent: 10, RecordedAt: at(8, 0)},
	}

	points := TrendSeries(readings, nil, at(9, 30))
	if len(points) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(points))
	}
	if points[0].Average != 10 || points[1].Average != 90 {
		t.Errorf("expected ascending buckets, got %+v", points)
	}
}

func TestTrendSeriesSyntheticLivePoint(t *testing.T) {
	readings := []Reading{
		{DeviceID: "bin-a", Percent: 30, RecordedAt: at(8, 0)},
	}
	live := []bin.Device{
		{ID: "bin-a", BinPercentage: 50},
		{ID: "bin-b", BinPercentage: 70},
	}

	points := TrendSeries(readings, live, at(8, 30))
	if len(points) != 2 {
		t.Fatalf("expected synthetic point appended, got %d points", len(points))
	}
	if points[1].Label != "08:30" || points[1].Average != 60 {
		t.Errorf("synthetic point = %+v, want 08:30 avg 60", points[1])
	}
}

func TestTrendSeriesEmpty(t *testing.T) {
	points := TrendSeries(nil, nil, at(8, 0))
	if len(points) != 0 {
		t.Errorf("expected no points without readings or live devices, got %+v", points)
	}
}
