package history

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryRepositoryListSince(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	samples := []Reading{
		{DeviceID: "bin-a", Percent: 10, RecordedAt: base},
		{DeviceID: "bin-b", Percent: 20, RecordedAt: base.Add(2 * time.Hour)},
		{DeviceID: "bin-a", Percent: 30, RecordedAt: base.Add(time.Hour)},
	}
	for _, s := range samples {
		if err := repo.Append(ctx, s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	got, err := repo.ListSince(ctx, base.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 readings after cutoff, got %d", len(got))
	}
	if !got[0].RecordedAt.Before(got[1].RecordedAt) {
		t.Error("expected oldest first")
	}
	if got[0].Percent != 30 || got[1].Percent != 20 {
		t.Errorf("unexpected readings: %+v", got)
	}
}

func TestInMemoryRepositoryListDeviceSince(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	repo.Append(ctx, Reading{DeviceID: "bin-a", Percent: 10, RecordedAt: base})
	repo.Append(ctx, Reading{DeviceID: "bin-b", Percent: 20, RecordedAt: base})

	got, err := repo.ListDeviceSince(ctx, "bin-a", base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].DeviceID != "bin-a" {
		t.Errorf("expected only bin-a readings, got %+v", got)
	}
}
