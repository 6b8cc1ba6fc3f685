package view

import "testing"

func TestDeriveFleetStats(t *testing.T) {
	s := DeriveFleetStats(fleet())

	if s.Total != 3 || s.Online != 2 || s.Full != 1 || s.Tampered != 1 {
		t.Errorf("unexpected counts: %+v", s)
	}
	// (40 + 100 + 75) / 3 = 71.67 rounds to 72.
	if s.AverageFill != 72 {
		t.Errorf("averageFill = %d, want 72", s.AverageFill)
	}
}

func TestDeriveFleetStatsEmpty(t *testing.T) {
	s := DeriveFleetStats(nil)
	if s.Total != 0 || s.AverageFill != 0 {
		t.Errorf("expected zeroed stats for empty fleet, got %+v", s)
	}
}

func TestDeriveAlertStats(t *testing.T) {
	s := DeriveAlertStats(alertSet())
	if s.Total != 3 || s.Unacknowledged != 2 || s.Full != 1 || s.Tamper != 1 {
		t.Errorf("unexpected counts: %+v", s)
	}
}
