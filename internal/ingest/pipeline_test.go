package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbops/greenbops/internal/bin"
	"github.com/greenbops/greenbops/internal/history"
	"github.com/greenbops/greenbops/internal/rtdb"
)

var ingestTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeNotifier struct {
	sent []bin.Alert
	err  error
}

func (f *fakeNotifier) SendAlert(ctx context.Context, alert bin.Alert) error {
	f.sent = append(f.sent, alert)
	return f.err
}

func testPipeline(notifier Notifier) (*Pipeline, *bin.Gateway, *history.InMemoryRepository) {
	store := rtdb.NewMemoryStore()
	gateway := bin.NewGateway(bin.GatewayConfig{
		Store: store,
		Now:   func() time.Time { return ingestTime },
	})
	repo := history.NewInMemoryRepository()
	p := NewPipeline(PipelineConfig{
		Gateway:  gateway,
		History:  repo,
		Notifier: notifier,
		Logger:   zerolog.Nop(),
		Now:      func() time.Time { return ingestTime },
	})
	return p, gateway, repo
}

func TestProcessWritesStateAndHistory(t *testing.T) {
	p, gateway, repo := testPipeline(nil)
	ctx := context.Background()

	err := p.Process(ctx, TelemetryMessage{
		DeviceID: "bin-1",
		Fields:   map[string]any{"binPercentage": 45.0, "batteryLevel": 80.0},
	})
	require.NoError(t, err)

	device, err := gateway.FetchDevice(ctx, "bin-1")
	require.NoError(t, err)
	require.NotNil(t, device)
	assert.Equal(t, 45.0, device.BinPercentage)
	assert.Equal(t, bin.StatusOnline, device.Status)

	readings, err := repo.ListSince(ctx, ingestTime.Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, "bin-1", readings[0].DeviceID)
	assert.Equal(t, 45.0, readings[0].Percent)
}

func TestProcessRejectsMissingDeviceID(t *testing.T) {
	p, _, _ := testPipeline(nil)

	err := p.Process(context.Background(), TelemetryMessage{Fields: map[string]any{}})
	assert.ErrorIs(t, err, bin.ErrDeviceIDRequired)
}

func TestProcessDerivesAndNotifiesAlerts(t *testing.T) {
	notifier := &fakeNotifier{}
	p, gateway, _ := testPipeline(notifier)
	ctx := context.Background()

	err := p.Process(ctx, TelemetryMessage{
		DeviceID: "bin-1",
		Fields: map[string]any{
			"binPercentage":  100.0,
			"tamperDetected": true,
			"batteryLevel":   15.0,
		},
	})
	require.NoError(t, err)

	alerts, err := gateway.FetchAlerts(ctx)
	require.NoError(t, err)
	assert.Len(t, alerts, 3)
	assert.Len(t, notifier.sent, 3)

	types := map[string]bool{}
	for _, a := range alerts {
		types[a.Type] = true
		assert.Equal(t, "bin-1", a.DeviceID)
	}
	assert.True(t, types[bin.AlertFull])
	assert.True(t, types[bin.AlertTamper])
	assert.True(t, types[bin.AlertLowBattery])
}

func TestProcessNotificationFailureDoesNotFailIngest(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("webhook down")}
	p, gateway, repo := testPipeline(notifier)
	ctx := context.Background()

	err := p.Process(ctx, TelemetryMessage{
		DeviceID: "bin-1",
		Fields:   map[string]any{"binPercentage": 100.0, "batteryLevel": 90.0},
	})
	require.NoError(t, err)

	readings, err := repo.ListSince(ctx, ingestTime.Add(-time.Minute))
	require.NoError(t, err)
	assert.Len(t, readings, 1)

	alerts, err := gateway.FetchAlerts(ctx)
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}

func TestDeriveAlerts(t *testing.T) {
	tests := []struct {
		name            string
		device          bin.Device
		batteryReported bool
		want            []string
	}{
		{
			"quiet device",
			bin.Device{ID: "x", BinPercentage: 40, BatteryLevel: 90},
			true,
			nil,
		},
		{
			"full",
			bin.Device{ID: "x", BinPercentage: 100, IsFull: true, BatteryLevel: 90},
			true,
			[]string{bin.AlertFull},
		},
		{
			"low battery boundary",
			bin.Device{ID: "x", BinPercentage: 10, BatteryLevel: 20},
			true,
			[]string{bin.AlertLowBattery},
		},
		{
			"battery not reported",
			bin.Device{ID: "x", BinPercentage: 10, BatteryLevel: 0},
			false,
			nil,
		},
		{
			"wake reason",
			bin.Device{ID: "x", BinPercentage: 10, BatteryLevel: 90, WakeupReason: 3},
			true,
			[]string{bin.AlertWake},
		},
		{
			"everything at once",
			bin.Device{ID: "x", BinPercentage: 100, IsFull: true, TamperDetected: true, BatteryLevel: 5, WakeupReason: 1},
			true,
			[]string{bin.AlertFull, bin.AlertTamper, bin.AlertLowBattery, bin.AlertWake},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := DeriveAlerts(tt.device, tt.batteryReported, ingestTime)
			require.Len(t, alerts, len(tt.want))
			for i, alertType := range tt.want {
				assert.Equal(t, alertType, alerts[i].Type)
				assert.NotEmpty(t, alerts[i].ID)
			}
		})
	}
}

func TestProcessOmittedBatteryDoesNotAlert(t *testing.T) {
	notifier := &fakeNotifier{}
	p, gateway, _ := testPipeline(notifier)
	ctx := context.Background()

	err := p.Process(ctx, TelemetryMessage{
		DeviceID: "bin-1",
		Fields:   map[string]any{"binPercentage": 40.0},
	})
	require.NoError(t, err)

	alerts, err := gateway.FetchAlerts(ctx)
	require.NoError(t, err)
	assert.Empty(t, alerts)
	assert.Empty(t, notifier.sent)
}

func TestDeviceIDFromTopic(t *testing.T) {
	tests := []struct {
		topic string
		id    string
		ok    bool
	}{
		{"greenb/bin-1/telemetry", "bin-1", true},
		{"greenb//telemetry", "", false},
		{"greenb/bin-1/status", "", false},
		{"other/bin-1/telemetry", "", false},
		{"greenb/bin-1", "", false},
	}
	for _, tt := range tests {
		id, ok := deviceIDFromTopic(tt.topic)
		assert.Equal(t, tt.ok, ok, tt.topic)
		assert.Equal(t, tt.id, id, tt.topic)
	}
}
