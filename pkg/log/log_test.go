package log

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.blog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test log: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	return path
}

func TestEventRoundTrip(t *testing.T) {
	offset := 4
	marker := uint8(0x20)
	ts := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)

	tests := []struct {
		name  string
		event Event
	}{
		{"frame", Event{Timestamp: ts, SessionID: "s1", Layer: LayerTransport, Frame: &FrameEvent{Size: 3, Data: []byte{0x20, 0, 1}, Marker: &marker}}},
		{"update", Event{Timestamp: ts, SessionID: "s1", Layer: LayerFeature, Update: &UpdateEvent{
			Feature: "Temperature", Tick: 70000, ReadBytes: 2,
			Fields: []FieldValue{{Name: "Temperature", Unit: "℃", Value: "23.2"}},
		}}},
		{"command", Event{Timestamp: ts, Direction: DirectionOut, Category: CategoryCommand, Command: &CommandEvent{Feature: "Switch", CommandID: 1, Name: "SwitchOn", Size: 5}}},
		{"error", Event{Timestamp: ts, Category: CategoryError, Error: &ErrorEventData{Layer: LayerSession, Message: "short", Feature: "Humidity", Offset: &offset}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeEvent(tt.event)
			require.NoError(t, err)

			got, err := DecodeEvent(data)
			require.NoError(t, err)
			assert.True(t, got.Timestamp.Equal(tt.event.Timestamp), "timestamp keeps nanoseconds")
			got.Timestamp = tt.event.Timestamp
			assert.Equal(t, tt.event, got)
		})
	}
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "OUT", DirectionOut.String())
	assert.Equal(t, "FEATURE", LayerFeature.String())
	assert.Equal(t, "RESPONSE", CategoryResponse.String())
	assert.Equal(t, "TRANSFER", StateEntityTransfer.String())
	assert.Equal(t, "UNKNOWN", Category(42).String())
}

func TestFeatureName(t *testing.T) {
	assert.Equal(t, "A", Event{Update: &UpdateEvent{Feature: "A"}}.FeatureName())
	assert.Equal(t, "B", Event{Command: &CommandEvent{Feature: "B"}}.FeatureName())
	assert.Equal(t, "C", Event{Response: &ResponseEvent{Feature: "C"}}.FeatureName())
	assert.Equal(t, "", Event{Frame: &FrameEvent{}}.FeatureName())
}

func TestFileLoggerAppendsAndCloses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.blog")

	for i := 0; i < 2; i++ {
		logger, err := NewFileLogger(path)
		require.NoError(t, err)
		logger.Log(Event{Timestamp: time.Now(), SessionID: "s"})
		assert.Equal(t, 1, logger.Written())
		require.NoError(t, logger.Close())
		require.NoError(t, logger.Close())
		logger.Log(Event{SessionID: "ignored"})
	}

	reader, err := NewReader(path)
	require.NoError(t, err)
	defer reader.Close()
	events, err := reader.ReadAll()
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.blog")
	logger, err := NewFileLogger(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				logger.Log(Event{Timestamp: time.Now(), Layer: LayerFeature})
			}
		}()
	}
	wg.Wait()
	require.NoError(t, logger.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
	assert.Equal(t, 200, logger.Written())
}

func TestReaderFilters(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []Event{
		{Timestamp: base, SessionID: "s1", DeviceID: "dev-a", Direction: DirectionIn, Layer: LayerFeature, Category: CategoryNotification, Update: &UpdateEvent{Feature: "Temperature"}},
		{Timestamp: base.Add(time.Second), SessionID: "s1", DeviceID: "dev-a", Direction: DirectionOut, Layer: LayerFeature, Category: CategoryCommand, Command: &CommandEvent{Feature: "Switch"}},
		{Timestamp: base.Add(2 * time.Second), SessionID: "s2", DeviceID: "dev-b", Direction: DirectionIn, Layer: LayerTransport, Category: CategoryNotification, Frame: &FrameEvent{Size: 20}},
	}
	path := createTestLogFile(t, events)

	out := DirectionOut
	transport := LayerTransport
	notif := CategoryNotification
	start := base.Add(time.Second)
	end := base.Add(2 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 3},
		{"session", Filter{SessionID: "s1"}, 2},
		{"device", Filter{DeviceID: "dev-b"}, 1},
		{"feature", Filter{Feature: "Temperature"}, 1},
		{"direction", Filter{Direction: &out}, 1},
		{"layer", Filter{Layer: &transport}, 1},
		{"category", Filter{Category: &notif}, 2},
		{"time window", Filter{TimeStart: &start, TimeEnd: &end}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewFilteredReader(path, tt.filter)
			require.NoError(t, err)
			defer r.Close()

			count := 0
			for {
				_, err := r.Next()
				if err == io.EOF {
					break
				}
				require.NoError(t, err)
				count++
			}
			assert.Equal(t, tt.want, count)
		})
	}
}

func TestReaderMissingFile(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "missing.blog"))
	assert.Error(t, err)
}

func TestFanoutSkipsNil(t *testing.T) {
	var got1, got2 []Event
	multi := NewMultiLogger(
		LoggerFunc(func(e Event) { got1 = append(got1, e) }),
		nil,
		LoggerFunc(func(e Event) { got2 = append(got2, e) }),
	)
	assert.Len(t, multi, 2)

	multi.Log(Event{SessionID: "s"})
	assert.Len(t, got1, 1)
	assert.Len(t, got2, 1)
}

func TestOrNoop(t *testing.T) {
	assert.Equal(t, NoopLogger{}, OrNoop(nil))
	l := NewMultiLogger(NoopLogger{})
	assert.Equal(t, l, OrNoop(l))
}

func TestSlogAdapterUpdate(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	adapter := NewSlogAdapter(slog.New(handler))

	adapter.Log(Event{
		Timestamp: time.Now(),
		SessionID: "sess-1",
		Layer:     LayerFeature,
		Category:  CategoryNotification,
		Update: &UpdateEvent{
			Feature:   "Pressure",
			Tick:      12,
			ReadBytes: 4,
			Fields:    []FieldValue{{Name: "Pressure", Unit: "mBar", Value: "100"}},
		},
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "protocol", entry["msg"])
	assert.Equal(t, "sess-1", entry["session_id"])
	assert.Equal(t, "FEATURE", entry["layer"])
	assert.Equal(t, "Pressure", entry["feature"])
	assert.Equal(t, float64(4), entry["read_bytes"])
	assert.Equal(t, "100", entry["Pressure"])
}

func TestSlogAdapterError(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	adapter := NewSlogAdapter(slog.New(handler))

	offset := 3
	adapter.Log(Event{
		Category: CategoryError,
		Error:    &ErrorEventData{Layer: LayerSession, Message: "boom", Feature: "Humidity", Offset: &offset},
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "boom", entry["error_msg"])
	assert.Equal(t, float64(3), entry["offset"])
}

func TestSlogAdapterBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	NewSlogAdapter(slog.New(handler)).Log(Event{Frame: &FrameEvent{Size: 1}})
	assert.Zero(t, buf.Len())
}
