package commands

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/bluest-sdk/bluest-go/pkg/log"
)

func exportEvents() []log.Event {
	return []log.Event{
		{
			Timestamp:      testTime,
			SessionID:      testSessionID,
			Direction:      log.DirectionIn,
			Layer:          log.LayerTransport,
			Category:       log.CategoryNotification,
			DeviceID:       "C0:FF:EE:00:00:01",
			Characteristic: "00040000-0001-11e1-ac36-0002a5d5c51b",
			Frame:          &log.FrameEvent{Size: 4, Data: []byte{0x10, 0x00, 0xe8, 0x00}},
		},
		{
			Timestamp: testTime,
			SessionID: testSessionID,
			Direction: log.DirectionIn,
			Layer:     log.LayerFeature,
			Category:  log.CategoryNotification,
			DeviceID:  "C0:FF:EE:00:00:01",
			Update: &log.UpdateEvent{
				Feature: "Temperature",
				Tick:    16,
				Fields:  []log.FieldValue{{Name: "Temperature", Unit: "℃", Value: "23.2"}},
			},
		},
		{
			Timestamp: testTime,
			SessionID: testSessionID,
			Direction: log.DirectionOut,
			Layer:     log.LayerFeature,
			Category:  log.CategoryCommand,
			Command:   &log.CommandEvent{Feature: "Switch", CommandID: 0x01, Name: "SwitchOn", Size: 5},
		},
	}
}

func TestExportToJSONL(t *testing.T) {
	path := createTestLogFile(t, exportEvents())

	outPath := filepath.Join(t.TempDir(), "out.jsonl")
	if err := RunExport(path, FormatJSONL, outPath); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}

	var second log.Event
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("invalid JSON line: %v", err)
	}
	if second.Update == nil || second.Update.Feature != "Temperature" {
		t.Errorf("expected temperature update, got %+v", second)
	}
	if !second.Timestamp.Equal(testTime) {
		t.Errorf("timestamp = %v, want %v", second.Timestamp, testTime)
	}
}

func TestExportToCSV(t *testing.T) {
	path := createTestLogFile(t, exportEvents())

	outPath := filepath.Join(t.TempDir(), "out.csv")
	if err := RunExport(path, FormatCSV, outPath); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header and 3 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != strings.Join(eventHeader, ",") {
		t.Errorf("unexpected header: %v", records[0])
	}

	tests := []struct {
		row     int
		typ     string
		feature string
		detail  string
	}{
		{1, "frame", "", "1000e800"},
		{2, "update", "Temperature", "Temperature=23.2 ℃"},
		{3, "command", "Switch", "SwitchOn 0x01"},
	}
	for _, tt := range tests {
		row := records[tt.row]
		if row[7] != tt.typ || row[8] != tt.feature || row[9] != tt.detail {
			t.Errorf("row %d = %v, want type %q feature %q detail %q", tt.row, row, tt.typ, tt.feature, tt.detail)
		}
	}
	if records[1][0] != "2026-01-28T10:15:32.123456Z" || records[1][2] != "IN" || records[1][3] != "TRANSPORT" {
		t.Errorf("unexpected frame row: %v", records[1])
	}
}

func TestExportToXLSX(t *testing.T) {
	path := createTestLogFile(t, exportEvents())

	outPath := filepath.Join(t.TempDir(), "out.xlsx")
	if err := RunExport(path, FormatXLSX, outPath); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	f, err := excelize.OpenFile(outPath)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer f.Close()

	events, err := f.GetRows(eventsSheet)
	if err != nil {
		t.Fatalf("failed to read events sheet: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("expected header and 3 event rows, got %d", len(events))
	}
	if events[2][8] != "Temperature" {
		t.Errorf("unexpected update row: %v", events[2])
	}

	updates, err := f.GetRows(updatesSheet)
	if err != nil {
		t.Fatalf("failed to read updates sheet: %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("expected header and 1 field row, got %d", len(updates))
	}
	want := []string{"2026-01-28T10:15:32.123456Z", "C0:FF:EE:00:00:01", "Temperature", "16", "Temperature", "23.2", "℃"}
	if strings.Join(updates[1], "|") != strings.Join(want, "|") {
		t.Errorf("field row = %v, want %v", updates[1], want)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	path := createTestLogFile(t, exportEvents())
	err := RunExport(path, "parquet", filepath.Join(t.TempDir(), "out"))
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("expected unknown format error, got %v", err)
	}
}

func TestEventDetail(t *testing.T) {
	tests := []struct {
		name  string
		event log.Event
		want  string
	}{
		{"State", log.Event{StateChange: &log.StateChangeEvent{NewState: "OPEN"}}, "-> OPEN"},
		{"Response", log.Event{Response: &log.ResponseEvent{Name: "BatteryCapacity"}}, "BatteryCapacity"},
		{"Error", log.Event{Error: &log.ErrorEventData{Message: "boom"}}, "boom"},
		{"Empty", log.Event{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := eventDetail(tt.event); got != tt.want {
				t.Errorf("eventDetail = %q, want %q", got, tt.want)
			}
		})
	}
	if got := eventType(log.Event{}); got != "Unknown" {
		t.Errorf("eventType = %q", got)
	}
}
