package commands

import (
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/bluest-sdk/bluest-go/pkg/log"
)

// Export formats.
const (
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
	FormatXLSX  = "xlsx"
)

// Sheet names of the xlsx export.
const (
	eventsSheet  = "Events"
	updatesSheet = "Updates"
)

var eventHeader = []string{
	"timestamp", "session_id", "direction", "layer", "category",
	"device_id", "characteristic", "type", "feature", "detail",
}

var updateHeader = []string{"timestamp", "device_id", "feature", "tick", "field", "value", "unit"}

// RunExport exports the log file to the specified format.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case FormatJSONL:
		return exportJSONL(reader, w)
	case FormatCSV:
		return exportCSV(reader, w)
	case FormatXLSX:
		return exportXLSX(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv, xlsx)", format)
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(eventHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := cw.Write(eventRow(event)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// exportXLSX writes a workbook with every event on one sheet and one row
// per decoded field on a second.
func exportXLSX(reader *log.Reader, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", eventsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(updatesSheet); err != nil {
		return err
	}
	if err := setRow(f, eventsSheet, 1, eventHeader); err != nil {
		return err
	}
	if err := setRow(f, updatesSheet, 1, updateHeader); err != nil {
		return err
	}

	eventRowNum, updateRowNum := 2, 2
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := setRow(f, eventsSheet, eventRowNum, eventRow(event)); err != nil {
			return err
		}
		eventRowNum++

		if event.Update == nil {
			continue
		}
		ts := event.Timestamp.UTC().Format(timeLayout)
		for _, field := range event.Update.Fields {
			row := []any{ts, event.DeviceID, event.Update.Feature, event.Update.Tick, field.Name, field.Value, field.Unit}
			if err := f.SetSheetRow(updatesSheet, fmt.Sprintf("A%d", updateRowNum), &row); err != nil {
				return err
			}
			updateRowNum++
		}
	}

	_ = f.SetColWidth(eventsSheet, "A", "A", 28)
	_ = f.SetColWidth(eventsSheet, "B", "I", 18)
	_ = f.SetColWidth(eventsSheet, "J", "J", 60)
	_ = f.SetColWidth(updatesSheet, "A", "A", 28)
	_ = f.SetColWidth(updatesSheet, "B", "G", 16)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &cells)
}

// eventRow flattens an event to the columns of eventHeader.
func eventRow(event log.Event) []string {
	return []string{
		event.Timestamp.UTC().Format(timeLayout),
		event.SessionID,
		event.Direction.String(),
		event.Layer.String(),
		event.Category.String(),
		event.DeviceID,
		event.Characteristic,
		strings.ToLower(eventType(event)),
		event.FeatureName(),
		eventDetail(event),
	}
}

func eventDetail(event log.Event) string {
	switch {
	case event.Frame != nil:
		return hex.EncodeToString(event.Frame.Data)
	case event.Update != nil:
		parts := make([]string, len(event.Update.Fields))
		for i, f := range event.Update.Fields {
			parts[i] = strings.TrimSpace(f.Name + "=" + f.Value + " " + f.Unit)
		}
		return strings.Join(parts, "; ")
	case event.Command != nil:
		return fmt.Sprintf("%s 0x%02X", event.Command.Name, event.Command.CommandID)
	case event.Response != nil:
		return strings.TrimSpace(event.Response.Name + " " + event.Response.Summary)
	case event.StateChange != nil:
		return strings.TrimSpace(event.StateChange.OldState + " -> " + event.StateChange.NewState)
	case event.Error != nil:
		return event.Error.Message
	default:
		return ""
	}
}
