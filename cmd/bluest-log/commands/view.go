// Package commands implements the bluest-log CLI commands.
package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/bluest-sdk/bluest-go/pkg/log"
)

const timeLayout = "2006-01-02T15:04:05.000000Z"

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Layer     *log.Layer
	Direction *log.Direction
	Category  *log.Category
	Feature   string
}

func (f ViewFilter) logFilter() log.Filter {
	return log.Filter{
		Layer:     f.Layer,
		Direction: f.Direction,
		Category:  f.Category,
		Feature:   f.Feature,
	}
}

// eventType returns the label of the payload an event carries.
func eventType(event log.Event) string {
	switch {
	case event.Frame != nil:
		return "Frame"
	case event.Update != nil:
		return "Update"
	case event.Command != nil:
		return "Command"
	case event.Response != nil:
		return "Response"
	case event.StateChange != nil:
		return "State"
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// timestamp [session:id] DIRECTION LAYER Type
	ts := event.Timestamp.UTC().Format(timeLayout)
	fmt.Fprintf(w, "%s [session:%s] %-3s %s %s\n",
		ts, shortenID(event.SessionID), event.Direction, event.Layer, eventType(event))

	if event.DeviceID != "" {
		fmt.Fprintf(w, "  Device: %s\n", event.DeviceID)
	}
	if event.Characteristic != "" {
		fmt.Fprintf(w, "  Characteristic: %s\n", event.Characteristic)
	}

	switch {
	case event.Frame != nil:
		formatFrameDetails(w, event.Frame)
	case event.Update != nil:
		formatUpdateDetails(w, event.Update)
	case event.Command != nil:
		formatCommandDetails(w, event.Command)
	case event.Response != nil:
		formatResponseDetails(w, event.Response)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

// shortenID returns the first 8 characters of a session ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatFrameDetails(w io.Writer, frame *log.FrameEvent) {
	fmt.Fprintf(w, "  Size: %d bytes\n", frame.Size)
	if frame.Marker != nil {
		fmt.Fprintf(w, "  Marker: 0x%02X\n", *frame.Marker)
	}
	if len(frame.Data) > 0 {
		fmt.Fprintf(w, "  Data: %s", hex.EncodeToString(frame.Data))
		if frame.Truncated {
			fmt.Fprintf(w, " (truncated)")
		}
		fmt.Fprintln(w)
	}
}

func formatUpdateDetails(w io.Writer, u *log.UpdateEvent) {
	fmt.Fprintf(w, "  Feature: %s  Tick: %d  Bytes: %d\n", u.Feature, u.Tick, u.ReadBytes)
	for _, f := range u.Fields {
		if f.Unit != "" {
			fmt.Fprintf(w, "    %s = %s %s\n", f.Name, f.Value, f.Unit)
		} else {
			fmt.Fprintf(w, "    %s = %s\n", f.Name, f.Value)
		}
	}
}

func formatCommandDetails(w io.Writer, c *log.CommandEvent) {
	fmt.Fprintf(w, "  Feature: %s  Command: %s (0x%02X)  Size: %d bytes\n", c.Feature, c.Name, c.CommandID, c.Size)
}

func formatResponseDetails(w io.Writer, r *log.ResponseEvent) {
	fmt.Fprintf(w, "  Feature: %s  Response: %s (0x%02X)\n", r.Feature, r.Name, r.CommandID)
	if r.Summary != "" {
		fmt.Fprintf(w, "  %s\n", r.Summary)
	}
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity)
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer)
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Feature != "" {
		fmt.Fprintf(w, "  Feature: %s\n", err.Feature)
	}
	if err.Offset != nil {
		fmt.Fprintf(w, "  Offset: %d\n", *err.Offset)
	}
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// ParseLayerFlag parses a layer name (case-insensitive).
func ParseLayerFlag(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "feature":
		return log.LayerFeature, nil
	case "session":
		return log.LayerSession, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be transport, feature, or session)", s)
	}
}

// ParseDirectionFlag parses a direction name (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategoryFlag parses a category name (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "notification":
		return log.CategoryNotification, nil
	case "command":
		return log.CategoryCommand, nil
	case "response":
		return log.CategoryResponse, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be notification, command, response, state, or error)", s)
	}
}

// RunView prints the events of the log file matching filter.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter.logFilter())
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
}
