package log

import (
	"context"
	"log/slog"
)

// SlogAdapter prints protocol events through an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates an adapter writing to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session_id", event.SessionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}
	if event.DeviceID != "" {
		attrs = append(attrs, slog.String("device_id", event.DeviceID))
	}
	if event.Characteristic != "" {
		attrs = append(attrs, slog.String("characteristic", event.Characteristic))
	}

	switch {
	case event.Frame != nil:
		attrs = append(attrs,
			slog.Int("frame_size", event.Frame.Size),
			slog.Bool("truncated", event.Frame.Truncated),
		)
		if event.Frame.Marker != nil {
			attrs = append(attrs, slog.Int("marker", int(*event.Frame.Marker)))
		}
	case event.Update != nil:
		attrs = append(attrs,
			slog.String("feature", event.Update.Feature),
			slog.Uint64("tick", event.Update.Tick),
			slog.Int("read_bytes", event.Update.ReadBytes),
		)
		for _, f := range event.Update.Fields {
			attrs = append(attrs, slog.String(f.Name, f.Value))
		}
	case event.Command != nil:
		attrs = append(attrs,
			slog.String("feature", event.Command.Feature),
			slog.String("command", event.Command.Name),
			slog.Int("command_id", int(event.Command.CommandID)),
			slog.Int("size", event.Command.Size),
		)
	case event.Response != nil:
		attrs = append(attrs,
			slog.String("feature", event.Response.Feature),
			slog.String("response", event.Response.Name),
			slog.Int("command_id", int(event.Response.CommandID)),
		)
		if event.Response.Summary != "" {
			attrs = append(attrs, slog.String("summary", event.Response.Summary))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Feature != "" {
			attrs = append(attrs, slog.String("feature", event.Error.Feature))
		}
		if event.Error.Offset != nil {
			attrs = append(attrs, slog.Int("offset", *event.Error.Offset))
		}
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
