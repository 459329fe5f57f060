package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/bluest-sdk/bluest-go/pkg/features"
	"github.com/bluest-sdk/bluest-go/pkg/wire"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Printer writes records in text or JSON lines.
type Printer struct {
	w      io.Writer
	format string
}

// NewPrinter creates a printer. An unknown format falls back to text.
func NewPrinter(w io.Writer, format string) *Printer {
	if format != FormatJSON {
		format = FormatText
	}
	return &Printer{w: w, format: format}
}

// Record prints one record.
func (p *Printer) Record(r wire.Record) error {
	if p.format == FormatJSON {
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(p.w, "%s\n", data)
		return err
	}
	_, err := fmt.Fprintln(p.w, FormatRecord(r))
	return err
}

// Response prints one command response.
func (p *Printer) Response(resp features.Response) error {
	if p.format == FormatJSON {
		data, err := json.Marshal(map[string]any{
			"response": resp.Name(),
			"feature":  resp.Header().FeatureName,
			"command":  resp.Header().CommandID,
			"data":     resp,
		})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(p.w, "%s\n", data)
		return err
	}
	_, err := fmt.Fprintln(p.w, FormatResponse(resp))
	return err
}

// FormatRecord renders a record as "[tick] Feature: name=value unit, ...".
func FormatRecord(r wire.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] %s:", r.Tick, r.Feature)
	for i, f := range r.Fields {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, " %s=%s", f.Name, f.Text)
		if f.Unit != "" {
			b.WriteString(" " + f.Unit)
		}
	}
	return b.String()
}

// FormatResponse renders a command response.
func FormatResponse(resp features.Response) string {
	h := resp.Header()
	return fmt.Sprintf("%s response 0x%02X: %s %+v", h.FeatureName, h.CommandID, resp.Name(), resp)
}
