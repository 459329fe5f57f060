package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bluest-sdk/bluest-go/pkg/features"
	"github.com/bluest-sdk/bluest-go/pkg/session"
	"github.com/bluest-sdk/bluest-go/pkg/wire"
)

// maxLineSize bounds one input line; HSDataLog descriptions arrive in many
// frames but each frame is small.
const maxLineSize = 64 * 1024

// StreamSummary counts what a stream processed.
type StreamSummary struct {
	Lines        int
	Records      int
	Responses    int
	ParseErrors  int
	DecodeErrors int
}

// Stream feeds notifications to a pipeline in arrival order and prints the
// results.
type Stream struct {
	Pipeline *session.Pipeline
	Printer  *Printer

	// Errors receives per-notification problems. Nil discards them.
	Errors io.Writer

	// Capture receives every accepted notification as CBOR, in the format
	// Replay reads back.
	Capture io.Writer
}

// RunStream reads "<uuid> <hex>" lines from in, feeds them to the pipeline
// in order and prints the decoded records. Malformed lines are reported on
// errOut and skipped.
func RunStream(ctx context.Context, in io.Reader, p *session.Pipeline, printer *Printer, errOut io.Writer) (StreamSummary, error) {
	s := &Stream{Pipeline: p, Printer: printer, Errors: errOut}
	return s.Run(ctx, in)
}

// Run reads "<uuid> <hex>" lines. Blank lines and lines starting with '#'
// are ignored.
func (s *Stream) Run(ctx context.Context, in io.Reader) (StreamSummary, error) {
	var sum StreamSummary
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sum.Lines++

		n, err := ParseNotification(line)
		if err != nil {
			sum.ParseErrors++
			s.reportf("line %d: %v\n", sum.Lines, err)
			continue
		}
		n.ReceivedAt = time.Now()
		if err := s.handle(ctx, n, &sum); err != nil {
			return sum, err
		}
	}
	return sum, scanner.Err()
}

// Replay reads a CBOR notification capture. Receive times from the capture
// are kept.
func (s *Stream) Replay(ctx context.Context, in io.Reader) (StreamSummary, error) {
	var sum StreamSummary
	dec := wire.NewDecoder(in)
	for {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		var n wire.Notification
		if err := dec.Decode(&n); err != nil {
			if errors.Is(err, io.EOF) {
				return sum, nil
			}
			return sum, fmt.Errorf("reading capture: %w", err)
		}
		sum.Lines++
		if err := s.handle(ctx, n, &sum); err != nil {
			return sum, err
		}
	}
}

func (s *Stream) handle(ctx context.Context, n wire.Notification, sum *StreamSummary) error {
	if s.Capture != nil {
		data, err := wire.EncodeNotification(&n)
		if err != nil {
			return err
		}
		if _, err := s.Capture.Write(data); err != nil {
			return fmt.Errorf("writing capture: %w", err)
		}
	}

	if n.Characteristic == features.ConfigCharacteristic {
		if resp := s.Pipeline.ProcessResponse(n); resp != nil {
			sum.Responses++
			return s.Printer.Response(resp)
		}
		return nil
	}

	before := s.Pipeline.Stats().DecodeErrors
	records := s.Pipeline.Process(ctx, n)
	if s.Pipeline.Stats().DecodeErrors != before {
		sum.DecodeErrors++
		s.reportf("line %d: %v\n", sum.Lines, s.Pipeline.LastError())
	}
	for _, r := range records {
		sum.Records++
		if err := s.Printer.Record(r); err != nil {
			return err
		}
	}
	return nil
}

func (s *Stream) reportf(format string, args ...any) {
	if s.Errors != nil {
		fmt.Fprintf(s.Errors, format, args...)
	}
}
