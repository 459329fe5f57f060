// Package sink delivers decoded feature updates to external consumers.
//
// A Sink receives wire.Record values from a session pipeline. Three
// implementations are provided:
//   - NATS publishes JSON records on a per-device, per-feature subject
//   - RedisShadow keeps the latest field values of every feature in a hash
//   - Hub streams records to WebSocket clients
//
// Sinks are called from the pipeline goroutine of each session, possibly
// from several sessions at once, and must be safe for concurrent use.
package sink

import (
	"context"
	"errors"
	"strings"

	"github.com/bluest-sdk/bluest-go/pkg/wire"
)

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("sink closed")

// Sink consumes decoded records.
type Sink interface {
	// Name identifies the sink in logs.
	Name() string

	// Write delivers one record. A returned error is logged by the caller
	// and never stops the stream.
	Write(ctx context.Context, r wire.Record) error

	// Close releases the sink's resources.
	Close() error
}

// Func adapts a function to the Sink interface.
type Func func(ctx context.Context, r wire.Record) error

// Name returns "func".
func (f Func) Name() string { return "func" }

// Write calls f(ctx, r).
func (f Func) Write(ctx context.Context, r wire.Record) error { return f(ctx, r) }

// Close does nothing.
func (f Func) Close() error { return nil }

// token makes s usable as one segment of a NATS subject or Redis key.
func token(s string) string {
	if s == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '.', '*', '>', '\t', '\n', '\r':
			return '_'
		default:
			return r
		}
	}, s)
}

var _ Sink = Func(nil)
