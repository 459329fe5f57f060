package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/nats-io/nats.go"

	"github.com/bluest-sdk/bluest-go/pkg/wire"
)

// DefaultSubjectPrefix is the first token of every published subject.
const DefaultSubjectPrefix = "bluest.update"

// Publisher is the part of *nats.Conn the NATS sink uses.
type Publisher interface {
	Publish(subj string, data []byte) error
}

// NATS publishes every record as JSON on <prefix>.<device>.<feature>.
type NATS struct {
	pub    Publisher
	prefix string
	conn   *nats.Conn
	closed atomic.Bool
}

// NewNATS creates a sink publishing through pub. An empty prefix selects
// DefaultSubjectPrefix.
func NewNATS(pub Publisher, prefix string) *NATS {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	s := &NATS{pub: pub, prefix: prefix}
	if c, ok := pub.(*nats.Conn); ok {
		s.conn = c
	}
	return s
}

// DialNATS connects to url and returns a sink that owns the connection.
func DialNATS(url, prefix, clientName string) (*NATS, error) {
	nc, err := nats.Connect(url, nats.Name(clientName), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return NewNATS(nc, prefix), nil
}

// Subject returns the subject a record is published on.
func (s *NATS) Subject(r wire.Record) string {
	return s.prefix + "." + token(r.DeviceID) + "." + token(r.Feature)
}

// Name returns "nats".
func (s *NATS) Name() string { return "nats" }

// Write publishes r.
func (s *NATS) Write(_ context.Context, r wire.Record) error {
	if s.closed.Load() {
		return ErrClosed
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	subject := s.Subject(r)
	if err := s.pub.Publish(subject, data); err != nil {
		return fmt.Errorf("publishing %s: %w", subject, err)
	}
	return nil
}

// Close drains the connection when the sink owns one.
func (s *NATS) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	if s.conn != nil {
		return s.conn.Drain()
	}
	return nil
}

var _ Sink = (*NATS)(nil)
