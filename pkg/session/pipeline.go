package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/bluest-sdk/bluest-go/pkg/features"
	"github.com/bluest-sdk/bluest-go/pkg/sink"
	"github.com/bluest-sdk/bluest-go/pkg/wire"
)

// Stats counts what a pipeline processed.
type Stats struct {
	Notifications uint64
	Updates       uint64
	DecodeErrors  uint64
	SinkErrors    uint64
}

// Pipeline decodes the notifications of one session in arrival order and
// delivers the resulting records to sinks.
type Pipeline struct {
	session *Session
	sinks   []sink.Sink

	notifications atomic.Uint64
	updates       atomic.Uint64
	decodeErrors  atomic.Uint64
	sinkErrors    atomic.Uint64

	mu      sync.Mutex
	lastErr error
}

// NewPipeline creates a pipeline for s.
func NewPipeline(s *Session, sinks ...sink.Sink) *Pipeline {
	return &Pipeline{session: s, sinks: sinks}
}

// Run processes notifications from in until in is closed or ctx is done.
// It returns nil when in is closed.
func (p *Pipeline) Run(ctx context.Context, in <-chan wire.Notification) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-in:
			if !ok {
				return nil
			}
			p.Process(ctx, n)
		}
	}
}

// Process decodes one notification and delivers its records. It returns the
// records delivered. Decode failures and sink failures are logged and
// counted, never returned. Notifications of the config characteristic are
// command responses and produce no records.
func (p *Pipeline) Process(ctx context.Context, n wire.Notification) []wire.Record {
	p.notifications.Add(1)
	logger, _ := p.session.loggers()

	if n.Characteristic == features.ConfigCharacteristic {
		p.ProcessResponse(n)
		return nil
	}

	updates, err := p.session.Decode(n.Characteristic, n.Data)
	if errors.Is(err, ErrNotDiscovered) {
		if _, derr := p.session.Discover(n.Characteristic); derr == nil {
			updates, err = p.session.Decode(n.Characteristic, n.Data)
		}
	}
	if err != nil {
		p.decodeErrors.Add(1)
		p.mu.Lock()
		p.lastErr = err
		p.mu.Unlock()
		logger.Debug("notification dropped", "characteristic", n.Characteristic, "error", err)
	}
	if len(updates) == 0 {
		return nil
	}

	src := wire.Source{
		SessionID:  p.session.ID(),
		DeviceID:   n.DeviceID,
		ReceivedAt: n.ReceivedAt,
	}
	if src.DeviceID == "" {
		src.DeviceID = p.session.DeviceID()
	}
	if src.ReceivedAt.IsZero() {
		src.ReceivedAt = p.session.cfg.Clock()
	}

	records := make([]wire.Record, 0, len(updates))
	for _, u := range updates {
		r := wire.NewRecord(src, u)
		records = append(records, r)
		p.updates.Add(1)
		for _, s := range p.sinks {
			if err := s.Write(ctx, r); err != nil {
				p.sinkErrors.Add(1)
				logger.Warn("sink write failed", "sink", s.Name(), "feature", r.Feature, "error", err)
			}
		}
	}
	return records
}

// ProcessResponse parses a config characteristic notification. Unknown or
// unparseable responses are logged and yield nil.
func (p *Pipeline) ProcessResponse(n wire.Notification) features.Response {
	resp, err := p.session.ParseResponse(n.Data)
	if err != nil {
		logger, _ := p.session.loggers()
		logger.Debug("response dropped", "error", err)
		return nil
	}
	return resp
}

// Stats returns the pipeline counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Notifications: p.notifications.Load(),
		Updates:       p.updates.Load(),
		DecodeErrors:  p.decodeErrors.Load(),
		SinkErrors:    p.sinkErrors.Load(),
	}
}

// LastError returns the most recent decode failure, or nil.
func (p *Pipeline) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Close closes every sink and returns the first error.
func (p *Pipeline) Close() error {
	var first error
	for _, s := range p.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
