package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bluest-sdk/bluest-go/pkg/features"
	"github.com/bluest-sdk/bluest-go/pkg/log"
	"github.com/bluest-sdk/bluest-go/pkg/model"
	"github.com/bluest-sdk/bluest-go/pkg/numconv"
	"github.com/bluest-sdk/bluest-go/pkg/transport"
)

// Session errors.
var (
	ErrUnknownFeature      = errors.New("unknown feature")
	ErrNotDiscovered       = errors.New("characteristic not discovered")
	ErrCommandNotHandled   = errors.New("command not handled by feature")
	ErrUnparseableResponse = errors.New("unparseable command response")
	ErrStalledCursor       = errors.New("feature consumed no bytes")
)

// DefaultProtocolVersion is the BlueST protocol version of current firmware.
const DefaultProtocolVersion = 2

// Config configures a Session.
type Config struct {
	// DeviceID identifies the peer, usually its BLE address.
	DeviceID string

	// Board selects the feature mask table.
	Board features.Board

	// ProtocolVersion is the version byte of the advertisement. With
	// version 1 only the features in AdvertiseMask are enabled.
	ProtocolVersion uint8

	// AdvertiseMask is the feature mask from the advertisement.
	AdvertiseMask uint32

	// MaxPayloadSize is the largest characteristic write. Zero selects
	// model.DefaultMaxPayloadSize.
	MaxPayloadSize int

	// MaskOrder lays out the records of a multi-feature notification.
	// Nil selects MSBFirst.
	MaskOrder MaskOrder

	// Clock stamps features that carry no device tick. Nil selects time.Now.
	Clock func() time.Time
}

func (c Config) withDefaults() Config {
	if c.ProtocolVersion == 0 {
		c.ProtocolVersion = DefaultProtocolVersion
	}
	if c.MaxPayloadSize <= 0 {
		c.MaxPayloadSize = model.DefaultMaxPayloadSize
	}
	if c.MaskOrder == nil {
		c.MaskOrder = MSBFirst
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	return c
}

// Session holds the features of one connected board and decodes its
// notifications.
//
// Session methods are safe for concurrent use. Decoding mutates the
// reassembly state of stream features, so notifications of one device must
// be decoded in arrival order; Pipeline does that.
type Session struct {
	id  string
	cfg Config
	ts  TimestampUnwrapper

	mu     sync.RWMutex
	byName map[string]*features.Feature
	byMask map[uint32]*features.Feature
	byChar map[uuid.UUID][]*features.Feature
	order  []*features.Feature

	logger         *slog.Logger
	protocolLogger log.Logger
}

// New creates a session.
func New(cfg Config) *Session {
	return &Session{
		id:     uuid.NewString(),
		cfg:    cfg.withDefaults(),
		byName: make(map[string]*features.Feature),
		byMask: make(map[uint32]*features.Feature),
		byChar: make(map[uuid.UUID][]*features.Feature),
		logger: slog.New(slog.DiscardHandler),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// DeviceID returns the peer identifier.
func (s *Session) DeviceID() string { return s.cfg.DeviceID }

// Config returns the effective configuration.
func (s *Session) Config() Config { return s.cfg }

// SetLogger sets the diagnostic logger.
func (s *Session) SetLogger(logger *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s.logger = logger.With("session", s.id, "device", s.cfg.DeviceID)
}

// SetProtocolLogger sets the protocol trace logger.
func (s *Session) SetProtocolLogger(logger log.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.protocolLogger = logger
}

func (s *Session) loggers() (*slog.Logger, log.Logger) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logger, log.OrNoop(s.protocolLogger)
}

// Discover registers the features carried by ch and returns them in
// notification order. Discovering a characteristic twice returns the
// registered features.
func (s *Session) Discover(ch uuid.UUID) ([]*features.Feature, error) {
	s.mu.Lock()
	if fs, ok := s.byChar[ch]; ok {
		s.mu.Unlock()
		return fs, nil
	}

	created, err := features.ForCharacteristic(s.cfg.Board, ch, s.cfg.AdvertiseMask, s.cfg.ProtocolVersion, s.cfg.MaxPayloadSize)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	fs := s.arrange(ch, created)

	var added []*features.Feature
	for i, f := range fs {
		if existing, ok := s.lookupLocked(f); ok {
			fs[i] = existing
			continue
		}
		if _, dup := s.byName[f.Name()]; !dup {
			s.byName[f.Name()] = f
		}
		if mask, ok := f.Descriptor().Mask(); ok {
			s.byMask[mask] = f
		}
		s.order = append(s.order, f)
		added = append(added, f)
	}
	s.byChar[ch] = fs
	logger, plog := s.logger, log.OrNoop(s.protocolLogger)
	s.mu.Unlock()

	for _, f := range added {
		logger.Debug("feature discovered", "feature", f.Name(), "type", f.Descriptor().Type, "enabled", f.Enabled())
		plog.Log(s.event(ch, log.DirectionIn, log.LayerSession, log.CategoryState, func(e *log.Event) {
			e.StateChange = &log.StateChangeEvent{
				Entity:   log.StateEntityFeature,
				NewState: enabledState(f.Enabled()),
				Reason:   "discovered " + f.Name(),
			}
		}))
	}
	return fs, nil
}

// arrange orders standard features by the mask order policy.
func (s *Session) arrange(ch uuid.UUID, fs []*features.Feature) []*features.Feature {
	t, mask, err := model.ParseCharacteristic(ch)
	if err != nil || t != model.TypeStandard {
		return fs
	}
	byBit := make(map[uint32]*features.Feature, len(fs))
	for _, f := range fs {
		bit, _ := f.Descriptor().Mask()
		byBit[bit] = f
	}
	out := make([]*features.Feature, 0, len(fs))
	for _, bit := range s.cfg.MaskOrder(mask) {
		if f, ok := byBit[bit]; ok {
			out = append(out, f)
		}
	}
	return out
}

// lookupLocked finds an already registered instance of f, so a feature
// exported on several characteristics keeps one reassembly state.
func (s *Session) lookupLocked(f *features.Feature) (*features.Feature, bool) {
	if mask, ok := f.Descriptor().Mask(); ok {
		existing, found := s.byMask[mask]
		return existing, found
	}
	existing, found := s.byName[f.Name()]
	if found && existing.Descriptor().Type != f.Descriptor().Type {
		return nil, false
	}
	return existing, found
}

// Features returns every registered feature in discovery order.
func (s *Session) Features() []*features.Feature {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*features.Feature(nil), s.order...)
}

// Feature returns the registered feature with the given name.
func (s *Session) Feature(name string) (*features.Feature, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.byName[name]
	return f, ok
}

// SetEnabled toggles a registered feature.
func (s *Session) SetEnabled(name string, enabled bool) error {
	f, ok := s.Feature(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFeature, name)
	}
	old := f.Enabled()
	f.SetEnabled(enabled)
	if old == enabled {
		return nil
	}
	_, plog := s.loggers()
	plog.Log(s.event(uuid.Nil, log.DirectionOut, log.LayerSession, log.CategoryState, func(e *log.Event) {
		e.StateChange = &log.StateChangeEvent{
			Entity:   log.StateEntityFeature,
			OldState: enabledState(old),
			NewState: enabledState(enabled),
			Reason:   name,
		}
	}))
	return nil
}

// Decode dispatches a notification of ch to the features the
// characteristic carries and returns their updates in buffer order.
//
// A notification starts with a 2-byte little endian device tick, unless the
// characteristic's features carry none. Standard features then read their
// records back to back; disabled ones are skipped. Decoding stops at the
// first error and returns the updates produced so far with it.
func (s *Session) Decode(ch uuid.UUID, data []byte) ([]model.AnyUpdate, error) {
	s.mu.RLock()
	fs, ok := s.byChar[ch]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotDiscovered, ch)
	}
	logger, plog := s.loggers()
	plog.Log(s.frameEvent(ch, data))

	if len(fs) == 0 {
		return nil, nil
	}

	var (
		tick   uint64
		offset int
	)
	switch {
	case !fs[0].HasTimestamp():
		tick = hostTick(s.cfg.Clock())
	case len(data) >= 2:
		raw, _ := numconv.LittleEndian.UInt16(data, 0)
		tick = s.ts.Unwrap(raw)
		offset = 2
	default:
		tick = s.ts.Next()
	}

	var updates []model.AnyUpdate
	for _, f := range fs {
		if offset >= len(data) && len(updates) > 0 {
			break
		}
		if !f.Enabled() {
			continue
		}
		u, err := f.Extract(tick, data, offset)
		if err != nil {
			s.logDecodeError(logger, plog, ch, f, offset, err)
			return updates, err
		}
		updates = append(updates, u)
		plog.Log(s.updateEvent(ch, u))

		if !f.IsStandard() {
			continue
		}
		if u.ReadBytes <= 0 {
			err := fmt.Errorf("%s: %w", f.Name(), ErrStalledCursor)
			s.logDecodeError(logger, plog, ch, f, offset, err)
			return updates, err
		}
		offset += u.ReadBytes
	}
	return updates, nil
}

// hostTick expresses a host time in device ticks of 10 ms, so features
// without a device tick share the unit of those with one.
func hostTick(t time.Time) uint64 {
	return uint64(t.UnixMilli() / 10)
}

// Encode packs cmd for the named feature.
func (s *Session) Encode(feature string, cmd features.Command) ([]byte, error) {
	f, ok := s.Feature(feature)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFeature, feature)
	}
	data, ok := f.Pack(cmd)
	if !ok {
		return nil, fmt.Errorf("%w: %s does not handle %s", ErrCommandNotHandled, feature, commandName(cmd))
	}

	ch, _ := features.CommandCharacteristic(f)
	logger, plog := s.loggers()
	logger.Debug("command packed", "feature", feature, "command", cmd.Name(), "size", len(data))
	plog.Log(s.event(ch, log.DirectionOut, log.LayerFeature, log.CategoryCommand, func(e *log.Event) {
		e.Command = &log.CommandEvent{
			Feature:   feature,
			CommandID: commandID(f, data),
			Name:      cmd.Name(),
			Size:      len(data),
		}
	}))
	return data, nil
}

// CommandTarget returns the characteristic commands for the named feature
// are written to.
func (s *Session) CommandTarget(feature string) (uuid.UUID, error) {
	f, ok := s.Feature(feature)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrUnknownFeature, feature)
	}
	ch, ok := features.CommandCharacteristic(f)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: %s has no writable characteristic", ErrUnknownFeature, feature)
	}
	return ch, nil
}

// Send encodes cmd for the named feature and writes it to w as
// characteristic writes of at most the feature's payload size. Each write
// is traced as an outbound frame.
func (s *Session) Send(feature string, cmd features.Command, w io.Writer) error {
	data, err := s.Encode(feature, cmd)
	if err != nil {
		return err
	}
	f, _ := s.Feature(feature)
	_, plog := s.loggers()

	fw := transport.NewFrameWriter(w, f.Descriptor().MaxPayloadSize)
	fw.SetLogger(plog, s.id)
	return fw.Write(data)
}

// ParseResponse interprets a notification of the config characteristic.
func (s *Session) ParseResponse(data []byte) (features.Response, error) {
	logger, plog := s.loggers()
	plog.Log(s.frameEvent(features.ConfigCharacteristic, data))

	raw, err := features.UnpackResponse(data)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	f, ok := s.byMask[raw.Mask]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: mask 0x%08X", ErrUnknownFeature, raw.Mask)
	}

	resp, ok := f.ParseResponse(raw)
	if !ok {
		logger.Debug("response not understood", "feature", f.Name(), "command", raw.CommandID, "size", len(raw.Payload))
		return nil, fmt.Errorf("%w: %s command 0x%02X", ErrUnparseableResponse, f.Name(), raw.CommandID)
	}

	plog.Log(s.event(features.ConfigCharacteristic, log.DirectionIn, log.LayerFeature, log.CategoryResponse, func(e *log.Event) {
		e.Response = &log.ResponseEvent{
			Feature:   f.Name(),
			CommandID: raw.CommandID,
			Name:      resp.Name(),
			Summary:   fmt.Sprintf("%+v", resp),
		}
	}))
	return resp, nil
}

// Close records the end of the session.
func (s *Session) Close() {
	_, plog := s.loggers()
	plog.Log(s.event(uuid.Nil, log.DirectionIn, log.LayerSession, log.CategoryState, func(e *log.Event) {
		e.StateChange = &log.StateChangeEvent{
			Entity:   log.StateEntitySession,
			OldState: "OPEN",
			NewState: "CLOSED",
		}
	}))
}

func (s *Session) event(ch uuid.UUID, dir log.Direction, layer log.Layer, cat log.Category, fill func(*log.Event)) log.Event {
	e := log.Event{
		Timestamp: time.Now(),
		SessionID: s.id,
		Direction: dir,
		Layer:     layer,
		Category:  cat,
		DeviceID:  s.cfg.DeviceID,
	}
	if ch != uuid.Nil {
		e.Characteristic = ch.String()
	}
	fill(&e)
	return e
}

func (s *Session) frameEvent(ch uuid.UUID, data []byte) log.Event {
	e := transport.FrameEvent(s.id, log.DirectionIn, data, false)
	e.DeviceID = s.cfg.DeviceID
	e.Characteristic = ch.String()
	return e
}

func (s *Session) updateEvent(ch uuid.UUID, u model.AnyUpdate) log.Event {
	return s.event(ch, log.DirectionIn, log.LayerFeature, log.CategoryNotification, func(e *log.Event) {
		ue := &log.UpdateEvent{
			Feature:   u.Feature,
			Tick:      u.Timestamp,
			ReadBytes: u.ReadBytes,
		}
		if u.Data != nil {
			for _, f := range u.Data.Fields() {
				ue.Fields = append(ue.Fields, log.FieldValue{
					Name:  f.FieldName(),
					Unit:  f.FieldUnit(),
					Value: f.LogValue(),
				})
			}
		}
		e.Update = ue
	})
}

func (s *Session) logDecodeError(logger *slog.Logger, plog log.Logger, ch uuid.UUID, f *features.Feature, offset int, err error) {
	logger.Warn("decode failed", "feature", f.Name(), "offset", offset, "error", err)
	plog.Log(s.event(ch, log.DirectionIn, log.LayerFeature, log.CategoryError, func(e *log.Event) {
		off := offset
		e.Error = &log.ErrorEventData{
			Layer:   log.LayerFeature,
			Message: err.Error(),
			Feature: f.Name(),
			Offset:  &off,
			Context: "decode",
		}
	}))
}

func enabledState(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

func commandName(cmd features.Command) string {
	if cmd == nil {
		return "<nil>"
	}
	return cmd.Name()
}

// commandID returns the command byte of a packed write.
func commandID(f *features.Feature, data []byte) uint8 {
	idx := 0
	if f.IsStandard() {
		idx = 4
	}
	if len(data) <= idx {
		return 0
	}
	return data[idx]
}
