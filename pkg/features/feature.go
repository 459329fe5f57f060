package features

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bluest-sdk/bluest-go/pkg/model"
	"github.com/bluest-sdk/bluest-go/pkg/numconv"
	"github.com/bluest-sdk/bluest-go/pkg/transport"
)

// ErrInvalidPayload indicates a payload with the right length but content
// the decoder cannot interpret.
var ErrInvalidPayload = errors.New("invalid payload")

// Feature is one decodable capability of a connected board.
//
// A Feature carries the per-instance state some decoders need (the frame
// reassembler of stream features, the pedometer flag of the acceleration
// event feature). Extract calls for the same feature must therefore be
// serialized by the caller; the other methods are safe for concurrent use.
type Feature struct {
	desc  model.Descriptor
	kind  Kind
	codec codec

	mu        sync.RWMutex
	enabled   bool
	pedometer bool
	stream    *transport.Reassembler
}

// Option configures a Feature at construction.
type Option func(*Feature)

// WithMaxPayloadSize sets the largest characteristic write of the feature.
func WithMaxPayloadSize(n int) Option {
	return func(f *Feature) {
		if n > 0 {
			f.desc.MaxPayloadSize = n
		}
	}
}

// WithName overrides the feature name.
func WithName(name string) Option {
	return func(f *Feature) {
		f.desc.Name = name
	}
}

func newFeature(kind Kind, typ model.FeatureType, id uint32, enabled bool, opts ...Option) *Feature {
	c := codecs[kind]
	f := &Feature{
		desc: model.Descriptor{
			Name:           c.name,
			Type:           typ,
			ID:             id,
			HasTimestamp:   !c.noTimestamp,
			Notify:         !c.noNotify,
			MaxPayloadSize: model.DefaultMaxPayloadSize,
		},
		kind:    kind,
		codec:   c,
		enabled: enabled,
	}
	if c.stream {
		f.stream = transport.NewReassembler(c.scheme)
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name returns the feature name.
func (f *Feature) Name() string { return f.desc.Name }

// Kind returns the decoding behavior of the feature.
func (f *Feature) Kind() Kind { return f.kind }

// Descriptor returns the feature identity.
func (f *Feature) Descriptor() model.Descriptor { return f.desc }

// HasTimestamp reports whether notifications start with a device tick.
func (f *Feature) HasTimestamp() bool { return f.desc.HasTimestamp }

// IsStandard reports whether the feature shares a characteristic with
// other features through the feature mask.
func (f *Feature) IsStandard() bool { return f.desc.Type == model.TypeStandard }

// Enabled reports whether the board advertised the feature as active.
func (f *Feature) Enabled() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.enabled
}

// SetEnabled changes the enabled flag.
func (f *Feature) SetEnabled(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = enabled
}

// String returns the feature name and type.
func (f *Feature) String() string {
	return fmt.Sprintf("%s(%s 0x%X)", f.desc.Name, f.desc.Type, f.desc.ID)
}

// Extract decodes one record of the feature starting at offset. The
// returned update's ReadBytes is the number of bytes the record occupies.
func (f *Feature) Extract(ts uint64, data []byte, offset int) (model.AnyUpdate, error) {
	if offset < 0 || offset > len(data) {
		return model.AnyUpdate{}, fmt.Errorf("%s: %w: offset %d of %d", f.desc.Name, numconv.ErrOutOfBounds, offset, len(data))
	}
	u, err := f.codec.extract(f, ts, data, offset)
	if err != nil {
		return model.AnyUpdate{}, fmt.Errorf("%s: %w", f.desc.Name, err)
	}
	return u, nil
}

// Pack builds the characteristic write for cmd. It returns false when the
// feature does not handle the command.
func (f *Feature) Pack(cmd Command) ([]byte, bool) {
	if cmd == nil || f.codec.pack == nil {
		return nil, false
	}
	return f.codec.pack(f, cmd)
}

// ParseResponse interprets a command response addressed to the feature.
// It returns false when the response is not one the feature understands.
func (f *Feature) ParseResponse(resp CommandResponse) (Response, bool) {
	if f.codec.parse == nil {
		return nil, false
	}
	if mask, ok := f.desc.Mask(); ok && resp.Mask != mask {
		return nil, false
	}
	return f.codec.parse(f, resp)
}

// request builds a command for the characteristic CommandCharacteristic
// selects. Commands routed through the config characteristic start with the
// feature mask; commands written to the feature's own characteristic do not.
func (f *Feature) request(cmdID byte, data ...byte) []byte {
	out := make([]byte, 0, 5+len(data))
	if ch, _ := CommandCharacteristic(f); ch == ConfigCharacteristic {
		mask, _ := f.desc.Mask()
		out = append(out, numconv.BigEndian.PutUInt32(mask)...)
	}
	out = append(out, cmdID)
	return append(out, data...)
}

func (f *Feature) header(cmdID uint8) ResponseHeader {
	return ResponseHeader{FeatureName: f.desc.Name, CommandID: cmdID}
}

func (f *Feature) pedometerEnabled() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.pedometer
}

func (f *Feature) setPedometerEnabled(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pedometer = enabled
}

// newUpdate builds the update for a record of n bytes at off. Callers check
// the length before decoding.
func newUpdate[D model.Sample](f *Feature, ts uint64, data []byte, off, n int, d D) model.AnyUpdate {
	return model.Erase(model.Update[D]{
		Feature:   f.desc.Name,
		Timestamp: ts,
		Raw:       data[off : off+n],
		ReadBytes: n,
		Data:      d,
	})
}
