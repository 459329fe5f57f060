package features

import (
	"fmt"

	"github.com/bluest-sdk/bluest-go/pkg/model"
)

// GeneralPurposeData holds the bytes of a general purpose characteristic,
// one field per byte.
type GeneralPurposeData struct {
	Bytes []model.Field[uint8]
}

func (d GeneralPurposeData) Fields() []model.AnyField {
	out := make([]model.AnyField, len(d.Bytes))
	for i, b := range d.Bytes {
		out[i] = b
	}
	return out
}

// Raw returns the bytes as a slice.
func (d GeneralPurposeData) Raw() []byte {
	out := make([]byte, len(d.Bytes))
	for i, b := range d.Bytes {
		out[i] = b.Value
	}
	return out
}

func extractGeneralPurpose(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	n := len(data) - off
	d := GeneralPurposeData{Bytes: make([]model.Field[uint8], n)}
	for i := range n {
		d.Bytes[i] = model.NewField(fmt.Sprintf("B%d", i), "", data[off+i])
	}
	return newUpdate(f, ts, data, off, n, d), nil
}

// RawData is the undecoded payload of a feature whose format is not
// interpreted.
type RawData struct {
	Payload model.Field[[]byte]
}

func (d RawData) Fields() []model.AnyField { return []model.AnyField{d.Payload} }

// extractRaw consumes everything from off to the end of the buffer.
func extractRaw(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	n := len(data) - off
	payload := make([]byte, n)
	copy(payload, data[off:])
	return newUpdate(f, ts, data, off, n, RawData{Payload: model.NewField("Payload", "", payload)}), nil
}

// EmptyData is the sample of write-only features.
type EmptyData struct{}

func (EmptyData) Fields() []model.AnyField { return nil }

// extractEmpty acknowledges a notification on a write-only characteristic.
func extractEmpty(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	return newUpdate(f, ts, data, off, len(data)-off, EmptyData{}), nil
}
