package wire

import (
	"errors"
	"math"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/bluest-sdk/bluest-go/pkg/model"
)

// ErrMissingFeature indicates a record without a feature name.
var ErrMissingFeature = errors.New("record has no feature")

// Notification is one characteristic notification as delivered by the BLE
// stack.
//
// CBOR encoding:
//
//	{
//	  1: deviceId,        // string, usually the BLE address
//	  2: characteristic,  // 16-byte UUID
//	  3: data,            // bytes
//	  4: receivedAt       // RFC 3339 time
//	}
type Notification struct {
	DeviceID       string    `cbor:"1,keyasint,omitempty" json:"deviceId,omitempty"`
	Characteristic uuid.UUID `cbor:"2,keyasint" json:"characteristic"`
	Data           []byte    `cbor:"3,keyasint" json:"data"`
	ReceivedAt     time.Time `cbor:"4,keyasint" json:"receivedAt,omitzero"`
}

// Record is one decoded feature update.
//
// CBOR encoding:
//
//	{
//	  1: sessionId,
//	  2: deviceId,
//	  3: feature,     // feature name
//	  4: tick,        // unwrapped device timestamp
//	  5: receivedAt,
//	  6: readBytes,
//	  7: raw,         // bytes the decoder consumed
//	  8: fields       // [FieldValue]
//	}
type Record struct {
	SessionID  string       `cbor:"1,keyasint,omitempty" json:"sessionId,omitempty"`
	DeviceID   string       `cbor:"2,keyasint,omitempty" json:"deviceId,omitempty"`
	Feature    string       `cbor:"3,keyasint" json:"feature"`
	Tick       uint64       `cbor:"4,keyasint" json:"tick"`
	ReceivedAt time.Time    `cbor:"5,keyasint" json:"receivedAt,omitzero"`
	ReadBytes  int          `cbor:"6,keyasint" json:"readBytes"`
	Raw        []byte       `cbor:"7,keyasint,omitempty" json:"raw,omitempty"`
	Fields     []FieldValue `cbor:"8,keyasint,omitempty" json:"fields,omitempty"`
}

// FieldValue is one decoded field.
//
// Value holds the number, bool, string or bytes of the field. Enumerations
// are reduced to their integer code. Value is nil for NaN and for structured
// values; Text always holds the printable form.
type FieldValue struct {
	Name  string `cbor:"1,keyasint" json:"name"`
	Unit  string `cbor:"2,keyasint,omitempty" json:"unit,omitempty"`
	Value any    `cbor:"3,keyasint" json:"value"`
	Text  string `cbor:"4,keyasint" json:"text"`
}

// Validate checks the record is addressable.
func (r *Record) Validate() error {
	if r.Feature == "" {
		return ErrMissingFeature
	}
	return nil
}

// Field returns the field with the given name.
func (r *Record) Field(name string) (FieldValue, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldValue{}, false
}

// Source identifies where an update came from.
type Source struct {
	SessionID  string
	DeviceID   string
	ReceivedAt time.Time
}

// NewRecord converts a decoded update into a record.
func NewRecord(src Source, u model.AnyUpdate) Record {
	r := Record{
		SessionID:  src.SessionID,
		DeviceID:   src.DeviceID,
		Feature:    u.Feature,
		Tick:       u.Timestamp,
		ReceivedAt: src.ReceivedAt,
		ReadBytes:  u.ReadBytes,
		Raw:        append([]byte(nil), u.Raw...),
	}
	if u.Data == nil {
		return r
	}
	for _, f := range u.Data.Fields() {
		r.Fields = append(r.Fields, FieldValue{
			Name:  f.FieldName(),
			Unit:  f.FieldUnit(),
			Value: portable(f.Interface()),
			Text:  f.LogValue(),
		})
	}
	return r
}

// portable reduces v to a value both CBOR and JSON encode losslessly.
func portable(v any) any {
	switch x := v.(type) {
	case bool, string, []byte:
		return x
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return nil
		}
		return x
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
		return x
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	default:
		return nil
	}
}
