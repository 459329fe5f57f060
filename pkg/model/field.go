package model

import (
	"encoding/hex"
	"fmt"
)

// Field is a single named measurement within a decoded sample.
// The value type is fixed when the field is built.
type Field[V any] struct {
	Name    string
	Unit    string
	Min     V
	Max     V
	Bounded bool
	Value   V
}

// NewField creates a field without bounds.
func NewField[V any](name, unit string, value V) Field[V] {
	return Field[V]{Name: name, Unit: unit, Value: value}
}

// WithRange returns a copy of the field with min/max bounds attached.
func (f Field[V]) WithRange(min, max V) Field[V] {
	f.Min = min
	f.Max = max
	f.Bounded = true
	return f
}

// FieldName returns the field name.
func (f Field[V]) FieldName() string { return f.Name }

// FieldUnit returns the unit, or "" when the value is dimensionless.
func (f Field[V]) FieldUnit() string { return f.Unit }

// Interface returns the value boxed for logging and sinks.
func (f Field[V]) Interface() any { return f.Value }

// Range returns the bounds boxed, and false if the field is unbounded.
func (f Field[V]) Range() (min, max any, ok bool) {
	if !f.Bounded {
		return nil, nil, false
	}
	return f.Min, f.Max, true
}

// LogHeader returns the column header used in tabular logs.
func (f Field[V]) LogHeader() string {
	if f.Unit == "" {
		return f.Name
	}
	return fmt.Sprintf("%s (%s)", f.Name, f.Unit)
}

// LogValue returns the value as text.
func (f Field[V]) LogValue() string {
	switch v := any(f.Value).(type) {
	case []byte:
		return hex.EncodeToString(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// AnyField is the type-erased view of a Field.
// It is the only place decoded values are handled as interface values.
type AnyField interface {
	FieldName() string
	FieldUnit() string
	Interface() any
	Range() (min, max any, ok bool)
	LogHeader() string
	LogValue() string
}

var (
	_ AnyField = Field[float32]{}
	_ AnyField = Field[[]byte]{}
)
