package model

import "strings"

// Sample is the structured payload of one decode pass.
type Sample interface {
	// Fields returns the sample's fields in wire order.
	Fields() []AnyField
}

// LogHeader joins the log headers of all fields of s.
func LogHeader(s Sample) string {
	return join(s, AnyField.LogHeader)
}

// LogValue joins the log values of all fields of s.
func LogValue(s Sample) string {
	return join(s, AnyField.LogValue)
}

func join(s Sample, fn func(AnyField) string) string {
	fields := s.Fields()
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fn(f)
	}
	return strings.Join(parts, ", ")
}

// Update is the result of decoding one feature record from a notification.
type Update[D Sample] struct {
	// Feature is the name of the feature that produced the update.
	Feature string

	// Timestamp is the unwrapped device tick, or the remote node id for
	// features relayed from another node. Features without a device tick
	// are stamped with the host clock in the same 10 ms unit.
	Timestamp uint64

	// Raw is the byte range the decoder consumed.
	Raw []byte

	// ReadBytes is the number of bytes consumed. The registry advances its
	// cursor by exactly this amount.
	ReadBytes int

	// Data is the decoded sample.
	Data D
}

// AnyUpdate is an update whose sample type is known only at runtime.
type AnyUpdate = Update[Sample]

// Erase converts a typed update into an AnyUpdate.
func Erase[D Sample](u Update[D]) AnyUpdate {
	return AnyUpdate{
		Feature:   u.Feature,
		Timestamp: u.Timestamp,
		Raw:       u.Raw,
		ReadBytes: u.ReadBytes,
		Data:      u.Data,
	}
}

// As recovers the typed form of an update.
func As[D Sample](u AnyUpdate) (Update[D], bool) {
	d, ok := u.Data.(D)
	if !ok {
		return Update[D]{}, false
	}
	return Update[D]{
		Feature:   u.Feature,
		Timestamp: u.Timestamp,
		Raw:       u.Raw,
		ReadBytes: u.ReadBytes,
		Data:      d,
	}, true
}
