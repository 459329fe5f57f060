package model

import "github.com/google/uuid"

// DefaultMaxPayloadSize is the ATT payload available on a default BLE link.
const DefaultMaxPayloadSize = 20

// Descriptor is the immutable identity of a feature instance.
type Descriptor struct {
	Name string
	Type FeatureType

	// ID is the mask bit for standard features and the characteristic id
	// for every other type.
	ID uint32

	// HasTimestamp reports whether notifications start with a 2-byte tick.
	HasTimestamp bool

	// Notify reports whether the feature produces notifications.
	Notify bool

	// MaxPayloadSize bounds one characteristic write.
	MaxPayloadSize int
}

// Mask returns the feature's bit in the standard feature mask.
func (d Descriptor) Mask() (uint32, bool) {
	if d.Type != TypeStandard {
		return 0, false
	}
	return d.ID, true
}

// CharacteristicUUID returns the UUID of the characteristic the feature owns.
func (d Descriptor) CharacteristicUUID() (uuid.UUID, bool) {
	return CharacteristicUUID(d.Type, d.ID)
}
