package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ErrUnknownCharacteristic indicates a UUID outside every known feature layout.
var ErrUnknownCharacteristic = errors.New("unknown feature characteristic")

// FeatureType is the category of a feature. It selects the characteristic
// UUID layout and how the feature id is interpreted.
type FeatureType uint8

const (
	// TypeStandard features share a characteristic; the id is a mask bit.
	TypeStandard FeatureType = iota
	// TypeExtended features own a characteristic each.
	TypeExtended
	// TypeGeneralPurpose features carry opaque byte records.
	TypeGeneralPurpose
	// TypeExternalBlueNRGOTA are the BlueNRG firmware upgrade characteristics.
	TypeExternalBlueNRGOTA
	// TypeExternalSTM32 are the STM32WB P2P and OTA characteristics.
	TypeExternalSTM32
	// TypeExternalStdChart are Bluetooth SIG assigned characteristics.
	TypeExternalStdChart
)

// String returns the feature type name.
func (t FeatureType) String() string {
	switch t {
	case TypeStandard:
		return "STANDARD"
	case TypeExtended:
		return "EXTENDED"
	case TypeGeneralPurpose:
		return "GENERAL_PURPOSE"
	case TypeExternalBlueNRGOTA:
		return "EXTERNAL_BLUE_NRG_OTA"
	case TypeExternalSTM32:
		return "EXTERNAL_STM32"
	case TypeExternalStdChart:
		return "EXTERNAL_STD_CHART"
	default:
		return "UNKNOWN"
	}
}

// Suffix returns the fixed tail of the characteristic UUID.
func (t FeatureType) Suffix() string {
	switch t {
	case TypeStandard:
		return "-0001-11e1-ac36-0002a5d5c51b"
	case TypeExtended:
		return "-0002-11e1-ac36-0002a5d5c51b"
	case TypeGeneralPurpose:
		return "0000-0003-11e1-ac36-0002a5d5c51b"
	case TypeExternalBlueNRGOTA:
		return "-8508-11e3-baa7-0800200c9a66"
	case TypeExternalSTM32:
		return "-8e22-4541-9d4c-21edae82ed19"
	case TypeExternalStdChart:
		return "-0000-1000-8000-00805f9b34fb"
	default:
		return ""
	}
}

// prefixDigits is the number of hex digits of the id in the UUID.
func (t FeatureType) prefixDigits() int {
	if t == TypeGeneralPurpose {
		return 4
	}
	return 8
}

// CharacteristicUUID builds the UUID for id. Standard features return false:
// their characteristic is identified by the combined mask of all features it
// carries (see StandardCharacteristic).
func CharacteristicUUID(t FeatureType, id uint32) (uuid.UUID, bool) {
	if t == TypeStandard || t.Suffix() == "" {
		return uuid.UUID{}, false
	}
	return mustUUID(t, id), true
}

// StandardCharacteristic builds the UUID of a standard characteristic
// carrying the features in mask.
func StandardCharacteristic(mask uint32) uuid.UUID {
	return mustUUID(TypeStandard, mask)
}

func mustUUID(t FeatureType, id uint32) uuid.UUID {
	s := fmt.Sprintf("%0*X%s", t.prefixDigits(), id, t.Suffix())
	return uuid.MustParse(s)
}

// parseOrder puts general purpose first: its suffix is the only one that
// starts inside the first UUID group.
var parseOrder = []FeatureType{
	TypeGeneralPurpose,
	TypeStandard,
	TypeExtended,
	TypeExternalBlueNRGOTA,
	TypeExternalSTM32,
	TypeExternalStdChart,
}

// ParseCharacteristic splits a characteristic UUID into its feature type and
// id. For standard characteristics the id is the feature mask.
func ParseCharacteristic(u uuid.UUID) (FeatureType, uint32, error) {
	s := strings.ToLower(u.String())
	for _, t := range parseOrder {
		suffix := t.Suffix()
		if !strings.HasSuffix(s, suffix) {
			continue
		}
		prefix := strings.TrimSuffix(s, suffix)
		if len(prefix) != t.prefixDigits() {
			continue
		}
		id, err := strconv.ParseUint(prefix, 16, 32)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %s", ErrUnknownCharacteristic, s)
		}
		return t, uint32(id), nil
	}
	return 0, 0, fmt.Errorf("%w: %s", ErrUnknownCharacteristic, s)
}
