package session

import (
	"fmt"
	"strings"
)

// MaskOrder lists the bits set in a feature mask in the order their records
// appear in a notification of the characteristic.
type MaskOrder func(mask uint32) []uint32

// MSBFirst lists the most significant bit first. This is the layout used by
// the boards' firmware.
func MSBFirst(mask uint32) []uint32 {
	var bits []uint32
	for bit := uint32(1) << 31; bit != 0; bit >>= 1 {
		if mask&bit != 0 {
			bits = append(bits, bit)
		}
	}
	return bits
}

// LSBFirst lists the least significant bit first.
func LSBFirst(mask uint32) []uint32 {
	var bits []uint32
	for bit := uint32(1); bit != 0; bit <<= 1 {
		if mask&bit != 0 {
			bits = append(bits, bit)
		}
	}
	return bits
}

// ParseMaskOrder returns the policy named "msb" or "lsb". An empty name
// selects MSBFirst.
func ParseMaskOrder(name string) (MaskOrder, error) {
	switch strings.ToLower(name) {
	case "", "msb", "msb-first", "msb_first":
		return MSBFirst, nil
	case "lsb", "lsb-first", "lsb_first":
		return LSBFirst, nil
	default:
		return nil, fmt.Errorf("unknown mask order %q", name)
	}
}
