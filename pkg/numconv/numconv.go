package numconv

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrOutOfBounds indicates a read past the end of the buffer.
var ErrOutOfBounds = errors.New("not enough bytes")

// Require checks that n bytes are available in data starting at offset.
func Require(data []byte, offset, n int) error {
	if offset < 0 || n < 0 || len(data)-offset < n {
		avail := len(data) - offset
		if avail < 0 {
			avail = 0
		}
		return fmt.Errorf("%w: need %d at offset %d, have %d", ErrOutOfBounds, n, offset, avail)
	}
	return nil
}

// UInt8 reads an unsigned byte.
func UInt8(data []byte, offset int) (uint8, error) {
	if err := Require(data, offset, 1); err != nil {
		return 0, err
	}
	return data[offset], nil
}

// Int8 reads a signed byte.
func Int8(data []byte, offset int) (int8, error) {
	v, err := UInt8(data, offset)
	return int8(v), err
}

// Order decodes and encodes multi-byte integers in one byte order.
type Order struct {
	bo binary.ByteOrder
}

// Byte orders used by feature payloads.
var (
	LittleEndian = Order{bo: binary.LittleEndian}
	BigEndian    = Order{bo: binary.BigEndian}
)

// UInt16 reads an unsigned 16-bit integer.
func (o Order) UInt16(data []byte, offset int) (uint16, error) {
	if err := Require(data, offset, 2); err != nil {
		return 0, err
	}
	return o.bo.Uint16(data[offset:]), nil
}

// Int16 reads a signed 16-bit integer.
func (o Order) Int16(data []byte, offset int) (int16, error) {
	v, err := o.UInt16(data, offset)
	return int16(v), err
}

// UInt32 reads an unsigned 32-bit integer.
// Callers widen the result to 64 bits before doing arithmetic on it.
func (o Order) UInt32(data []byte, offset int) (uint32, error) {
	if err := Require(data, offset, 4); err != nil {
		return 0, err
	}
	return o.bo.Uint32(data[offset:]), nil
}

// Int32 reads a signed 32-bit integer.
func (o Order) Int32(data []byte, offset int) (int32, error) {
	v, err := o.UInt32(data, offset)
	return int32(v), err
}

// PutUInt16 returns v encoded in two bytes.
func (o Order) PutUInt16(v uint16) []byte {
	b := make([]byte, 2)
	o.bo.PutUint16(b, v)
	return b
}

// PutInt16 returns v encoded in two bytes.
func (o Order) PutInt16(v int16) []byte {
	return o.PutUInt16(uint16(v))
}

// PutUInt32 returns v encoded in four bytes.
func (o Order) PutUInt32(v uint32) []byte {
	b := make([]byte, 4)
	o.bo.PutUint32(b, v)
	return b
}

// PutInt32 returns v encoded in four bytes.
func (o Order) PutInt32(v int32) []byte {
	return o.PutUInt32(uint32(v))
}
