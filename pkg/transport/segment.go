package transport

import (
	"errors"
	"fmt"
)

// Frame markers.
const (
	MarkerStart    byte = 0x00
	MarkerStartEnd byte = 0x20
	MarkerMiddle   byte = 0x40
	MarkerEnd      byte = 0x80
)

// Segmentation limits.
const (
	// MinMTU is the smallest frame size that leaves room for a STL2 header
	// and one payload byte.
	MinMTU = 4

	// MaxPayloadSize is the largest payload the 16-bit STL2 length can describe.
	MaxPayloadSize = 0xFFFF

	// stl2HeaderSize is the marker plus the 2-byte length.
	stl2HeaderSize = 3
)

// Segmentation errors.
var (
	// ErrInvalidMTU indicates a frame size too small to carry data.
	ErrInvalidMTU = errors.New("invalid mtu")

	// ErrPayloadTooLarge indicates a payload the length header cannot describe.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrUnexpectedFrame indicates a frame out of sequence or with an unknown marker.
	ErrUnexpectedFrame = errors.New("unexpected frame")

	// ErrLengthMismatch indicates reassembled data that disagrees with the
	// declared length.
	ErrLengthMismatch = errors.New("length mismatch")
)

// Scheme selects the frame layout.
type Scheme uint8

const (
	// SchemeSTL2 carries a 2-byte total length after the first marker.
	// Writes to the board use it.
	SchemeSTL2 Scheme = iota
	// SchemeOpus carries no length (BlueVoice audio).
	SchemeOpus
	// SchemeSTL2Notify is STL2 as the board notifies it: the first frame
	// has no length and the payload starts right after the marker.
	SchemeSTL2Notify
)

// String returns the scheme name.
func (s Scheme) String() string {
	switch s {
	case SchemeSTL2:
		return "STL2"
	case SchemeOpus:
		return "OPUS"
	case SchemeSTL2Notify:
		return "STL2-NOTIFY"
	default:
		return "UNKNOWN"
	}
}

func (s Scheme) headerSize() int {
	if s == SchemeSTL2 {
		return stl2HeaderSize
	}
	return 1
}

// Encapsulate splits payload into frames of at most mtu bytes.
// An empty payload produces no frames.
func Encapsulate(scheme Scheme, payload []byte, mtu int) ([][]byte, error) {
	if mtu < MinMTU {
		return nil, fmt.Errorf("%w: %d < %d", ErrInvalidMTU, mtu, MinMTU)
	}
	n := len(payload)
	if scheme == SchemeSTL2 && n > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, n, MaxPayloadSize)
	}
	if n == 0 {
		return nil, nil
	}

	first := mtu - scheme.headerSize()
	if n <= first {
		return [][]byte{scheme.firstFrame(MarkerStartEnd, n, payload)}, nil
	}

	frames := [][]byte{scheme.firstFrame(MarkerStart, n, payload[:first])}
	cnt := first
	for n-cnt > mtu-1 {
		frames = append(frames, frame(MarkerMiddle, payload[cnt:cnt+mtu-1]))
		cnt += mtu - 1
	}
	frames = append(frames, frame(MarkerEnd, payload[cnt:]))
	return frames, nil
}

func (s Scheme) firstFrame(marker byte, total int, chunk []byte) []byte {
	if s != SchemeSTL2 {
		return frame(marker, chunk)
	}
	f := make([]byte, 0, stl2HeaderSize+len(chunk))
	f = append(f, marker, byte(total>>8), byte(total))
	return append(f, chunk...)
}

func frame(marker byte, chunk []byte) []byte {
	f := make([]byte, 0, 1+len(chunk))
	f = append(f, marker)
	return append(f, chunk...)
}

// Join concatenates frames into one write buffer.
func Join(frames [][]byte) []byte {
	size := 0
	for _, f := range frames {
		size += len(f)
	}
	out := make([]byte, 0, size)
	for _, f := range frames {
		out = append(out, f...)
	}
	return out
}

// Split cuts data into chunks of at most mtu bytes. Applied to the output
// of Join it yields the same frames again, since every frame but the
// last is exactly mtu bytes long.
func Split(data []byte, mtu int) [][]byte {
	if mtu <= 0 || len(data) == 0 {
		return nil
	}
	chunks := make([][]byte, 0, (len(data)+mtu-1)/mtu)
	for len(data) > mtu {
		chunks = append(chunks, data[:mtu])
		data = data[mtu:]
	}
	return append(chunks, data)
}
