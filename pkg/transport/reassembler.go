package transport

import (
	"fmt"
	"sync"
)

// Reassembler rebuilds segmented payloads one frame at a time.
// Any malformed frame discards the transfer in progress; the next START or
// START_END frame begins a fresh one. It is safe for concurrent use, but
// frames of one transfer must be delivered in order.
type Reassembler struct {
	scheme Scheme

	mu       sync.Mutex
	buf      []byte
	expected int
	active   bool
	bytesRec int
	packets  int
}

// NewReassembler creates a reassembler for the given scheme.
func NewReassembler(scheme Scheme) *Reassembler {
	return &Reassembler{scheme: scheme}
}

// Decapsulate consumes one frame. It returns the payload once the transfer
// is complete and nil while more frames are needed.
func (r *Reassembler) Decapsulate(frame []byte) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(frame) == 0 {
		r.reset()
		return nil, fmt.Errorf("%w: empty frame", ErrUnexpectedFrame)
	}

	switch frame[0] {
	case MarkerStart:
		r.reset()
		body, err := r.openTransfer(frame)
		if err != nil {
			return nil, err
		}
		r.append(body)
		r.active = true
		if err := r.checkOverflow(); err != nil {
			return nil, err
		}
		return nil, nil

	case MarkerStartEnd:
		r.reset()
		body, err := r.openTransfer(frame)
		if err != nil {
			return nil, err
		}
		r.append(body)
		return r.complete()

	case MarkerMiddle:
		if !r.active {
			r.reset()
			return nil, fmt.Errorf("%w: MIDDLE without START", ErrUnexpectedFrame)
		}
		r.append(frame[1:])
		if err := r.checkOverflow(); err != nil {
			return nil, err
		}
		return nil, nil

	case MarkerEnd:
		if !r.active {
			r.reset()
			return nil, fmt.Errorf("%w: END without START", ErrUnexpectedFrame)
		}
		r.append(frame[1:])
		return r.complete()

	default:
		r.reset()
		return nil, fmt.Errorf("%w: marker 0x%02x", ErrUnexpectedFrame, frame[0])
	}
}

// openTransfer strips the first-frame header and records the declared length.
// Schemes without a length header keep everything after the marker.
func (r *Reassembler) openTransfer(frame []byte) ([]byte, error) {
	if r.scheme.headerSize() == 1 {
		r.expected = -1
		return frame[1:], nil
	}
	if len(frame) < stl2HeaderSize {
		return nil, fmt.Errorf("%w: first frame of %d bytes", ErrUnexpectedFrame, len(frame))
	}
	r.expected = int(frame[1])<<8 | int(frame[2])
	return frame[stl2HeaderSize:], nil
}

func (r *Reassembler) append(body []byte) {
	r.buf = append(r.buf, body...)
	r.bytesRec += len(body)
	r.packets++
}

func (r *Reassembler) checkOverflow() error {
	if r.expected >= 0 && len(r.buf) > r.expected {
		got := len(r.buf)
		want := r.expected
		r.reset()
		return fmt.Errorf("%w: received %d, declared %d", ErrLengthMismatch, got, want)
	}
	return nil
}

func (r *Reassembler) complete() ([]byte, error) {
	if r.expected >= 0 && len(r.buf) != r.expected {
		got := len(r.buf)
		want := r.expected
		r.reset()
		return nil, fmt.Errorf("%w: received %d, declared %d", ErrLengthMismatch, got, want)
	}
	out := r.buf
	if out == nil {
		out = []byte{}
	}
	r.buf = nil
	r.active = false
	return out, nil
}

func (r *Reassembler) reset() {
	r.buf = nil
	r.expected = -1
	r.active = false
	r.bytesRec = 0
	r.packets = 0
}

// Reset discards any transfer in progress.
func (r *Reassembler) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reset()
}

// InProgress reports whether a multi-frame transfer is open.
func (r *Reassembler) InProgress() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// BytesReceived returns the payload bytes of the current or last transfer.
func (r *Reassembler) BytesReceived() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bytesRec
}

// Packets returns the frame count of the current or last transfer.
func (r *Reassembler) Packets() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.packets
}
