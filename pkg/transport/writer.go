package transport

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bluest-sdk/bluest-go/pkg/log"
)

// MaxLogFrameDataSize caps the frame bytes copied into log events.
const MaxLogFrameDataSize = 512

// ErrMessageEmpty indicates an attempt to write nothing.
var ErrMessageEmpty = errors.New("message is empty")

// FrameWriter writes payloads to a characteristic one frame per Write call.
// The underlying writer stands for a single GATT write; the BLE stack that
// implements it is not part of this package.
type FrameWriter struct {
	w   io.Writer
	mtu int
	mu  sync.Mutex

	logger    log.Logger
	sessionID string
}

// NewFrameWriter creates a writer emitting frames of at most mtu bytes.
func NewFrameWriter(w io.Writer, mtu int) *FrameWriter {
	return &FrameWriter{w: w, mtu: mtu}
}

// SetLogger configures frame tracing. Pass nil to disable it.
func (fw *FrameWriter) SetLogger(logger log.Logger, sessionID string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.logger = logger
	fw.sessionID = sessionID
}

// MTU returns the frame size limit.
func (fw *FrameWriter) MTU() int { return fw.mtu }

// Write splits data into mtu-sized chunks and writes them in order.
// It is safe to call from multiple goroutines; the chunks of one call are
// never interleaved with another's.
func (fw *FrameWriter) Write(data []byte) error {
	if len(data) == 0 {
		return ErrMessageEmpty
	}
	if fw.mtu <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMTU, fw.mtu)
	}
	return fw.writeFrames(Split(data, fw.mtu), false)
}

// WriteSegmented encapsulates payload with scheme and writes every frame.
func (fw *FrameWriter) WriteSegmented(scheme Scheme, payload []byte) error {
	if len(payload) == 0 {
		return ErrMessageEmpty
	}
	frames, err := Encapsulate(scheme, payload, fw.mtu)
	if err != nil {
		return err
	}
	return fw.writeFrames(frames, true)
}

func (fw *FrameWriter) writeFrames(frames [][]byte, marked bool) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	for i, f := range frames {
		if _, err := fw.w.Write(f); err != nil {
			return fmt.Errorf("writing frame %d/%d: %w", i+1, len(frames), err)
		}
		if fw.logger != nil {
			fw.logger.Log(fw.makeFrameEvent(f, marked))
		}
	}
	return nil
}

func (fw *FrameWriter) makeFrameEvent(f []byte, marked bool) log.Event {
	return FrameEvent(fw.sessionID, log.DirectionOut, f, marked)
}

// FrameEvent builds a transport-layer trace event for one frame. When
// marked is set the first byte is recorded as the segmentation marker.
func FrameEvent(sessionID string, dir log.Direction, f []byte, marked bool) log.Event {
	data := f
	truncated := false
	if len(data) > MaxLogFrameDataSize {
		data = data[:MaxLogFrameDataSize]
		truncated = true
	}
	fe := &log.FrameEvent{
		Size:      len(f),
		Data:      append([]byte(nil), data...),
		Truncated: truncated,
	}
	if marked && len(f) > 0 {
		m := f[0]
		fe.Marker = &m
	}
	category := log.CategoryNotification
	if dir == log.DirectionOut {
		category = log.CategoryCommand
	}
	return log.Event{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Direction: dir,
		Layer:     log.LayerTransport,
		Category:  category,
		Frame:     fe,
	}
}
