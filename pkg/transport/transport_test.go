package transport

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payloadOf(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i * 7)
	}
	return p
}

func TestEncapsulateSTL2Layout(t *testing.T) {
	frames, err := Encapsulate(SchemeSTL2, payloadOf(40), 20)
	require.NoError(t, err)
	require.Len(t, frames, 3)

	assert.Equal(t, []byte{MarkerStart, 0x00, 40}, frames[0][:3])
	assert.Len(t, frames[0], 20)
	assert.Equal(t, MarkerMiddle, frames[1][0])
	assert.Len(t, frames[1], 20)
	assert.Equal(t, MarkerEnd, frames[2][0])
	assert.Len(t, frames[2], 1+40-17-19)
}

func TestEncapsulateSingleFrame(t *testing.T) {
	frames, err := Encapsulate(SchemeSTL2, []byte("hi"), 20)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, []byte{MarkerStartEnd, 0x00, 0x02, 'h', 'i'}, frames[0])

	frames, err = Encapsulate(SchemeOpus, []byte("hi"), 20)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{{MarkerStartEnd, 'h', 'i'}}, frames)
}

func TestEncapsulateBoundaryBetweenHeaderAndFrame(t *testing.T) {
	// 18 bytes do not fit a 20-byte START_END frame with its 3-byte header.
	frames, err := Encapsulate(SchemeSTL2, payloadOf(18), 20)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, MarkerStart, frames[0][0])
	assert.Equal(t, []byte{MarkerEnd, payloadOf(18)[17]}, frames[1])
}

func TestEncapsulateErrors(t *testing.T) {
	_, err := Encapsulate(SchemeSTL2, []byte{1}, 3)
	assert.ErrorIs(t, err, ErrInvalidMTU)

	_, err = Encapsulate(SchemeSTL2, make([]byte, MaxPayloadSize+1), 20)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)

	frames, err := Encapsulate(SchemeSTL2, nil, 20)
	assert.NoError(t, err)
	assert.Empty(t, frames)
}

func TestRoundTrip(t *testing.T) {
	sizes := []int{1, 16, 17, 18, 19, 20, 36, 37, 100, 1000, 4096}
	mtus := []int{4, 20, 23, 244}

	for _, scheme := range []Scheme{SchemeSTL2, SchemeOpus, SchemeSTL2Notify} {
		for _, mtu := range mtus {
			for _, n := range sizes {
				payload := payloadOf(n)
				frames, err := Encapsulate(scheme, payload, mtu)
				require.NoError(t, err)

				r := NewReassembler(scheme)
				var got []byte
				for i, f := range frames {
					assert.LessOrEqual(t, len(f), mtu)
					out, err := r.Decapsulate(f)
					require.NoError(t, err, "%s mtu=%d n=%d frame=%d", scheme, mtu, n, i)
					if i < len(frames)-1 {
						assert.Nil(t, out, "partial data must not be delivered")
					} else {
						got = out
					}
				}
				assert.Equal(t, payload, got, "%s mtu=%d n=%d", scheme, mtu, n)
				assert.Equal(t, len(frames), r.Packets())
				assert.Equal(t, n, r.BytesReceived())
			}
		}
	}
}

func TestDecapsulateNotifiedFrames(t *testing.T) {
	tests := []struct {
		name   string
		frames [][]byte
		want   []byte
	}{
		{
			name:   "single frame keeps every byte after the marker",
			frames: [][]byte{append([]byte{MarkerStartEnd}, `{"Answer":"ok"}`+"\x00"...)},
			want:   []byte(`{"Answer":"ok"}` + "\x00"),
		},
		{
			name:   "first byte after the marker is payload",
			frames: [][]byte{{MarkerStart, 0x7B, 0x22}, {MarkerMiddle, 0x61}, {MarkerEnd, 0x22, 0x7D}},
			want:   []byte(`{"a"}`),
		},
		{
			name:   "bare start end",
			frames: [][]byte{{MarkerStartEnd}},
			want:   []byte{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewReassembler(SchemeSTL2Notify)
			var got []byte
			for i, f := range tc.frames {
				out, err := r.Decapsulate(f)
				require.NoError(t, err)
				if i < len(tc.frames)-1 {
					assert.Nil(t, out)
				} else {
					got = out
				}
			}
			assert.Equal(t, tc.want, got)
			assert.Equal(t, len(tc.want), r.BytesReceived())
			assert.Equal(t, len(tc.frames), r.Packets())
		})
	}

	t.Run("headered reassembler misreads the same frame", func(t *testing.T) {
		frame := append([]byte{MarkerStartEnd}, `{"Answer":"ok"}`...)
		_, err := NewReassembler(SchemeSTL2).Decapsulate(frame)
		assert.ErrorIs(t, err, ErrLengthMismatch)
	})
}

func TestJoinSplitRecoversFrames(t *testing.T) {
	frames, err := Encapsulate(SchemeSTL2, payloadOf(77), 20)
	require.NoError(t, err)
	assert.Equal(t, frames, Split(Join(frames), 20))
}

func TestReassemblerRecovery(t *testing.T) {
	frames, err := Encapsulate(SchemeSTL2, payloadOf(50), 20)
	require.NoError(t, err)
	require.Len(t, frames, 3)

	t.Run("end without start", func(t *testing.T) {
		r := NewReassembler(SchemeSTL2)
		out, err := r.Decapsulate(frames[2])
		assert.Nil(t, out)
		assert.ErrorIs(t, err, ErrUnexpectedFrame)
	})

	t.Run("middle without start", func(t *testing.T) {
		r := NewReassembler(SchemeSTL2)
		_, err := r.Decapsulate(frames[1])
		assert.ErrorIs(t, err, ErrUnexpectedFrame)
		assert.False(t, r.InProgress())
	})

	t.Run("unknown marker resets", func(t *testing.T) {
		r := NewReassembler(SchemeSTL2)
		_, err := r.Decapsulate(frames[0])
		require.NoError(t, err)
		assert.True(t, r.InProgress())

		_, err = r.Decapsulate([]byte{0x11, 1, 2})
		assert.ErrorIs(t, err, ErrUnexpectedFrame)
		assert.False(t, r.InProgress())

		// The rest of the broken transfer is rejected too.
		_, err = r.Decapsulate(frames[1])
		assert.ErrorIs(t, err, ErrUnexpectedFrame)
	})

	t.Run("new start discards orphan", func(t *testing.T) {
		r := NewReassembler(SchemeSTL2)
		_, err := r.Decapsulate(frames[0])
		require.NoError(t, err)

		single, err := Encapsulate(SchemeSTL2, []byte("ok"), 20)
		require.NoError(t, err)
		out, err := r.Decapsulate(single[0])
		require.NoError(t, err)
		assert.Equal(t, []byte("ok"), out)

		var got []byte
		for _, f := range frames {
			got, err = r.Decapsulate(f)
			require.NoError(t, err)
		}
		assert.Equal(t, payloadOf(50), got)
	})

	t.Run("declared length disagrees", func(t *testing.T) {
		r := NewReassembler(SchemeSTL2)
		_, err := r.Decapsulate([]byte{MarkerStartEnd, 0x00, 0x05, 1, 2})
		assert.ErrorIs(t, err, ErrLengthMismatch)

		_, err = r.Decapsulate([]byte{MarkerStart, 0x00, 0x02, 1, 2, 3})
		assert.ErrorIs(t, err, ErrLengthMismatch)
		assert.False(t, r.InProgress())
	})

	t.Run("empty and short frames", func(t *testing.T) {
		r := NewReassembler(SchemeSTL2)
		_, err := r.Decapsulate(nil)
		assert.ErrorIs(t, err, ErrUnexpectedFrame)
		_, err = r.Decapsulate([]byte{MarkerStart, 0x00})
		assert.ErrorIs(t, err, ErrUnexpectedFrame)
	})
}

type recordingWriter struct {
	writes [][]byte
	failAt int
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	if w.failAt > 0 && len(w.writes)+1 == w.failAt {
		return 0, errors.New("link lost")
	}
	w.writes = append(w.writes, append([]byte(nil), p...))
	return len(p), nil
}

func TestFrameWriter(t *testing.T) {
	w := &recordingWriter{}
	fw := NewFrameWriter(w, 20)

	var events int
	fw.SetLogger(logCounter(&events), "sess")

	require.NoError(t, fw.WriteSegmented(SchemeSTL2, payloadOf(60)))
	require.Len(t, w.writes, 4)
	assert.Equal(t, 4, events)

	r := NewReassembler(SchemeSTL2)
	var got []byte
	for _, f := range w.writes {
		out, err := r.Decapsulate(f)
		require.NoError(t, err)
		if out != nil {
			got = out
		}
	}
	assert.Equal(t, payloadOf(60), got)
}

func TestFrameWriterPlainWrite(t *testing.T) {
	w := &recordingWriter{}
	fw := NewFrameWriter(w, 8)

	require.NoError(t, fw.Write(payloadOf(20)))
	require.Len(t, w.writes, 3)
	assert.True(t, bytes.Equal(payloadOf(20), bytes.Join(w.writes, nil)))

	assert.ErrorIs(t, fw.Write(nil), ErrMessageEmpty)
	assert.ErrorIs(t, fw.WriteSegmented(SchemeSTL2, nil), ErrMessageEmpty)
}

func TestFrameWriterPropagatesErrors(t *testing.T) {
	w := &recordingWriter{failAt: 2}
	fw := NewFrameWriter(w, 20)
	err := fw.WriteSegmented(SchemeSTL2, payloadOf(60))
	assert.ErrorContains(t, err, "frame 2/4")
}

func TestFrameEventTruncates(t *testing.T) {
	ev := FrameEvent("s", 0, make([]byte, MaxLogFrameDataSize+10), true)
	require.NotNil(t, ev.Frame)
	assert.True(t, ev.Frame.Truncated)
	assert.Len(t, ev.Frame.Data, MaxLogFrameDataSize)
	assert.Equal(t, MaxLogFrameDataSize+10, ev.Frame.Size)
	require.NotNil(t, ev.Frame.Marker)
	assert.Equal(t, uint8(0), *ev.Frame.Marker)
}
