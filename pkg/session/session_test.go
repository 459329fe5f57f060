package session_test

import (
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluest-sdk/bluest-go/pkg/features"
	"github.com/bluest-sdk/bluest-go/pkg/log"
	"github.com/bluest-sdk/bluest-go/pkg/model"
	"github.com/bluest-sdk/bluest-go/pkg/numconv"
	"github.com/bluest-sdk/bluest-go/pkg/session"
)

const envMask = 0x001C0000 // pressure | humidity | temperature

var envChar = model.StandardCharacteristic(envMask)

// envNotification carries tick 16, 100.0 mBar, 54.0 % and 23.2 ℃ in MSB
// first order.
var envNotification = []byte{
	0x10, 0x00,
	0x10, 0x27, 0x00, 0x00,
	0x1C, 0x02,
	0xE8, 0x00,
}

type recorder struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *recorder) Log(e log.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) byCategory(c log.Category) []log.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []log.Event
	for _, e := range r.events {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out
}

func newSession(t *testing.T, cfg session.Config, chars ...uuid.UUID) *session.Session {
	t.Helper()
	s := session.New(cfg)
	for _, ch := range chars {
		_, err := s.Discover(ch)
		require.NoError(t, err)
	}
	return s
}

func featureNames(fs []*features.Feature) []string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.Name()
	}
	return names
}

func TestDiscover(t *testing.T) {
	s := session.New(session.Config{DeviceID: "dev"})
	fs, err := s.Discover(envChar)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pressure", "Humidity", "Temperature"}, featureNames(fs))

	again, err := s.Discover(envChar)
	require.NoError(t, err)
	assert.Same(t, fs[0], again[0])

	f, ok := s.Feature("Humidity")
	require.True(t, ok)
	assert.Same(t, fs[1], f)
	assert.Len(t, s.Features(), 3)

	_, err = s.Discover(uuid.MustParse("0000180f-0000-1000-8000-00805f9b34fb"))
	assert.Error(t, err)
}

func TestDiscoverSharesInstances(t *testing.T) {
	s := newSession(t, session.Config{}, envChar)
	fs, err := s.Discover(model.StandardCharacteristic(0x00040000))
	require.NoError(t, err)
	require.Len(t, fs, 1)

	temp, _ := s.Feature("Temperature")
	assert.Same(t, temp, fs[0])
	assert.Len(t, s.Features(), 3)
}

func TestDecodeMultiFeature(t *testing.T) {
	s := newSession(t, session.Config{}, envChar)

	updates, err := s.Decode(envChar, envNotification)
	require.NoError(t, err)
	require.Len(t, updates, 3)

	assert.Equal(t, []string{"Pressure", "Humidity", "Temperature"},
		[]string{updates[0].Feature, updates[1].Feature, updates[2].Feature})

	total := 2
	for _, u := range updates {
		assert.Equal(t, uint64(16), u.Timestamp)
		total += u.ReadBytes
	}
	assert.Equal(t, len(envNotification), total)

	temp, ok := model.As[features.TemperatureData](updates[2])
	require.True(t, ok)
	assert.InDelta(t, 23.2, temp.Data.Temperature.Value, 1e-4)
}

func TestDecodeLSBFirst(t *testing.T) {
	s := newSession(t, session.Config{MaskOrder: session.LSBFirst}, envChar)

	data := []byte{
		0x10, 0x00,
		0xE8, 0x00,
		0x1C, 0x02,
		0x10, 0x27, 0x00, 0x00,
	}
	updates, err := s.Decode(envChar, data)
	require.NoError(t, err)
	require.Len(t, updates, 3)
	assert.Equal(t, "Temperature", updates[0].Feature)

	pressure, ok := model.As[features.PressureData](updates[2])
	require.True(t, ok)
	assert.InDelta(t, 100.0, pressure.Data.Pressure.Value, 1e-4)
}

func TestDecodeTruncated(t *testing.T) {
	rec := &recorder{}
	s := newSession(t, session.Config{}, envChar)
	s.SetProtocolLogger(rec)

	updates, err := s.Decode(envChar, envNotification[:len(envNotification)-1])
	assert.ErrorIs(t, err, numconv.ErrOutOfBounds)
	assert.Len(t, updates, 2, "records before the failure are kept")

	errs := rec.byCategory(log.CategoryError)
	require.Len(t, errs, 1)
	assert.Equal(t, "Temperature", errs[0].Error.Feature)
	require.NotNil(t, errs[0].Error.Offset)
	assert.Equal(t, 8, *errs[0].Error.Offset)

	// The failure is local to the notification.
	updates, err = s.Decode(envChar, envNotification)
	require.NoError(t, err)
	assert.Len(t, updates, 3)
}

func TestDecodeStopsAtEnd(t *testing.T) {
	s := newSession(t, session.Config{}, envChar)
	updates, err := s.Decode(envChar, envNotification[:6])
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, "Pressure", updates[0].Feature)
}

func TestDecodeSkipsDisabled(t *testing.T) {
	cfg := session.Config{ProtocolVersion: 1, AdvertiseMask: 0x00140000}
	s := newSession(t, cfg, envChar)

	humidity, _ := s.Feature("Humidity")
	assert.False(t, humidity.Enabled())

	data := []byte{0x10, 0x00, 0x10, 0x27, 0x00, 0x00, 0xE8, 0x00}
	updates, err := s.Decode(envChar, data)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, "Temperature", updates[1].Feature)

	require.NoError(t, s.SetEnabled("Humidity", true))
	assert.True(t, humidity.Enabled())
	assert.ErrorIs(t, s.SetEnabled("Nope", true), session.ErrUnknownFeature)
}

func TestDecodeTimestampRollover(t *testing.T) {
	tempChar := model.StandardCharacteristic(0x00040000)
	s := newSession(t, session.Config{}, tempChar)

	ticks := []uint16{65500, 65535, 3}
	var got []uint64
	for _, tick := range ticks {
		data := append(numconv.LittleEndian.PutUInt16(tick), 0xE8, 0x00)
		updates, err := s.Decode(tempChar, data)
		require.NoError(t, err)
		got = append(got, updates[0].Timestamp)
	}
	assert.Equal(t, []uint64{65500, 65535, 65539}, got)
}

func TestDecodeWithoutTimestamp(t *testing.T) {
	ch, ok := model.CharacteristicUUID(model.TypeExternalSTM32, 0xFE42)
	require.True(t, ok)
	at := time.UnixMilli(1714564800123)
	s := newSession(t, session.Config{Clock: func() time.Time { return at }}, ch)

	updates, err := s.Decode(ch, []byte{0x03, 0x01})
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, uint64(171456480012), updates[0].Timestamp, "host time in 10 ms ticks")
	assert.Equal(t, 2, updates[0].ReadBytes)

	at = at.Add(25 * time.Millisecond)
	updates, err = s.Decode(ch, []byte{0x03, 0x01})
	require.NoError(t, err)
	assert.Equal(t, uint64(171456480014), updates[0].Timestamp)
}

// standardRecord is a valid record of a standard feature. Alone marks the
// records that only stand at the end of a notification: the ones without a
// device tick and the ones that read to the end of the buffer.
type standardRecord struct {
	data  []byte
	alone bool
}

var standardRecords = map[features.Kind]standardRecord{
	features.KindAudioADPCMSync:      {data: make([]byte, 6), alone: true},
	features.KindSwitch:              {data: []byte{0x01}},
	features.KindDirectionOfArrival:  {data: []byte{0x5A, 0x00}},
	features.KindMemsNorm:            {data: []byte{0x64, 0x00}},
	features.KindAudioADPCM:          {data: make([]byte, 20), alone: true},
	features.KindMicLevel:            {data: []byte{10, 20}, alone: true},
	features.KindProximity:           {data: []byte{0x64, 0x00}},
	features.KindAudioClassification: {data: []byte{0x01, 0x00}},
	features.KindLuminosity:          {data: []byte{0x2C, 0x01}},
	features.KindAcceleration:        {data: []byte{1, 0, 2, 0, 3, 0}},
	features.KindGyroscope:           {data: []byte{1, 0, 2, 0, 3, 0}},
	features.KindMagnetometer:        {data: []byte{1, 0, 2, 0, 3, 0}},
	features.KindPressure:            {data: []byte{0x10, 0x27, 0x00, 0x00}},
	features.KindHumidity:            {data: []byte{0x1C, 0x02}},
	features.KindTemperature:         {data: []byte{0xE8, 0x00}},
	features.KindBattery:             {data: []byte{0xBC, 0x02, 0x68, 0x10, 0xCE, 0xFF, 0x01}},
	features.KindCOSensor:            {data: []byte{0x10, 0x00, 0x00, 0x00}},
	features.KindEulerAngle:          {data: eulerRecord},
	features.KindStepperMotor:        {data: []byte{0x01}, alone: true},
	features.KindSDLogging:           {data: []byte{0x01, 0x00, 0x00, 0x18, 0x00, 0xE8, 0x03, 0x00, 0x00}},
	features.KindBeamForming:         {data: []byte{0x03}},
	features.KindAccelerationEvent:   {data: []byte{0x08, 0x05, 0x00}},
	features.KindFreeFall:            {data: []byte{0x01}},
	features.KindEventCounter:        {data: []byte{0x07, 0x00, 0x00, 0x00}},
	features.KindSensorFusionCompat:  {data: []byte{0x10, 0x27, 0, 0, 0, 0}},
	features.KindSensorFusion:        {data: make([]byte, 16)},
	features.KindCompass:             {data: []byte{0x28, 0x23}},
	features.KindMotionIntensity:     {data: []byte{0x04}},
	features.KindActivity:            {data: []byte{0x02, 0x01}},
	features.KindCarryPosition:       {data: []byte{0x03}},
	features.KindProximityGesture:    {data: []byte{0x01}},
	features.KindMemsGesture:         {data: []byte{0x02}},
	features.KindPedometer:           {data: []byte{0x0A, 0x00, 0x00, 0x00, 0x3C, 0x00}},

	features.KindRemoteSwitch:      {data: []byte{0x01, 0x00, 0x01}},
	features.KindRemotePressure:    {data: []byte{0x01, 0x00, 0x10, 0x27, 0x00, 0x00}},
	features.KindRemoteHumidity:    {data: []byte{0x01, 0x00, 0x1C, 0x02}},
	features.KindRemoteTemperature: {data: []byte{0x01, 0x00, 0xE8, 0x00}},
}

// eulerRecord is yaw 90, pitch -45 and roll 10 degrees.
var eulerRecord = func() []byte {
	var out []byte
	for _, v := range []float32{90, -45, 10} {
		out = append(out, numconv.LittleEndian.PutUInt32(math.Float32bits(v))...)
	}
	return out
}()

// TestDecodeEveryStandardBit decodes each known mask bit followed by a
// fixed one byte (or six byte) record and checks that both records are
// found and that together they cover the whole notification.
func TestDecodeEveryStandardBit(t *testing.T) {
	followers := map[features.Board][]uint32{
		features.BoardDefault:       {0x00000002, 0x00000001},
		features.BoardSensorTileBox: {0x00000002, 0x00000001},
		features.BoardRemoteNode:    {0x00040000},
	}
	for _, board := range []features.Board{features.BoardDefault, features.BoardSensorTileBox, features.BoardRemoteNode} {
		for bit := uint32(1) << 31; bit != 0; bit >>= 1 {
			f, err := features.FromMask(board, bit, true)
			if err != nil {
				continue
			}
			t.Run(fmt.Sprintf("%s/0x%08X_%s", board, bit, f.Name()), func(t *testing.T) {
				rec, ok := standardRecords[f.Kind()]
				require.True(t, ok, "no sample record for %s", f.Kind())

				mask := bit
				body := append([]byte{}, rec.data...)
				want := 1
				if !rec.alone {
					for _, next := range followers[board] {
						if next >= bit {
							continue
						}
						nf, err := features.FromMask(board, next, true)
						require.NoError(t, err)
						mask |= next
						body = append(body, standardRecords[nf.Kind()].data...)
						want = 2
						break
					}
				}

				header := 0
				buf := body
				if f.HasTimestamp() {
					header = 2
					buf = append([]byte{0x10, 0x00}, body...)
				}

				ch := model.StandardCharacteristic(mask)
				s := newSession(t, session.Config{Board: board}, ch)
				updates, err := s.Decode(ch, buf)
				require.NoError(t, err)
				require.Len(t, updates, want)
				assert.Equal(t, f.Name(), updates[0].Feature)
				assert.Equal(t, len(rec.data), updates[0].ReadBytes)

				total := 0
				for _, u := range updates {
					total += u.ReadBytes
				}
				assert.Equal(t, len(buf)-header, total)
			})
		}
	}
}

func TestDecodeEulerAngleFollowedByGesture(t *testing.T) {
	ch := model.StandardCharacteristic(0x00004002)
	s := newSession(t, session.Config{Board: features.BoardSensorTileBox}, ch)

	buf := append([]byte{0x10, 0x00}, eulerRecord...)
	buf = append(buf, 0x02)
	updates, err := s.Decode(ch, buf)
	require.NoError(t, err)
	require.Len(t, updates, 2)

	euler, ok := model.As[features.EulerAngleData](updates[0])
	require.True(t, ok)
	assert.Equal(t, 12, euler.ReadBytes)
	assert.InDelta(t, 90.0, euler.Data.Yaw.Value, 1e-6)
	assert.InDelta(t, -45.0, euler.Data.Pitch.Value, 1e-6)

	gesture, ok := model.As[features.MemsGestureData](updates[1])
	require.True(t, ok)
	assert.Equal(t, 1, gesture.ReadBytes)
	assert.Equal(t, uint64(16), gesture.Timestamp)
}

func TestDecodeNotDiscovered(t *testing.T) {
	s := session.New(session.Config{})
	_, err := s.Decode(envChar, envNotification)
	assert.ErrorIs(t, err, session.ErrNotDiscovered)
}

func TestEncode(t *testing.T) {
	rec := &recorder{}
	s := newSession(t, session.Config{}, model.StandardCharacteristic(0x20020000))
	s.SetProtocolLogger(rec)

	data, err := s.Encode("Switch", features.SwitchOn{})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x20, 0x00, 0x00, 0x00, 0x01}, data)

	cmds := rec.byCategory(log.CategoryCommand)
	require.Len(t, cmds, 1)
	assert.Equal(t, "SwitchOn", cmds[0].Command.Name)
	assert.Equal(t, uint8(0x01), cmds[0].Command.CommandID)
	assert.Equal(t, features.ConfigCharacteristic.String(), cmds[0].Characteristic)

	_, err = s.Encode("Switch", features.GetBatteryCapacity{})
	assert.ErrorIs(t, err, session.ErrCommandNotHandled)

	_, err = s.Encode("Gyroscope", features.SwitchOn{})
	assert.ErrorIs(t, err, session.ErrUnknownFeature)

	target, err := s.CommandTarget("Battery")
	require.NoError(t, err)
	assert.Equal(t, features.ConfigCharacteristic, target)
}

type frameSink struct{ frames [][]byte }

func (f *frameSink) Write(p []byte) (int, error) {
	f.frames = append(f.frames, append([]byte(nil), p...))
	return len(p), nil
}

func TestSend(t *testing.T) {
	rec := &recorder{}
	s := newSession(t, session.Config{MaxPayloadSize: 4}, model.StandardCharacteristic(0x20000000))
	s.SetProtocolLogger(rec)

	out := &frameSink{}
	require.NoError(t, s.Send("Switch", features.SwitchOn{}, out))
	assert.Equal(t, [][]byte{{0x20, 0x00, 0x00, 0x00}, {0x01}}, out.frames)
	assert.Len(t, rec.byCategory(log.CategoryCommand), 3, "the packed command and two frames")

	assert.ErrorIs(t, s.Send("Nope", features.SwitchOn{}, out), session.ErrUnknownFeature)
	assert.ErrorIs(t, s.Send("Switch", features.GetBatteryCapacity{}, out), session.ErrCommandNotHandled)
	assert.Len(t, out.frames, 2)
}

func TestParseResponse(t *testing.T) {
	s := newSession(t, session.Config{}, model.StandardCharacteristic(0x20020000))

	t.Run("Battery", func(t *testing.T) {
		resp, err := s.ParseResponse([]byte{0x01, 0x00, 0x00, 0x02, 0x00, 0x00, 0x01, 0x10, 0x27})
		require.NoError(t, err)
		capacity, ok := resp.(features.BatteryCapacity)
		require.True(t, ok)
		assert.Equal(t, uint16(10000), capacity.Capacity)
	})

	t.Run("UnknownMask", func(t *testing.T) {
		_, err := s.ParseResponse([]byte{0x01, 0x00, 0x00, 0x04, 0x00, 0x00, 0x01, 0x10})
		assert.ErrorIs(t, err, session.ErrUnknownFeature)
	})

	t.Run("Unparseable", func(t *testing.T) {
		_, err := s.ParseResponse([]byte{0x01, 0x00, 0x00, 0x02, 0x00, 0x00, 0x09, 0x10, 0x27})
		assert.ErrorIs(t, err, session.ErrUnparseableResponse)
	})

	t.Run("Short", func(t *testing.T) {
		_, err := s.ParseResponse([]byte{0x01, 0x00})
		assert.ErrorIs(t, err, numconv.ErrOutOfBounds)
	})
}

func TestProtocolEvents(t *testing.T) {
	rec := &recorder{}
	s := session.New(session.Config{DeviceID: "dev"})
	s.SetProtocolLogger(rec)
	_, err := s.Discover(envChar)
	require.NoError(t, err)

	_, err = s.Decode(envChar, envNotification)
	require.NoError(t, err)
	s.Close()

	assert.Len(t, rec.byCategory(log.CategoryState), 4, "three discoveries and the close")
	notifications := rec.byCategory(log.CategoryNotification)
	require.Len(t, notifications, 4, "one frame and three updates")
	assert.NotNil(t, notifications[0].Frame)
	assert.Equal(t, "Pressure", notifications[1].Update.Feature)
	for _, e := range rec.events {
		assert.Equal(t, s.ID(), e.SessionID)
		assert.Equal(t, "dev", e.DeviceID)
	}
}
