package features

import (
	"fmt"
	"math"

	"github.com/bluest-sdk/bluest-go/pkg/model"
	"github.com/bluest-sdk/bluest-go/pkg/numconv"
)

// AxesData is a three axis reading.
type AxesData struct {
	X model.Field[float32]
	Y model.Field[float32]
	Z model.Field[float32]
}

func (d AxesData) Fields() []model.AnyField { return []model.AnyField{d.X, d.Y, d.Z} }

// extractAxes reads three int16 values and divides them by scale.
func extractAxes(f *Feature, ts uint64, data []byte, off int, unit string, scale, limit float32) (model.AnyUpdate, error) {
	if err := numconv.Require(data, off, 6); err != nil {
		return model.AnyUpdate{}, err
	}
	axis := func(name string, i int) model.Field[float32] {
		v, _ := numconv.LittleEndian.Int16(data, off+2*i)
		return model.NewField(name, unit, float32(v)/scale).WithRange(-limit, limit)
	}
	d := AxesData{X: axis("X", 0), Y: axis("Y", 1), Z: axis("Z", 2)}
	return newUpdate(f, ts, data, off, 6, d), nil
}

func extractAcceleration(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	return extractAxes(f, ts, data, off, "mg", 1, 16000)
}

func extractGyroscope(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	return extractAxes(f, ts, data, off, "dps", 10, float32(1<<15)/10)
}

func extractMagnetometer(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	return extractAxes(f, ts, data, off, "mGa", 1, 2000)
}

// PedometerData is the step count and cadence.
type PedometerData struct {
	Steps     model.Field[uint32]
	Frequency model.Field[uint16]
}

func (d PedometerData) Fields() []model.AnyField { return []model.AnyField{d.Steps, d.Frequency} }

func extractPedometer(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	if err := numconv.Require(data, off, 6); err != nil {
		return model.AnyUpdate{}, err
	}
	steps, _ := numconv.LittleEndian.UInt32(data, off)
	freq, _ := numconv.LittleEndian.UInt16(data, off+4)
	d := PedometerData{
		Steps:     model.NewField("Steps", "", steps),
		Frequency: model.NewField("Frequency", "Steps/Min", freq),
	}
	return newUpdate(f, ts, data, off, 6, d), nil
}

// EventCounterData is the number of events counted by the board.
type EventCounterData struct {
	Count model.Field[uint32]
}

func (d EventCounterData) Fields() []model.AnyField { return []model.AnyField{d.Count} }

func extractEventCounter(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	v, err := numconv.LittleEndian.UInt32(data, off)
	if err != nil {
		return model.AnyUpdate{}, err
	}
	return newUpdate(f, ts, data, off, 4, EventCounterData{Count: model.NewField("Event", "", v)}), nil
}

// FreeFallData reports a free fall detection.
type FreeFallData struct {
	FreeFall model.Field[uint8]
}

func (d FreeFallData) Fields() []model.AnyField { return []model.AnyField{d.FreeFall} }

// Detected reports whether a free fall was detected.
func (d FreeFallData) Detected() bool { return d.FreeFall.Value != 0 }

func extractFreeFall(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	v, err := numconv.UInt8(data, off)
	if err != nil {
		return model.AnyUpdate{}, err
	}
	return newUpdate(f, ts, data, off, 1, FreeFallData{FreeFall: model.NewField("Free Fall", "", v)}), nil
}

// MemsGestureData is the last recognized gesture.
type MemsGestureData struct {
	Gesture model.Field[MemsGesture]
}

func (d MemsGestureData) Fields() []model.AnyField { return []model.AnyField{d.Gesture} }

func extractMemsGesture(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	v, err := numconv.UInt8(data, off)
	if err != nil {
		return model.AnyUpdate{}, err
	}
	d := MemsGestureData{
		Gesture: model.NewField("Gesture", "", memsGestureFromByte(v)).WithRange(MemsGestureUnknown, MemsGestureError),
	}
	return newUpdate(f, ts, data, off, 1, d), nil
}

// MemsNormData is the norm of the acceleration vector.
type MemsNormData struct {
	Norm model.Field[float32]
}

func (d MemsNormData) Fields() []model.AnyField { return []model.AnyField{d.Norm} }

func extractMemsNorm(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	v, err := numconv.LittleEndian.Int16(data, off)
	if err != nil {
		return model.AnyUpdate{}, err
	}
	return newUpdate(f, ts, data, off, 2, MemsNormData{Norm: model.NewField("Norm", "", float32(v)/10)}), nil
}

// MotionIntensityData is the motion intensity on a 0 to 10 scale.
type MotionIntensityData struct {
	Intensity model.Field[uint8]
}

func (d MotionIntensityData) Fields() []model.AnyField { return []model.AnyField{d.Intensity} }

func extractMotionIntensity(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	v, err := numconv.UInt8(data, off)
	if err != nil {
		return model.AnyUpdate{}, err
	}
	d := MotionIntensityData{Intensity: model.NewField("Intensity", "", v).WithRange(0, 10)}
	return newUpdate(f, ts, data, off, 1, d), nil
}

// CompassData is the heading in degrees.
type CompassData struct {
	Angle model.Field[float32]
}

func (d CompassData) Fields() []model.AnyField { return []model.AnyField{d.Angle} }

func extractCompass(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	v, err := numconv.LittleEndian.UInt16(data, off)
	if err != nil {
		return model.AnyUpdate{}, err
	}
	d := CompassData{Angle: model.NewField("Angle", "°", float32(v)/100).WithRange(0, 360)}
	return newUpdate(f, ts, data, off, 2, d), nil
}

// Calibration command ids shared by the compass and sensor fusion features.
const (
	commandStartCalibration     = 0x00
	commandStopCalibration      = 0x01
	commandGetCalibrationStatus = 0xFF

	calibrationDone = 100
)

func packCalibration(f *Feature, cmd Command) ([]byte, bool) {
	switch cmd.(type) {
	case StartCalibration:
		return f.request(commandStartCalibration), true
	case StopCalibration:
		return f.request(commandStopCalibration), true
	case GetCalibration:
		return f.request(commandGetCalibrationStatus), true
	default:
		return nil, false
	}
}

func parseCalibration(f *Feature, resp CommandResponse) (Response, bool) {
	switch resp.CommandID {
	case commandStartCalibration, commandStopCalibration, commandGetCalibrationStatus:
	default:
		return nil, false
	}
	if len(resp.Payload) < 1 {
		return nil, false
	}
	return CalibrationStatus{
		ResponseHeader: f.header(resp.CommandID),
		Calibrated:     resp.Payload[0] == calibrationDone,
	}, true
}

// ActivityAlgorithmNotDefined is the algorithm id of a one byte activity record.
const ActivityAlgorithmNotDefined = 0xFF

// ActivityData is the recognized activity and the algorithm that produced it.
type ActivityData struct {
	Activity  model.Field[Activity]
	Algorithm model.Field[uint8]
}

func (d ActivityData) Fields() []model.AnyField { return []model.AnyField{d.Activity, d.Algorithm} }

func extractActivity(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	if err := numconv.Require(data, off, 1); err != nil {
		return model.AnyUpdate{}, err
	}
	n := min(len(data)-off, 2)
	algorithm := uint8(ActivityAlgorithmNotDefined)
	if n == 2 {
		algorithm = data[off+1]
	}
	d := ActivityData{
		Activity:  model.NewField("Activity", "", activityFromByte(data[off])).WithRange(ActivityNone, ActivityError),
		Algorithm: model.NewField("Algorithm", "", algorithm).WithRange(0, 0xFF),
	}
	return newUpdate(f, ts, data, off, n, d), nil
}

// CarryPositionData is where the board is being carried.
type CarryPositionData struct {
	Position model.Field[CarryPosition]
}

func (d CarryPositionData) Fields() []model.AnyField { return []model.AnyField{d.Position} }

func extractCarryPosition(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	v, err := numconv.UInt8(data, off)
	if err != nil {
		return model.AnyUpdate{}, err
	}
	d := CarryPositionData{
		Position: model.NewField("Position", "", carryPositionFromByte(v)).WithRange(CarryPositionUnknown, CarryPositionError),
	}
	return newUpdate(f, ts, data, off, 1, d), nil
}

// ProximityGestureData is the last recognized proximity gesture.
type ProximityGestureData struct {
	Gesture model.Field[ProximityGesture]
}

func (d ProximityGestureData) Fields() []model.AnyField { return []model.AnyField{d.Gesture} }

func extractProximityGesture(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	v, err := numconv.UInt8(data, off)
	if err != nil {
		return model.AnyUpdate{}, err
	}
	d := ProximityGestureData{
		Gesture: model.NewField("Gesture", "", proximityGestureFromByte(v)).WithRange(ProximityGestureUnknown, ProximityGestureError),
	}
	return newUpdate(f, ts, data, off, 1, d), nil
}

// Quaternion is a rotation produced by the sensor fusion library.
type Quaternion struct {
	Timestamp  uint64
	I, J, K, S float32
}

// String returns the quaternion components.
func (q Quaternion) String() string {
	return fmt.Sprintf("qi=%.4f qj=%.4f qk=%.4f qs=%.4f", q.I, q.J, q.K, q.S)
}

// quaternionScalar derives the scalar part of a unit quaternion.
func quaternionScalar(i, j, k float32) float32 {
	t := 1 - (i*i + j*j + k*k)
	if t > 0 {
		return float32(math.Sqrt(float64(t)))
	}
	return 0
}

// SensorFusionData holds one or more quaternions.
type SensorFusionData struct {
	Quaternions []model.Field[Quaternion]
}

func (d SensorFusionData) Fields() []model.AnyField {
	out := make([]model.AnyField, len(d.Quaternions))
	for i, q := range d.Quaternions {
		out[i] = q
	}
	return out
}

const (
	sensorFusionCompatRecord = 6
	sensorFusionCompatScale  = 10000
	quaternionDelayMillis    = 30
)

func extractSensorFusion(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	if err := numconv.Require(data, off, 12); err != nil {
		return model.AnyUpdate{}, err
	}
	float := func(at int) float32 {
		v, _ := numconv.LittleEndian.UInt32(data, at)
		return math.Float32frombits(v)
	}
	q := Quaternion{Timestamp: ts, I: float(off), J: float(off + 4), K: float(off + 8)}
	n := 12
	if len(data)-off >= 16 {
		q.S = float(off + 12)
		n = 16
	} else {
		q.S = quaternionScalar(q.I, q.J, q.K)
	}
	d := SensorFusionData{Quaternions: []model.Field[Quaternion]{model.NewField("quaternion", "", q)}}
	return newUpdate(f, ts, data, off, n, d), nil
}

// extractSensorFusionCompat reads every complete 6 byte quaternion left in
// the buffer. The quaternions are spread over the notification interval.
func extractSensorFusionCompat(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	if err := numconv.Require(data, off, sensorFusionCompatRecord); err != nil {
		return model.AnyUpdate{}, err
	}
	count := (len(data) - off) / sensorFusionCompatRecord
	delay := uint64(quaternionDelayMillis / count)
	d := SensorFusionData{Quaternions: make([]model.Field[Quaternion], count)}
	for i := range count {
		at := off + i*sensorFusionCompatRecord
		component := func(k int) float32 {
			v, _ := numconv.LittleEndian.Int16(data, at+2*k)
			return float32(v) / sensorFusionCompatScale
		}
		q := Quaternion{Timestamp: ts + uint64(i)*delay, I: component(0), J: component(1), K: component(2)}
		q.S = quaternionScalar(q.I, q.J, q.K)
		d.Quaternions[i] = model.NewField("quaternion", "", q)
	}
	return newUpdate(f, ts, data, off, count*sensorFusionCompatRecord, d), nil
}

// EulerAngleData is the board orientation in degrees.
type EulerAngleData struct {
	Yaw   model.Field[float32]
	Pitch model.Field[float32]
	Roll  model.Field[float32]
}

func (d EulerAngleData) Fields() []model.AnyField { return []model.AnyField{d.Yaw, d.Pitch, d.Roll} }

const eulerAngleRecord = 12

func extractEulerAngle(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	if err := numconv.Require(data, off, eulerAngleRecord); err != nil {
		return model.AnyUpdate{}, err
	}
	angle := func(name string, i int, lo, hi float32) model.Field[float32] {
		v, _ := numconv.LittleEndian.UInt32(data, off+4*i)
		return model.NewField(name, "°", math.Float32frombits(v)).WithRange(lo, hi)
	}
	d := EulerAngleData{
		Yaw:   angle("Yaw", 0, 0, 360),
		Pitch: angle("Pitch", 1, -180, 180),
		Roll:  angle("Roll", 2, -90, 90),
	}
	return newUpdate(f, ts, data, off, eulerAngleRecord, d), nil
}
