package features

import (
	"math"

	"github.com/bluest-sdk/bluest-go/pkg/model"
	"github.com/bluest-sdk/bluest-go/pkg/numconv"
)

// PredictiveStatus is the health of one axis of a predictive maintenance
// measure.
type PredictiveStatus uint8

const (
	PredictiveGood    PredictiveStatus = 0x00
	PredictiveWarning PredictiveStatus = 0x01
	PredictiveBad     PredictiveStatus = 0x02
	PredictiveUnknown PredictiveStatus = 0x03
)

// String returns the status name.
func (s PredictiveStatus) String() string {
	switch s {
	case PredictiveGood:
		return "GOOD"
	case PredictiveWarning:
		return "WARNING"
	case PredictiveBad:
		return "BAD"
	default:
		return "UNKNOWN"
	}
}

// axisStatus unpacks the 2-bit status of axis i (0 is X) from the packed
// byte 0b00XXYYZZ.
func axisStatus(packed byte, i int) PredictiveStatus {
	return PredictiveStatus(packed >> (4 - 2*i) & 0x03)
}

func float32At(data []byte, at int) float32 {
	v, _ := numconv.LittleEndian.UInt32(data, at)
	return math.Float32frombits(v)
}

const (
	motorTimeParameterRecord = 18
	predictiveAxisRecord     = 12
	predictiveFreqRecord     = 13
)

// MotorTimeParameterData is the acceleration peak and RMS speed of a motor.
type MotorTimeParameterData struct {
	AccPeak  [3]model.Field[float32]
	RMSSpeed [3]model.Field[float32]
}

func (d MotorTimeParameterData) Fields() []model.AnyField {
	out := make([]model.AnyField, 0, 6)
	for _, f := range d.AccPeak {
		out = append(out, f)
	}
	for _, f := range d.RMSSpeed {
		out = append(out, f)
	}
	return out
}

var axisNames = [3]string{"X", "Y", "Z"}

func extractMotorTimeParameter(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	if err := numconv.Require(data, off, motorTimeParameterRecord); err != nil {
		return model.AnyUpdate{}, err
	}
	var d MotorTimeParameterData
	for i, axis := range axisNames {
		peak, _ := numconv.LittleEndian.Int16(data, off+2*i)
		d.AccPeak[i] = model.NewField("Acc "+axis+" Peak", "m/s^2", float32(peak)/100).WithRange(-2000, 2000)
		d.RMSSpeed[i] = model.NewField("RMS Speed "+axis, "mm/s", float32At(data, off+6+4*i)).WithRange(0, 2000)
	}
	return newUpdate(f, ts, data, off, motorTimeParameterRecord, d), nil
}

// PredictiveAxesData is a per axis status with the measure it rates.
type PredictiveAxesData struct {
	Status [3]model.Field[PredictiveStatus]
	Value  [3]model.Field[float32]
}

func (d PredictiveAxesData) Fields() []model.AnyField {
	out := make([]model.AnyField, 0, 6)
	for _, f := range d.Status {
		out = append(out, f)
	}
	for _, f := range d.Value {
		out = append(out, f)
	}
	return out
}

// extractPredictiveAxes reads a packed status byte followed by three floats.
func extractPredictiveAxes(f *Feature, ts uint64, data []byte, off int, statusName, valueName, unit string) (model.AnyUpdate, error) {
	if err := numconv.Require(data, off, predictiveAxisRecord); err != nil {
		return model.AnyUpdate{}, err
	}
	var d PredictiveAxesData
	for i, axis := range axisNames {
		d.Status[i] = model.NewField(statusName+axis, "", axisStatus(data[off], i)).WithRange(PredictiveGood, PredictiveBad)
		d.Value[i] = model.NewField(valueName+axis, unit, float32At(data, off+1+4*i))
	}
	return newUpdate(f, ts, data, off, predictiveAxisRecord, d), nil
}

func extractPredictiveSpeedStatus(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	return extractPredictiveAxes(f, ts, data, off, "StatusSpeed_", "RMSSpeed_", "mm/s")
}

func extractPredictiveAccelerationStatus(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	return extractPredictiveAxes(f, ts, data, off, "StatusAcc_", "AccPeak_", "m/s^2")
}

// PredictiveFrequencyData is the per axis status with the frequency and
// amplitude of the worst harmonic.
type PredictiveFrequencyData struct {
	Status    [3]model.Field[PredictiveStatus]
	Frequency [3]model.Field[float32]
	Amplitude [3]model.Field[float32]
}

func (d PredictiveFrequencyData) Fields() []model.AnyField {
	out := make([]model.AnyField, 0, 9)
	for i := range axisNames {
		out = append(out, d.Status[i], d.Frequency[i], d.Amplitude[i])
	}
	return out
}

func extractPredictiveFrequencyStatus(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	if err := numconv.Require(data, off, predictiveFreqRecord); err != nil {
		return model.AnyUpdate{}, err
	}
	var d PredictiveFrequencyData
	for i, axis := range axisNames {
		at := off + 1 + 4*i
		freq, _ := numconv.LittleEndian.UInt16(data, at)
		amp, _ := numconv.LittleEndian.UInt16(data, at+2)
		d.Status[i] = model.NewField("StatusAcc_"+axis, "", axisStatus(data[off], i)).WithRange(PredictiveGood, PredictiveBad)
		d.Frequency[i] = model.NewField("Freq_"+axis, "Hz", float32(freq)/10).WithRange(0, float32(1<<16)/10)
		d.Amplitude[i] = model.NewField("MaxAmplitude_"+axis, "m/s^2", float32(amp)/100).WithRange(0, float32(1<<16)/10)
	}
	return newUpdate(f, ts, data, off, predictiveFreqRecord, d), nil
}
