package features

import (
	"fmt"

	"github.com/bluest-sdk/bluest-go/pkg/model"
	"github.com/bluest-sdk/bluest-go/pkg/numconv"
)

// TemperatureData is a temperature reading in degrees Celsius.
type TemperatureData struct {
	Temperature model.Field[float32]
}

func (d TemperatureData) Fields() []model.AnyField { return []model.AnyField{d.Temperature} }

func extractTemperature(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	v, err := numconv.LittleEndian.Int16(data, off)
	if err != nil {
		return model.AnyUpdate{}, err
	}
	d := TemperatureData{
		Temperature: model.NewField("Temperature", "℃", float32(v)/10).WithRange(-40, 120),
	}
	return newUpdate(f, ts, data, off, 2, d), nil
}

// PressureData is a barometric pressure in millibar.
type PressureData struct {
	Pressure model.Field[float32]
}

func (d PressureData) Fields() []model.AnyField { return []model.AnyField{d.Pressure} }

func extractPressure(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	v, err := numconv.LittleEndian.Int32(data, off)
	if err != nil {
		return model.AnyUpdate{}, err
	}
	d := PressureData{
		Pressure: model.NewField("Pressure", "mBar", float32(v)/100).WithRange(0, 2000),
	}
	return newUpdate(f, ts, data, off, 4, d), nil
}

// HumidityData is a relative humidity in percent.
type HumidityData struct {
	Humidity model.Field[float32]
}

func (d HumidityData) Fields() []model.AnyField { return []model.AnyField{d.Humidity} }

func extractHumidity(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	v, err := numconv.LittleEndian.UInt16(data, off)
	if err != nil {
		return model.AnyUpdate{}, err
	}
	d := HumidityData{
		Humidity: model.NewField("Humidity", "%", float32(v)/10).WithRange(0, 100),
	}
	return newUpdate(f, ts, data, off, 2, d), nil
}

// LuminosityData is an ambient light level in lux.
type LuminosityData struct {
	Luminosity model.Field[uint16]
}

func (d LuminosityData) Fields() []model.AnyField { return []model.AnyField{d.Luminosity} }

func extractLuminosity(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	v, err := numconv.LittleEndian.UInt16(data, off)
	if err != nil {
		return model.AnyUpdate{}, err
	}
	d := LuminosityData{
		Luminosity: model.NewField("Luminosity", "Lux", v).WithRange(0, 1000),
	}
	return newUpdate(f, ts, data, off, 2, d), nil
}

// COSensorData is a carbon monoxide concentration in ppm.
type COSensorData struct {
	Concentration model.Field[float32]
}

func (d COSensorData) Fields() []model.AnyField { return []model.AnyField{d.Concentration} }

func extractCOSensor(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	v, err := numconv.LittleEndian.Int32(data, off)
	if err != nil {
		return model.AnyUpdate{}, err
	}
	d := COSensorData{
		Concentration: model.NewField("CO Concentration", "ppm", float32(v)/100).WithRange(0, 1e6),
	}
	return newUpdate(f, ts, data, off, 4, d), nil
}

// Proximity range limits.
const (
	// ProximityOutOfRange is the distance reported when no object is in range.
	ProximityOutOfRange = 0xFFFF

	proximityLowRangeMax  = 0xFE
	proximityHighRangeMax = 0x7FFE
	proximityHighRangeBit = 0x8000
)

// ProximityData is the distance of the nearest object in millimeters.
type ProximityData struct {
	Distance model.Field[uint16]
}

func (d ProximityData) Fields() []model.AnyField { return []model.AnyField{d.Distance} }

// OutOfRange reports whether no object was detected.
func (d ProximityData) OutOfRange() bool { return d.Distance.Value == ProximityOutOfRange }

func extractProximity(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	v, err := numconv.LittleEndian.UInt16(data, off)
	if err != nil {
		return model.AnyUpdate{}, err
	}
	d := ProximityData{
		Distance: model.NewField("Distance", "mm", proximityDistance(v)).WithRange(0, ProximityOutOfRange),
	}
	return newUpdate(f, ts, data, off, 2, d), nil
}

// proximityDistance applies the limit of the range the sensor reports in.
func proximityDistance(raw uint16) uint16 {
	v := raw &^ proximityHighRangeBit
	limit := uint16(proximityLowRangeMax)
	if raw&proximityHighRangeBit != 0 {
		limit = proximityHighRangeMax
	}
	if v > limit {
		return ProximityOutOfRange
	}
	return v
}

// MicLevelData holds one level per microphone, in dB.
type MicLevelData struct {
	Levels []model.Field[uint8]
}

func (d MicLevelData) Fields() []model.AnyField {
	out := make([]model.AnyField, len(d.Levels))
	for i, l := range d.Levels {
		out[i] = l
	}
	return out
}

func extractMicLevel(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	if err := numconv.Require(data, off, 1); err != nil {
		return model.AnyUpdate{}, err
	}
	n := len(data) - off
	d := MicLevelData{Levels: make([]model.Field[uint8], n)}
	for i := range n {
		d.Levels[i] = model.NewField(fmt.Sprintf("Mic_%d", i), "dB", data[off+i]).WithRange(0, 128)
	}
	return newUpdate(f, ts, data, off, n, d), nil
}

// DirectionOfArrivalData is the direction of a sound source in degrees.
type DirectionOfArrivalData struct {
	Angle model.Field[int]
}

func (d DirectionOfArrivalData) Fields() []model.AnyField { return []model.AnyField{d.Angle} }

const commandSetSensitivity = 0xCC

func extractDirectionOfArrival(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	v, err := numconv.LittleEndian.Int16(data, off)
	if err != nil {
		return model.AnyUpdate{}, err
	}
	d := DirectionOfArrivalData{
		Angle: model.NewField("Angle", "°", normalizeAngle(int(v))).WithRange(0, 360),
	}
	return newUpdate(f, ts, data, off, 2, d), nil
}

func normalizeAngle(a int) int {
	for a < 0 {
		a += 360
	}
	for a > 360 {
		a -= 360
	}
	return a
}

func packDirectionOfArrival(f *Feature, cmd Command) ([]byte, bool) {
	c, ok := cmd.(SetSensitivity)
	if !ok {
		return nil, false
	}
	return f.request(commandSetSensitivity, boolByte(c.High)), true
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
