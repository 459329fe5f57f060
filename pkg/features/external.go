package features

import (
	"fmt"
	"math"

	"github.com/bluest-sdk/bluest-go/pkg/model"
	"github.com/bluest-sdk/bluest-go/pkg/numconv"
)

// Heart rate measurement flags.
const (
	heartRate16Bit          = 0x01
	heartRateSkinDetected   = 0x02
	heartRateSkinSupported  = 0x04
	heartRateEnergyExpended = 0x08
	heartRateRRInterval     = 0x10

	// HeartRateNoEnergy is the energy value when the sensor does not report it.
	HeartRateNoEnergy = -1
)

// HeartRateData is a Bluetooth SIG heart rate measurement.
type HeartRateData struct {
	HeartRate            model.Field[int]
	EnergyExpended       model.Field[int]
	RRInterval           model.Field[float32]
	SkinContactSupported model.Field[bool]
	SkinContactDetected  model.Field[bool]
}

func (d HeartRateData) Fields() []model.AnyField {
	return []model.AnyField{d.HeartRate, d.EnergyExpended, d.RRInterval, d.SkinContactSupported, d.SkinContactDetected}
}

func extractHeartRate(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	if err := numconv.Require(data, off, 2); err != nil {
		return model.AnyUpdate{}, err
	}
	flags := data[off]
	pos := off + 1

	var hr int
	if flags&heartRate16Bit == 0 {
		hr = int(data[pos])
		pos++
	} else {
		v, err := numconv.LittleEndian.UInt16(data, pos)
		if err != nil {
			return model.AnyUpdate{}, err
		}
		hr = int(v)
		pos += 2
	}

	energy := HeartRateNoEnergy
	if flags&heartRateEnergyExpended != 0 {
		v, err := numconv.LittleEndian.UInt16(data, pos)
		if err != nil {
			return model.AnyUpdate{}, err
		}
		energy = int(v)
		pos += 2
	}

	rr := float32(math.NaN())
	if flags&heartRateRRInterval != 0 {
		v, err := numconv.LittleEndian.UInt16(data, pos)
		if err != nil {
			return model.AnyUpdate{}, err
		}
		rr = float32(v) / 1024
		pos += 2
	}

	d := HeartRateData{
		HeartRate:            model.NewField("Heart Rate Measurement", "bpm", hr).WithRange(0, math.MaxUint16),
		EnergyExpended:       model.NewField("Energy Expended", "kJ", energy).WithRange(HeartRateNoEnergy, math.MaxUint16),
		RRInterval:           model.NewField("RR-Interval", "s", rr),
		SkinContactSupported: model.NewField("Skin Contact Supported", "", flags&heartRateSkinSupported != 0),
		SkinContactDetected:  model.NewField("Skin Contact Detected", "", flags&heartRateSkinDetected != 0),
	}
	return newUpdate(f, ts, data, off, pos-off, d), nil
}

// BodySensorLocationData is where the heart rate sensor is worn.
type BodySensorLocationData struct {
	Location model.Field[BodySensorLocation]
}

func (d BodySensorLocationData) Fields() []model.AnyField { return []model.AnyField{d.Location} }

func extractBodySensorLocation(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	v, err := numconv.UInt8(data, off)
	if err != nil {
		return model.AnyUpdate{}, err
	}
	d := BodySensorLocationData{
		Location: model.NewField("Body Sensor Location", "", bodySensorLocationFromByte(v)).WithRange(BodySensorOther, BodySensorNotKnown),
	}
	return newUpdate(f, ts, data, off, 1, d), nil
}

// STM32WB peer to peer constants.
const (
	// MaxManagedDevices is the number of end nodes a P2P router tracks.
	MaxManagedDevices = 6

	ledOff      = 0x00
	ledOn       = 0x01
	radioReboot = 0x02
)

// SwitchStatusData is a button event of a P2P node.
type SwitchStatusData struct {
	DeviceID model.Field[uint8]
	Pressed  model.Field[bool]
}

func (d SwitchStatusData) Fields() []model.AnyField { return []model.AnyField{d.DeviceID, d.Pressed} }

func extractSwitchStatus(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	if err := numconv.Require(data, off, 2); err != nil {
		return model.AnyUpdate{}, err
	}
	d := SwitchStatusData{
		DeviceID: model.NewField("DeviceId", "", data[off]).WithRange(0, MaxManagedDevices),
		Pressed:  model.NewField("SwitchPressed", "", data[off+1] == 0x01),
	}
	return newUpdate(f, ts, data, off, 2, d), nil
}

// NetworkStatusData reports which P2P nodes are connected to the router.
type NetworkStatusData struct {
	Connected []model.Field[bool]
}

func (d NetworkStatusData) Fields() []model.AnyField {
	out := make([]model.AnyField, len(d.Connected))
	for i, c := range d.Connected {
		out[i] = c
	}
	return out
}

func extractNetworkStatus(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	if err := numconv.Require(data, off, MaxManagedDevices); err != nil {
		return model.AnyUpdate{}, err
	}
	n := len(data) - off
	d := NetworkStatusData{Connected: make([]model.Field[bool], n)}
	for i := range n {
		d.Connected[i] = model.NewField(fmt.Sprintf("Device%d", i), "", data[off+i] == 0x01)
	}
	return newUpdate(f, ts, data, off, n, d), nil
}

func packControlLed(f *Feature, cmd Command) ([]byte, bool) {
	switch c := cmd.(type) {
	case ControlLED:
		state := byte(ledOff)
		if c.On {
			state = ledOn
		}
		return []byte{c.DeviceID, state}, true
	case RebootRadio:
		return []byte{c.DeviceID, radioReboot}, true
	default:
		return nil, false
	}
}
