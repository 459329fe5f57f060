package features

import (
	"math"

	"github.com/bluest-sdk/bluest-go/pkg/model"
	"github.com/bluest-sdk/bluest-go/pkg/numconv"
)

// Battery wire constants.
const (
	batteryRecordSize        = 7
	batteryUnknownCurrent    = math.MinInt16
	batteryHighResolutionBit = 0x80

	commandBatteryCapacity   = 0x01
	commandBatteryMaxCurrent = 0x02
)

// BatteryData is the battery state of charge and power flow.
type BatteryData struct {
	Level   model.Field[float32]
	Voltage model.Field[float32]
	Current model.Field[float32]
	Status  model.Field[BatteryStatus]
}

func (d BatteryData) Fields() []model.AnyField {
	return []model.AnyField{d.Level, d.Voltage, d.Current, d.Status}
}

func extractBattery(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	if err := numconv.Require(data, off, batteryRecordSize); err != nil {
		return model.AnyUpdate{}, err
	}
	level, _ := numconv.LittleEndian.Int16(data, off)
	voltage, _ := numconv.LittleEndian.Int16(data, off+2)
	current, _ := numconv.LittleEndian.Int16(data, off+4)
	status := data[off+6]

	d := BatteryData{
		Level:   model.NewField("Level", "%", clamp(float32(level)/10, 0, 100)).WithRange(0, 100),
		Voltage: model.NewField("Voltage", "V", float32(voltage)/1000).WithRange(0, 10),
		Current: model.NewField("Current", "mA", batteryCurrent(current, status&batteryHighResolutionBit != 0)).WithRange(-10, 10),
		Status:  model.NewField("Status", "", batteryStatusFromByte(status)).WithRange(BatteryStatusLowBattery, BatteryStatusError),
	}
	return newUpdate(f, ts, data, off, batteryRecordSize, d), nil
}

// batteryCurrent converts the raw current. The high resolution flag means
// the value is in tenths of mA.
func batteryCurrent(raw int16, highResolution bool) float32 {
	if raw == batteryUnknownCurrent {
		return float32(math.NaN())
	}
	if highResolution {
		return float32(raw) * 0.1
	}
	return float32(raw)
}

func clamp(v, lo, hi float32) float32 {
	return max(lo, min(hi, v))
}

func packBattery(f *Feature, cmd Command) ([]byte, bool) {
	switch cmd.(type) {
	case GetBatteryCapacity:
		return f.request(commandBatteryCapacity), true
	case GetMaxAbsorbedCurrent:
		return f.request(commandBatteryMaxCurrent), true
	default:
		return nil, false
	}
}

func parseBattery(f *Feature, resp CommandResponse) (Response, bool) {
	switch resp.CommandID {
	case commandBatteryCapacity:
		v, err := numconv.LittleEndian.UInt16(resp.Payload, 0)
		if err != nil {
			return nil, false
		}
		return BatteryCapacity{ResponseHeader: f.header(resp.CommandID), Capacity: v}, true
	case commandBatteryMaxCurrent:
		v, err := numconv.LittleEndian.Int16(resp.Payload, 0)
		if err != nil {
			return nil, false
		}
		return MaxAbsorbedCurrent{ResponseHeader: f.header(resp.CommandID), Current: float32(v) / 10}, true
	default:
		return nil, false
	}
}

// Switch command ids.
const (
	commandSwitchOff = 0x00
	commandSwitchOn  = 0x01
)

// SwitchData is the state of the board switch.
type SwitchData struct {
	Status model.Field[SwitchState]
}

func (d SwitchData) Fields() []model.AnyField { return []model.AnyField{d.Status} }

func extractSwitch(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	v, err := numconv.UInt8(data, off)
	if err != nil {
		return model.AnyUpdate{}, err
	}
	d := SwitchData{Status: model.NewField("Status", "", switchStateFromByte(v)).WithRange(SwitchStateOff, SwitchStateError)}
	return newUpdate(f, ts, data, off, 1, d), nil
}

func packSwitch(f *Feature, cmd Command) ([]byte, bool) {
	switch cmd.(type) {
	case SwitchOn:
		return f.request(commandSwitchOn), true
	case SwitchOff:
		return f.request(commandSwitchOff), true
	default:
		return nil, false
	}
}

func parseSwitch(f *Feature, resp CommandResponse) (Response, bool) {
	if len(resp.Payload) < 1 {
		return nil, false
	}
	return SwitchResponse{
		ResponseHeader: f.header(resp.CommandID),
		Status:         switchStateFromByte(resp.Payload[0]),
	}, true
}
