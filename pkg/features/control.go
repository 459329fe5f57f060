package features

import (
	"github.com/bluest-sdk/bluest-go/pkg/model"
	"github.com/bluest-sdk/bluest-go/pkg/numconv"
)

// LoggingStatus is the state of the SD card logger.
type LoggingStatus uint8

const (
	LoggingStopped LoggingStatus = 0x00
	LoggingStarted LoggingStatus = 0x01
	LoggingNoSD    LoggingStatus = 0x02
	LoggingIOError LoggingStatus = 0x03
)

func loggingStatusFromByte(b byte) LoggingStatus {
	if b > byte(LoggingNoSD) {
		return LoggingIOError
	}
	return LoggingStatus(b)
}

// String returns the status name.
func (s LoggingStatus) String() string {
	switch s {
	case LoggingStopped:
		return "STOPPED"
	case LoggingStarted:
		return "STARTED"
	case LoggingNoSD:
		return "NO_SD"
	default:
		return "IO_ERROR"
	}
}

const sdLoggingRecord = 9

// SDLoggingData is the logger state, the mask of the logged features and
// the logging interval.
type SDLoggingData struct {
	Status   model.Field[LoggingStatus]
	Features model.Field[uint32]
	Interval model.Field[uint32]
}

func (d SDLoggingData) Fields() []model.AnyField {
	return []model.AnyField{d.Status, d.Features, d.Interval}
}

// LoggedFeatures returns the single bit masks set in Features, most
// significant first.
func (d SDLoggingData) LoggedFeatures() []uint32 {
	var out []uint32
	for bit := uint32(1) << 31; bit != 0; bit >>= 1 {
		if d.Features.Value&bit != 0 {
			out = append(out, bit)
		}
	}
	return out
}

func extractSDLogging(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	if err := numconv.Require(data, off, sdLoggingRecord); err != nil {
		return model.AnyUpdate{}, err
	}
	mask, _ := numconv.LittleEndian.UInt32(data, off+1)
	interval, _ := numconv.LittleEndian.UInt32(data, off+5)
	d := SDLoggingData{
		Status:   model.NewField("isEnabled", "", loggingStatusFromByte(data[off])),
		Features: model.NewField("loggedFeature", "", mask),
		Interval: model.NewField("logInterval", "", interval),
	}
	return newUpdate(f, ts, data, off, sdLoggingRecord, d), nil
}

// SD logging command ids.
const (
	commandStopSDLogging  = 0x00
	commandStartSDLogging = 0x01
)

func packSDLogging(f *Feature, cmd Command) ([]byte, bool) {
	switch c := cmd.(type) {
	case StartSDLogging:
		var mask uint32
		for _, m := range c.Features {
			mask |= m
		}
		data := append(numconv.LittleEndian.PutUInt32(mask), numconv.LittleEndian.PutUInt32(c.Interval)...)
		return f.request(commandStartSDLogging, data...), true
	case StopSDLogging:
		return f.request(commandStopSDLogging, make([]byte, 8)...), true
	default:
		return nil, false
	}
}

// MotorStatus is the state of the stepper motor.
type MotorStatus uint8

const (
	MotorInactive MotorStatus = 0x00
	MotorRunning  MotorStatus = 0x01
	MotorError    MotorStatus = 0xFF
)

// String returns the status name.
func (s MotorStatus) String() string {
	switch s {
	case MotorInactive:
		return "INACTIVE"
	case MotorRunning:
		return "RUNNING"
	default:
		return "ERROR"
	}
}

// StepperMotorData is the stepper motor state.
type StepperMotorData struct {
	Status model.Field[MotorStatus]
}

func (d StepperMotorData) Fields() []model.AnyField { return []model.AnyField{d.Status} }

func extractStepperMotor(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	v, err := numconv.UInt8(data, off)
	if err != nil {
		return model.AnyUpdate{}, err
	}
	status := MotorError
	if v <= byte(MotorRunning) {
		status = MotorStatus(v)
	}
	return newUpdate(f, ts, data, off, 1, StepperMotorData{Status: model.NewField("Motor Status", "", status)}), nil
}

// MotorAction is a stepper motor command.
type MotorAction uint8

const (
	MotorStopWithoutTorque MotorAction = iota
	MotorStopWithTorque
	MotorRunForward
	MotorRunBackward
	MotorMoveStepsForward
	MotorMoveStepsBackward
)

func packStepperMotor(f *Feature, cmd Command) ([]byte, bool) {
	c, ok := cmd.(MoveMotor)
	if !ok || c.Action > MotorMoveStepsBackward {
		return nil, false
	}
	if c.Action == MotorMoveStepsForward || c.Action == MotorMoveStepsBackward {
		return f.request(byte(c.Action), numconv.BigEndian.PutUInt32(c.Steps)...), true
	}
	return f.request(byte(c.Action)), true
}
