package features

import (
	"fmt"

	"github.com/bluest-sdk/bluest-go/pkg/numconv"
)

// responseHeaderSize is tick(2) + mask(4) + command id(1).
const responseHeaderSize = 7

// Command is a request that a feature can encode into a characteristic
// write. The set of commands is closed.
type Command interface {
	// Name returns the command name used in logs.
	Name() string
	isCommand()
}

// Response is a decoded command response. The set of responses is closed.
type Response interface {
	// Header returns the feature and command the response answers.
	Header() ResponseHeader
	// Name returns the response name used in logs.
	Name() string
	isResponse()
}

// ResponseHeader identifies what a response answers.
type ResponseHeader struct {
	FeatureName string
	CommandID   uint8
}

// Header returns the header itself; embedding it provides Response.Header.
func (h ResponseHeader) Header() ResponseHeader { return h }

func (ResponseHeader) isResponse() {}

// CommandResponse is the raw content of a notification on the config
// characteristic.
type CommandResponse struct {
	Timestamp uint16
	Mask      uint32
	CommandID uint8
	Payload   []byte
}

// UnpackResponse splits a config characteristic notification into its
// header fields and payload.
func UnpackResponse(data []byte) (CommandResponse, error) {
	if err := numconv.Require(data, 0, responseHeaderSize); err != nil {
		return CommandResponse{}, fmt.Errorf("command response: %w", err)
	}
	ts, _ := numconv.LittleEndian.UInt16(data, 0)
	mask, _ := numconv.BigEndian.UInt32(data, 2)
	return CommandResponse{
		Timestamp: ts,
		Mask:      mask,
		CommandID: data[6],
		Payload:   data[responseHeaderSize:],
	}, nil
}

// PackResponse is the inverse of UnpackResponse.
func PackResponse(r CommandResponse) []byte {
	out := make([]byte, 0, responseHeaderSize+len(r.Payload))
	out = append(out, numconv.LittleEndian.PutUInt16(r.Timestamp)...)
	out = append(out, numconv.BigEndian.PutUInt32(r.Mask)...)
	out = append(out, r.CommandID)
	return append(out, r.Payload...)
}

// Switch commands.
type (
	SwitchOn  struct{}
	SwitchOff struct{}
)

// Battery commands.
type (
	GetBatteryCapacity    struct{}
	GetMaxAbsorbedCurrent struct{}
)

// EnableDetection turns the detection of an acceleration event on or off.
type EnableDetection struct {
	Event  DetectableEvent
	Enable bool
}

// ChangeRemoteSwitch sets the switch of a remote node.
type ChangeRemoteSwitch struct {
	NodeID uint16
	On     bool
}

// Calibration commands of the compass and sensor fusion features.
type (
	StartCalibration struct{}
	StopCalibration  struct{}
	GetCalibration   struct{}
)

// SetSensitivity selects the direction of arrival microphone sensitivity.
type SetSensitivity struct {
	High bool
}

// WriteBinaryContent sends an opaque payload to the BinaryContent feature.
type WriteBinaryContent struct {
	Payload []byte
}

// WriteNFC sends a JSON command to the NFC tag writer.
type WriteNFC struct {
	Command NFCCommand
}

// WriteHSDataLog sends a JSON command to the high speed datalog.
type WriteHSDataLog struct {
	Command HSDataLogCommand
}

// WriteNewImageParameter announces a BlueNRG firmware image.
type WriteNewImageParameter struct {
	AckEvery    uint8
	ImageSize   uint32
	BaseAddress uint32
}

// UploadImageTU sends one BlueNRG image transfer unit.
type UploadImageTU struct {
	Payload []byte
}

// OTA upload targets.
type UploadTarget uint8

const (
	UploadTargetApplication UploadTarget = iota
	UploadTargetWireless
)

// StartUpload opens an STM32WB upload at a flash address.
type StartUpload struct {
	Target         UploadTarget
	Address        uint32
	SectorsToErase *uint8
}

// STM32WB upload control commands.
type (
	FinishUpload struct{}
	CancelUpload struct{}
	StopUpload   struct{}
)

// UploadOTAData sends one chunk of an STM32WB firmware file.
type UploadOTAData struct {
	Payload []byte
}

// RebootToOTAMode reboots an STM32WB into the OTA loader.
type RebootToOTAMode struct {
	SectorOffset uint8
	NumSectors   uint8
}

// ControlLED switches the LED of an STM32WB peer to peer node.
type ControlLED struct {
	DeviceID uint8
	On       bool
}

// RebootRadio reboots the radio stack of an STM32WB peer to peer node.
type RebootRadio struct {
	DeviceID uint8
}

// Beam forming commands.
type (
	EnableBeamForming struct {
		Enable bool
	}
	SetBeamDirection struct {
		Direction BeamDirection
	}
	// UseStrongBeamForming selects the strong algorithm, or the ASR ready
	// one when Strong is false.
	UseStrongBeamForming struct {
		Strong bool
	}
)

// StartSDLogging logs the features of the given masks every Interval.
type StartSDLogging struct {
	Features []uint32
	Interval uint32
}

// StopSDLogging stops the SD card logger.
type StopSDLogging struct{}

// MoveMotor drives the stepper motor. Steps is used by the move commands
// only.
type MoveMotor struct {
	Action MotorAction
	Steps  uint32
}

// EnableFitnessActivity selects the exercise the board counts.
type EnableFitnessActivity struct {
	Activity FitnessActivity
}

// EnablePresenceRecognition turns the people count of the multi object
// time of flight sensor on or off.
type EnablePresenceRecognition struct {
	Enable bool
}

// NEAIAction is a request to a NanoEdge AI library.
type NEAIAction uint8

const (
	NEAIStop NEAIAction = iota
	NEAILearn
	NEAIDetect
	NEAIResetKnowledge
	NEAIClassify
)

// RunNEAI drives the anomaly detection or classification library.
type RunNEAI struct {
	Action NEAIAction
}

func (SwitchOn) Name() string               { return "SwitchOn" }
func (SwitchOff) Name() string              { return "SwitchOff" }
func (GetBatteryCapacity) Name() string     { return "GetBatteryCapacity" }
func (GetMaxAbsorbedCurrent) Name() string  { return "GetMaxAbsorbedCurrent" }
func (EnableDetection) Name() string        { return "EnableDetection" }
func (ChangeRemoteSwitch) Name() string     { return "ChangeRemoteSwitch" }
func (StartCalibration) Name() string       { return "StartCalibration" }
func (StopCalibration) Name() string        { return "StopCalibration" }
func (GetCalibration) Name() string         { return "GetCalibration" }
func (SetSensitivity) Name() string         { return "SetSensitivity" }
func (WriteBinaryContent) Name() string     { return "WriteBinaryContent" }
func (WriteNFC) Name() string               { return "WriteNFC" }
func (WriteHSDataLog) Name() string         { return "WriteHSDataLog" }
func (WriteNewImageParameter) Name() string { return "WriteNewImageParameter" }
func (UploadImageTU) Name() string          { return "UploadImageTU" }
func (StartUpload) Name() string            { return "StartUpload" }
func (FinishUpload) Name() string           { return "FinishUpload" }
func (CancelUpload) Name() string           { return "CancelUpload" }
func (StopUpload) Name() string             { return "StopUpload" }
func (UploadOTAData) Name() string          { return "UploadOTAData" }
func (RebootToOTAMode) Name() string        { return "RebootToOTAMode" }
func (ControlLED) Name() string             { return "ControlLED" }
func (RebootRadio) Name() string            { return "RebootRadio" }

func (EnableBeamForming) Name() string         { return "EnableBeamForming" }
func (SetBeamDirection) Name() string          { return "SetBeamDirection" }
func (UseStrongBeamForming) Name() string      { return "UseStrongBeamForming" }
func (StartSDLogging) Name() string            { return "StartSDLogging" }
func (StopSDLogging) Name() string             { return "StopSDLogging" }
func (MoveMotor) Name() string                 { return "MoveMotor" }
func (EnableFitnessActivity) Name() string     { return "EnableFitnessActivity" }
func (EnablePresenceRecognition) Name() string { return "EnablePresenceRecognition" }
func (RunNEAI) Name() string                   { return "RunNEAI" }

func (SwitchOn) isCommand()               {}
func (SwitchOff) isCommand()              {}
func (GetBatteryCapacity) isCommand()     {}
func (GetMaxAbsorbedCurrent) isCommand()  {}
func (EnableDetection) isCommand()        {}
func (ChangeRemoteSwitch) isCommand()     {}
func (StartCalibration) isCommand()       {}
func (StopCalibration) isCommand()        {}
func (GetCalibration) isCommand()         {}
func (SetSensitivity) isCommand()         {}
func (WriteBinaryContent) isCommand()     {}
func (WriteNFC) isCommand()               {}
func (WriteHSDataLog) isCommand()         {}
func (WriteNewImageParameter) isCommand() {}
func (UploadImageTU) isCommand()          {}
func (StartUpload) isCommand()            {}
func (FinishUpload) isCommand()           {}
func (CancelUpload) isCommand()           {}
func (StopUpload) isCommand()             {}
func (UploadOTAData) isCommand()          {}
func (RebootToOTAMode) isCommand()        {}
func (ControlLED) isCommand()             {}
func (RebootRadio) isCommand()            {}

func (EnableBeamForming) isCommand()         {}
func (SetBeamDirection) isCommand()          {}
func (UseStrongBeamForming) isCommand()      {}
func (StartSDLogging) isCommand()            {}
func (StopSDLogging) isCommand()             {}
func (MoveMotor) isCommand()                 {}
func (EnableFitnessActivity) isCommand()     {}
func (EnablePresenceRecognition) isCommand() {}
func (RunNEAI) isCommand()                   {}

// BatteryCapacity answers GetBatteryCapacity, in mAh.
type BatteryCapacity struct {
	ResponseHeader
	Capacity uint16
}

// MaxAbsorbedCurrent answers GetMaxAbsorbedCurrent, in mA.
type MaxAbsorbedCurrent struct {
	ResponseHeader
	Current float32
}

// SwitchResponse reports the switch state after a switch command.
type SwitchResponse struct {
	ResponseHeader
	Status SwitchState
}

// DetectionResponse reports the acceleration event detection state.
type DetectionResponse struct {
	ResponseHeader
	Event DetectableEvent
}

// CalibrationStatus reports whether the calibration completed.
type CalibrationStatus struct {
	ResponseHeader
	Calibrated bool
}

func (BatteryCapacity) Name() string    { return "BatteryCapacity" }
func (MaxAbsorbedCurrent) Name() string { return "MaxAbsorbedCurrent" }
func (SwitchResponse) Name() string     { return "SwitchStatus" }
func (DetectionResponse) Name() string  { return "DetectionStatus" }
func (CalibrationStatus) Name() string  { return "CalibrationStatus" }

var (
	_ Response = BatteryCapacity{}
	_ Response = MaxAbsorbedCurrent{}
	_ Response = SwitchResponse{}
	_ Response = DetectionResponse{}
	_ Response = CalibrationStatus{}
)
