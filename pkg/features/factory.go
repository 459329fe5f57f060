package features

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bluest-sdk/bluest-go/pkg/model"
)

// ErrUnknownID is returned when a mask bit or characteristic id maps to no
// known feature.
var ErrUnknownID = errors.New("unknown feature id")

// Board selects the standard mask table used for a device.
type Board uint8

const (
	// BoardDefault covers the Nucleo and SensorTile family.
	BoardDefault Board = iota

	// BoardSensorTileBox reuses some bits for box-only features.
	BoardSensorTileBox

	// BoardRemoteNode is a gateway relaying features of remote nodes.
	BoardRemoteNode
)

// String returns the board name.
func (b Board) String() string {
	switch b {
	case BoardDefault:
		return "DEFAULT"
	case BoardSensorTileBox:
		return "SENSOR_TILE_BOX"
	case BoardRemoteNode:
		return "REMOTE_NODE"
	default:
		return fmt.Sprintf("BOARD_%d", b)
	}
}

// ParseBoard parses a board name as printed by String. Matching ignores case
// and accepts '-' in place of '_'.
func ParseBoard(s string) (Board, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	switch norm {
	case "", "DEFAULT", "GENERIC":
		return BoardDefault, nil
	case "SENSOR_TILE_BOX", "SENSORTILE_BOX", "STBOX":
		return BoardSensorTileBox, nil
	case "REMOTE_NODE", "REMOTE":
		return BoardRemoteNode, nil
	}
	return BoardDefault, fmt.Errorf("%w: board %q", ErrUnknownID, s)
}

var defaultMasks = map[uint32]Kind{
	0x40000000: KindAudioADPCMSync,
	0x20000000: KindSwitch,
	0x10000000: KindDirectionOfArrival,
	0x08000000: KindAudioADPCM,
	0x04000000: KindMicLevel,
	0x02000000: KindProximity,
	0x01000000: KindLuminosity,
	0x00800000: KindAcceleration,
	0x00400000: KindGyroscope,
	0x00200000: KindMagnetometer,
	0x00100000: KindPressure,
	0x00080000: KindHumidity,
	0x00040000: KindTemperature,
	0x00020000: KindBattery,
	0x00010000: KindTemperature,
	0x00008000: KindCOSensor,
	0x00002000: KindStepperMotor,
	0x00001000: KindSDLogging,
	0x00000800: KindBeamForming,
	0x00000400: KindAccelerationEvent,
	0x00000200: KindFreeFall,
	0x00000100: KindSensorFusionCompat,
	0x00000080: KindSensorFusion,
	0x00000040: KindCompass,
	0x00000020: KindMotionIntensity,
	0x00000010: KindActivity,
	0x00000008: KindCarryPosition,
	0x00000004: KindProximityGesture,
	0x00000002: KindMemsGesture,
	0x00000001: KindPedometer,
}

var sensorTileBoxMasks = map[uint32]Kind{
	0x40000000: KindAudioADPCMSync,
	0x20000000: KindSwitch,
	0x10000000: KindMemsNorm,
	0x08000000: KindAudioADPCM,
	0x04000000: KindMicLevel,
	0x02000000: KindAudioClassification,
	0x00800000: KindAcceleration,
	0x00400000: KindGyroscope,
	0x00200000: KindMagnetometer,
	0x00100000: KindPressure,
	0x00080000: KindHumidity,
	0x00040000: KindTemperature,
	0x00020000: KindBattery,
	0x00010000: KindTemperature,
	0x00004000: KindEulerAngle,
	0x00001000: KindSDLogging,
	0x00000400: KindAccelerationEvent,
	0x00000200: KindEventCounter,
	0x00000100: KindSensorFusionCompat,
	0x00000080: KindSensorFusion,
	0x00000040: KindCompass,
	0x00000020: KindMotionIntensity,
	0x00000010: KindActivity,
	0x00000008: KindCarryPosition,
	0x00000002: KindMemsGesture,
	0x00000001: KindPedometer,
}

var remoteMasks = map[uint32]Kind{
	0x20000000: KindRemoteSwitch,
	0x00100000: KindRemotePressure,
	0x00080000: KindRemoteHumidity,
	0x00040000: KindRemoteTemperature,
}

var extendedIDs = map[uint32]Kind{
	0x01: KindAudioOpus,
	0x02: KindAudioOpusConf,
	0x03: KindAudioClassification,
	0x04: KindAiLogging,
	0x05: KindFFTAmplitude,
	0x06: KindMotorTimeParameter,
	0x07: KindPredictiveSpeedStatus,
	0x08: KindPredictiveAccelerationStatus,
	0x09: KindPredictiveFrequencyStatus,
	0x0A: KindMotionAlgorithm,
	0x0D: KindEulerAngle,
	0x0E: KindFitnessActivity,
	0x0F: KindMachineLearningCore,
	0x10: KindFiniteStateMachine,
	0x11: KindHSDataLogConfig,
	0x13: KindToFMultiObject,
	0x14: KindExtConfiguration,
	0x15: KindColorAmbientLight,
	0x16: KindQVAR,
	0x17: KindSTRedL,
	0x18: KindGNSS,
	0x19: KindNEAIAnomalyDetection,
	0x1A: KindNEAIClassification,
	0x1B: KindPnPL,
	0x1C: KindPiano,
	0x1D: KindEventCounter,
	0x1F: KindGestureNavigation,
	0x20: KindJSONNFC,
	0x21: KindMemsNorm,
	0x22: KindBinaryContent,
	0x23: KindRawControlled,
	0x24: KindNEAIExtrapolation,
	0x25: KindISPUControl,
	0x26: KindMedicalSignal16,
	0x27: KindMedicalSignal24,
	0x28: KindNavigationControl,
	0x29: KindSceneDescription,
}

var externalIDs = map[model.FeatureType]map[uint32]Kind{
	model.TypeExternalSTM32: {
		0xFE11: KindOTAReboot,
		0xFE22: KindOTAControl,
		0xFE23: KindOTAWillReboot,
		0xFE24: KindOTAFileUpload,
		0xFE41: KindControlLedAndReboot,
		0xFE42: KindSwitchStatus,
		0xFE51: KindNetworkStatus,
	},
	model.TypeExternalBlueNRGOTA: {
		0x122E8CC0: KindImage,
		0x210F99F0: KindNewImage,
		0x2691AA80: KindNewImageTUContent,
		0x2BDC5760: KindExpectedImageTUSeqNumber,
	},
	model.TypeExternalStdChart: {
		0x2A37: KindHeartRate,
		0x2A38: KindBodySensorLocation,
	},
}

func maskTable(board Board) map[uint32]Kind {
	switch board {
	case BoardSensorTileBox:
		return sensorTileBoxMasks
	case BoardRemoteNode:
		return remoteMasks
	default:
		return defaultMasks
	}
}

// FromMask creates the standard feature owning bit in the board's mask table.
func FromMask(board Board, bit uint32, enabled bool, opts ...Option) (*Feature, error) {
	kind, ok := maskTable(board)[bit]
	if !ok {
		return nil, fmt.Errorf("%w: mask 0x%08X on %s", ErrUnknownID, bit, board)
	}
	return newFeature(kind, model.TypeStandard, bit, enabled, opts...), nil
}

// FromExtendedID creates the extended feature with the given id.
func FromExtendedID(id uint32, opts ...Option) (*Feature, error) {
	kind, ok := extendedIDs[id]
	if !ok {
		return nil, fmt.Errorf("%w: extended 0x%02X", ErrUnknownID, id)
	}
	return newFeature(kind, model.TypeExtended, id, true, opts...), nil
}

// FromExternal creates a feature of a third-party characteristic.
func FromExternal(t model.FeatureType, id uint32, opts ...Option) (*Feature, error) {
	kind, ok := externalIDs[t][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s 0x%X", ErrUnknownID, t, id)
	}
	return newFeature(kind, t, id, true, opts...), nil
}

// NewGeneralPurpose creates a general purpose feature. Its name is GP_<id>
// with the id in decimal.
func NewGeneralPurpose(id uint32, opts ...Option) *Feature {
	opts = append([]Option{WithName(fmt.Sprintf("GP_%d", id))}, opts...)
	return newFeature(KindGeneralPurpose, model.TypeGeneralPurpose, id, true, opts...)
}

// ForCharacteristic returns the features a characteristic carries, in the
// order the mask lists them (most significant bit first). Bits the board
// table does not know are skipped.
//
// With protocol version 1 a standard feature is enabled only when its bit is
// also set in the advertised mask. Later protocol versions enable every
// feature listed by the characteristic.
func ForCharacteristic(board Board, ch uuid.UUID, advertiseMask uint32, protocolVersion uint8, maxPayload int) ([]*Feature, error) {
	t, id, err := model.ParseCharacteristic(ch)
	if err != nil {
		return nil, err
	}
	opt := WithMaxPayloadSize(maxPayload)

	switch t {
	case model.TypeStandard:
		var out []*Feature
		for bit := uint32(1) << 31; bit != 0; bit >>= 1 {
			if id&bit == 0 {
				continue
			}
			enabled := protocolVersion != 1 || advertiseMask&bit != 0
			f, err := FromMask(board, bit, enabled, opt)
			if err != nil {
				continue
			}
			out = append(out, f)
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("%w: mask 0x%08X on %s", ErrUnknownID, id, board)
		}
		return out, nil
	case model.TypeExtended:
		f, err := FromExtendedID(id, opt)
		if err != nil {
			return nil, err
		}
		return []*Feature{f}, nil
	case model.TypeGeneralPurpose:
		return []*Feature{NewGeneralPurpose(id, opt)}, nil
	default:
		f, err := FromExternal(t, id, opt)
		if err != nil {
			return nil, err
		}
		return []*Feature{f}, nil
	}
}

// ConfigCharacteristic is the control characteristic that receives commands
// addressed to standard features and emits their responses.
var ConfigCharacteristic = uuid.MustParse("00000002-000f-11e1-ac36-0002a5d5c51b")

// CommandCharacteristic returns the characteristic a command for f must be
// written to. Standard features take commands on the config characteristic,
// except those the firmware lets the app write directly.
func CommandCharacteristic(f *Feature) (uuid.UUID, bool) {
	if !f.IsStandard() {
		return f.desc.CharacteristicUUID()
	}
	if f.codec.directWrite {
		return model.StandardCharacteristic(f.desc.ID), true
	}
	return ConfigCharacteristic, true
}
