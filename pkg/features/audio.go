package features

import (
	"github.com/bluest-sdk/bluest-go/pkg/model"
	"github.com/bluest-sdk/bluest-go/pkg/numconv"
)

const (
	adpcmRecord     = 20
	adpcmSyncRecord = 6
)

// AudioData is one block of encoded audio.
type AudioData struct {
	Audio model.Field[[]byte]
}

func (d AudioData) Fields() []model.AnyField { return []model.AnyField{d.Audio} }

func extractAudioADPCM(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	if err := numconv.Require(data, off, adpcmRecord); err != nil {
		return model.AnyUpdate{}, err
	}
	audio := make([]byte, adpcmRecord)
	copy(audio, data[off:])
	return newUpdate(f, ts, data, off, adpcmRecord, AudioData{Audio: model.NewField("Audio", "", audio)}), nil
}

// ADPCMSyncData carries the decoder state the board resynchronizes with.
type ADPCMSyncData struct {
	Index     model.Field[int16]
	PreSample model.Field[int32]
}

func (d ADPCMSyncData) Fields() []model.AnyField { return []model.AnyField{d.Index, d.PreSample} }

func extractAudioADPCMSync(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	if err := numconv.Require(data, off, adpcmSyncRecord); err != nil {
		return model.AnyUpdate{}, err
	}
	index, _ := numconv.LittleEndian.Int16(data, off)
	pre, _ := numconv.LittleEndian.Int32(data, off+2)
	d := ADPCMSyncData{
		Index:     model.NewField("ADPCM_index", "", index),
		PreSample: model.NewField("ADPCM_presample", "", pre),
	}
	return newUpdate(f, ts, data, off, adpcmSyncRecord, d), nil
}

// AudioOpusData is a BlueVoice Opus frame. Frame is nil while the frame is
// still arriving.
type AudioOpusData struct {
	StreamProgress
	Frame model.Field[[]byte]
}

func (d AudioOpusData) Fields() []model.AnyField {
	return append([]model.AnyField{d.Frame}, d.fields()...)
}

// Complete reports whether the update carries a full frame.
func (d AudioOpusData) Complete() bool { return d.Frame.Value != nil }

func extractAudioOpus(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	frame, progress, err := f.decapsulate(data, off)
	if err != nil {
		return model.AnyUpdate{}, err
	}
	d := AudioOpusData{StreamProgress: progress, Frame: model.NewField("data", "", frame)}
	return newUpdate(f, ts, data, off, len(data)-off, d), nil
}

// BeamDirection is the microphone beam selected by the board.
type BeamDirection uint8

const (
	BeamDirectionUnknown     BeamDirection = 0
	BeamDirectionTop         BeamDirection = 1
	BeamDirectionTopRight    BeamDirection = 2
	BeamDirectionRight       BeamDirection = 3
	BeamDirectionBottomRight BeamDirection = 4
	BeamDirectionBottom      BeamDirection = 5
	BeamDirectionBottomLeft  BeamDirection = 6
	BeamDirectionLeft        BeamDirection = 7
	BeamDirectionTopLeft     BeamDirection = 8
)

var beamDirectionNames = [...]string{"Unknown", "Top", "TopRight", "Right", "BottomRight", "Bottom", "BottomLeft", "Left", "TopLeft"}

func beamDirectionFromByte(b byte) BeamDirection {
	if b > byte(BeamDirectionTopLeft) {
		return BeamDirectionUnknown
	}
	return BeamDirection(b)
}

// String returns the direction name.
func (d BeamDirection) String() string {
	if int(d) < len(beamDirectionNames) {
		return beamDirectionNames[d]
	}
	return beamDirectionNames[0]
}

// BeamFormingData is the current beam direction.
type BeamFormingData struct {
	Direction model.Field[BeamDirection]
}

func (d BeamFormingData) Fields() []model.AnyField { return []model.AnyField{d.Direction} }

func extractBeamForming(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	v, err := numconv.UInt8(data, off)
	if err != nil {
		return model.AnyUpdate{}, err
	}
	d := BeamFormingData{
		Direction: model.NewField("BeamForming", "", beamDirectionFromByte(v)).WithRange(BeamDirectionTop, BeamDirectionTopLeft),
	}
	return newUpdate(f, ts, data, off, 1, d), nil
}

// Beam forming command ids.
const (
	commandBeamFormingOnOff      = 0xAA
	commandBeamFormingDirection  = 0xBB
	commandBeamFormingAlgorithm  = 0xCC
	beamFormingAlgorithmASRReady = 0x00
	beamFormingAlgorithmStrong   = 0x01
)

func packBeamForming(f *Feature, cmd Command) ([]byte, bool) {
	switch c := cmd.(type) {
	case EnableBeamForming:
		return f.request(commandBeamFormingOnOff, boolByte(c.Enable)), true
	case SetBeamDirection:
		return f.request(commandBeamFormingDirection, byte(c.Direction)), true
	case UseStrongBeamForming:
		alg := byte(beamFormingAlgorithmASRReady)
		if c.Strong {
			alg = beamFormingAlgorithmStrong
		}
		return f.request(commandBeamFormingAlgorithm, alg), true
	default:
		return nil, false
	}
}

// AudioClass is the acoustic scene or event recognized by the board.
type AudioClass uint8

const (
	AudioClassUnknown      AudioClass = 0x00
	AudioClassIndoor       AudioClass = 0x01
	AudioClassOutdoor      AudioClass = 0x02
	AudioClassInVehicle    AudioClass = 0x03
	AudioClassBabyIsCrying AudioClass = 0x04
	AudioClassASCOff       AudioClass = 0xF0
	AudioClassASCOn        AudioClass = 0xF1
	AudioClassError        AudioClass = 0xFF
)

func audioClassFromByte(b byte) AudioClass {
	switch c := AudioClass(b); c {
	case AudioClassUnknown, AudioClassIndoor, AudioClassOutdoor, AudioClassInVehicle,
		AudioClassBabyIsCrying, AudioClassASCOff, AudioClassASCOn:
		return c
	default:
		return AudioClassError
	}
}

// String returns the class name.
func (c AudioClass) String() string {
	switch c {
	case AudioClassUnknown:
		return "Unknown"
	case AudioClassIndoor:
		return "Indoor"
	case AudioClassOutdoor:
		return "Outdoor"
	case AudioClassInVehicle:
		return "InVehicle"
	case AudioClassBabyIsCrying:
		return "BabyIsCrying"
	case AudioClassASCOff:
		return "AscOff"
	case AudioClassASCOn:
		return "AscOn"
	default:
		return "Error"
	}
}

// AudioClassificationData is the recognized class and the algorithm that
// produced it.
type AudioClassificationData struct {
	Class     model.Field[AudioClass]
	Algorithm model.Field[uint8]
}

func (d AudioClassificationData) Fields() []model.AnyField {
	return []model.AnyField{d.Class, d.Algorithm}
}

// extractAudioClassification reads the class and, when present, the
// algorithm byte.
func extractAudioClassification(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	if err := numconv.Require(data, off, 1); err != nil {
		return model.AnyUpdate{}, err
	}
	n := min(len(data)-off, 2)
	algorithm := uint8(ActivityAlgorithmNotDefined)
	if n == 2 {
		algorithm = data[off+1]
	}
	d := AudioClassificationData{
		Class:     model.NewField("AudioClassification", "", audioClassFromByte(data[off])),
		Algorithm: model.NewField("Algorithm", "", algorithm),
	}
	return newUpdate(f, ts, data, off, n, d), nil
}
