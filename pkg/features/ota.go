package features

import (
	"math"

	"github.com/bluest-sdk/bluest-go/pkg/model"
	"github.com/bluest-sdk/bluest-go/pkg/numconv"
)

// STM32WB OTA control command ids.
const (
	otaStop           = 0x00
	otaStartM0        = 0x01
	otaStartM4        = 0x02
	otaUploadFinished = 0x07
	otaCancel         = 0x08

	otaRebootCommand = 0x01
)

func packOTAControl(f *Feature, cmd Command) ([]byte, bool) {
	switch c := cmd.(type) {
	case StartUpload:
		id := byte(otaStartM4)
		if c.Target == UploadTargetWireless {
			id = otaStartM0
		}
		out := []byte{id, byte(c.Address >> 16), byte(c.Address >> 8), byte(c.Address)}
		if c.SectorsToErase != nil {
			out = append(out, *c.SectorsToErase)
		}
		return out, true
	case FinishUpload:
		return []byte{otaUploadFinished}, true
	case CancelUpload:
		return []byte{otaCancel}, true
	case StopUpload:
		return []byte{otaStop}, true
	default:
		return nil, false
	}
}

func packOTAReboot(f *Feature, cmd Command) ([]byte, bool) {
	c, ok := cmd.(RebootToOTAMode)
	if !ok {
		return nil, false
	}
	return []byte{otaRebootCommand, c.SectorOffset, c.NumSectors}, true
}

func packOTAFileUpload(f *Feature, cmd Command) ([]byte, bool) {
	c, ok := cmd.(UploadOTAData)
	if !ok {
		return nil, false
	}
	return append([]byte(nil), c.Payload...), true
}

// RebootStatusData is the answer to an OTA reboot request.
type RebootStatusData struct {
	Status model.Field[RebootStatus]
}

func (d RebootStatusData) Fields() []model.AnyField { return []model.AnyField{d.Status} }

func extractOTAWillReboot(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	v, err := numconv.UInt8(data, off)
	if err != nil {
		return model.AnyUpdate{}, err
	}
	d := RebootStatusData{Status: model.NewField("RebootStatus", "", rebootStatusFromByte(v))}
	return newUpdate(f, ts, data, off, 1, d), nil
}

// ImageData is the flash area available for a firmware image and the
// version of the upgrade protocol.
type ImageData struct {
	FlashLowerBound model.Field[uint32]
	FlashUpperBound model.Field[uint32]
	ProtocolMajor   model.Field[uint8]
	ProtocolMinor   model.Field[uint8]
}

func (d ImageData) Fields() []model.AnyField {
	return []model.AnyField{d.FlashLowerBound, d.FlashUpperBound, d.ProtocolMajor, d.ProtocolMinor}
}

func extractImage(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	if err := numconv.Require(data, off, 8); err != nil {
		return model.AnyUpdate{}, err
	}
	lb, _ := numconv.BigEndian.UInt32(data, off)
	ub, _ := numconv.BigEndian.UInt32(data, off+4)
	major, minor := uint8(1), uint8(0)
	n := 8
	if len(data)-off >= 9 {
		v := data[off+8]
		major, minor = v/16, v%16
		n = 9
	}
	d := ImageData{
		FlashLowerBound: model.NewField("Flash_LB", "", lb).WithRange(0, math.MaxUint32),
		FlashUpperBound: model.NewField("Flash_UB", "", ub).WithRange(0, math.MaxUint32),
		ProtocolMajor:   model.NewField("ProtocolVerMajor", "", major),
		ProtocolMinor:   model.NewField("ProtocolVerMinor", "", minor),
	}
	return newUpdate(f, ts, data, off, n, d), nil
}

const newImageRecordSize = 9

// NewImageData is the image parameters the BlueNRG accepted.
type NewImageData struct {
	AckEvery    model.Field[uint8]
	ImageSize   model.Field[uint32]
	BaseAddress model.Field[uint32]
}

func (d NewImageData) Fields() []model.AnyField {
	return []model.AnyField{d.AckEvery, d.ImageSize, d.BaseAddress}
}

func extractNewImage(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	if err := numconv.Require(data, off, newImageRecordSize); err != nil {
		return model.AnyUpdate{}, err
	}
	size, _ := numconv.LittleEndian.UInt32(data, off+1)
	base, _ := numconv.LittleEndian.UInt32(data, off+5)
	d := NewImageData{
		AckEvery:    model.NewField("otaAckEvery", "", data[off]),
		ImageSize:   model.NewField("imageSize", "", size),
		BaseAddress: model.NewField("baseAddress", "", base),
	}
	return newUpdate(f, ts, data, off, newImageRecordSize, d), nil
}

func packNewImage(f *Feature, cmd Command) ([]byte, bool) {
	c, ok := cmd.(WriteNewImageParameter)
	if !ok {
		return nil, false
	}
	out := make([]byte, 0, newImageRecordSize)
	out = append(out, c.AckEvery)
	out = append(out, numconv.LittleEndian.PutUInt32(c.ImageSize)...)
	out = append(out, numconv.LittleEndian.PutUInt32(c.BaseAddress)...)
	return out, true
}

func packNewImageTUContent(f *Feature, cmd Command) ([]byte, bool) {
	c, ok := cmd.(UploadImageTU)
	if !ok {
		return nil, false
	}
	return append([]byte(nil), c.Payload...), true
}

// ExpectedSeqNumberData is the BlueNRG acknowledgement of a transfer unit.
type ExpectedSeqNumberData struct {
	NextExpected model.Field[uint16]
	Error        model.Field[ImageTUError]
}

func (d ExpectedSeqNumberData) Fields() []model.AnyField {
	return []model.AnyField{d.NextExpected, d.Error}
}

func extractExpectedImageTUSeqNumber(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	if err := numconv.Require(data, off, 3); err != nil {
		return model.AnyUpdate{}, err
	}
	next, _ := numconv.LittleEndian.UInt16(data, off)
	d := ExpectedSeqNumberData{
		NextExpected: model.NewField("NextExpectedCharBlock", "", next),
		Error:        model.NewField("Ack", "", ImageTUError(data[off+2])),
	}
	return newUpdate(f, ts, data, off, 3, d), nil
}
