package features

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bluest-sdk/bluest-go/pkg/catalog"
	"github.com/bluest-sdk/bluest-go/pkg/model"
	"github.com/bluest-sdk/bluest-go/pkg/transport"
)

// HSDataLogCommand is a request to the high speed datalog.
type HSDataLogCommand = catalog.HSDCommand

// Top-level keys that identify a device description.
const (
	hsdDeviceKey     = "device"
	hsdDeviceInfoKey = "deviceInfo"
	hsdTagConfigKey  = "tagConfig"
)

// StreamProgress reports the state of the segmented transfer after a frame.
type StreamProgress struct {
	BytesReceived model.Field[int]
	Packets       model.Field[int]
}

func (p StreamProgress) fields() []model.AnyField {
	return []model.AnyField{p.BytesReceived, p.Packets}
}

// decapsulate feeds the frame to the feature's reassembler. It returns the
// complete message, or nil while the transfer is in progress.
func (f *Feature) decapsulate(data []byte, off int) ([]byte, StreamProgress, error) {
	msg, err := f.stream.Decapsulate(data[off:])
	progress := StreamProgress{
		BytesReceived: model.NewField("bytesRec", "", f.stream.BytesReceived()),
		Packets:       model.NewField("numberPackets", "", f.stream.Packets()),
	}
	return msg, progress, err
}

// jsonText drops the NUL terminator the firmware appends.
func jsonText(msg []byte) []byte {
	return bytes.TrimSuffix(msg, []byte{0})
}

func (f *Feature) packStream(payload []byte) ([]byte, bool) {
	frames, err := transport.Encapsulate(transport.SchemeSTL2, payload, f.desc.MaxPayloadSize)
	if err != nil {
		return nil, false
	}
	return transport.Join(frames), true
}

// BinaryContentData is an opaque payload received over STL2.
type BinaryContentData struct {
	StreamProgress
	Content model.Field[[]byte]
}

func (d BinaryContentData) Fields() []model.AnyField {
	return append([]model.AnyField{d.Content}, d.fields()...)
}

// Complete reports whether the update carries a full message.
func (d BinaryContentData) Complete() bool { return d.Content.Value != nil }

func extractBinaryContent(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	msg, progress, err := f.decapsulate(data, off)
	if err != nil {
		return model.AnyUpdate{}, err
	}
	d := BinaryContentData{StreamProgress: progress, Content: model.NewField("BinaryContent", "", msg)}
	return newUpdate(f, ts, data, off, len(data)-off, d), nil
}

func packBinaryContent(f *Feature, cmd Command) ([]byte, bool) {
	c, ok := cmd.(WriteBinaryContent)
	if !ok {
		return nil, false
	}
	return f.packStream(c.Payload)
}

// JSONNFCData is the tag writer's answer. Modes is nil while the transfer
// is in progress.
type JSONNFCData struct {
	StreamProgress
	Text  model.Field[string]
	Modes *NFCModes
}

func (d JSONNFCData) Fields() []model.AnyField {
	return append([]model.AnyField{d.Text}, d.fields()...)
}

func extractJSONNFC(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	msg, progress, err := f.decapsulate(data, off)
	if err != nil {
		return model.AnyUpdate{}, err
	}
	d := JSONNFCData{StreamProgress: progress}
	if msg != nil {
		text := jsonText(msg)
		var modes NFCModes
		if err := json.Unmarshal(text, &modes); err != nil {
			return model.AnyUpdate{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		d.Text = model.NewField("SupportedModes", "", string(text))
		d.Modes = &modes
	}
	return newUpdate(f, ts, data, off, len(data)-off, d), nil
}

func packJSONNFC(f *Feature, cmd Command) ([]byte, bool) {
	c, ok := cmd.(WriteNFC)
	if !ok {
		return nil, false
	}
	payload, err := json.Marshal(c.Command)
	if err != nil {
		return nil, false
	}
	return f.packStream(payload)
}

// HSDataLogConfigData is a device description or status sent by the high
// speed datalog. Device and Status are nil when the message does not carry
// them or the transfer is in progress.
type HSDataLogConfigData struct {
	StreamProgress
	Text   model.Field[string]
	Device *catalog.Device
	Status *catalog.DeviceStatus
	Valid  model.Field[bool]
}

func (d HSDataLogConfigData) Fields() []model.AnyField {
	return append([]model.AnyField{d.Text, d.Valid}, d.fields()...)
}

func extractHSDataLogConfig(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	msg, progress, err := f.decapsulate(data, off)
	if err != nil {
		return model.AnyUpdate{}, err
	}
	d := HSDataLogConfigData{StreamProgress: progress}
	if msg != nil {
		text := jsonText(msg)
		device, status, err := parseHSDataLog(text)
		if err != nil {
			return model.AnyUpdate{}, err
		}
		d.Text = model.NewField("HSDataLogConfig", "", string(text))
		d.Device = device
		d.Status = status
		d.Valid = model.NewField("Valid", "", device == nil || device.Validate() == nil)
	}
	return newUpdate(f, ts, data, off, len(data)-off, d), nil
}

// parseHSDataLog decodes a datalog message. A device description is
// recognized by one of its top-level keys; any other object is a status.
func parseHSDataLog(text []byte) (*catalog.Device, *catalog.DeviceStatus, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(text, &top); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if raw, ok := top[hsdDeviceKey]; ok {
		var dev catalog.Device
		if err := json.Unmarshal(raw, &dev); err != nil {
			return nil, nil, fmt.Errorf("%w: device: %w", ErrInvalidPayload, err)
		}
		return &dev, nil, nil
	}
	if _, ok := top[hsdDeviceInfoKey]; ok {
		return unmarshalDevice(text)
	}
	if _, ok := top[hsdTagConfigKey]; ok {
		return unmarshalDevice(text)
	}
	var status catalog.DeviceStatus
	if err := json.Unmarshal(text, &status); err != nil {
		return nil, nil, fmt.Errorf("%w: status: %w", ErrInvalidPayload, err)
	}
	return nil, &status, nil
}

func unmarshalDevice(text []byte) (*catalog.Device, *catalog.DeviceStatus, error) {
	var dev catalog.Device
	if err := json.Unmarshal(text, &dev); err != nil {
		return nil, nil, fmt.Errorf("%w: device: %w", ErrInvalidPayload, err)
	}
	return &dev, nil, nil
}

func packHSDataLog(f *Feature, cmd Command) ([]byte, bool) {
	c, ok := cmd.(WriteHSDataLog)
	if !ok {
		return nil, false
	}
	payload, err := json.Marshal(c.Command)
	if err != nil {
		return nil, false
	}
	return f.packStream(payload)
}
