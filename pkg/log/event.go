package log

import (
	"fmt"
	"time"

	"github.com/bluest-sdk/bluest-go/pkg/wire"
)

// Event is a protocol trace record.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event was captured.
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the device session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Direction of the data relative to this host.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event.
	Category Category `cbor:"5,keyasint"`

	// DeviceID is the peer identifier, usually its BLE address.
	DeviceID string `cbor:"6,keyasint,omitempty"`

	// Characteristic is the GATT characteristic UUID, when known.
	Characteristic string `cbor:"7,keyasint,omitempty"`

	// Exactly one payload is set.
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"`
	Update      *UpdateEvent      `cbor:"11,keyasint,omitempty"`
	Command     *CommandEvent     `cbor:"12,keyasint,omitempty"`
	Response    *ResponseEvent    `cbor:"13,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"14,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"15,keyasint,omitempty"`
}

// FeatureName returns the feature the event refers to, or "".
func (e Event) FeatureName() string {
	switch {
	case e.Update != nil:
		return e.Update.Feature
	case e.Command != nil:
		return e.Command.Feature
	case e.Response != nil:
		return e.Response.Feature
	case e.Error != nil:
		return e.Error.Feature
	default:
		return ""
	}
}

// Direction indicates data flow.
type Direction uint8

const (
	// DirectionIn is data received from the device.
	DirectionIn Direction = 0
	// DirectionOut is data written to the device.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which component captured the event.
type Layer uint8

const (
	// LayerTransport is the segmentation layer (raw frames).
	LayerTransport Layer = 0
	// LayerFeature is the feature codec layer.
	LayerFeature Layer = 1
	// LayerSession is the per-device registry.
	LayerSession Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerFeature:
		return "FEATURE"
	case LayerSession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event.
type Category uint8

const (
	// CategoryNotification is inbound notification data.
	CategoryNotification Category = 0
	// CategoryCommand is an outbound command.
	CategoryCommand Category = 1
	// CategoryResponse is an inbound command response.
	CategoryResponse Category = 2
	// CategoryState is a session state change.
	CategoryState Category = 3
	// CategoryError is an error.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryNotification:
		return "NOTIFICATION"
	case CategoryCommand:
		return "COMMAND"
	case CategoryResponse:
		return "RESPONSE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures one transport frame.
type FrameEvent struct {
	// Size is the full frame size in bytes.
	Size int `cbor:"1,keyasint"`

	// Data is the frame (may be truncated).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates Data was cut.
	Truncated bool `cbor:"3,keyasint,omitempty"`

	// Marker is the segmentation marker byte, if the frame carried one.
	Marker *uint8 `cbor:"4,keyasint,omitempty"`
}

// FieldValue is one decoded field in text form.
type FieldValue struct {
	Name  string `cbor:"1,keyasint"`
	Unit  string `cbor:"2,keyasint,omitempty"`
	Value string `cbor:"3,keyasint"`
}

// UpdateEvent captures one decoded feature update.
type UpdateEvent struct {
	Feature   string       `cbor:"1,keyasint"`
	Tick      uint64       `cbor:"2,keyasint"`
	ReadBytes int          `cbor:"3,keyasint"`
	Fields    []FieldValue `cbor:"4,keyasint,omitempty"`
}

// CommandEvent captures one packed command.
type CommandEvent struct {
	Feature   string `cbor:"1,keyasint"`
	CommandID uint8  `cbor:"2,keyasint"`

	// Name is the command variant, e.g. "SwitchOn".
	Name string `cbor:"3,keyasint"`

	// Size is the packed payload size in bytes.
	Size int `cbor:"4,keyasint"`
}

// ResponseEvent captures one parsed command response.
type ResponseEvent struct {
	Feature   string `cbor:"1,keyasint"`
	CommandID uint8  `cbor:"2,keyasint"`
	Name      string `cbor:"3,keyasint"`

	// Summary is the response in text form.
	Summary string `cbor:"4,keyasint,omitempty"`
}

// StateChangeEvent captures session lifecycle changes.
type StateChangeEvent struct {
	Entity   StateEntity `cbor:"1,keyasint"`
	OldState string      `cbor:"2,keyasint,omitempty"`
	NewState string      `cbor:"3,keyasint"`
	Reason   string      `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what changed state.
type StateEntity uint8

const (
	// StateEntitySession is the device session.
	StateEntitySession StateEntity = 0
	// StateEntityFeature is a single feature (discovered, enabled, disabled).
	StateEntityFeature StateEntity = 1
	// StateEntityTransfer is a segmented transfer.
	StateEntityTransfer StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntitySession:
		return "SESSION"
	case StateEntityFeature:
		return "FEATURE"
	case StateEntityTransfer:
		return "TRANSFER"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures an error at any layer.
type ErrorEventData struct {
	Layer   Layer  `cbor:"1,keyasint"`
	Message string `cbor:"2,keyasint"`

	// Feature being decoded or encoded, if any.
	Feature string `cbor:"3,keyasint,omitempty"`

	// Offset is the cursor position in the notification, if relevant.
	Offset *int `cbor:"4,keyasint,omitempty"`

	// Context describes the operation.
	Context string `cbor:"5,keyasint,omitempty"`
}

// EncodeEvent returns the capture form of one event. Captures share the
// deterministic CBOR modes of wire records.
func EncodeEvent(event Event) ([]byte, error) {
	return wire.Marshal(event)
}

// DecodeEvent parses the capture form of one event.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := wire.Unmarshal(data, &event); err != nil {
		return Event{}, fmt.Errorf("decoding log event: %w", err)
	}
	return event, nil
}
