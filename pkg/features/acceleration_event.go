package features

import (
	"github.com/bluest-sdk/bluest-go/pkg/model"
	"github.com/bluest-sdk/bluest-go/pkg/numconv"
)

const (
	accelerationEventMaxRecord = 3
	accelerationEventEnable    = 0x00

	orientationMask = 0x07
	pedometerBit    = 0x100
)

// eventBits maps the single-bit events of the event byte.
var eventBits = []struct {
	bit   int
	event AccelerationEvent
}{
	{0x008, AccelerationEventTilt},
	{0x010, AccelerationEventFreeFall},
	{0x020, AccelerationEventSingleTap},
	{0x040, AccelerationEventDoubleTap},
	{0x080, AccelerationEventWakeUp},
	{pedometerBit, AccelerationEventPedometer},
}

// AccelerationEventData lists the detected events and, when the pedometer
// is active, the step count.
type AccelerationEventData struct {
	Events []model.Field[AccelerationEvent]
	Steps  *model.Field[uint16]
}

func (d AccelerationEventData) Fields() []model.AnyField {
	out := make([]model.AnyField, 0, len(d.Events)+1)
	for _, e := range d.Events {
		out = append(out, e)
	}
	if d.Steps != nil {
		out = append(out, *d.Steps)
	}
	return out
}

// Has reports whether event is among the detected events.
func (d AccelerationEventData) Has(event AccelerationEvent) bool {
	for _, e := range d.Events {
		if e.Value == event {
			return true
		}
	}
	return false
}

func accelerationEvents(code int) []model.Field[AccelerationEvent] {
	var out []model.Field[AccelerationEvent]
	if o := code & orientationMask; o != 0 && o <= int(AccelerationEventOrientationDown) {
		out = append(out, model.NewField("Acc Event", "", AccelerationEvent(o)))
	}
	for _, eb := range eventBits {
		if code&eb.bit != 0 {
			out = append(out, model.NewField("Acc Event", "", eb.event))
		}
	}
	return out
}

func extractAccelerationEvent(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	if err := numconv.Require(data, off, 1); err != nil {
		return model.AnyUpdate{}, err
	}
	n := min(len(data)-off, accelerationEventMaxRecord)
	var d AccelerationEventData
	switch {
	case n >= 3:
		steps, _ := numconv.LittleEndian.UInt16(data, off+1)
		s := model.NewField("Steps", "", steps)
		d = AccelerationEventData{Events: accelerationEvents(int(data[off])), Steps: &s}
	case n == 2 && f.pedometerEnabled():
		steps, _ := numconv.LittleEndian.UInt16(data, off)
		s := model.NewField("Steps", "", steps)
		d = AccelerationEventData{Events: accelerationEvents(pedometerBit), Steps: &s}
	default:
		d = AccelerationEventData{Events: accelerationEvents(int(data[off]))}
	}
	return newUpdate(f, ts, data, off, n, d), nil
}

func packAccelerationEvent(f *Feature, cmd Command) ([]byte, bool) {
	c, ok := cmd.(EnableDetection)
	if !ok {
		return nil, false
	}
	if c.Event == DetectableEventPedometer {
		f.setPedometerEnabled(c.Enable)
	}
	return f.request(byte(c.Event), boolByte(c.Enable)), true
}

func parseAccelerationEvent(f *Feature, resp CommandResponse) (Response, bool) {
	if resp.CommandID != accelerationEventEnable || len(resp.Payload) < 1 {
		return nil, false
	}
	return DetectionResponse{
		ResponseHeader: f.header(resp.CommandID),
		Event:          detectableEventFromByte(resp.Payload[0]),
	}, true
}
