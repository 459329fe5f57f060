package features

// MemsGesture is a gesture recognized by the MEMS library.
type MemsGesture uint8

const (
	MemsGestureUnknown MemsGesture = 0x00
	MemsGesturePickUp  MemsGesture = 0x01
	MemsGestureGlance  MemsGesture = 0x02
	MemsGestureWakeUp  MemsGesture = 0x03
	MemsGestureError   MemsGesture = 0x0F
)

func memsGestureFromByte(b byte) MemsGesture {
	switch g := MemsGesture(b & 0x0F); g {
	case MemsGestureUnknown, MemsGesturePickUp, MemsGestureGlance, MemsGestureWakeUp:
		return g
	default:
		return MemsGestureError
	}
}

// String returns the gesture name.
func (g MemsGesture) String() string {
	switch g {
	case MemsGestureUnknown:
		return "Unknown"
	case MemsGesturePickUp:
		return "PickUp"
	case MemsGestureGlance:
		return "Glance"
	case MemsGestureWakeUp:
		return "WakeUp"
	default:
		return "Error"
	}
}

// ProximityGesture is a gesture recognized by the time of flight sensor.
type ProximityGesture uint8

const (
	ProximityGestureUnknown ProximityGesture = 0x00
	ProximityGestureTap     ProximityGesture = 0x01
	ProximityGestureLeft    ProximityGesture = 0x02
	ProximityGestureRight   ProximityGesture = 0x03
	ProximityGestureError   ProximityGesture = 0x0F
)

func proximityGestureFromByte(b byte) ProximityGesture {
	switch g := ProximityGesture(b & 0x0F); g {
	case ProximityGestureUnknown, ProximityGestureTap, ProximityGestureLeft, ProximityGestureRight:
		return g
	default:
		return ProximityGestureError
	}
}

// String returns the gesture name.
func (g ProximityGesture) String() string {
	switch g {
	case ProximityGestureUnknown:
		return "Unknown"
	case ProximityGestureTap:
		return "Tap"
	case ProximityGestureLeft:
		return "Left"
	case ProximityGestureRight:
		return "Right"
	default:
		return "Error"
	}
}

// CarryPosition is where the board is being carried.
type CarryPosition uint8

const (
	CarryPositionUnknown        CarryPosition = 0x00
	CarryPositionOnDesk         CarryPosition = 0x01
	CarryPositionInHand         CarryPosition = 0x02
	CarryPositionNearHead       CarryPosition = 0x03
	CarryPositionShirtPocket    CarryPosition = 0x04
	CarryPositionTrousersPocket CarryPosition = 0x05
	CarryPositionArmSwing       CarryPosition = 0x06
	CarryPositionError          CarryPosition = 0x0F
)

func carryPositionFromByte(b byte) CarryPosition {
	p := CarryPosition(b & 0x0F)
	if p > CarryPositionArmSwing {
		return CarryPositionError
	}
	return p
}

// String returns the position name.
func (p CarryPosition) String() string {
	switch p {
	case CarryPositionUnknown:
		return "Unknown"
	case CarryPositionOnDesk:
		return "OnDesk"
	case CarryPositionInHand:
		return "InHand"
	case CarryPositionNearHead:
		return "NearHead"
	case CarryPositionShirtPocket:
		return "ShirtPocket"
	case CarryPositionTrousersPocket:
		return "TrousersPocket"
	case CarryPositionArmSwing:
		return "ArmSwing"
	default:
		return "Error"
	}
}

// Activity is a recognized user activity.
type Activity uint8

const (
	ActivityNone Activity = iota
	ActivityStationary
	ActivityWalking
	ActivityFastWalking
	ActivityJogging
	ActivityBiking
	ActivityDriving
	ActivityStairs
	ActivityAdultInCar
	ActivityError
)

func activityFromByte(b byte) Activity {
	if Activity(b) >= ActivityError {
		return ActivityError
	}
	return Activity(b)
}

// String returns the activity name.
func (a Activity) String() string {
	switch a {
	case ActivityNone:
		return "NoActivity"
	case ActivityStationary:
		return "Stationary"
	case ActivityWalking:
		return "Walking"
	case ActivityFastWalking:
		return "FastWalking"
	case ActivityJogging:
		return "Jogging"
	case ActivityBiking:
		return "Biking"
	case ActivityDriving:
		return "Driving"
	case ActivityStairs:
		return "Stairs"
	case ActivityAdultInCar:
		return "AdultInCar"
	default:
		return "Error"
	}
}

// SwitchState is the state of a switch.
type SwitchState uint8

const (
	SwitchStateOff SwitchState = iota
	SwitchStateOn
	SwitchStateError
)

func switchStateFromByte(b byte) SwitchState {
	switch b {
	case 0:
		return SwitchStateOff
	case 1:
		return SwitchStateOn
	default:
		return SwitchStateError
	}
}

// String returns the state name.
func (s SwitchState) String() string {
	switch s {
	case SwitchStateOff:
		return "Off"
	case SwitchStateOn:
		return "On"
	default:
		return "Error"
	}
}

// BatteryStatus is the charging state of the battery.
type BatteryStatus uint8

const (
	BatteryStatusLowBattery         BatteryStatus = 0x00
	BatteryStatusDischarging        BatteryStatus = 0x01
	BatteryStatusPluggedNotCharging BatteryStatus = 0x02
	BatteryStatusCharging           BatteryStatus = 0x03
	BatteryStatusUnknown            BatteryStatus = 0x04
	BatteryStatusError              BatteryStatus = 0xFF
)

func batteryStatusFromByte(b byte) BatteryStatus {
	s := BatteryStatus(b & 0x7F)
	if s > BatteryStatusUnknown {
		return BatteryStatusError
	}
	return s
}

// String returns the status name.
func (s BatteryStatus) String() string {
	switch s {
	case BatteryStatusLowBattery:
		return "LowBattery"
	case BatteryStatusDischarging:
		return "Discharging"
	case BatteryStatusPluggedNotCharging:
		return "PluggedNotCharging"
	case BatteryStatusCharging:
		return "Charging"
	case BatteryStatusUnknown:
		return "Unknown"
	default:
		return "Error"
	}
}

// BodySensorLocation is where a heart rate sensor is worn.
type BodySensorLocation uint8

const (
	BodySensorOther BodySensorLocation = iota
	BodySensorChest
	BodySensorWrist
	BodySensorFinger
	BodySensorHand
	BodySensorEarLobe
	BodySensorFoot
	BodySensorNotKnown
)

func bodySensorLocationFromByte(b byte) BodySensorLocation {
	if BodySensorLocation(b) > BodySensorFoot {
		return BodySensorNotKnown
	}
	return BodySensorLocation(b)
}

// String returns the location name.
func (l BodySensorLocation) String() string {
	switch l {
	case BodySensorOther:
		return "Other"
	case BodySensorChest:
		return "Chest"
	case BodySensorWrist:
		return "Wrist"
	case BodySensorFinger:
		return "Finger"
	case BodySensorHand:
		return "Hand"
	case BodySensorEarLobe:
		return "EarLobe"
	case BodySensorFoot:
		return "Foot"
	default:
		return "NotKnown"
	}
}

// DetectableEvent is an event the acceleration event feature can detect.
// The value is the command id the firmware expects.
type DetectableEvent uint8

const (
	DetectableEventNone        DetectableEvent = 0
	DetectableEventMultiple    DetectableEvent = 'm'
	DetectableEventOrientation DetectableEvent = 'o'
	DetectableEventPedometer   DetectableEvent = 'p'
	DetectableEventSingleTap   DetectableEvent = 's'
	DetectableEventDoubleTap   DetectableEvent = 'd'
	DetectableEventFreeFall    DetectableEvent = 'f'
	DetectableEventWakeUp      DetectableEvent = 'w'
	DetectableEventTilt        DetectableEvent = 't'
)

func detectableEventFromByte(b byte) DetectableEvent {
	switch e := DetectableEvent(b); e {
	case DetectableEventMultiple, DetectableEventOrientation, DetectableEventPedometer,
		DetectableEventSingleTap, DetectableEventDoubleTap, DetectableEventFreeFall,
		DetectableEventWakeUp, DetectableEventTilt:
		return e
	default:
		return DetectableEventNone
	}
}

// String returns the event name.
func (e DetectableEvent) String() string {
	switch e {
	case DetectableEventMultiple:
		return "Multiple"
	case DetectableEventOrientation:
		return "Orientation"
	case DetectableEventPedometer:
		return "Pedometer"
	case DetectableEventSingleTap:
		return "SingleTap"
	case DetectableEventDoubleTap:
		return "DoubleTap"
	case DetectableEventFreeFall:
		return "FreeFall"
	case DetectableEventWakeUp:
		return "WakeUp"
	case DetectableEventTilt:
		return "Tilt"
	default:
		return "None"
	}
}

// AccelerationEvent is one event reported by the acceleration event feature.
type AccelerationEvent uint8

const (
	AccelerationEventNoEvent AccelerationEvent = iota
	AccelerationEventOrientationTopRight
	AccelerationEventOrientationBottomRight
	AccelerationEventOrientationBottomLeft
	AccelerationEventOrientationTopLeft
	AccelerationEventOrientationUp
	AccelerationEventOrientationDown
	AccelerationEventTilt
	AccelerationEventFreeFall
	AccelerationEventSingleTap
	AccelerationEventDoubleTap
	AccelerationEventWakeUp
	AccelerationEventPedometer
	AccelerationEventError
)

// String returns the event name.
func (e AccelerationEvent) String() string {
	switch e {
	case AccelerationEventNoEvent:
		return "NoEvent"
	case AccelerationEventOrientationTopRight:
		return "OrientationTopRight"
	case AccelerationEventOrientationBottomRight:
		return "OrientationBottomRight"
	case AccelerationEventOrientationBottomLeft:
		return "OrientationBottomLeft"
	case AccelerationEventOrientationTopLeft:
		return "OrientationTopLeft"
	case AccelerationEventOrientationUp:
		return "OrientationUp"
	case AccelerationEventOrientationDown:
		return "OrientationDown"
	case AccelerationEventTilt:
		return "Tilt"
	case AccelerationEventFreeFall:
		return "FreeFall"
	case AccelerationEventSingleTap:
		return "SingleTap"
	case AccelerationEventDoubleTap:
		return "DoubleTap"
	case AccelerationEventWakeUp:
		return "WakeUp"
	case AccelerationEventPedometer:
		return "Pedometer"
	default:
		return "Error"
	}
}

// RebootStatus is the answer of an STM32WB to an OTA reboot request.
type RebootStatus uint8

const (
	RebootStatusOther              RebootStatus = 0x00
	RebootStatusReboot             RebootStatus = 0x01
	RebootStatusReadyToReceiveFile RebootStatus = 0x02
	RebootStatusErrorNoFreeSpace   RebootStatus = 0x03
)

func rebootStatusFromByte(b byte) RebootStatus {
	if s := RebootStatus(b); s <= RebootStatusErrorNoFreeSpace {
		return s
	}
	return RebootStatusOther
}

// String returns the status name.
func (s RebootStatus) String() string {
	switch s {
	case RebootStatusReboot:
		return "Reboot"
	case RebootStatusReadyToReceiveFile:
		return "ReadyToReceiveFile"
	case RebootStatusErrorNoFreeSpace:
		return "ErrorNoFree"
	default:
		return "Other"
	}
}

// ImageTUError is the outcome of a BlueNRG image transfer unit.
type ImageTUError uint8

const (
	ImageTUNoError           ImageTUError = 0x00
	ImageTUCheckSumError     ImageTUError = 0x0F
	ImageTUFlashVerifyFailed ImageTUError = 0x3C
	ImageTUSequenceError     ImageTUError = 0xF0
	ImageTUFlashWriteFailed  ImageTUError = 0xFF
)

// String returns the error name.
func (e ImageTUError) String() string {
	switch e {
	case ImageTUNoError:
		return "NO_ERROR"
	case ImageTUCheckSumError:
		return "CHECK_SUM_ERROR"
	case ImageTUFlashVerifyFailed:
		return "FLASH_VERIFY_FAILED"
	case ImageTUSequenceError:
		return "SEQUENCE_ERROR"
	case ImageTUFlashWriteFailed:
		return "FLASH_WRITE_FAILED"
	default:
		return "UNKNOWN_ERROR"
	}
}
