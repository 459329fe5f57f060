// Package commands implements the input parsing, output formatting and
// interactive shell of bluest-decode.
package commands

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/bluest-sdk/bluest-go/pkg/features"
	"github.com/bluest-sdk/bluest-go/pkg/wire"
)

// Parse errors.
var (
	ErrSyntax         = errors.New("syntax error")
	ErrUnknownCommand = errors.New("unknown command")
)

// ParseNotification reads a "<characteristic-uuid> <hex>" line. The hex
// payload may be split by spaces or colons.
func ParseNotification(line string) (wire.Notification, error) {
	fields := strings.Fields(line)
	if len(fields) < 1 {
		return wire.Notification{}, fmt.Errorf("%w: expected <uuid> <hex>", ErrSyntax)
	}
	ch, err := uuid.Parse(fields[0])
	if err != nil {
		return wire.Notification{}, fmt.Errorf("%w: characteristic %q: %v", ErrSyntax, fields[0], err)
	}
	data, err := ParseHex(strings.Join(fields[1:], ""))
	if err != nil {
		return wire.Notification{}, err
	}
	return wire.Notification{Characteristic: ch, Data: data}, nil
}

// ParseHex decodes hex with optional 0x prefix and colon separators.
func ParseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	s = strings.ReplaceAll(s, ":", "")
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: hex payload: %v", ErrSyntax, err)
	}
	return data, nil
}

// CommandHelp lists the commands ParseCommand understands.
const CommandHelp = `  on | off                         switch
  battery-capacity | max-current   battery queries
  detect <event> <on|off>          acceleration event detection
  remote-switch <node> <on|off>    remote node switch
  calibrate <start|stop|get>       compass and sensor fusion
  sensitivity <high|low>           direction of arrival
  binary <hex>                     binary content
  nfc-text <text...>               NFC generic text
  nfc-url <url>                    NFC URL
  hsd <command>                    high speed datalog command
  beam <on|off>                    beam forming
  beam-direction <1-8>             beam forming direction
  sd-start <interval> <mask...>    start SD card logging
  sd-stop                          stop SD card logging
  motor <action> [steps]           stepper motor
  neai <stop|learn|detect|reset|classify>
  led <device> <on|off>            peer to peer LED
  reboot-radio <device>            peer to peer radio reboot
  ota-finish | ota-cancel | ota-stop`

// ParseCommand converts shell arguments to a feature command.
func ParseCommand(args []string) (features.Command, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: command required", ErrSyntax)
	}
	name, rest := strings.ToLower(args[0]), args[1:]

	switch name {
	case "on":
		return features.SwitchOn{}, nil
	case "off":
		return features.SwitchOff{}, nil
	case "battery-capacity":
		return features.GetBatteryCapacity{}, nil
	case "max-current":
		return features.GetMaxAbsorbedCurrent{}, nil

	case "detect":
		if len(rest) != 2 {
			return nil, fmt.Errorf("%w: detect <event> <on|off>", ErrSyntax)
		}
		ev, err := parseEvent(rest[0])
		if err != nil {
			return nil, err
		}
		on, err := parseOnOff(rest[1])
		if err != nil {
			return nil, err
		}
		return features.EnableDetection{Event: ev, Enable: on}, nil

	case "remote-switch":
		if len(rest) != 2 {
			return nil, fmt.Errorf("%w: remote-switch <node> <on|off>", ErrSyntax)
		}
		node, err := strconv.ParseUint(rest[0], 0, 16)
		if err != nil {
			return nil, fmt.Errorf("%w: node %q", ErrSyntax, rest[0])
		}
		on, err := parseOnOff(rest[1])
		if err != nil {
			return nil, err
		}
		return features.ChangeRemoteSwitch{NodeID: uint16(node), On: on}, nil

	case "calibrate":
		if len(rest) != 1 {
			return nil, fmt.Errorf("%w: calibrate <start|stop|get>", ErrSyntax)
		}
		switch strings.ToLower(rest[0]) {
		case "start":
			return features.StartCalibration{}, nil
		case "stop":
			return features.StopCalibration{}, nil
		case "get":
			return features.GetCalibration{}, nil
		}
		return nil, fmt.Errorf("%w: calibrate %q", ErrSyntax, rest[0])

	case "sensitivity":
		if len(rest) != 1 {
			return nil, fmt.Errorf("%w: sensitivity <high|low>", ErrSyntax)
		}
		switch strings.ToLower(rest[0]) {
		case "high":
			return features.SetSensitivity{High: true}, nil
		case "low":
			return features.SetSensitivity{High: false}, nil
		}
		return nil, fmt.Errorf("%w: sensitivity %q", ErrSyntax, rest[0])

	case "binary":
		data, err := ParseHex(strings.Join(rest, ""))
		if err != nil {
			return nil, err
		}
		return features.WriteBinaryContent{Payload: data}, nil

	case "nfc-text":
		if len(rest) == 0 {
			return nil, fmt.Errorf("%w: nfc-text <text>", ErrSyntax)
		}
		return features.WriteNFC{Command: features.NFCCommand{
			Command:     features.NFCCommandText,
			GenericText: strings.Join(rest, " "),
		}}, nil

	case "nfc-url":
		if len(rest) != 1 {
			return nil, fmt.Errorf("%w: nfc-url <url>", ErrSyntax)
		}
		return features.WriteNFC{Command: features.NFCCommand{Command: features.NFCCommandURL, URL: rest[0]}}, nil

	case "hsd":
		if len(rest) != 1 {
			return nil, fmt.Errorf("%w: hsd <command>", ErrSyntax)
		}
		return features.WriteHSDataLog{Command: features.HSDataLogCommand{Command: strings.ToUpper(rest[0])}}, nil

	case "beam":
		if len(rest) != 1 {
			return nil, fmt.Errorf("%w: beam <on|off>", ErrSyntax)
		}
		on, err := parseOnOff(rest[0])
		if err != nil {
			return nil, err
		}
		return features.EnableBeamForming{Enable: on}, nil

	case "beam-direction":
		if len(rest) != 1 {
			return nil, fmt.Errorf("%w: beam-direction <1-8>", ErrSyntax)
		}
		dir, err := strconv.ParseUint(rest[0], 0, 8)
		if err != nil || dir < uint64(features.BeamDirectionTop) || dir > uint64(features.BeamDirectionTopLeft) {
			return nil, fmt.Errorf("%w: direction %q", ErrSyntax, rest[0])
		}
		return features.SetBeamDirection{Direction: features.BeamDirection(dir)}, nil

	case "sd-start":
		if len(rest) < 2 {
			return nil, fmt.Errorf("%w: sd-start <interval> <mask...>", ErrSyntax)
		}
		interval, err := strconv.ParseUint(rest[0], 0, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: interval %q", ErrSyntax, rest[0])
		}
		cmd := features.StartSDLogging{Interval: uint32(interval)}
		for _, m := range rest[1:] {
			mask, err := strconv.ParseUint(m, 0, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: mask %q", ErrSyntax, m)
			}
			cmd.Features = append(cmd.Features, uint32(mask))
		}
		return cmd, nil

	case "sd-stop":
		return features.StopSDLogging{}, nil

	case "motor":
		return parseMotor(rest)

	case "neai":
		if len(rest) != 1 {
			return nil, fmt.Errorf("%w: neai <stop|learn|detect|reset|classify>", ErrSyntax)
		}
		action, ok := neaiActions[strings.ToLower(rest[0])]
		if !ok {
			return nil, fmt.Errorf("%w: neai %q", ErrSyntax, rest[0])
		}
		return features.RunNEAI{Action: action}, nil

	case "led":
		if len(rest) != 2 {
			return nil, fmt.Errorf("%w: led <device> <on|off>", ErrSyntax)
		}
		dev, err := strconv.ParseUint(rest[0], 0, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: device %q", ErrSyntax, rest[0])
		}
		on, err := parseOnOff(rest[1])
		if err != nil {
			return nil, err
		}
		return features.ControlLED{DeviceID: uint8(dev), On: on}, nil

	case "reboot-radio":
		if len(rest) != 1 {
			return nil, fmt.Errorf("%w: reboot-radio <device>", ErrSyntax)
		}
		dev, err := strconv.ParseUint(rest[0], 0, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: device %q", ErrSyntax, rest[0])
		}
		return features.RebootRadio{DeviceID: uint8(dev)}, nil

	case "ota-finish":
		return features.FinishUpload{}, nil
	case "ota-cancel":
		return features.CancelUpload{}, nil
	case "ota-stop":
		return features.StopUpload{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, args[0])
}

var neaiActions = map[string]features.NEAIAction{
	"stop":     features.NEAIStop,
	"learn":    features.NEAILearn,
	"detect":   features.NEAIDetect,
	"reset":    features.NEAIResetKnowledge,
	"classify": features.NEAIClassify,
}

var motorActions = map[string]features.MotorAction{
	"stop":          features.MotorStopWithoutTorque,
	"hold":          features.MotorStopWithTorque,
	"forward":       features.MotorRunForward,
	"backward":      features.MotorRunBackward,
	"step-forward":  features.MotorMoveStepsForward,
	"step-backward": features.MotorMoveStepsBackward,
}

// parseMotor reads "motor <action> [steps]"; only the step actions take a
// step count.
func parseMotor(rest []string) (features.Command, error) {
	if len(rest) == 0 || len(rest) > 2 {
		return nil, fmt.Errorf("%w: motor <action> [steps]", ErrSyntax)
	}
	action, ok := motorActions[strings.ToLower(rest[0])]
	if !ok {
		return nil, fmt.Errorf("%w: motor action %q", ErrSyntax, rest[0])
	}
	stepped := action == features.MotorMoveStepsForward || action == features.MotorMoveStepsBackward
	if stepped != (len(rest) == 2) {
		return nil, fmt.Errorf("%w: motor %s steps", ErrSyntax, rest[0])
	}
	cmd := features.MoveMotor{Action: action}
	if stepped {
		steps, err := strconv.ParseUint(rest[1], 0, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: steps %q", ErrSyntax, rest[1])
		}
		cmd.Steps = uint32(steps)
	}
	return cmd, nil
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "1", "enable":
		return true, nil
	case "off", "false", "0", "disable":
		return false, nil
	}
	return false, fmt.Errorf("%w: expected on or off, got %q", ErrSyntax, s)
}

var detectableEvents = []features.DetectableEvent{
	features.DetectableEventMultiple,
	features.DetectableEventOrientation,
	features.DetectableEventPedometer,
	features.DetectableEventSingleTap,
	features.DetectableEventDoubleTap,
	features.DetectableEventFreeFall,
	features.DetectableEventWakeUp,
	features.DetectableEventTilt,
}

func parseEvent(s string) (features.DetectableEvent, error) {
	norm := strings.ReplaceAll(strings.ToLower(s), "-", "")
	for _, ev := range detectableEvents {
		if strings.ToLower(ev.String()) == norm {
			return ev, nil
		}
	}
	return features.DetectableEventNone, fmt.Errorf("%w: unknown event %q", ErrSyntax, s)
}
