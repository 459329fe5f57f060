package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluest-sdk/bluest-go/cmd/bluest-decode/commands"
	"github.com/bluest-sdk/bluest-go/pkg/features"
	"github.com/bluest-sdk/bluest-go/pkg/model"
)

func TestParseNotification(t *testing.T) {
	ch := model.StandardCharacteristic(0x00040000)

	t.Run("Spaced", func(t *testing.T) {
		n, err := commands.ParseNotification(ch.String() + " 10 00 e8 00")
		require.NoError(t, err)
		assert.Equal(t, ch, n.Characteristic)
		assert.Equal(t, []byte{0x10, 0x00, 0xE8, 0x00}, n.Data)
	})

	t.Run("Colons", func(t *testing.T) {
		n, err := commands.ParseNotification(ch.String() + " 0x10:00:E8:00")
		require.NoError(t, err)
		assert.Equal(t, []byte{0x10, 0x00, 0xE8, 0x00}, n.Data)
	})

	t.Run("EmptyPayload", func(t *testing.T) {
		n, err := commands.ParseNotification(ch.String())
		require.NoError(t, err)
		assert.Empty(t, n.Data)
	})

	for name, line := range map[string]string{
		"Empty":   "",
		"BadUUID": "not-a-uuid 1000",
		"OddHex":  ch.String() + " 100",
		"NotHex":  ch.String() + " zz",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := commands.ParseNotification(line)
			assert.ErrorIs(t, err, commands.ErrSyntax)
		})
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		args []string
		want features.Command
	}{
		{[]string{"on"}, features.SwitchOn{}},
		{[]string{"OFF"}, features.SwitchOff{}},
		{[]string{"battery-capacity"}, features.GetBatteryCapacity{}},
		{[]string{"max-current"}, features.GetMaxAbsorbedCurrent{}},
		{[]string{"detect", "double-tap", "on"}, features.EnableDetection{Event: features.DetectableEventDoubleTap, Enable: true}},
		{[]string{"detect", "FreeFall", "off"}, features.EnableDetection{Event: features.DetectableEventFreeFall}},
		{[]string{"remote-switch", "0x1234", "on"}, features.ChangeRemoteSwitch{NodeID: 0x1234, On: true}},
		{[]string{"calibrate", "start"}, features.StartCalibration{}},
		{[]string{"calibrate", "get"}, features.GetCalibration{}},
		{[]string{"sensitivity", "high"}, features.SetSensitivity{High: true}},
		{[]string{"binary", "01", "02"}, features.WriteBinaryContent{Payload: []byte{1, 2}}},
		{[]string{"nfc-text", "hello", "world"}, features.WriteNFC{Command: features.NFCCommand{Command: features.NFCCommandText, GenericText: "hello world"}}},
		{[]string{"nfc-url", "https://st.com"}, features.WriteNFC{Command: features.NFCCommand{Command: features.NFCCommandURL, URL: "https://st.com"}}},
		{[]string{"hsd", "start"}, features.WriteHSDataLog{Command: features.HSDataLogCommand{Command: "START"}}},
		{[]string{"beam", "on"}, features.EnableBeamForming{Enable: true}},
		{[]string{"beam-direction", "3"}, features.SetBeamDirection{Direction: features.BeamDirectionRight}},
		{[]string{"sd-start", "1000", "0x00100000", "0x00080000"}, features.StartSDLogging{Features: []uint32{0x00100000, 0x00080000}, Interval: 1000}},
		{[]string{"sd-stop"}, features.StopSDLogging{}},
		{[]string{"motor", "step-forward", "200"}, features.MoveMotor{Action: features.MotorMoveStepsForward, Steps: 200}},
		{[]string{"motor", "hold"}, features.MoveMotor{Action: features.MotorStopWithTorque}},
		{[]string{"neai", "learn"}, features.RunNEAI{Action: features.NEAILearn}},
		{[]string{"neai", "Classify"}, features.RunNEAI{Action: features.NEAIClassify}},
		{[]string{"led", "3", "on"}, features.ControlLED{DeviceID: 3, On: true}},
		{[]string{"reboot-radio", "7"}, features.RebootRadio{DeviceID: 7}},
		{[]string{"ota-finish"}, features.FinishUpload{}},
		{[]string{"ota-cancel"}, features.CancelUpload{}},
		{[]string{"ota-stop"}, features.StopUpload{}},
	}
	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			got, err := commands.ParseCommand(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		err  error
	}{
		{"Empty", nil, commands.ErrSyntax},
		{"Unknown", []string{"fly"}, commands.ErrUnknownCommand},
		{"DetectArity", []string{"detect", "tilt"}, commands.ErrSyntax},
		{"DetectEvent", []string{"detect", "sneeze", "on"}, commands.ErrSyntax},
		{"DetectOnOff", []string{"detect", "tilt", "maybe"}, commands.ErrSyntax},
		{"RemoteNode", []string{"remote-switch", "x", "on"}, commands.ErrSyntax},
		{"Calibrate", []string{"calibrate", "now"}, commands.ErrSyntax},
		{"Sensitivity", []string{"sensitivity", "medium"}, commands.ErrSyntax},
		{"BinaryHex", []string{"binary", "0g"}, commands.ErrSyntax},
		{"NFCText", []string{"nfc-text"}, commands.ErrSyntax},
		{"LEDDevice", []string{"led", "300", "on"}, commands.ErrSyntax},
		{"BeamDirection", []string{"beam-direction", "9"}, commands.ErrSyntax},
		{"SDStartMask", []string{"sd-start", "1000"}, commands.ErrSyntax},
		{"MotorMissingSteps", []string{"motor", "step-backward"}, commands.ErrSyntax},
		{"MotorExtraSteps", []string{"motor", "forward", "10"}, commands.ErrSyntax},
		{"NEAIAction", []string{"neai", "dream"}, commands.ErrSyntax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := commands.ParseCommand(tt.args)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
