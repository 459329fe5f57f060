package commands_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluest-sdk/bluest-go/cmd/bluest-decode/commands"
	"github.com/bluest-sdk/bluest-go/pkg/features"
	"github.com/bluest-sdk/bluest-go/pkg/model"
	"github.com/bluest-sdk/bluest-go/pkg/session"
)

var (
	envChar    = model.StandardCharacteristic(0x001C0000)
	switchChar = model.StandardCharacteristic(0x20020000)
)

// envPayload carries tick 16, 100.0 mBar, 54.0 % and 23.2 ℃.
const envPayload = "1000 10270000 1C02 E800"

func TestRunStream(t *testing.T) {
	s := session.New(session.Config{DeviceID: "dev"})
	_, err := s.Discover(switchChar)
	require.NoError(t, err)
	p := session.NewPipeline(s)

	input := strings.Join([]string{
		"# capture",
		"",
		envChar.String() + " " + envPayload,
		"garbage",
		envChar.String() + " 01",
		features.ConfigCharacteristic.String() + " 01 00 00 02 00 00 01 10 27",
	}, "\n")

	var out, errOut bytes.Buffer
	sum, err := commands.RunStream(context.Background(), strings.NewReader(input), p,
		commands.NewPrinter(&out, commands.FormatText), &errOut)
	require.NoError(t, err)

	assert.Equal(t, commands.StreamSummary{
		Lines:        4,
		Records:      3,
		Responses:    1,
		ParseErrors:  1,
		DecodeErrors: 1,
	}, sum)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "[16] Temperature: Temperature=23.2 ℃", lines[2])
	assert.Contains(t, lines[3], "BatteryCapacity")

	assert.Contains(t, errOut.String(), "line 2:")
	assert.Contains(t, errOut.String(), "line 3:")
}

func TestRunStreamCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	sum, err := commands.RunStream(ctx, strings.NewReader(envChar.String()+" "+envPayload), session.NewPipeline(session.New(session.Config{})),
		commands.NewPrinter(&out, commands.FormatText), &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, sum.Records)
}

func newPipeline(t *testing.T) *session.Pipeline {
	t.Helper()
	s := session.New(session.Config{DeviceID: "dev"})
	_, err := s.Discover(switchChar)
	require.NoError(t, err)
	return session.NewPipeline(s)
}

func TestStreamCaptureReplay(t *testing.T) {
	input := strings.Join([]string{
		envChar.String() + " " + envPayload,
		"garbage",
		features.ConfigCharacteristic.String() + " 01 00 00 02 00 00 01 10 27",
	}, "\n")

	var live, capture bytes.Buffer
	recorder := &commands.Stream{
		Pipeline: newPipeline(t),
		Printer:  commands.NewPrinter(&live, commands.FormatText),
		Capture:  &capture,
	}
	sum, err := recorder.Run(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.ParseErrors)
	require.NotZero(t, capture.Len())

	var replayed bytes.Buffer
	player := &commands.Stream{
		Pipeline: newPipeline(t),
		Printer:  commands.NewPrinter(&replayed, commands.FormatText),
	}
	sum, err = player.Replay(context.Background(), &capture)
	require.NoError(t, err)

	assert.Equal(t, commands.StreamSummary{Lines: 2, Records: 3, Responses: 1}, sum)
	assert.Equal(t, live.String(), replayed.String())
}

func TestStreamReplayCorrupt(t *testing.T) {
	player := &commands.Stream{
		Pipeline: session.NewPipeline(session.New(session.Config{})),
		Printer:  commands.NewPrinter(&bytes.Buffer{}, commands.FormatText),
	}
	_, err := player.Replay(context.Background(), bytes.NewReader([]byte{0xFF, 0x00}))
	assert.Error(t, err)
}
