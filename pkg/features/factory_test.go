package features_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluest-sdk/bluest-go/pkg/features"
	"github.com/bluest-sdk/bluest-go/pkg/model"
)

func TestFromMaskBoards(t *testing.T) {
	tests := []struct {
		board features.Board
		bit   uint32
		want  features.Kind
	}{
		{features.BoardDefault, 0x10000000, features.KindDirectionOfArrival},
		{features.BoardSensorTileBox, 0x10000000, features.KindMemsNorm},
		{features.BoardDefault, 0x02000000, features.KindProximity},
		{features.BoardSensorTileBox, 0x02000000, features.KindAudioClassification},
		{features.BoardDefault, 0x00000200, features.KindFreeFall},
		{features.BoardSensorTileBox, 0x00000200, features.KindEventCounter},
		{features.BoardRemoteNode, 0x00040000, features.KindRemoteTemperature},
		{features.BoardDefault, 0x00010000, features.KindTemperature},
	}
	for _, tt := range tests {
		t.Run(tt.board.String()+"/"+tt.want.String(), func(t *testing.T) {
			f, err := features.FromMask(tt.board, tt.bit, true)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Kind())
			assert.True(t, f.IsStandard())
			mask, ok := f.Descriptor().Mask()
			require.True(t, ok)
			assert.Equal(t, tt.bit, mask)
		})
	}

	_, err := features.FromMask(features.BoardRemoteNode, 0x00800000, true)
	assert.ErrorIs(t, err, features.ErrUnknownID)
	_, err = features.FromMask(features.BoardDefault, 0x80000000, true)
	assert.ErrorIs(t, err, features.ErrUnknownID)
}

func TestFromExtendedAndExternal(t *testing.T) {
	f, err := features.FromExtendedID(0x21)
	require.NoError(t, err)
	assert.Equal(t, features.KindMemsNorm, f.Kind())
	assert.Equal(t, model.TypeExtended, f.Descriptor().Type)
	assert.False(t, f.IsStandard())

	_, err = features.FromExtendedID(0x1E)
	assert.ErrorIs(t, err, features.ErrUnknownID)

	f, err = features.FromExternal(model.TypeExternalStdChart, 0x2A38)
	require.NoError(t, err)
	assert.Equal(t, features.KindBodySensorLocation, f.Kind())

	_, err = features.FromExternal(model.TypeExternalSTM32, 0x2A38)
	assert.ErrorIs(t, err, features.ErrUnknownID)
}

func TestWriteOnlyFeaturesDoNotNotify(t *testing.T) {
	f := external(t, model.TypeExternalSTM32, 0xFE22)
	assert.False(t, f.Descriptor().Notify)
	assert.False(t, f.HasTimestamp())

	f = mustMask(t, features.BoardDefault, 0x00040000)
	assert.True(t, f.Descriptor().Notify)
	assert.True(t, f.HasTimestamp())
}

func TestForCharacteristic(t *testing.T) {
	// Temperature, battery, acceleration and an unknown bit.
	ch := model.StandardCharacteristic(0x80000000 | 0x00800000 | 0x00040000 | 0x00020000)

	t.Run("MostSignificantBitFirst", func(t *testing.T) {
		got, err := features.ForCharacteristic(features.BoardDefault, ch, 0, 2, 0)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, features.KindAcceleration, got[0].Kind())
		assert.Equal(t, features.KindTemperature, got[1].Kind())
		assert.Equal(t, features.KindBattery, got[2].Kind())
		for _, f := range got {
			assert.True(t, f.Enabled(), f.Name())
			assert.Equal(t, model.DefaultMaxPayloadSize, f.Descriptor().MaxPayloadSize)
		}
	})

	t.Run("ProtocolV1UsesAdvertiseMask", func(t *testing.T) {
		got, err := features.ForCharacteristic(features.BoardDefault, ch, 0x00040000, 1, 0)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.False(t, got[0].Enabled())
		assert.True(t, got[1].Enabled())
		assert.False(t, got[2].Enabled())
	})

	t.Run("MaxPayload", func(t *testing.T) {
		got, err := features.ForCharacteristic(features.BoardDefault, ch, 0, 2, 244)
		require.NoError(t, err)
		assert.Equal(t, 244, got[0].Descriptor().MaxPayloadSize)
	})

	t.Run("Extended", func(t *testing.T) {
		u, ok := model.CharacteristicUUID(model.TypeExtended, 0x22)
		require.True(t, ok)
		got, err := features.ForCharacteristic(features.BoardDefault, u, 0, 2, 0)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, features.KindBinaryContent, got[0].Kind())
	})

	t.Run("GeneralPurpose", func(t *testing.T) {
		u := uuid.MustParse("00140000-0003-11e1-ac36-0002a5d5c51b")
		got, err := features.ForCharacteristic(features.BoardDefault, u, 0, 2, 0)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "GP_20", got[0].Name())
	})

	t.Run("HeartRate", func(t *testing.T) {
		u := uuid.MustParse("00002a37-0000-1000-8000-00805f9b34fb")
		got, err := features.ForCharacteristic(features.BoardDefault, u, 0, 2, 0)
		require.NoError(t, err)
		assert.Equal(t, features.KindHeartRate, got[0].Kind())
	})

	t.Run("NoKnownBit", func(t *testing.T) {
		_, err := features.ForCharacteristic(features.BoardDefault, model.StandardCharacteristic(0x80000000), 0, 2, 0)
		assert.ErrorIs(t, err, features.ErrUnknownID)
	})

	t.Run("ForeignUUID", func(t *testing.T) {
		_, err := features.ForCharacteristic(features.BoardDefault, uuid.MustParse("6e400001-b5a3-f393-e0a9-e50e24dcca9e"), 0, 2, 0)
		assert.ErrorIs(t, err, model.ErrUnknownCharacteristic)
	})
}

func TestCommandCharacteristic(t *testing.T) {
	u, ok := features.CommandCharacteristic(mustMask(t, features.BoardDefault, 0x20000000))
	require.True(t, ok)
	assert.Equal(t, features.ConfigCharacteristic, u)

	f := external(t, model.TypeExternalSTM32, 0xFE41)
	u, ok = features.CommandCharacteristic(f)
	require.True(t, ok)
	assert.Equal(t, uuid.MustParse("0000fe41-8e22-4541-9d4c-21edae82ed19"), u)

	for _, bit := range []uint32{0x00001000, 0x00002000} {
		f := mustMask(t, features.BoardDefault, bit)
		u, ok := features.CommandCharacteristic(f)
		require.True(t, ok)
		assert.Equal(t, model.StandardCharacteristic(bit), u, "mask 0x%08X", bit)
		assert.NotEqual(t, features.ConfigCharacteristic, u)
	}
}

func TestParseBoard(t *testing.T) {
	for _, b := range []features.Board{features.BoardDefault, features.BoardSensorTileBox, features.BoardRemoteNode} {
		got, err := features.ParseBoard(b.String())
		require.NoError(t, err)
		assert.Equal(t, b, got)
	}
	got, err := features.ParseBoard("sensor-tile-box")
	require.NoError(t, err)
	assert.Equal(t, features.BoardSensorTileBox, got)

	_, err = features.ParseBoard("nucleo-f401")
	assert.ErrorIs(t, err, features.ErrUnknownID)
}

func TestKindNames(t *testing.T) {
	assert.Equal(t, "Temperature", features.KindTemperature.String())
	assert.Equal(t, "Unknown", features.KindUnknown.String())
	assert.False(t, features.KindBattery.Placeholder())
	assert.True(t, features.KindSceneDescription.Placeholder())
	assert.True(t, features.KindPnPL.Placeholder())
	for _, k := range []features.Kind{
		features.KindEulerAngle, features.KindSDLogging, features.KindAudioOpus,
		features.KindQVAR, features.KindNEAIClassification, features.KindGNSS,
	} {
		assert.False(t, k.Placeholder(), k.String())
	}
}
