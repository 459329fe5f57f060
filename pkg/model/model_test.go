package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pairSample struct {
	A Field[float32]
	B Field[[]byte]
}

func (s pairSample) Fields() []AnyField { return []AnyField{s.A, s.B} }

func TestFieldLogRepresentation(t *testing.T) {
	f := NewField[float32]("Temperature", "℃", 23.5).WithRange(-40, 120)

	assert.Equal(t, "Temperature (℃)", f.LogHeader())
	assert.Equal(t, "23.5", f.LogValue())

	min, max, ok := f.Range()
	require.True(t, ok)
	assert.Equal(t, float32(-40), min)
	assert.Equal(t, float32(120), max)

	plain := NewField("Data", "", []byte{0xCA, 0xFE})
	assert.Equal(t, "Data", plain.LogHeader())
	assert.Equal(t, "cafe", plain.LogValue())
	_, _, ok = plain.Range()
	assert.False(t, ok)
}

func TestFieldBoundsNotEnforced(t *testing.T) {
	f := NewField[float32]("Humidity", "%", 150).WithRange(0, 100)
	assert.Equal(t, float32(150), f.Value)
}

func TestSampleLogJoin(t *testing.T) {
	s := pairSample{
		A: NewField[float32]("A", "V", 1.5),
		B: NewField("B", "", []byte{1}),
	}
	assert.Equal(t, "A (V), B", LogHeader(s))
	assert.Equal(t, "1.5, 01", LogValue(s))
}

func TestUpdateEraseAndAs(t *testing.T) {
	typed := Update[pairSample]{
		Feature:   "Pair",
		Timestamp: 42,
		Raw:       []byte{1, 2},
		ReadBytes: 2,
		Data:      pairSample{A: NewField[float32]("A", "", 1)},
	}

	erased := Erase(typed)
	assert.Equal(t, "Pair", erased.Feature)
	assert.Equal(t, 2, erased.ReadBytes)

	back, ok := As[pairSample](erased)
	require.True(t, ok)
	assert.Equal(t, float32(1), back.Data.A.Value)
	assert.Equal(t, uint64(42), back.Timestamp)
}

func TestCharacteristicUUID(t *testing.T) {
	tests := []struct {
		name string
		typ  FeatureType
		id   uint32
		want string
	}{
		{"extended", TypeExtended, 0x22, "00000022-0002-11e1-ac36-0002a5d5c51b"},
		{"general purpose", TypeGeneralPurpose, 0x0102, "01020000-0003-11e1-ac36-0002a5d5c51b"},
		{"stm32", TypeExternalSTM32, 0xfe42, "0000fe42-8e22-4541-9d4c-21edae82ed19"},
		{"std chart", TypeExternalStdChart, 0x2a37, "00002a37-0000-1000-8000-00805f9b34fb"},
		{"blue nrg", TypeExternalBlueNRGOTA, 0x2691aa80, "2691aa80-8508-11e3-baa7-0800200c9a66"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, ok := CharacteristicUUID(tt.typ, tt.id)
			require.True(t, ok)
			assert.Equal(t, tt.want, u.String())

			typ, id, err := ParseCharacteristic(u)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, typ)
			assert.Equal(t, tt.id, id)
		})
	}
}

func TestStandardCharacteristic(t *testing.T) {
	_, ok := CharacteristicUUID(TypeStandard, 0x00040000)
	assert.False(t, ok, "standard features have no own UUID")

	u := StandardCharacteristic(0x001C0000)
	assert.Equal(t, "001c0000-0001-11e1-ac36-0002a5d5c51b", u.String())

	typ, mask, err := ParseCharacteristic(u)
	require.NoError(t, err)
	assert.Equal(t, TypeStandard, typ)
	assert.Equal(t, uint32(0x001C0000), mask)
}

func TestParseCharacteristicUnknown(t *testing.T) {
	_, _, err := ParseCharacteristic(uuid.MustParse("0000180f-0000-1000-8000-00805f9b34fa"))
	assert.ErrorIs(t, err, ErrUnknownCharacteristic)
}

func TestFeatureTypeString(t *testing.T) {
	assert.Equal(t, "STANDARD", TypeStandard.String())
	assert.Equal(t, "EXTERNAL_STM32", TypeExternalSTM32.String())
	assert.Equal(t, "UNKNOWN", FeatureType(99).String())
}

func TestDescriptorMask(t *testing.T) {
	d := Descriptor{Name: "Temperature", Type: TypeStandard, ID: 0x00040000}
	mask, ok := d.Mask()
	require.True(t, ok)
	assert.Equal(t, uint32(0x00040000), mask)

	ext := Descriptor{Name: "BinaryContent", Type: TypeExtended, ID: 0x22}
	_, ok = ext.Mask()
	assert.False(t, ok)
	u, ok := ext.CharacteristicUUID()
	require.True(t, ok)
	assert.Equal(t, "00000022-0002-11e1-ac36-0002a5d5c51b", u.String())
}
