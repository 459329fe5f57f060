package catalog

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
version: "1.2.3"
checksum: abc
bluestsdk_v2:
  - ble_dev_id: "0x80"
    ble_fw_id: "0x0E"
    brd_name: NUCLEO
    fw_version: 1.0.0
    fw_name: FP-SNS-ALLMEMS1
    fw_desc: sensor demo
    cloud_apps: []
    option_bytes: []
    characteristics:
      - name: Temperature
        uuid: 00040000-0001-11e1-ac36-0002a5d5c51b
        format_notify:
          - name: temp
            unit: C
            scalefactor: 0.1
    fota:
      type: no
      max_chunk_length: 20
  - ble_dev_id: "0x80"
    ble_fw_id: "0x0F"
    brd_name: NUCLEO
    fw_version: 2.0.0
    fw_name: FP-AI-SENSING1
    fw_desc: ai demo
    fota: {}
characteristics:
  - name: Battery
    uuid: 00020000-0001-11e1-ac36-0002a5d5c51b
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(testCatalog))
	require.NoError(t, err)

	assert.Equal(t, "1.2.3", c.Version)
	require.Len(t, c.FirmwaresV2, 2)

	t.Run("FirmwareLookup", func(t *testing.T) {
		fw, ok := c.Firmware(0x80, 0x0E)
		require.True(t, ok)
		assert.Equal(t, "FP-SNS-ALLMEMS1", fw.Name)
		assert.Equal(t, "FP-SNS-ALLMEMS1V1.0.0", fw.FriendlyName())
		assert.Equal(t, 20, fw.Fota.MaxChunkLength)

		_, ok = c.Firmware(0x80, 0x01)
		assert.False(t, ok)
	})

	t.Run("FirmwaresForDevice", func(t *testing.T) {
		assert.Len(t, c.FirmwaresForDevice(0x80), 2)
		assert.Empty(t, c.FirmwaresForDevice(0x01))
	})

	t.Run("CharacteristicPrecedence", func(t *testing.T) {
		fw, _ := c.Firmware(0x80, 0x0E)
		ch, ok := c.Characteristic(&fw, "00040000-0001-11E1-AC36-0002A5D5C51B")
		require.True(t, ok)
		assert.Equal(t, "Temperature", ch.Name)
		require.Len(t, ch.FormatNotify, 1)
		require.NotNil(t, ch.FormatNotify[0].ScaleFactor)
		assert.InDelta(t, 0.1, *ch.FormatNotify[0].ScaleFactor, 1e-6)

		ch, ok = c.Characteristic(&fw, "00020000-0001-11e1-ac36-0002a5d5c51b")
		require.True(t, ok)
		assert.Equal(t, "Battery", ch.Name)

		_, ok = c.Characteristic(nil, "00040000-0001-11e1-ac36-0002a5d5c51b")
		assert.False(t, ok)
	})
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		err  error
	}{
		{"BadID", "bluestsdk_v2:\n  - ble_dev_id: zz\n    ble_fw_id: \"0x01\"\n", ErrInvalidCatalog},
		{"Duplicate", "bluestsdk_v2:\n  - {ble_dev_id: \"0x01\", ble_fw_id: \"0x01\"}\n  - {ble_dev_id: \"0x01\", ble_fw_id: \"0x01\"}\n", ErrInvalidCatalog},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.err), "got %v", err)
		})
	}

	_, err := Parse([]byte("bluestsdk_v2: [unterminated"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	_, ok := c.Firmware(0x80, 0x0F)
	assert.True(t, ok)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseSensorType(t *testing.T) {
	tests := []struct {
		in   string
		want SensorType
	}{
		{"ACC", SensorAccelerometer},
		{"iis3dwb_acc", SensorAccelerometer},
		{"MIC", SensorMicrophone},
		{"stredl", SensorSTREDL},
		{"BOGUS", SensorUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSensorType(tt.in))
		})
	}
	assert.Equal(t, "GYRO", SensorGyroscope.String())
}

func TestSubSensorDescriptorFlags(t *testing.T) {
	tests := []struct {
		dataType                    string
		integer, float, text, numer bool
	}{
		{"int16_t", true, false, false, true},
		{"float", false, true, false, true},
		{"string", false, false, true, false},
		{"", false, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.dataType, func(t *testing.T) {
			d := SubSensorDescriptor{DataType: tt.dataType}
			assert.Equal(t, tt.integer, d.HasIntegerValue())
			assert.Equal(t, tt.float, d.HasFloatValue())
			assert.Equal(t, tt.text, d.HasTextValue())
			assert.Equal(t, tt.numer, d.HasNumericValue())
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestSubSensorValidate(t *testing.T) {
	d := SubSensorDescriptor{
		ID:           1,
		ODR:          []float64{12.5, 26, 52},
		FS:           []float64{2, 4, 8},
		SamplesPerTs: SamplesPerTs{Min: 0, Max: 1000, DataType: "int16_t"},
	}

	assert.NoError(t, d.Validate(SubSensorStatus{IsActive: true, ODR: ptr(26.0), FS: ptr(4.0), SamplesPerTs: 100}))
	assert.NoError(t, d.Validate(SubSensorStatus{IsActive: false, ODR: ptr(1.0)}))

	err := d.Validate(SubSensorStatus{IsActive: true, ODR: ptr(100.0)})
	assert.ErrorIs(t, err, ErrInvalidSubSensorStatus)

	err = d.Validate(SubSensorStatus{IsActive: true, FS: ptr(16.0)})
	assert.ErrorIs(t, err, ErrInvalidSubSensorStatus)

	err = d.Validate(SubSensorStatus{IsActive: true, SamplesPerTs: 2000})
	assert.ErrorIs(t, err, ErrInvalidSubSensorStatus)
}

func TestDeviceJSON(t *testing.T) {
	doc := `{
		"deviceInfo": {"serialNumber": "SN1", "alias": "STWIN"},
		"sensor": [{
			"id": 0,
			"name": "IIS3DWB",
			"sensorDescriptor": {"subSensorDescriptor": [
				{"id": 0, "sensorType": "ACC", "dimensions": 3, "dimensionsLabel": ["x","y","z"],
				 "ODR": [26667], "FS": [2,4], "samplesPerTs": {"min": 0, "max": 1000, "dataType": "int16_t"}}
			]},
			"sensorStatus": {"subSensorStatus": [
				{"isActive": true, "ODR": 26667, "FS": 16, "samplesPerTs": 10}
			]}
		}]
	}`
	var dev Device
	require.NoError(t, json.Unmarshal([]byte(doc), &dev))
	require.NotNil(t, dev.DeviceInfo)
	assert.Equal(t, "STWIN", dev.DeviceInfo.Alias)

	s, ok := dev.Sensor(0)
	require.True(t, ok)
	assert.Equal(t, SensorAccelerometer, s.Descriptor.SubSensors[0].SensorType)

	st, ok := s.SubSensorStatus(0)
	require.True(t, ok)
	assert.True(t, st.IsActive)

	err := dev.Validate()
	assert.ErrorIs(t, err, ErrInvalidSubSensorStatus)
}
