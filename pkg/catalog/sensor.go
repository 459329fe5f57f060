package catalog

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidSubSensorStatus indicates a status that its descriptor does not allow.
var ErrInvalidSubSensorStatus = errors.New("invalid sub-sensor status")

// SensorType is the kind of a sub-sensor.
type SensorType uint8

const (
	SensorUnknown SensorType = iota
	SensorAccelerometer
	SensorMagnetometer
	SensorGyroscope
	SensorTemperature
	SensorHumidity
	SensorPressure
	SensorMicrophone
	SensorMLC
	SensorClass
	SensorSTREDL
)

var sensorTypeCodes = map[SensorType]string{
	SensorUnknown:       "UNK",
	SensorAccelerometer: "ACC",
	SensorMagnetometer:  "MAG",
	SensorGyroscope:     "GYRO",
	SensorTemperature:   "TEMP",
	SensorHumidity:      "HUM",
	SensorPressure:      "PRESS",
	SensorMicrophone:    "MIC",
	SensorMLC:           "MLC",
	SensorClass:         "CLASS",
	SensorSTREDL:        "STREDL",
}

// String returns the catalog code of the sensor type.
func (t SensorType) String() string {
	if s, ok := sensorTypeCodes[t]; ok {
		return s
	}
	return "UNK"
}

// ParseSensorType maps a catalog code to a sensor type. Component names such
// as "iis3dwb_acc" are matched on their last segment. Unknown codes map to
// SensorUnknown.
func ParseSensorType(s string) SensorType {
	code := strings.ToUpper(s)
	if i := strings.LastIndexByte(code, '_'); i >= 0 {
		code = code[i+1:]
	}
	for t, c := range sensorTypeCodes {
		if c == code {
			return t
		}
	}
	return SensorUnknown
}

// MarshalText implements encoding.TextMarshaler.
func (t SensorType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *SensorType) UnmarshalText(b []byte) error {
	*t = ParseSensorType(string(b))
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (t SensorType) MarshalYAML() (any, error) {
	return t.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *SensorType) UnmarshalYAML(node *yaml.Node) error {
	*t = ParseSensorType(node.Value)
	return nil
}

// SamplesPerTs bounds the samples-per-timestamp setting.
type SamplesPerTs struct {
	Min      int    `yaml:"min" json:"min"`
	Max      int    `yaml:"max" json:"max"`
	DataType string `yaml:"dataType" json:"dataType"`
}

// SubSensorDescriptor describes what a sub-sensor supports.
type SubSensorDescriptor struct {
	ID              int          `yaml:"id" json:"id"`
	SensorType      SensorType   `yaml:"sensorType" json:"sensorType"`
	Dimensions      int          `yaml:"dimensions" json:"dimensions"`
	DimensionsLabel []string     `yaml:"dimensionsLabel" json:"dimensionsLabel"`
	Unit            string       `yaml:"unit,omitempty" json:"unit,omitempty"`
	DataType        string       `yaml:"dataType,omitempty" json:"dataType,omitempty"`
	FS              []float64    `yaml:"FS,omitempty" json:"FS,omitempty"`
	ODR             []float64    `yaml:"ODR,omitempty" json:"ODR,omitempty"`
	SamplesPerTs    SamplesPerTs `yaml:"samplesPerTs" json:"samplesPerTs"`
}

// HasIntegerValue reports whether samples are integers.
func (d SubSensorDescriptor) HasIntegerValue() bool {
	return strings.Contains(strings.ToLower(d.DataType), "int")
}

// HasFloatValue reports whether samples are floating point.
func (d SubSensorDescriptor) HasFloatValue() bool {
	return strings.Contains(strings.ToLower(d.DataType), "float")
}

// HasTextValue reports whether samples are strings.
func (d SubSensorDescriptor) HasTextValue() bool {
	return strings.Contains(strings.ToLower(d.DataType), "string")
}

// HasNumericValue reports whether samples are integers or floats.
func (d SubSensorDescriptor) HasNumericValue() bool {
	return d.HasIntegerValue() || d.HasFloatValue()
}

// Validate checks a sub-sensor status against the descriptor. Inactive
// sub-sensors are always valid.
func (d SubSensorDescriptor) Validate(s SubSensorStatus) error {
	if !s.IsActive {
		return nil
	}
	if len(d.ODR) > 0 && s.ODR != nil && !containsValue(d.ODR, *s.ODR) {
		return fmt.Errorf("%w: sub-sensor %d: ODR %v not in %v", ErrInvalidSubSensorStatus, d.ID, *s.ODR, d.ODR)
	}
	if len(d.FS) > 0 && s.FS != nil && !containsValue(d.FS, *s.FS) {
		return fmt.Errorf("%w: sub-sensor %d: FS %v not in %v", ErrInvalidSubSensorStatus, d.ID, *s.FS, d.FS)
	}
	spt := d.SamplesPerTs
	if spt.Max > 0 && (s.SamplesPerTs < spt.Min || s.SamplesPerTs > spt.Max) {
		return fmt.Errorf("%w: sub-sensor %d: samplesPerTs %d not in [%d,%d]",
			ErrInvalidSubSensorStatus, d.ID, s.SamplesPerTs, spt.Min, spt.Max)
	}
	return nil
}

func containsValue(values []float64, v float64) bool {
	return slices.ContainsFunc(values, func(x float64) bool {
		return math.Abs(x-v) < 1e-6
	})
}
