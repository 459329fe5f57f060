package catalog

import "fmt"

// Device is the high speed datalog device description.
type Device struct {
	DeviceInfo *DeviceInfo `yaml:"deviceInfo,omitempty" json:"deviceInfo,omitempty"`
	Sensors    []Sensor    `yaml:"sensor,omitempty" json:"sensor,omitempty"`
	TagConfig  *TagConfig  `yaml:"tagConfig,omitempty" json:"tagConfig,omitempty"`
}

// Validate checks every sensor status against its descriptors.
func (d *Device) Validate() error {
	for _, s := range d.Sensors {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("sensor %d (%s): %w", s.ID, s.Name, err)
		}
	}
	return nil
}

// Sensor returns the sensor with the given id.
func (d *Device) Sensor(id int) (Sensor, bool) {
	for _, s := range d.Sensors {
		if s.ID == id {
			return s, true
		}
	}
	return Sensor{}, false
}

// DeviceInfo identifies the datalog board.
type DeviceInfo struct {
	SerialNumber   string `yaml:"serialNumber" json:"serialNumber"`
	Alias          string `yaml:"alias" json:"alias"`
	PartNumber     string `yaml:"partNumber,omitempty" json:"partNumber,omitempty"`
	URL            string `yaml:"URL,omitempty" json:"URL,omitempty"`
	FwName         string `yaml:"fwName,omitempty" json:"fwName,omitempty"`
	FwVersion      string `yaml:"fwVersion,omitempty" json:"fwVersion,omitempty"`
	DataFileExt    string `yaml:"dataFileExt,omitempty" json:"dataFileExt,omitempty"`
	DataFileFormat string `yaml:"dataFileFormat,omitempty" json:"dataFileFormat,omitempty"`
}

// TagConfig lists the acquisition labels.
type TagConfig struct {
	MaxTagsPerAcq int   `yaml:"maxTagsPerAcq,omitempty" json:"maxTagsPerAcq,omitempty"`
	SWTags        []Tag `yaml:"swTags,omitempty" json:"swTags,omitempty"`
	HWTags        []Tag `yaml:"hwTags,omitempty" json:"hwTags,omitempty"`
}

// Tag is one acquisition label.
type Tag struct {
	ID      int    `yaml:"id" json:"id"`
	Label   string `yaml:"label" json:"label"`
	Enabled bool   `yaml:"enabled,omitempty" json:"enabled,omitempty"`
}

// Sensor is one physical sensor of the device.
type Sensor struct {
	ID         int              `yaml:"id" json:"id"`
	Name       string           `yaml:"name" json:"name"`
	Descriptor SensorDescriptor `yaml:"sensorDescriptor" json:"sensorDescriptor"`
	Status     SensorStatus     `yaml:"sensorStatus" json:"sensorStatus"`
}

// SubSensorStatus returns the status paired with the sub-sensor id.
func (s Sensor) SubSensorStatus(id int) (SubSensorStatus, bool) {
	for i, d := range s.Descriptor.SubSensors {
		if d.ID == id && i < len(s.Status.SubSensors) {
			return s.Status.SubSensors[i], true
		}
	}
	return SubSensorStatus{}, false
}

// Validate checks each sub-sensor status against the descriptor at the
// same position.
func (s Sensor) Validate() error {
	for i, d := range s.Descriptor.SubSensors {
		if i >= len(s.Status.SubSensors) {
			break
		}
		if err := d.Validate(s.Status.SubSensors[i]); err != nil {
			return err
		}
	}
	return nil
}

// SensorDescriptor lists the sub-sensors of a sensor.
type SensorDescriptor struct {
	SubSensors []SubSensorDescriptor `yaml:"subSensorDescriptor" json:"subSensorDescriptor"`
}

// SensorStatus holds the current configuration of each sub-sensor.
type SensorStatus struct {
	SubSensors   []SubSensorStatus `yaml:"subSensorStatus" json:"subSensorStatus"`
	ParamsLocked bool              `yaml:"paramsLocked,omitempty" json:"paramsLocked,omitempty"`
}

// SubSensorStatus is the current configuration of a sub-sensor.
type SubSensorStatus struct {
	IsActive           bool     `yaml:"isActive" json:"isActive"`
	ODR                *float64 `yaml:"ODR,omitempty" json:"ODR,omitempty"`
	ODRMeasured        *float64 `yaml:"ODRMeasured,omitempty" json:"ODRMeasured,omitempty"`
	InitialOffset      *float64 `yaml:"initialOffset,omitempty" json:"initialOffset,omitempty"`
	SamplesPerTs       int      `yaml:"samplesPerTs" json:"samplesPerTs"`
	FS                 *float64 `yaml:"FS,omitempty" json:"FS,omitempty"`
	Sensitivity        *float64 `yaml:"sensitivity,omitempty" json:"sensitivity,omitempty"`
	USBDataPacketSize  int      `yaml:"usbDataPacketSize" json:"usbDataPacketSize"`
	SDWriteBufferSize  int      `yaml:"sdWriteBufferSize" json:"sdWriteBufferSize"`
	WiFiDataPacketSize int      `yaml:"wifiDataPacketSize" json:"wifiDataPacketSize"`
	ComChannelNumber   int      `yaml:"comChannelNumber" json:"comChannelNumber"`
	UCFLoaded          bool     `yaml:"ucfLoaded" json:"ucfLoaded"`
}

// DeviceStatus is the runtime state reported by the datalog board.
type DeviceStatus struct {
	Type           string        `json:"type,omitempty"`
	IsLogging      *bool         `json:"isLogging,omitempty"`
	IsSDInserted   *bool         `json:"isSDInserted,omitempty"`
	CPUUsage       *float64      `json:"cpuUsage,omitempty"`
	BatteryVoltage *float64      `json:"batteryVoltage,omitempty"`
	BatteryLevel   *float64      `json:"batteryLevel,omitempty"`
	SSID           string        `json:"ssid,omitempty"`
	Password       string        `json:"password,omitempty"`
	IP             string        `json:"ip,omitempty"`
	SensorID       *int          `json:"sensorId,omitempty"`
	SensorStatus   *SensorStatus `json:"sensorStatus,omitempty"`
}

// HSDCommand is a request sent to the datalog board.
type HSDCommand struct {
	Command         string                 `json:"command"`
	StartTime       string                 `json:"start_time,omitempty"`
	EndTime         string                 `json:"end_time,omitempty"`
	Request         string                 `json:"request,omitempty"`
	Alias           string                 `json:"alias,omitempty"`
	SSID            string                 `json:"ssid,omitempty"`
	Password        string                 `json:"password,omitempty"`
	Enable          *bool                  `json:"enable,omitempty"`
	ID              *int                   `json:"ID,omitempty"`
	SensorID        *int                   `json:"sensorId,omitempty"`
	SubSensorStatus []HSDSubSensorSettings `json:"subSensorStatus,omitempty"`
	IsActive        *bool                  `json:"isActive,omitempty"`
}

// HSDSubSensorSettings is the part of a sub-sensor status a command can set.
type HSDSubSensorSettings struct {
	ID               int      `json:"id"`
	IsActive         *bool    `json:"isActive,omitempty"`
	ODR              *float64 `json:"ODR,omitempty"`
	FS               *float64 `json:"FS,omitempty"`
	SamplesPerTs     *int     `json:"samplesPerTs,omitempty"`
	MLCConfigSize    *int     `json:"mlcConfigSize,omitempty"`
	MLCConfigData    string   `json:"mlcConfigData,omitempty"`
	STREDLConfigSize *int     `json:"stredlConfigSize,omitempty"`
	STREDLConfigData string   `json:"stredlConfigData,omitempty"`
}
