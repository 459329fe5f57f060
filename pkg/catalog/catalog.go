package catalog

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog errors.
var (
	// ErrInvalidCatalog indicates a catalog document that cannot be used.
	ErrInvalidCatalog = errors.New("invalid catalog")

	// ErrInvalidID indicates a device or firmware id that is not a number.
	ErrInvalidID = errors.New("invalid id")
)

// Catalog is the set of known boards and firmwares.
type Catalog struct {
	Date            string           `yaml:"date,omitempty" json:"date,omitempty"`
	Version         string           `yaml:"version,omitempty" json:"version,omitempty"`
	StableRelease   *bool            `yaml:"stable_release,omitempty" json:"stable_release,omitempty"`
	Checksum        string           `yaml:"checksum,omitempty" json:"checksum,omitempty"`
	FirmwaresV2     []Firmware       `yaml:"bluestsdk_v2,omitempty" json:"bluestsdk_v2,omitempty"`
	FirmwaresV1     []Firmware       `yaml:"bluestsdk_v1,omitempty" json:"bluestsdk_v1,omitempty"`
	Characteristics []Characteristic `yaml:"characteristics,omitempty" json:"characteristics,omitempty"`
	Boards          []Board          `yaml:"boards,omitempty" json:"boards,omitempty"`
	SensorAdapters  []SensorAdapter  `yaml:"sensor_adapters,omitempty" json:"sensor_adapters,omitempty"`

	index map[firmwareKey]int
}

type firmwareKey struct {
	device   uint8
	firmware uint8
}

// Board is the hardware description of a board.
type Board struct {
	DeviceID     string `yaml:"ble_dev_id" json:"ble_dev_id"`
	Name         string `yaml:"brd_name" json:"brd_name"`
	Part         string `yaml:"brd_part,omitempty" json:"brd_part,omitempty"`
	Variant      string `yaml:"brd_variant,omitempty" json:"brd_variant,omitempty"`
	FriendlyName string `yaml:"friendly_name,omitempty" json:"friendly_name,omitempty"`
	Status       string `yaml:"status,omitempty" json:"status,omitempty"`
	Description  string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Firmware describes one firmware for one board.
type Firmware struct {
	DeviceID        string           `yaml:"ble_dev_id" json:"ble_dev_id"`
	FirmwareID      string           `yaml:"ble_fw_id" json:"ble_fw_id"`
	BoardName       string           `yaml:"brd_name" json:"brd_name"`
	Version         string           `yaml:"fw_version" json:"fw_version"`
	Name            string           `yaml:"fw_name" json:"fw_name"`
	DTMI            string           `yaml:"dtmi,omitempty" json:"dtmi,omitempty"`
	CloudApps       []CloudApp       `yaml:"cloud_apps,omitempty" json:"cloud_apps,omitempty"`
	Characteristics []Characteristic `yaml:"characteristics,omitempty" json:"characteristics,omitempty"`
	OptionBytes     []OptionByte     `yaml:"option_bytes,omitempty" json:"option_bytes,omitempty"`
	Description     string           `yaml:"fw_desc,omitempty" json:"fw_desc,omitempty"`
	Changelog       string           `yaml:"changelog,omitempty" json:"changelog,omitempty"`
	Fota            Fota             `yaml:"fota" json:"fota"`
	SensorAdapters  []int            `yaml:"compatible_sensor_adapters,omitempty" json:"compatible_sensor_adapters,omitempty"`
	Maturity        string           `yaml:"maturity,omitempty" json:"maturity,omitempty"`
}

// FriendlyName returns the firmware name followed by its version.
func (f Firmware) FriendlyName() string {
	return f.Name + "V" + f.Version
}

// IDs parses the hex device and firmware ids.
func (f Firmware) IDs() (device, firmware uint8, err error) {
	device, err = parseID(f.DeviceID)
	if err != nil {
		return 0, 0, err
	}
	firmware, err = parseID(f.FirmwareID)
	if err != nil {
		return 0, 0, err
	}
	return device, firmware, nil
}

// Characteristic describes a characteristic exposed by a firmware.
type Characteristic struct {
	Name         string   `yaml:"name" json:"name"`
	UUID         string   `yaml:"uuid" json:"uuid"`
	UUIDType     *int     `yaml:"uuid_type,omitempty" json:"uuid_type,omitempty"`
	DTMIName     string   `yaml:"dtmi_name,omitempty" json:"dtmi_name,omitempty"`
	FormatNotify []Format `yaml:"format_notify,omitempty" json:"format_notify,omitempty"`
	FormatWrite  []Format `yaml:"format_write,omitempty" json:"format_write,omitempty"`
}

// Format describes one field of a characteristic payload.
type Format struct {
	Name        string        `yaml:"name" json:"name"`
	Optional    bool          `yaml:"optional,omitempty" json:"optional,omitempty"`
	Length      *int          `yaml:"length,omitempty" json:"length,omitempty"`
	Unit        string        `yaml:"unit,omitempty" json:"unit,omitempty"`
	Type        string        `yaml:"type,omitempty" json:"type,omitempty"`
	Offset      *float32      `yaml:"offset,omitempty" json:"offset,omitempty"`
	ScaleFactor *float32      `yaml:"scalefactor,omitempty" json:"scalefactor,omitempty"`
	Min         *float32      `yaml:"min,omitempty" json:"min,omitempty"`
	Max         *float32      `yaml:"max,omitempty" json:"max,omitempty"`
	Values      []StringValue `yaml:"string_values,omitempty" json:"string_values,omitempty"`
}

// StringValue maps a raw value to a display name.
type StringValue struct {
	Value       int    `yaml:"value" json:"value"`
	DisplayName string `yaml:"display_name" json:"display_name"`
}

// CloudApp is a cloud dashboard that can consume the firmware data.
type CloudApp struct {
	DTMI          string `yaml:"dtmi,omitempty" json:"dtmi,omitempty"`
	Name          string `yaml:"name,omitempty" json:"name,omitempty"`
	ShareableLink string `yaml:"shareable_link,omitempty" json:"shareable_link,omitempty"`
	URL           string `yaml:"url,omitempty" json:"url,omitempty"`
	DTMIType      string `yaml:"dtmi_type,omitempty" json:"dtmi_type,omitempty"`
	Description   string `yaml:"description,omitempty" json:"description,omitempty"`
}

// OptionByte describes a firmware option byte.
type OptionByte struct {
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
	Name   string `yaml:"name,omitempty" json:"name,omitempty"`
	Type   string `yaml:"type,omitempty" json:"type,omitempty"`
}

// Fota describes the firmware upgrade capabilities.
type Fota struct {
	PartialFota          int    `yaml:"partial_fota,omitempty" json:"partial_fota,omitempty"`
	Type                 string `yaml:"type,omitempty" json:"type,omitempty"`
	MaxChunkLength       int    `yaml:"max_chunk_length,omitempty" json:"max_chunk_length,omitempty"`
	MaxDivisorConstraint int    `yaml:"max_divisor_constraint,omitempty" json:"max_divisor_constraint,omitempty"`
	URL                  string `yaml:"fw_url,omitempty" json:"fw_url,omitempty"`
	BootloaderType       string `yaml:"bootloader_type,omitempty" json:"bootloader_type,omitempty"`
}

// SensorAdapter is an external sensor board.
type SensorAdapter struct {
	ID          int    `yaml:"id" json:"id"`
	Name        string `yaml:"name,omitempty" json:"name,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Load reads and parses a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(data)
}

// Parse parses a YAML or JSON catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if err := c.buildIndex(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) buildIndex() error {
	c.index = make(map[firmwareKey]int)
	for i, fw := range c.FirmwaresV2 {
		dev, id, err := fw.IDs()
		if err != nil {
			return fmt.Errorf("%w: firmware %q: %w", ErrInvalidCatalog, fw.Name, err)
		}
		key := firmwareKey{device: dev, firmware: id}
		if _, dup := c.index[key]; dup {
			return fmt.Errorf("%w: duplicate firmware 0x%02X/0x%02X", ErrInvalidCatalog, dev, id)
		}
		c.index[key] = i
	}
	return nil
}

// Firmware returns the firmware matching the advertised ids.
func (c *Catalog) Firmware(deviceID, firmwareID uint8) (Firmware, bool) {
	i, ok := c.index[firmwareKey{device: deviceID, firmware: firmwareID}]
	if !ok {
		return Firmware{}, false
	}
	return c.FirmwaresV2[i], true
}

// FirmwaresForDevice returns every firmware known for a board.
func (c *Catalog) FirmwaresForDevice(deviceID uint8) []Firmware {
	var out []Firmware
	for _, fw := range c.FirmwaresV2 {
		dev, _, err := fw.IDs()
		if err == nil && dev == deviceID {
			out = append(out, fw)
		}
	}
	return out
}

// Characteristic returns the characteristic description for a UUID.
// Firmware-specific entries take precedence over the global list.
func (c *Catalog) Characteristic(fw *Firmware, uuid string) (Characteristic, bool) {
	if fw != nil {
		for _, ch := range fw.Characteristics {
			if strings.EqualFold(ch.UUID, uuid) {
				return ch, true
			}
		}
	}
	for _, ch := range c.Characteristics {
		if strings.EqualFold(ch.UUID, uuid) {
			return ch, true
		}
	}
	return Characteristic{}, false
}

func parseID(s string) (uint8, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return uint8(v), nil
}
