// Package config loads the settings of the bluest commands.
//
// Settings come from three places, later ones winning: Default, an optional
// YAML file, and BLUEST_* environment variables. Command-line flags are
// applied by the commands on top of the result.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bluest-sdk/bluest-go/pkg/features"
	"github.com/bluest-sdk/bluest-go/pkg/session"
	"github.com/bluest-sdk/bluest-go/pkg/sink"
)

// ErrInvalid indicates a configuration that fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete configuration.
type Config struct {
	Session   SessionConfig   `yaml:"session"`
	Log       LogConfig       `yaml:"log"`
	NATS      NATSConfig      `yaml:"nats"`
	Redis     RedisConfig     `yaml:"redis"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Catalog   CatalogConfig   `yaml:"catalog"`
}

// SessionConfig describes the connected board.
type SessionConfig struct {
	DeviceID        string `yaml:"device_id"`
	Board           string `yaml:"board"`            // default, sensor_tile_box, remote_node
	ProtocolVersion uint8  `yaml:"protocol_version"` // 1 enables only advertised features
	AdvertiseMask   uint32 `yaml:"advertise_mask"`
	MaxPayloadSize  int    `yaml:"max_payload_size"`
	MaskOrder       string `yaml:"mask_order"` // msb or lsb
}

// LogConfig configures operational and protocol logging.
type LogConfig struct {
	Level       string `yaml:"level"`        // debug, info, warn, error
	Format      string `yaml:"format"`       // text or json
	ProtocolLog string `yaml:"protocol_log"` // .blog path, empty disables
}

// NATSConfig configures the NATS sink.
type NATSConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
	ClientName    string `yaml:"client_name"`
}

// RedisConfig configures the Redis shadow sink.
type RedisConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	KeyPrefix string        `yaml:"key_prefix"`
	TTL       time.Duration `yaml:"ttl"`
}

// WebSocketConfig configures the live WebSocket stream.
type WebSocketConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
	Path    string `yaml:"path"`
}

// CatalogConfig locates the firmware catalog.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			Board:           features.BoardDefault.String(),
			ProtocolVersion: session.DefaultProtocolVersion,
			MaskOrder:       "msb",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		NATS: NATSConfig{
			URL:           "nats://localhost:4222",
			SubjectPrefix: sink.DefaultSubjectPrefix,
			ClientName:    "bluest-decode",
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			KeyPrefix: sink.DefaultShadowPrefix,
			TTL:       24 * time.Hour,
		},
		WebSocket: WebSocketConfig{
			Listen: ":8090",
			Path:   "/ws",
		},
	}
}

// Load reads the YAML file at path over Default and applies environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse yaml %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML over Default without environment overrides.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse yaml: %w", err)
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides settings from BLUEST_* environment variables.
func (c *Config) ApplyEnv() error {
	c.Session.DeviceID = getEnv("BLUEST_DEVICE_ID", c.Session.DeviceID)
	c.Session.Board = getEnv("BLUEST_BOARD", c.Session.Board)
	c.Session.MaskOrder = getEnv("BLUEST_MASK_ORDER", c.Session.MaskOrder)
	c.Session.MaxPayloadSize = getEnvAsInt("BLUEST_MAX_PAYLOAD_SIZE", c.Session.MaxPayloadSize)
	if v := os.Getenv("BLUEST_PROTOCOL_VERSION"); v != "" {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return fmt.Errorf("%w: BLUEST_PROTOCOL_VERSION %q", ErrInvalid, v)
		}
		c.Session.ProtocolVersion = uint8(n)
	}
	if v := os.Getenv("BLUEST_ADVERTISE_MASK"); v != "" {
		n, err := ParseMask(v)
		if err != nil {
			return fmt.Errorf("%w: BLUEST_ADVERTISE_MASK %q", ErrInvalid, v)
		}
		c.Session.AdvertiseMask = n
	}

	c.Log.Level = getEnv("BLUEST_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("BLUEST_LOG_FORMAT", c.Log.Format)
	c.Log.ProtocolLog = getEnv("BLUEST_PROTOCOL_LOG", c.Log.ProtocolLog)

	c.NATS.Enabled = getEnvAsBool("BLUEST_NATS_ENABLED", c.NATS.Enabled)
	c.NATS.URL = getEnv("BLUEST_NATS_URL", c.NATS.URL)
	c.NATS.SubjectPrefix = getEnv("BLUEST_NATS_SUBJECT_PREFIX", c.NATS.SubjectPrefix)

	c.Redis.Enabled = getEnvAsBool("BLUEST_REDIS_ENABLED", c.Redis.Enabled)
	c.Redis.Addr = getEnv("BLUEST_REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("BLUEST_REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvAsInt("BLUEST_REDIS_DB", c.Redis.DB)
	c.Redis.TTL = getEnvAsDuration("BLUEST_REDIS_TTL", c.Redis.TTL)

	c.WebSocket.Enabled = getEnvAsBool("BLUEST_WS_ENABLED", c.WebSocket.Enabled)
	c.WebSocket.Listen = getEnv("BLUEST_WS_LISTEN", c.WebSocket.Listen)

	c.Catalog.Path = getEnv("BLUEST_CATALOG_PATH", c.Catalog.Path)
	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if _, err := features.ParseBoard(c.Session.Board); err != nil {
		return fmt.Errorf("%w: session.board %q", ErrInvalid, c.Session.Board)
	}
	if _, err := session.ParseMaskOrder(c.Session.MaskOrder); err != nil {
		return fmt.Errorf("%w: session.mask_order %q", ErrInvalid, c.Session.MaskOrder)
	}
	if c.Session.MaxPayloadSize < 0 {
		return fmt.Errorf("%w: session.max_payload_size %d", ErrInvalid, c.Session.MaxPayloadSize)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		return fmt.Errorf("%w: nats.url is required", ErrInvalid)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("%w: redis.addr is required", ErrInvalid)
	}
	if c.Redis.TTL < 0 {
		return fmt.Errorf("%w: redis.ttl %s", ErrInvalid, c.Redis.TTL)
	}
	if c.WebSocket.Enabled {
		if c.WebSocket.Listen == "" {
			return fmt.Errorf("%w: websocket.listen is required", ErrInvalid)
		}
		if !strings.HasPrefix(c.WebSocket.Path, "/") {
			return fmt.Errorf("%w: websocket.path %q must start with /", ErrInvalid, c.WebSocket.Path)
		}
	}
	return nil
}

// SessionSettings returns the session settings.
func (c *Config) SessionSettings() (session.Config, error) {
	board, err := features.ParseBoard(c.Session.Board)
	if err != nil {
		return session.Config{}, fmt.Errorf("%w: session.board %q", ErrInvalid, c.Session.Board)
	}
	order, err := session.ParseMaskOrder(c.Session.MaskOrder)
	if err != nil {
		return session.Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return session.Config{
		DeviceID:        c.Session.DeviceID,
		Board:           board,
		ProtocolVersion: c.Session.ProtocolVersion,
		AdvertiseMask:   c.Session.AdvertiseMask,
		MaxPayloadSize:  c.Session.MaxPayloadSize,
		MaskOrder:       order,
	}, nil
}

// NewLogger builds the operational logger described by the log section.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel converts a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", ErrInvalid, s)
	}
	return level, nil
}

// ParseMask parses a feature mask in decimal or 0x-prefixed hex.
func ParseMask(s string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
