package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluest-sdk/bluest-go/pkg/config"
	"github.com/bluest-sdk/bluest-go/pkg/features"
)

const sampleYAML = `
session:
  device_id: "C0:FF:EE:00:00:01"
  board: sensor_tile_box
  protocol_version: 1
  advertise_mask: 0x001C0000
  max_payload_size: 244
  mask_order: lsb
log:
  level: debug
  format: json
  protocol_log: /tmp/session.blog
nats:
  enabled: true
  url: nats://broker:4222
redis:
  enabled: true
  addr: cache:6379
  ttl: 1h
websocket:
  enabled: true
  listen: ":9000"
  path: /live
catalog:
  path: catalog.json
`

func TestDefault(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "DEFAULT", cfg.Session.Board)
	assert.Equal(t, uint8(2), cfg.Session.ProtocolVersion)
	assert.False(t, cfg.NATS.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
}

func TestParse(t *testing.T) {
	cfg, err := config.Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "C0:FF:EE:00:00:01", cfg.Session.DeviceID)
	assert.Equal(t, uint32(0x001C0000), cfg.Session.AdvertiseMask)
	assert.Equal(t, uint8(1), cfg.Session.ProtocolVersion)
	assert.Equal(t, "nats://broker:4222", cfg.NATS.URL)
	assert.Equal(t, "bluest.update", cfg.NATS.SubjectPrefix, "unset keys keep defaults")
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	assert.Equal(t, "/live", cfg.WebSocket.Path)
	assert.Equal(t, "catalog.json", cfg.Catalog.Path)

	sc, err := cfg.SessionSettings()
	require.NoError(t, err)
	assert.Equal(t, features.BoardSensorTileBox, sc.Board)
	assert.Equal(t, 244, sc.MaxPayloadSize)
	assert.Equal(t, []uint32{1, 2}, sc.MaskOrder(3))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"Board", func(c *config.Config) { c.Session.Board = "toaster" }},
		{"MaskOrder", func(c *config.Config) { c.Session.MaskOrder = "random" }},
		{"PayloadSize", func(c *config.Config) { c.Session.MaxPayloadSize = -1 }},
		{"Level", func(c *config.Config) { c.Log.Level = "loud" }},
		{"Format", func(c *config.Config) { c.Log.Format = "xml" }},
		{"NATSURL", func(c *config.Config) { c.NATS.Enabled, c.NATS.URL = true, "" }},
		{"RedisAddr", func(c *config.Config) { c.Redis.Enabled, c.Redis.Addr = true, "" }},
		{"RedisTTL", func(c *config.Config) { c.Redis.TTL = -time.Second }},
		{"WebSocketPath", func(c *config.Config) { c.WebSocket.Enabled, c.WebSocket.Path = true, "ws" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), config.ErrInvalid)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bluest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	t.Setenv("BLUEST_BOARD", "remote_node")
	t.Setenv("BLUEST_ADVERTISE_MASK", "0x20000000")
	t.Setenv("BLUEST_REDIS_TTL", "90s")
	t.Setenv("BLUEST_NATS_ENABLED", "false")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "remote_node", cfg.Session.Board)
	assert.Equal(t, uint32(0x20000000), cfg.Session.AdvertiseMask)
	assert.Equal(t, 90*time.Second, cfg.Redis.TTL)
	assert.False(t, cfg.NATS.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadErrors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("session: [1, 2"), 0o600))
	_, err = config.Load(bad)
	assert.Error(t, err)

	t.Setenv("BLUEST_ADVERTISE_MASK", "lots")
	_, err = config.Load("")
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"

	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "feature", "Battery")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"feature":"Battery"`)
}

func TestParseMask(t *testing.T) {
	for in, want := range map[string]uint32{"0x001C0000": 0x001C0000, "16": 16, " 0xff ": 0xFF} {
		got, err := config.ParseMask(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := config.ParseMask("0x1FFFFFFFF")
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("BLUEST_BOARD", "REMOTE_NODE")
	t.Setenv("BLUEST_PROTOCOL_VERSION", "1")
	t.Setenv("BLUEST_ADVERTISE_MASK", "0x00E00000")
	t.Setenv("BLUEST_NATS_ENABLED", "true")
	t.Setenv("BLUEST_REDIS_TTL", "90s")
	t.Setenv("BLUEST_REDIS_DB", "not-a-number")

	cfg := config.Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "REMOTE_NODE", cfg.Session.Board)
	assert.Equal(t, uint8(1), cfg.Session.ProtocolVersion)
	assert.Equal(t, uint32(0x00E00000), cfg.Session.AdvertiseMask)
	assert.True(t, cfg.NATS.Enabled)
	assert.Equal(t, 90*time.Second, cfg.Redis.TTL)
	assert.Equal(t, config.Default().Redis.DB, cfg.Redis.DB)
}

func TestApplyEnvInvalid(t *testing.T) {
	for name, env := range map[string]string{
		"BLUEST_PROTOCOL_VERSION": "two",
		"BLUEST_ADVERTISE_MASK":   "0xZZ",
	} {
		t.Run(name, func(t *testing.T) {
			t.Setenv(name, env)
			cfg := config.Default()
			assert.ErrorIs(t, cfg.ApplyEnv(), config.ErrInvalid)
		})
	}
}
