package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
name: bbo-tracker
log_level: debug
port: 8080
grpc_host: 127.0.0.1
grpc_port: 50051
serialization: json

feeds:
  - name: gemini
    type: websocket
    endpoint: wss://api.gemini.com/v1/marketdata
    symbols:
      - btcusd
    connection:
      reconnect_attempts: 3
      handshake_timeout: 10s
      buffer_size: 500

nats:
  servers:
    - nats://127.0.0.1:4222
  client_id: bbo-tracker
  subject_prefix: marketdata
  connect_timeout: 5s
  reconnect_wait: 2s
  flush_timeout: 5s
  max_reconnects: 10
`

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// -----------------------------------------------------------------------------

func TestNewConfig_Valid(t *testing.T) {
	cfg, err := NewConfig(writeConfigFile(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "bbo-tracker", cfg.Name)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 50051, cfg.GRPC_Port)
	assert.Equal(t, "json", cfg.Serialization)

	require.Len(t, cfg.Feeds, 1)
	feed := cfg.Feeds[0]
	assert.Equal(t, "gemini", feed.Name)
	assert.Equal(t, "websocket", feed.Type)
	assert.Equal(t, []string{"btcusd"}, feed.Symbols)
	assert.Equal(t, 3, feed.Connection.ReconnectAttempts)
	assert.Equal(t, 10*time.Second, feed.Connection.HandshakeTimeout.Duration())

	assert.Equal(t, []string{"nats://127.0.0.1:4222"}, cfg.NATS.Servers)
	assert.Equal(t, 2*time.Second, cfg.NATS.ReconnectWait.Duration())
}

// -----------------------------------------------------------------------------

func TestNewConfig_MissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestNewConfig_InvalidYAML(t *testing.T) {
	_, err := NewConfig(writeConfigFile(t, "name: [unclosed"))
	assert.Error(t, err)
}

func TestNewConfig_InvalidDuration(t *testing.T) {
	broken := strings.Replace(validYAML, "connect_timeout: 5s", "connect_timeout: soon", 1)
	_, err := NewConfig(writeConfigFile(t, broken))
	assert.Error(t, err)
}

// -----------------------------------------------------------------------------

func TestValidate_Failures(t *testing.T) {
	mutations := map[string]func(*Config){
		"empty name":            func(c *Config) { c.Name = "" },
		"privileged port":       func(c *Config) { c.Port = 80 },
		"grpc port too high":    func(c *Config) { c.GRPC_Port = 70000 },
		"bad serialization":     func(c *Config) { c.Serialization = "xml" },
		"no feeds":              func(c *Config) { c.Feeds = nil },
		"feed without name":     func(c *Config) { c.Feeds[0].Name = "" },
		"feed without endpoint": func(c *Config) { c.Feeds[0].Endpoint = "" },
		"feed without symbols":  func(c *Config) { c.Feeds[0].Symbols = nil },
		"no nats servers":       func(c *Config) { c.NATS.Servers = nil },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			cfg, err := NewConfig(writeConfigFile(t, validYAML))
			require.NoError(t, err)

			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

// -----------------------------------------------------------------------------

func TestGetFeedByName(t *testing.T) {
	cfg, err := NewConfig(writeConfigFile(t, validYAML))
	require.NoError(t, err)

	assert.NotNil(t, cfg.GetFeedByName("gemini"))
	assert.Nil(t, cfg.GetFeedByName("kraken"))
}

func TestGetFeedsByType(t *testing.T) {
	cfg, err := NewConfig(writeConfigFile(t, validYAML))
	require.NoError(t, err)

	assert.Len(t, cfg.GetFeedsByType("websocket"), 1)
	assert.Empty(t, cfg.GetFeedsByType("rest"))
}
