package models

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// MDuration wraps time.Duration so YAML values like "5s" or "72h" parse
// directly into config structs.
type MDuration time.Duration

// -----------------------------------------------------------------------------

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *MDuration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("duration must be a string like \"5s\": %w", err)
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}

	*d = MDuration(parsed)
	return nil
}

// -----------------------------------------------------------------------------

// Duration returns the wrapped value as a time.Duration.
func (d MDuration) Duration() time.Duration {
	return time.Duration(d)
}

// -----------------------------------------------------------------------------

// MConfig is the top-level application configuration, loaded from YAML.
type MConfig struct {
	Name          string `yaml:"name"`
	LogLevel      string `yaml:"log_level"`
	Port          int    `yaml:"port"`
	GRPC_Host     string `yaml:"grpc_host"`
	GRPC_Port     int    `yaml:"grpc_port"`
	Serialization string `yaml:"serialization"`

	Feeds []*MFeedConfig `yaml:"feeds"`
	NATS  MNATSConfig    `yaml:"nats"`
}

// -----------------------------------------------------------------------------

// MFeedConfig describes one market-data feed: which venue implementation to
// use (by Name), the transport Type, the stream endpoint and the symbols.
type MFeedConfig struct {
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"` // transport type, e.g. "websocket"
	Endpoint string   `yaml:"endpoint"`
	Symbols  []string `yaml:"symbols"`
	APIKey   string   `yaml:"api_key"`

	Connection MConnectionConfig `yaml:"connection"`
}

// -----------------------------------------------------------------------------

// MConnectionConfig holds transport-level tuning for a feed connection.
type MConnectionConfig struct {
	ReconnectAttempts int       `yaml:"reconnect_attempts"`
	HandshakeTimeout  MDuration `yaml:"handshake_timeout"`
	BufferSize        int       `yaml:"buffer_size"`
}

// -----------------------------------------------------------------------------

// MNATSConfig holds the NATS publisher configuration.
type MNATSConfig struct {
	Servers        []string  `yaml:"servers"`
	ClientID       string    `yaml:"client_id"`
	SubjectPrefix  string    `yaml:"subject_prefix"`
	ConnectTimeout MDuration `yaml:"connect_timeout"`
	ReconnectWait  MDuration `yaml:"reconnect_wait"`
	FlushTimeout   MDuration `yaml:"flush_timeout"`
	MaxReconnects  int       `yaml:"max_reconnects"`

	JetStream *MJetStreamConfig `yaml:"jetstream"`
}

// -----------------------------------------------------------------------------

// MJetStreamConfig enables persistent publishing through NATS JetStream.
type MJetStreamConfig struct {
	Enabled    bool      `yaml:"enabled"`
	StreamName string    `yaml:"stream_name"`
	Subjects   []string  `yaml:"subjects"`
	Replicas   int       `yaml:"replicas"`
	MaxAge     MDuration `yaml:"max_age"`
	MaxMsgs    int64     `yaml:"max_msgs"`
	MaxBytes   int64     `yaml:"max_bytes"`
	MaxMsgSize int32     `yaml:"max_msg_size"`
}
