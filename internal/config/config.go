// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/zlc_ai/channelio-bridge/internal/protocol"
)

// Platform names accepted by bridge.platform.
const (
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
)

// Config is the root configuration structure.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Bridge        BridgeConfig        `yaml:"bridge"`
	Sandbox       SandboxConfig       `yaml:"sandbox"`
	Push          PushConfig          `yaml:"push"`
	Events        EventsConfig        `yaml:"events"`
	Webhook       WebhookConfig       `yaml:"webhook"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	HTTPPort        int           `yaml:"http_port" env:"BRIDGE_SERVER_HTTP_PORT"`
	WebSocketPath   string        `yaml:"websocket_path" env:"BRIDGE_SERVER_WEBSOCKET_PATH"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"BRIDGE_SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"BRIDGE_SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"BRIDGE_SERVER_SHUTDOWN_TIMEOUT"`
}

// BridgeConfig selects the native binding and names the method channel.
type BridgeConfig struct {
	Platform    string `yaml:"platform" env:"BRIDGE_PLATFORM"`
	ChannelName string `yaml:"channel_name" env:"BRIDGE_CHANNEL_NAME"`
	// DebugMode turns on SDK debug logging right after startup.
	DebugMode bool `yaml:"debug_mode" env:"BRIDGE_DEBUG_MODE"`
}

// SandboxConfig tunes the simulated SDK.
type SandboxConfig struct {
	BootDelay    time.Duration `yaml:"boot_delay" env:"BRIDGE_SANDBOX_BOOT_DELAY"`
	Unread       int           `yaml:"unread" env:"BRIDGE_SANDBOX_UNREAD"`
	Alert        int           `yaml:"alert" env:"BRIDGE_SANDBOX_ALERT"`
	RejectedKeys []string      `yaml:"rejected_keys" env:"BRIDGE_SANDBOX_REJECTED_KEYS"`
}

// PushConfig holds the push ingestion endpoints.
type PushConfig struct {
	Enabled   bool   `yaml:"enabled" env:"BRIDGE_PUSH_ENABLED"`
	Path      string `yaml:"path" env:"BRIDGE_PUSH_PATH"`
	TokenPath string `yaml:"token_path" env:"BRIDGE_PUSH_TOKEN_PATH"`
}

// EventsConfig sizes the event log served to polling clients.
type EventsConfig struct {
	LogSize int `yaml:"log_size" env:"BRIDGE_EVENTS_LOG_SIZE"`
}

// WebhookConfig forwards bridge events to an external endpoint. It is off
// when URL is empty.
type WebhookConfig struct {
	URL        string        `yaml:"url" env:"BRIDGE_WEBHOOK_URL"`
	AuthHeader string        `yaml:"auth_header" env:"BRIDGE_WEBHOOK_AUTH_HEADER"`
	Timeout    time.Duration `yaml:"timeout" env:"BRIDGE_WEBHOOK_TIMEOUT"`
	RetryCount int           `yaml:"retry_count" env:"BRIDGE_WEBHOOK_RETRY_COUNT"`
	QueueSize  int           `yaml:"queue_size" env:"BRIDGE_WEBHOOK_QUEUE_SIZE"`
}

// ObservabilityConfig holds observability configuration.
type ObservabilityConfig struct {
	LogLevel string `yaml:"log_level" env:"BRIDGE_LOG_LEVEL"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			WebSocketPath:   "/ws",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Bridge: BridgeConfig{
			Platform:    PlatformAndroid,
			ChannelName: protocol.DefaultChannelName,
		},
		Sandbox: SandboxConfig{
			BootDelay: 200 * time.Millisecond,
		},
		Push: PushConfig{
			Enabled:   true,
			Path:      "/api/v1/push",
			TokenPath: "/api/v1/push/token",
		},
		Events: EventsConfig{
			LogSize: 1000,
		},
		Webhook: WebhookConfig{
			Timeout:    10 * time.Second,
			RetryCount: 3,
			QueueSize:  100,
		},
		Observability: ObservabilityConfig{
			LogLevel: "info",
		},
	}
}

// Load loads configuration from a YAML file and applies BRIDGE_* environment
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}

	if !strings.HasPrefix(c.Server.WebSocketPath, "/") {
		return fmt.Errorf("websocket path must start with /: %q", c.Server.WebSocketPath)
	}

	switch c.Bridge.Platform {
	case PlatformAndroid, PlatformIOS:
	default:
		return fmt.Errorf("unknown platform %q (want %s or %s)", c.Bridge.Platform, PlatformAndroid, PlatformIOS)
	}

	if c.Push.Enabled && (c.Push.Path == "" || c.Push.TokenPath == "") {
		return fmt.Errorf("push paths are required when push is enabled")
	}

	if c.Events.LogSize <= 0 {
		return fmt.Errorf("events log size must be positive")
	}

	if c.Webhook.URL != "" && !strings.HasPrefix(c.Webhook.URL, "http") {
		return fmt.Errorf("webhook URL must be http or https: %q", c.Webhook.URL)
	}

	if c.Sandbox.BootDelay < 0 {
		return fmt.Errorf("sandbox boot delay must not be negative")
	}

	return nil
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.HTTPPort)
}
