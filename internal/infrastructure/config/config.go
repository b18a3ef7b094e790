package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the host monitor.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Host       HostConfig       `yaml:"host"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	Connection ConnectionConfig `yaml:"connection"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Publish    PublishConfig    `yaml:"publish"`
	Discovery  DiscoveryConfig  `yaml:"discovery"`
	Logging    LoggingConfig    `yaml:"logging"`
	Status     StatusConfig     `yaml:"status"`
}

// HostConfig identifies the machine being monitored.
type HostConfig struct {
	// ID overrides the host identifier used in topics and discovery payloads.
	// If empty, os.Hostname() is used.
	ID string `yaml:"id"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker      MQTTBrokerConfig `yaml:"broker"`
	Auth        MQTTAuthConfig   `yaml:"auth"`
	QoS         int              `yaml:"qos"`
	TopicPrefix string           `yaml:"topic_prefix"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// ConnectionConfig controls the connect/backoff behaviour.
type ConnectionConfig struct {
	// BaseDelay is the initial wait between connection checks, in seconds.
	BaseDelay int `yaml:"base_delay"`

	// MaxAttempts is the number of waits allowed before giving up.
	MaxAttempts int `yaml:"max_connect_attempts"`

	// BackoffThreshold is the attempt count after which every wait doubles the delay.
	BackoffThreshold int `yaml:"connect_attempt_backoff_threshold"`
}

// MetricsConfig holds the per-metric enable flags.
type MetricsConfig struct {
	CPULoad       bool `yaml:"cpu_load"`
	CPUTemp       bool `yaml:"cpu_temp"`
	DiskUsage     bool `yaml:"disk_usage"`
	Voltage       bool `yaml:"voltage"`
	SysClockSpeed bool `yaml:"sys_clock_speed"`
	Swap          bool `yaml:"swap"`
	Memory        bool `yaml:"memory"`
	UptimeDays    bool `yaml:"uptime_days"`

	// DiskPath is the filesystem path measured for disk_usage. Default: "/"
	DiskPath string `yaml:"disk_path"`
}

// PublishConfig controls framing and pacing of the reporting loop.
type PublishConfig struct {
	GroupMessages bool `yaml:"group_messages"`

	// SleepTime is the pause after every individual publish, in seconds.
	SleepTime float64 `yaml:"sleep_time"`

	// RandomDelay is slept once after the first connection, in seconds.
	RandomDelay int `yaml:"random_delay"`

	// LoopTimeSeconds is the pause between reporting cycles.
	LoopTimeSeconds int `yaml:"loop_time_seconds"`

	// DryRun substitutes fixed values instead of probing the host.
	DryRun bool `yaml:"dry_run"`
}

// DiscoveryConfig controls Home Assistant discovery messages.
type DiscoveryConfig struct {
	Enabled         bool   `yaml:"enabled"`
	IntervalSeconds int    `yaml:"interval_seconds"`
	Prefix          string `yaml:"prefix"`
	Manufacturer    string `yaml:"manufacturer"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// StatusConfig contains settings for the optional local status server.
type StatusConfig struct {
	Enabled   bool            `yaml:"enabled"`
	Host      string          `yaml:"host"`
	Port      int             `yaml:"port"`
	WebSocket WebSocketConfig `yaml:"websocket"`
}

// WebSocketConfig contains WebSocket settings for the live sample feed.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: HOSTMON_SECTION_KEY
// For example: HOSTMON_MQTT_HOST, HOSTMON_TOPIC_PREFIX
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host: "localhost",
				Port: 1883,
			},
			QoS:         1,
			TopicPrefix: "rpi-MQTT-monitor",
		},
		Connection: ConnectionConfig{
			BaseDelay:        1,
			MaxAttempts:      6,
			BackoffThreshold: 3,
		},
		Metrics: MetricsConfig{
			CPULoad:       true,
			CPUTemp:       true,
			DiskUsage:     true,
			Voltage:       true,
			SysClockSpeed: true,
			Swap:          true,
			Memory:        true,
			UptimeDays:    true,
			DiskPath:      "/",
		},
		Publish: PublishConfig{
			SleepTime:       0.5,
			RandomDelay:     1,
			LoopTimeSeconds: 60,
		},
		Discovery: DiscoveryConfig{
			Enabled:         true,
			IntervalSeconds: 300,
			Prefix:          "homeassistant",
			Manufacturer:    "Raspberry Pi",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Status: StatusConfig{
			Host: "127.0.0.1",
			Port: 9115,
			WebSocket: WebSocketConfig{
				MaxMessageSize: 4096,
				PingInterval:   30,
				PongTimeout:    10,
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: HOSTMON_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HOSTMON_HOST_ID"); v != "" {
		cfg.Host.ID = v
	}

	// MQTT
	if v := os.Getenv("HOSTMON_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("HOSTMON_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("HOSTMON_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("HOSTMON_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
	if v := os.Getenv("HOSTMON_TOPIC_PREFIX"); v != "" {
		cfg.MQTT.TopicPrefix = v
	}

	if v := os.Getenv("HOSTMON_DRY_RUN"); v != "" {
		if dry, err := strconv.ParseBool(v); err == nil {
			cfg.Publish.DryRun = dry
		}
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.TopicPrefix == "" {
		errs = append(errs, "mqtt.topic_prefix is required")
	} else if strings.ContainsAny(c.MQTT.TopicPrefix, "+#") {
		errs = append(errs, "mqtt.topic_prefix must not contain wildcards")
	}

	if c.Connection.BaseDelay < 1 {
		errs = append(errs, "connection.base_delay must be at least 1")
	}
	if c.Connection.MaxAttempts < 1 {
		errs = append(errs, "connection.max_connect_attempts must be at least 1")
	}
	if c.Connection.BackoffThreshold < 0 {
		errs = append(errs, "connection.connect_attempt_backoff_threshold must not be negative")
	}

	if c.Metrics.DiskUsage && c.Metrics.DiskPath == "" {
		errs = append(errs, "metrics.disk_path is required when disk_usage is enabled")
	}

	if c.Publish.SleepTime < 0 {
		errs = append(errs, "publish.sleep_time must not be negative")
	}
	if c.Publish.RandomDelay < 0 {
		errs = append(errs, "publish.random_delay must not be negative")
	}
	if c.Publish.LoopTimeSeconds < 1 {
		errs = append(errs, "publish.loop_time_seconds must be at least 1")
	}

	if c.Discovery.Enabled {
		if c.Discovery.IntervalSeconds < 0 {
			errs = append(errs, "discovery.interval_seconds must not be negative")
		}
		if c.Discovery.Prefix == "" {
			errs = append(errs, "discovery.prefix is required when discovery is enabled")
		}
	}

	if c.Status.Enabled {
		if c.Status.Port < 1 || c.Status.Port > 65535 {
			errs = append(errs, "status.port must be between 1 and 65535")
		}
		ws := c.Status.WebSocket
		if ws.PingInterval < 1 {
			errs = append(errs, "status.websocket.ping_interval must be at least 1")
		}
		if ws.PongTimeout < 1 {
			errs = append(errs, "status.websocket.pong_timeout must be at least 1")
		}
		if ws.MaxMessageSize < 1 {
			errs = append(errs, "status.websocket.max_message_size must be at least 1")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// HostID returns the configured host identifier, falling back to the OS hostname.
func (c *Config) HostID() (string, error) {
	if c.Host.ID != "" {
		return c.Host.ID, nil
	}
	name, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("resolving hostname: %w", err)
	}
	return name, nil
}

// SleepTime returns the inter-publish pause as a Duration.
func (c *Config) SleepTime() time.Duration {
	return time.Duration(c.Publish.SleepTime * float64(time.Second))
}

// LoopTime returns the pause between reporting cycles as a Duration.
func (c *Config) LoopTime() time.Duration {
	return time.Duration(c.Publish.LoopTimeSeconds) * time.Second
}

// RandomDelay returns the startup stagger delay as a Duration.
func (c *Config) RandomDelay() time.Duration {
	return time.Duration(c.Publish.RandomDelay) * time.Second
}

// DiscoveryInterval returns the minimum time between discovery rounds.
func (c *Config) DiscoveryInterval() time.Duration {
	return time.Duration(c.Discovery.IntervalSeconds) * time.Second
}

// BaseDelay returns the initial connection backoff delay as a Duration.
func (c *Config) BaseDelay() time.Duration {
	return time.Duration(c.Connection.BaseDelay) * time.Second
}
