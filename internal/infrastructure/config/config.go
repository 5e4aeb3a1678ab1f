package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Minimum poll interval. Polling faster than this hammers the SmartThings
// API and risks rate limiting; shorter configured values are raised to it.
const minPollIntervalSeconds = 5

// Config is the root configuration structure for the bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	SmartThings SmartThingsConfig `yaml:"smartthings"`
	MQTT        MQTTConfig        `yaml:"mqtt"`
	Bridge      BridgeConfig      `yaml:"bridge"`
	Database    DatabaseConfig    `yaml:"database"`
	InfluxDB    InfluxDBConfig    `yaml:"influxdb"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// SmartThingsConfig contains SmartThings API access settings.
type SmartThingsConfig struct {
	// Token is the personal access token used as the bearer credential.
	// Required; the bridge refuses to start without it.
	Token string `yaml:"token"`

	// APIBase is the SmartThings REST API base URL.
	APIBase string `yaml:"api_base"`

	// TimeoutSeconds is the fixed per-call HTTP timeout.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
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

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// BridgeConfig contains the bridge engine settings.
type BridgeConfig struct {
	// TopicPrefix is the root of the bridge's MQTT topic namespace.
	// Leading/trailing slashes are stripped on load.
	TopicPrefix string `yaml:"topic_prefix"`

	// PollIntervalSeconds is the device poll cycle interval.
	// Values below 5 are raised to 5.
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`

	// Discovery controls Home Assistant auto-discovery publishing.
	Discovery DiscoveryConfig `yaml:"discovery"`
}

// DiscoveryConfig contains Home Assistant discovery settings.
type DiscoveryConfig struct {
	Enabled bool `yaml:"enabled"`

	// Prefix is the discovery topic root watched by Home Assistant.
	Prefix string `yaml:"prefix"`
}

// DatabaseConfig contains SQLite settings for the command audit log.
type DatabaseConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings for attribute telemetry.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: STBRIDGE_SECTION_KEY
// For example: STBRIDGE_SMARTTHINGS_TOKEN, STBRIDGE_MQTT_HOST
//
// Pass an empty path to skip the file and configure entirely from
// defaults and environment variables.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	cfg.normalise()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		SmartThings: SmartThingsConfig{
			APIBase:        "https://api.smartthings.com/v1",
			TimeoutSeconds: 20,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "stbridge",
			},
			QoS: 0,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Bridge: BridgeConfig{
			TopicPrefix:         "smartthings",
			PollIntervalSeconds: 30,
			Discovery: DiscoveryConfig{
				Enabled: true,
				Prefix:  "homeassistant",
			},
		},
		Database: DatabaseConfig{
			Enabled:     false,
			Path:        "./data/stbridge.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: STBRIDGE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// SmartThings
	if v := os.Getenv("STBRIDGE_SMARTTHINGS_TOKEN"); v != "" {
		cfg.SmartThings.Token = v
	}
	if v := os.Getenv("STBRIDGE_SMARTTHINGS_API_BASE"); v != "" {
		cfg.SmartThings.APIBase = v
	}

	// MQTT
	if v := os.Getenv("STBRIDGE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("STBRIDGE_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("STBRIDGE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("STBRIDGE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Bridge
	if v := os.Getenv("STBRIDGE_TOPIC_PREFIX"); v != "" {
		cfg.Bridge.TopicPrefix = v
	}
	if v := os.Getenv("STBRIDGE_POLL_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Bridge.PollIntervalSeconds = n
		}
	}

	// InfluxDB
	if v := os.Getenv("STBRIDGE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// normalise cleans up values that are tolerated on input but canonicalised
// internally: topic prefix slashes, API base trailing slash, poll floor.
func (c *Config) normalise() {
	c.SmartThings.APIBase = strings.TrimRight(c.SmartThings.APIBase, "/")
	c.Bridge.TopicPrefix = strings.Trim(c.Bridge.TopicPrefix, "/")
	if c.Bridge.PollIntervalSeconds < minPollIntervalSeconds {
		c.Bridge.PollIntervalSeconds = minPollIntervalSeconds
	}
	if c.SmartThings.TimeoutSeconds <= 0 {
		c.SmartThings.TimeoutSeconds = 20
	}
}

// Validate checks the configuration for errors.
//
// The SmartThings token check is the startup credential gate: the bridge
// must abort before any network activity when no credential is configured.
func (c *Config) Validate() error {
	var errs []string

	if c.SmartThings.Token == "" {
		errs = append(errs, "smartthings.token is required (set STBRIDGE_SMARTTHINGS_TOKEN environment variable)")
	}
	if c.SmartThings.APIBase == "" {
		errs = append(errs, "smartthings.api_base is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.Broker.ClientID == "" {
		errs = append(errs, "mqtt.broker.client_id is required")
	}

	if c.Bridge.TopicPrefix == "" {
		errs = append(errs, "bridge.topic_prefix is required")
	}
	if c.Bridge.Discovery.Enabled && c.Bridge.Discovery.Prefix == "" {
		errs = append(errs, "bridge.discovery.prefix is required when discovery is enabled")
	}

	if c.Database.Enabled && c.Database.Path == "" {
		errs = append(errs, "database.path is required when the audit log is enabled")
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Token == "" {
			errs = append(errs, "influxdb.token is required when influxdb is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// PollInterval returns the poll cycle interval as a Duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Bridge.PollIntervalSeconds) * time.Second
}

// APITimeout returns the SmartThings per-call timeout as a Duration.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.SmartThings.TimeoutSeconds) * time.Second
}
