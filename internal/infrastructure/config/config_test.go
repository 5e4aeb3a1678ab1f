package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
smartthings:
  token: "test-token"
mqtt:
  broker:
    host: "broker.local"
    port: 1883
    client_id: "test-client"
  qos: 1
bridge:
  topic_prefix: "smartthings"
  poll_interval_seconds: 30
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.SmartThings.Token != "test-token" {
		t.Errorf("SmartThings.Token = %q, want %q", cfg.SmartThings.Token, "test-token")
	}
	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.local")
	}
	if cfg.SmartThings.APIBase != "https://api.smartthings.com/v1" {
		t.Errorf("SmartThings.APIBase = %q, want default", cfg.SmartThings.APIBase)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_MissingToken(t *testing.T) {
	content := `
mqtt:
  broker:
    host: "localhost"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected error for missing token, got nil")
	}
	if !strings.Contains(err.Error(), "smartthings.token") {
		t.Errorf("error = %v, want mention of smartthings.token", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STBRIDGE_SMARTTHINGS_TOKEN", "env-token")
	t.Setenv("STBRIDGE_MQTT_HOST", "env-broker")
	t.Setenv("STBRIDGE_TOPIC_PREFIX", "st")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.SmartThings.Token != "env-token" {
		t.Errorf("SmartThings.Token = %q, want %q", cfg.SmartThings.Token, "env-token")
	}
	if cfg.MQTT.Broker.Host != "env-broker" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "env-broker")
	}
	if cfg.Bridge.TopicPrefix != "st" {
		t.Errorf("Bridge.TopicPrefix = %q, want %q", cfg.Bridge.TopicPrefix, "st")
	}
}

func TestNormalise(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(*Config)
		check        func(*testing.T, *Config)
	}{
		{
			name:   "poll floor enforced",
			mutate: func(c *Config) { c.Bridge.PollIntervalSeconds = 1 },
			check: func(t *testing.T, c *Config) {
				if c.Bridge.PollIntervalSeconds != 5 {
					t.Errorf("PollIntervalSeconds = %d, want 5", c.Bridge.PollIntervalSeconds)
				}
			},
		},
		{
			name:   "prefix slashes trimmed",
			mutate: func(c *Config) { c.Bridge.TopicPrefix = "/smartthings/" },
			check: func(t *testing.T, c *Config) {
				if c.Bridge.TopicPrefix != "smartthings" {
					t.Errorf("TopicPrefix = %q, want %q", c.Bridge.TopicPrefix, "smartthings")
				}
			},
		},
		{
			name:   "api base trailing slash trimmed",
			mutate: func(c *Config) { c.SmartThings.APIBase = "https://api.example.com/v1/" },
			check: func(t *testing.T, c *Config) {
				if c.SmartThings.APIBase != "https://api.example.com/v1" {
					t.Errorf("APIBase = %q, want no trailing slash", c.SmartThings.APIBase)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			cfg.normalise()
			tt.check(t, cfg)
		})
	}
}

func TestValidate_QoSRange(t *testing.T) {
	cfg := defaultConfig()
	cfg.SmartThings.Token = "tok"
	cfg.MQTT.QoS = 3

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for qos=3, got nil")
	}
}

func TestValidate_InfluxRequiresURL(t *testing.T) {
	cfg := defaultConfig()
	cfg.SmartThings.Token = "tok"
	cfg.InfluxDB.Enabled = true
	cfg.InfluxDB.Token = "itok"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for enabled influx without url, got nil")
	}
	if !strings.Contains(err.Error(), "influxdb.url") {
		t.Errorf("error = %v, want mention of influxdb.url", err)
	}
}
