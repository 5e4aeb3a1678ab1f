package bridge

import (
	"reflect"
	"testing"
)

func TestTopicBuilders(t *testing.T) {
	topics := NewTopics("smartthings", "homeassistant")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"state", topics.State("dev1"), "smartthings/dev1/state"},
		{"attribute state", topics.AttributeState("dev1", "main", "switch", "switch"),
			"smartthings/dev1/main/switch/switch/state"},
		{"availability", topics.Availability("dev1"), "smartthings/dev1/availability"},
		{"set", topics.Set("dev1"), "smartthings/dev1/set"},
		{"command", topics.Command("dev1"), "smartthings/dev1/command"},
		{"capability set", topics.CapabilitySet("dev1", "main", "switchLevel"),
			"smartthings/dev1/main/switchLevel/set"},
		{"bridge status", topics.BridgeStatus(), "smartthings/bridge/status"},
		{"discovery", topics.Discovery("switch", "smartthings_dev1_main_switch_switch"),
			"homeassistant/switch/smartthings_dev1_main_switch_switch/config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestTopicsTrimmedPrefix(t *testing.T) {
	topics := NewTopics("/smartthings/", "homeassistant")
	if got := topics.State("dev1"); got != "smartthings/dev1/state" {
		t.Errorf("State() = %q, want trimmed prefix", got)
	}
}

func TestSubscriptionFilters(t *testing.T) {
	topics := NewTopics("smartthings", "homeassistant")
	want := []string{
		"smartthings/+/set",
		"smartthings/+/command",
		"smartthings/+/+/+/set",
	}
	if got := topics.SubscriptionFilters(); !reflect.DeepEqual(got, want) {
		t.Errorf("SubscriptionFilters() = %v, want %v", got, want)
	}
}

func TestDeviceID(t *testing.T) {
	topics := NewTopics("smartthings", "homeassistant")

	tests := []struct {
		name   string
		topic  string
		wantID string
		wantOK bool
	}{
		{"set topic", "smartthings/dev1/set", "dev1", true},
		{"command topic", "smartthings/dev1/command", "dev1", true},
		{"deep topic", "smartthings/dev1/main/switch/set", "dev1", true},
		{"too short", "smartthings/dev1", "", false},
		{"wrong prefix", "other/dev1/set", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := topics.DeviceID(tt.topic)
			if id != tt.wantID || ok != tt.wantOK {
				t.Errorf("DeviceID(%q) = (%q, %v), want (%q, %v)",
					tt.topic, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestParseCapabilitySet(t *testing.T) {
	topics := NewTopics("smartthings", "homeassistant")

	tests := []struct {
		name       string
		topic      string
		deviceID   string
		component  string
		capability string
		ok         bool
	}{
		{"match", "smartthings/dev1/main/switchLevel/set", "dev1", "main", "switchLevel", true},
		{"device-level set", "smartthings/dev1/set", "", "", "", false},
		{"wrong suffix", "smartthings/dev1/main/switch/state", "", "", "", false},
		{"wrong prefix", "other/dev1/main/switch/set", "", "", "", false},
		{"six segments", "smartthings/dev1/main/switch/extra/set", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deviceID, component, capability, ok := topics.ParseCapabilitySet(tt.topic)
			if deviceID != tt.deviceID || component != tt.component ||
				capability != tt.capability || ok != tt.ok {
				t.Errorf("ParseCapabilitySet(%q) = (%q, %q, %q, %v), want (%q, %q, %q, %v)",
					tt.topic, deviceID, component, capability, ok,
					tt.deviceID, tt.component, tt.capability, tt.ok)
			}
		})
	}
}
