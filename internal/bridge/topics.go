package bridge

import "strings"

// Availability payloads published on device and bridge status topics.
const (
	AvailabilityOnline  = "online"
	AvailabilityOffline = "offline"
)

// capabilitySetSegments is the segment count of a capability-scoped set
// topic: prefix/device/component/capability/set.
const capabilitySetSegments = 5

// minCommandSegments is the minimum segment count for device-id
// extraction: prefix/device/suffix.
const minCommandSegments = 3

// Topics builds and parses every topic in the bridge's MQTT namespace.
// The zero value is not usable; construct with NewTopics.
type Topics struct {
	prefix          string
	discoveryPrefix string
}

// NewTopics creates a topic namespace rooted at prefix, with discovery
// documents published under discoveryPrefix.
func NewTopics(prefix, discoveryPrefix string) Topics {
	return Topics{
		prefix:          strings.Trim(prefix, "/"),
		discoveryPrefix: strings.Trim(discoveryPrefix, "/"),
	}
}

// State returns the retained full-state topic for a device.
func (t Topics) State(deviceID string) string {
	return t.prefix + "/" + deviceID + "/state"
}

// AttributeState returns the retained per-attribute topic.
func (t Topics) AttributeState(deviceID, component, capability, attribute string) string {
	return t.prefix + "/" + deviceID + "/" + component + "/" + capability + "/" + attribute + "/state"
}

// Availability returns the retained online/offline topic for a device.
func (t Topics) Availability(deviceID string) string {
	return t.prefix + "/" + deviceID + "/availability"
}

// Set returns the whole-device inbound command topic.
func (t Topics) Set(deviceID string) string {
	return t.prefix + "/" + deviceID + "/set"
}

// Command returns the alternate whole-device inbound command topic.
func (t Topics) Command(deviceID string) string {
	return t.prefix + "/" + deviceID + "/command"
}

// CapabilitySet returns the capability-scoped inbound command topic.
func (t Topics) CapabilitySet(deviceID, component, capability string) string {
	return t.prefix + "/" + deviceID + "/" + component + "/" + capability + "/set"
}

// BridgeStatus returns the bridge-level status topic, used for the
// connection last-will and explicit startup/shutdown publishes.
func (t Topics) BridgeStatus() string {
	return t.prefix + "/bridge/status"
}

// Discovery returns the auto-discovery config topic for an entity.
func (t Topics) Discovery(entityDomain, objectID string) string {
	return t.discoveryPrefix + "/" + entityDomain + "/" + objectID + "/config"
}

// SubscriptionFilters returns the three inbound command subscriptions.
func (t Topics) SubscriptionFilters() []string {
	return []string{
		t.prefix + "/+/set",
		t.prefix + "/+/command",
		t.prefix + "/+/+/+/set",
	}
}

// DeviceID extracts the device id from an inbound topic. It requires at
// least three segments with the first matching the prefix.
func (t Topics) DeviceID(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) < minCommandSegments {
		return "", false
	}
	if parts[0] != t.prefix {
		return "", false
	}
	return parts[1], true
}

// ParseCapabilitySet matches a capability-scoped set topic and returns its
// device id, component and capability.
func (t Topics) ParseCapabilitySet(topic string) (deviceID, component, capability string, ok bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != capabilitySetSegments {
		return "", "", "", false
	}
	if parts[0] != t.prefix || parts[4] != "set" {
		return "", "", "", false
	}
	return parts[1], parts[2], parts[3], true
}
