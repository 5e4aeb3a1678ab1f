package bridge

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/smartthings-community/smartthings-mqtt-bridge/internal/smartthings"
)

// Fallback values for discovery device metadata.
const (
	defaultManufacturer = "Samsung"
	defaultModel        = "SmartThings Device"
)

// binaryAttributeClasses maps binary-style string attributes to their
// on/off text pair and semantic device class.
var binaryAttributeClasses = map[string]struct {
	payloadOn   string
	payloadOff  string
	deviceClass string
}{
	"contact":   {"open", "closed", "door"},
	"motion":    {"active", "inactive", "motion"},
	"water":     {"wet", "dry", "moisture"},
	"presence":  {"present", "not present", "presence"},
	"occupancy": {"occupied", "unoccupied", "occupancy"},
	"smoke":     {"detected", "clear", "smoke"},
}

// sensorDeviceClasses maps measurement capabilities to Home Assistant
// device classes.
var sensorDeviceClasses = map[string]string{
	"temperatureMeasurement":      "temperature",
	"relativeHumidityMeasurement": "humidity",
	"battery":                     "battery",
	"illuminanceMeasurement":      "illuminance",
}

var unsafeIDChars = regexp.MustCompile(`[^a-z0-9_]`)

// sanitizeID lowercases a value and replaces everything outside
// [a-z0-9_] with underscores, producing a broker- and
// Home-Assistant-safe object id fragment.
func sanitizeID(value string) string {
	return unsafeIDChars.ReplaceAllString(strings.ToLower(value), "_")
}

// discoverySession carries the per-device context shared by every entity
// emitted in one synthesis pass.
type discoverySession struct {
	bridge     *Bridge
	deviceID   string
	label      string
	deviceMeta map[string]any
	attrs      map[string]Attribute

	// handled holds attribute keys claimed by the known-capability table,
	// excluding them from the generic fallback.
	handled map[string]bool
}

// publishDiscovery synthesizes auto-discovery documents for a device's
// attributes. Each (device, suffix) pair is emitted at most once per
// process lifetime; later calls for the same entities are no-ops.
//
// Evaluation order: the known-capability table first, exclusively claiming
// its attribute keys, then a generic fallback over everything unclaimed.
func (b *Bridge) publishDiscovery(deviceID string, device smartthings.Device, attrs map[string]Attribute) {
	if !b.cfg.Discovery.Enabled {
		return
	}

	label := device.DisplayName()
	if label == "" {
		label = deviceID
	}
	manufacturer := device.ManufacturerName
	if manufacturer == "" {
		manufacturer = defaultManufacturer
	}
	model := device.DeviceTypeName
	if model == "" {
		model = defaultModel
	}

	s := &discoverySession{
		bridge:   b,
		deviceID: deviceID,
		label:    label,
		deviceMeta: map[string]any{
			"identifiers":  []string{"smartthings_" + deviceID},
			"name":         label,
			"manufacturer": manufacturer,
			"model":        model,
			"sw_version":   device.FirmwareVersion,
		},
		attrs:   attrs,
		handled: make(map[string]bool),
	}

	// Control entities for known command-capable capabilities.
	s.publishSwitch("main", "switch", "switch", "on", "off", "on", "off", "Power")
	s.publishSwitch("main", "audioMute", "mute", "mute", "unmute", "muted", "unmuted", "Mute")
	s.publishNumber("main", "audioVolume", "volume", "Volume", "setVolume", 0, 100, 1)
	s.publishNumber("main", "switchLevel", "level", "Level", "setLevel", 0, 100, 1)
	s.publishSelect("main", "mediaInputSource", "inputSource", "supportedInputSources", "Input Source", "setInputSource")
	s.publishSelect("main", "samsungvd.mediaInputSource", "inputSource", "supportedInputSources", "Input Source", "setInputSource")
	s.publishSelect("main", "custom.picturemode", "pictureMode", "supportedPictureModes", "Picture Mode", "setPictureMode")
	s.publishSelect("main", "samsungvd.pictureMode", "pictureMode", "supportedPictureModes", "Picture Mode", "setPictureMode")
	s.publishSelect("main", "custom.soundmode", "soundMode", "supportedSoundModes", "Sound Mode", "setSoundMode")
	s.publishSelect("main", "samsungvd.soundMode", "soundMode", "supportedSoundModes", "Sound Mode", "setSoundMode")
	s.publishSelect("main", "ovenMode", "ovenMode", "supportedOvenModes", "Oven Mode", "setOvenMode")
	s.publishSelect("main", "samsungce.ovenMode", "ovenMode", "supportedOvenModes", "Oven Mode", "setOvenMode")

	s.publishFallback()
}

// pub emits one discovery document, once per object id.
func (s *discoverySession) pub(entityDomain, suffix string, payload map[string]any) {
	objectID := "smartthings_" + s.deviceID + "_" + suffix
	if !s.bridge.store.MarkDiscovered(objectID) {
		return
	}

	payload["device"] = s.deviceMeta
	payload["availability_topic"] = s.bridge.topics.Availability(s.deviceID)

	encoded, err := json.Marshal(payload)
	if err != nil {
		s.bridge.logger.Error("encoding discovery document failed",
			"object_id", objectID, "error", err)
		return
	}
	s.bridge.publishString(s.bridge.topics.Discovery(entityDomain, objectID), string(encoded))
}

// attrValueTemplate renders the state document lookup for one attribute.
// This template syntax is consumed verbatim by Home Assistant.
func attrValueTemplate(attrKey string) string {
	return "{{ value_json['" + attrKey + "'] }}"
}

func (s *discoverySession) publishSwitch(component, capability, attribute,
	payloadOn, payloadOff, stateOn, stateOff, labelSuffix string) {
	attrKey := component + "." + capability + "." + attribute
	attr, ok := s.attrs[attrKey]
	if !ok || attr.Value.IsAbsent() {
		return
	}

	safeSuffix := sanitizeID(attrKey)
	s.handled[attrKey] = true
	s.pub("switch", safeSuffix, map[string]any{
		"name":                 s.label + " " + labelSuffix,
		"state_topic":          s.bridge.topics.State(s.deviceID),
		"command_topic":        s.bridge.topics.CapabilitySet(s.deviceID, component, capability),
		"state_value_template": attrValueTemplate(attrKey),
		"payload_on":           payloadOn,
		"payload_off":          payloadOff,
		"state_on":             stateOn,
		"state_off":            stateOff,
		"unique_id":            "smartthings_" + s.deviceID + "_" + safeSuffix,
	})
}

func (s *discoverySession) publishNumber(component, capability, attribute,
	labelSuffix, command string, minValue, maxValue, step int) {
	attrKey := component + "." + capability + "." + attribute
	attr, ok := s.attrs[attrKey]
	if !ok || attr.Value.Kind != KindNumber {
		return
	}

	safeSuffix := sanitizeID(attrKey)
	s.handled[attrKey] = true
	payload := map[string]any{
		"name":             s.label + " " + labelSuffix,
		"state_topic":      s.bridge.topics.State(s.deviceID),
		"command_topic":    s.bridge.topics.CapabilitySet(s.deviceID, component, capability),
		"value_template":   attrValueTemplate(attrKey),
		"command_template": `{"command":"` + command + `","arguments":[{{ value | float }}]}`,
		"min":              minValue,
		"max":              maxValue,
		"step":             step,
		"mode":             "slider",
		"unique_id":        "smartthings_" + s.deviceID + "_" + safeSuffix,
	}
	if attr.Unit != "" {
		payload["unit_of_measurement"] = attr.Unit
	}
	s.pub("number", safeSuffix, payload)
}

func (s *discoverySession) publishSelect(component, capability, attribute,
	supportedAttribute, labelSuffix, command string) {
	attrKey := component + "." + capability + "." + attribute
	supportedKey := component + "." + capability + "." + supportedAttribute

	attr, ok := s.attrs[attrKey]
	if !ok || attr.Value.Kind != KindString {
		return
	}
	supported, ok := s.attrs[supportedKey]
	if !ok || supported.Value.Kind != KindArray {
		return
	}

	var options []string
	for _, raw := range supported.Value.Array {
		if opt, ok := raw.(string); ok && opt != "" {
			options = append(options, opt)
		}
	}
	if len(options) == 0 {
		return
	}

	safeSuffix := sanitizeID(attrKey)
	s.handled[attrKey] = true
	s.pub("select", safeSuffix, map[string]any{
		"name":             s.label + " " + labelSuffix,
		"state_topic":      s.bridge.topics.State(s.deviceID),
		"command_topic":    s.bridge.topics.CapabilitySet(s.deviceID, component, capability),
		"value_template":   attrValueTemplate(attrKey),
		"options":          options,
		"command_template": `{"command":"` + command + `","arguments":["{{ value }}"]}`,
		"unique_id":        "smartthings_" + s.deviceID + "_" + safeSuffix,
	})
}

// publishFallback derives entities for every attribute not claimed by the
// known-capability table. Keys are visited in sorted order so emission is
// deterministic.
func (s *discoverySession) publishFallback() {
	keys := make([]string, 0, len(s.attrs))
	for key := range s.attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, attrKey := range keys {
		if s.handled[attrKey] {
			continue
		}
		attr := s.attrs[attrKey]
		value := attr.Value

		// Discovery entities require scalar state.
		if value.IsComposite() || value.IsAbsent() {
			continue
		}

		safeSuffix := sanitizeID(attrKey)
		valueTemplate := attrValueTemplate(attrKey)
		unique := "smartthings_" + s.deviceID + "_" + safeSuffix
		name := s.label + " " + attr.Component + " " + attr.Capability + " " + attr.Attribute

		if attr.Capability == "switch" && attr.Attribute == "switch" &&
			value.Kind == KindString && isOnOff(value.Text) {
			s.pub("switch", safeSuffix, map[string]any{
				"name":                 name,
				"state_topic":          s.bridge.topics.State(s.deviceID),
				"command_topic":        s.bridge.topics.CapabilitySet(s.deviceID, attr.Component, attr.Capability),
				"state_value_template": valueTemplate,
				"payload_on":           "on",
				"payload_off":          "off",
				"state_on":             "on",
				"state_off":            "off",
				"unique_id":            unique,
			})
			continue
		}

		if attr.Capability == "lock" && (attr.Attribute == "lock" || attr.Attribute == "lockState") {
			s.pub("lock", safeSuffix, map[string]any{
				"name":           name,
				"state_topic":    s.bridge.topics.State(s.deviceID),
				"command_topic":  s.bridge.topics.CapabilitySet(s.deviceID, attr.Component, attr.Capability),
				"value_template": valueTemplate,
				"state_locked":   "locked",
				"state_unlocked": "unlocked",
				"payload_lock":   "lock",
				"payload_unlock": "unlock",
				"unique_id":      unique,
			})
			continue
		}

		if value.Kind == KindBool {
			s.pub("binary_sensor", safeSuffix, map[string]any{
				"name":           name,
				"state_topic":    s.bridge.topics.State(s.deviceID),
				"value_template": valueTemplate,
				"payload_on":     true,
				"payload_off":    false,
				"unique_id":      unique,
			})
			continue
		}

		if value.Kind == KindString {
			if class, ok := binaryAttributeClasses[strings.ToLower(attr.Attribute)]; ok {
				s.pub("binary_sensor", safeSuffix, map[string]any{
					"name":           name,
					"state_topic":    s.bridge.topics.State(s.deviceID),
					"value_template": valueTemplate,
					"payload_on":     class.payloadOn,
					"payload_off":    class.payloadOff,
					"device_class":   class.deviceClass,
					"unique_id":      unique,
				})
				continue
			}
		}

		payload := map[string]any{
			"name":           name,
			"state_topic":    s.bridge.topics.State(s.deviceID),
			"value_template": valueTemplate,
			"unique_id":      unique,
		}
		if value.Kind == KindNumber {
			payload["state_class"] = "measurement"
		}
		if attr.Unit != "" {
			payload["unit_of_measurement"] = attr.Unit
		}
		if class, ok := sensorDeviceClasses[attr.Capability]; ok {
			payload["device_class"] = class
			if class == "illuminance" && attr.Unit == "" {
				payload["unit_of_measurement"] = "lx"
			}
		}
		s.pub("sensor", safeSuffix, payload)
	}
}

func isOnOff(text string) bool {
	lower := strings.ToLower(text)
	return lower == "on" || lower == "off"
}
