package bridge

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/smartthings-community/smartthings-mqtt-bridge/internal/smartthings"
)

// defaultComponent is assumed when a shorthand command omits one.
const defaultComponent = "main"

// textCommandTable maps free-text payloads to command verbs, per capability.
// Matching is case-insensitive and exact.
var textCommandTable = map[string]map[string]string{
	"switch": {
		"on":  "on",
		"off": "off",
	},
	"lock": {
		"lock":     "lock",
		"unlock":   "unlock",
		"locked":   "lock",
		"unlocked": "unlock",
	},
	"doorControl": {
		"open":   "open",
		"close":  "close",
		"closed": "close",
	},
	"audioMute": {
		"mute":    "mute",
		"unmute":  "unmute",
		"muted":   "mute",
		"unmuted": "unmute",
		"on":      "mute",
		"off":     "unmute",
	},
}

// argumentCommandTable maps single-argument capabilities to their fixed
// command verb. The payload text becomes the argument, coerced to a number
// when it parses as one.
var argumentCommandTable = map[string]string{
	"audioVolume":                "setVolume",
	"switchLevel":                "setLevel",
	"mediaInputSource":           "setInputSource",
	"samsungvd.mediaInputSource": "setInputSource",
	"custom.picturemode":         "setPictureMode",
	"samsungvd.pictureMode":      "setPictureMode",
	"custom.soundmode":           "setSoundMode",
	"samsungvd.soundMode":        "setSoundMode",
	"ovenMode":                   "setOvenMode",
	"samsungce.ovenMode":         "setOvenMode",
}

// shorthandCommand is the wire shape of a single shorthand JSON command.
type shorthandCommand struct {
	Component  string `json:"component"`
	Capability string `json:"capability"`
	Command    string `json:"command"`
	Arguments  []any  `json:"arguments"`
}

// ParseDeviceCommand translates a whole-device command payload into an
// envelope. Accepted shapes: a full JSON envelope, a shorthand JSON object
// with capability and command, or free text from a small fixed vocabulary
// (on/off, lock/unlock, open/close). Anything else is rejected.
func ParseDeviceCommand(payload []byte) (smartthings.CommandEnvelope, bool) {
	text := strings.TrimSpace(string(payload))
	if text == "" {
		return smartthings.CommandEnvelope{}, false
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err == nil {
		if _, ok := raw["commands"]; ok {
			var envelope smartthings.CommandEnvelope
			if err := json.Unmarshal([]byte(text), &envelope); err == nil {
				return envelope, true
			}
		}

		_, hasCapability := raw["capability"]
		_, hasCommand := raw["command"]
		if hasCapability && hasCommand {
			var short shorthandCommand
			if err := json.Unmarshal([]byte(text), &short); err == nil {
				if short.Component == "" {
					short.Component = defaultComponent
				}
				return envelopeOf(short), true
			}
		}
		return smartthings.CommandEnvelope{}, false
	}

	return inferTextCommand(text)
}

// inferTextCommand maps bare text onto the whole-device vocabulary.
func inferTextCommand(text string) (smartthings.CommandEnvelope, bool) {
	normalized := strings.ToLower(strings.TrimSpace(text))

	var capability string
	switch normalized {
	case "on", "off":
		capability = "switch"
	case "lock", "unlock":
		capability = "lock"
	case "open", "close":
		capability = "doorControl"
	default:
		return smartthings.CommandEnvelope{}, false
	}

	return envelopeOf(shorthandCommand{
		Component:  defaultComponent,
		Capability: capability,
		Command:    normalized,
	}), true
}

// ParseCapabilityCommand translates a capability-scoped command payload,
// where the topic already names the component and capability. Accepted
// shapes, in order: a full JSON envelope, a shorthand JSON command, a bare
// JSON number (treated as setLevel), free text resolved through the verb
// tables, and finally the text itself forwarded verbatim as the command
// verb for capabilities the bridge does not model.
func ParseCapabilityCommand(payload []byte, component, capability string) (smartthings.CommandEnvelope, bool) {
	text := strings.TrimSpace(string(payload))
	if text == "" {
		return smartthings.CommandEnvelope{}, false
	}

	var raw any
	if err := json.Unmarshal([]byte(text), &raw); err == nil {
		switch v := raw.(type) {
		case map[string]any:
			if _, ok := v["commands"]; ok {
				var envelope smartthings.CommandEnvelope
				if err := json.Unmarshal([]byte(text), &envelope); err == nil {
					return envelope, true
				}
			}
			if _, ok := v["command"]; ok {
				var short shorthandCommand
				if err := json.Unmarshal([]byte(text), &short); err == nil {
					short.Component = component
					short.Capability = capability
					return envelopeOf(short), true
				}
			}
		case float64:
			return envelopeOf(shorthandCommand{
				Component:  component,
				Capability: capability,
				Command:    "setLevel",
				Arguments:  []any{v},
			}), true
		}
	}

	normalized := strings.ToLower(text)
	if verbs, ok := textCommandTable[capability]; ok {
		if verb, ok := verbs[normalized]; ok {
			return envelopeOf(shorthandCommand{
				Component:  component,
				Capability: capability,
				Command:    verb,
			}), true
		}
	}

	if verb, ok := argumentCommandTable[capability]; ok {
		return envelopeOf(shorthandCommand{
			Component:  component,
			Capability: capability,
			Command:    verb,
			Arguments:  []any{coerceArgument(text)},
		}), true
	}

	// Unknown capability: forward the text verbatim as the verb, trading
	// validation for forward-compatibility.
	return envelopeOf(shorthandCommand{
		Component:  component,
		Capability: capability,
		Command:    text,
	}), true
}

// coerceArgument turns payload text into a number when it parses as one,
// otherwise keeps it as text.
func coerceArgument(text string) any {
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f
	}
	return text
}

// envelopeOf wraps a single shorthand command into an envelope.
func envelopeOf(short shorthandCommand) smartthings.CommandEnvelope {
	return smartthings.CommandEnvelope{Commands: []smartthings.Command{{
		Component:  short.Component,
		Capability: short.Capability,
		Command:    short.Command,
		Arguments:  short.Arguments,
	}}}
}
