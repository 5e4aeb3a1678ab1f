package bridge

import (
	"encoding/json"
	"testing"
)

func statusDoc(t *testing.T, raw string) map[string]any {
	t.Helper()
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("unmarshalling status fixture: %v", err)
	}
	return doc
}

func TestExtractAttributes(t *testing.T) {
	status := statusDoc(t, `{
		"components": {
			"main": {
				"switch": {"switch": {"value": "on"}},
				"temperatureMeasurement": {"temperature": {"value": 21.5, "unit": "C"}}
			},
			"freezer": {
				"contactSensor": {"contact": {"value": "closed"}}
			}
		}
	}`)

	attrs := ExtractAttributes(status)
	if len(attrs) != 3 {
		t.Fatalf("ExtractAttributes() returned %d attributes, want 3", len(attrs))
	}

	sw, ok := attrs["main.switch.switch"]
	if !ok {
		t.Fatal("missing main.switch.switch")
	}
	if sw.Value.Kind != KindString || sw.Value.Text != "on" {
		t.Errorf("switch value = %+v, want string on", sw.Value)
	}

	temp := attrs["main.temperatureMeasurement.temperature"]
	if temp.Value.Kind != KindNumber || temp.Value.Number != 21.5 {
		t.Errorf("temperature value = %+v, want number 21.5", temp.Value)
	}
	if temp.Unit != "C" {
		t.Errorf("temperature unit = %q, want C", temp.Unit)
	}

	contact := attrs["freezer.contactSensor.contact"]
	if contact.Component != "freezer" {
		t.Errorf("contact component = %q, want freezer", contact.Component)
	}
}

func TestExtractAttributesSkipsMalformedLevels(t *testing.T) {
	status := statusDoc(t, `{
		"components": {
			"main": {
				"switch": {"switch": {"value": "on"}},
				"broken": "not an object",
				"alsoBroken": {"attr": 42}
			},
			"garbage": [1, 2, 3]
		}
	}`)

	attrs := ExtractAttributes(status)
	if len(attrs) != 1 {
		t.Fatalf("ExtractAttributes() returned %d attributes, want 1", len(attrs))
	}
	if _, ok := attrs["main.switch.switch"]; !ok {
		t.Error("well-formed attribute missing from result")
	}
}

func TestExtractAttributesNoComponents(t *testing.T) {
	for name, raw := range map[string]string{
		"empty":            `{}`,
		"wrong type":       `{"components": "nope"}`,
		"empty components": `{"components": {}}`,
	} {
		t.Run(name, func(t *testing.T) {
			attrs := ExtractAttributes(statusDoc(t, raw))
			if len(attrs) != 0 {
				t.Errorf("ExtractAttributes() returned %d attributes, want 0", len(attrs))
			}
		})
	}
}

func TestExtractAttributesAbsentValue(t *testing.T) {
	status := statusDoc(t, `{
		"components": {
			"main": {
				"refresh": {"lastUpdated": {"unit": "s"}},
				"battery": {"battery": {"value": null}}
			}
		}
	}`)

	attrs := ExtractAttributes(status)
	for _, key := range []string{"main.refresh.lastUpdated", "main.battery.battery"} {
		attr, ok := attrs[key]
		if !ok {
			t.Fatalf("missing %s", key)
		}
		if !attr.Value.IsAbsent() {
			t.Errorf("%s value = %+v, want absent", key, attr.Value)
		}
	}
}

func TestValueOfKinds(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want Kind
	}{
		{"nil", nil, KindAbsent},
		{"bool", true, KindBool},
		{"float", 3.5, KindNumber},
		{"int", 7, KindNumber},
		{"string", "hello", KindString},
		{"array", []any{1, 2}, KindArray},
		{"object", map[string]any{"a": 1}, KindObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := valueOf(tt.raw)
			if got.Kind != tt.want {
				t.Errorf("valueOf(%v).Kind = %d, want %d", tt.raw, got.Kind, tt.want)
			}
		})
	}
}

func TestValueRawRoundTrip(t *testing.T) {
	composite := valueOf([]any{"a", "b"})
	if !composite.IsComposite() {
		t.Error("array value not reported composite")
	}

	encoded, err := json.Marshal(composite.Raw())
	if err != nil {
		t.Fatalf("marshalling raw value: %v", err)
	}
	if string(encoded) != `["a","b"]` {
		t.Errorf("encoded = %s, want [\"a\",\"b\"]", encoded)
	}

	if raw := valueOf(nil).Raw(); raw != nil {
		t.Errorf("absent Raw() = %v, want nil", raw)
	}
}
