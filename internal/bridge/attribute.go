package bridge

// Kind identifies the shape of an attribute value.
type Kind int

// Attribute value kinds.
const (
	KindAbsent Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// AttributeValue is a tagged variant over the JSON shapes an attribute
// value can take. Exactly one of the typed fields is meaningful, selected
// by Kind; KindAbsent means the upstream document carried no value (or an
// explicit null).
type AttributeValue struct {
	Kind   Kind
	Bool   bool
	Number float64
	Text   string
	Array  []any
	Object map[string]any
}

// valueOf classifies a raw JSON-decoded value into a tagged variant.
func valueOf(raw any) AttributeValue {
	switch v := raw.(type) {
	case nil:
		return AttributeValue{Kind: KindAbsent}
	case bool:
		return AttributeValue{Kind: KindBool, Bool: v}
	case float64:
		return AttributeValue{Kind: KindNumber, Number: v}
	case int:
		return AttributeValue{Kind: KindNumber, Number: float64(v)}
	case int64:
		return AttributeValue{Kind: KindNumber, Number: float64(v)}
	case string:
		return AttributeValue{Kind: KindString, Text: v}
	case []any:
		return AttributeValue{Kind: KindArray, Array: v}
	case map[string]any:
		return AttributeValue{Kind: KindObject, Object: v}
	default:
		return AttributeValue{Kind: KindAbsent}
	}
}

// Raw returns the underlying value for JSON encoding. Absent values
// encode as null.
func (v AttributeValue) Raw() any {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Number
	case KindString:
		return v.Text
	case KindArray:
		return v.Array
	case KindObject:
		return v.Object
	default:
		return nil
	}
}

// IsAbsent reports whether the attribute carried no usable value.
func (v AttributeValue) IsAbsent() bool {
	return v.Kind == KindAbsent
}

// IsComposite reports whether the value is an array or nested object.
// Composite values still appear in the state document but are excluded
// from discovery synthesis.
func (v AttributeValue) IsComposite() bool {
	return v.Kind == KindArray || v.Kind == KindObject
}

// Attribute is one flattened entry from a device status document.
type Attribute struct {
	Component  string
	Capability string
	Attribute  string
	Value      AttributeValue
	Unit       string
}

// Key returns the dot-path key identifying this attribute within a device.
func (a Attribute) Key() string {
	return a.Component + "." + a.Capability + "." + a.Attribute
}

// legacyKey is the flat capability.attribute alias kept for main-component
// attributes.
func (a Attribute) legacyKey() string {
	return a.Capability + "." + a.Attribute
}

// ExtractAttributes flattens a nested device status document
// (component -> capability -> attribute -> {value, unit}) into a map keyed
// by dot-path. Any level that is not an object is skipped rather than
// treated as an error, so partial or malformed upstream payloads degrade
// to fewer attributes instead of aborting the cycle.
func ExtractAttributes(status map[string]any) map[string]Attribute {
	result := make(map[string]Attribute)

	components, ok := status["components"].(map[string]any)
	if !ok {
		return result
	}

	for component, componentRaw := range components {
		componentPayload, ok := componentRaw.(map[string]any)
		if !ok {
			continue
		}
		for capability, capabilityRaw := range componentPayload {
			capabilityPayload, ok := capabilityRaw.(map[string]any)
			if !ok {
				continue
			}
			for attribute, attributeRaw := range capabilityPayload {
				attributePayload, ok := attributeRaw.(map[string]any)
				if !ok {
					continue
				}

				attr := Attribute{
					Component:  component,
					Capability: capability,
					Attribute:  attribute,
					Value:      valueOf(attributePayload["value"]),
				}
				if unit, ok := attributePayload["unit"].(string); ok {
					attr.Unit = unit
				}
				result[attr.Key()] = attr
			}
		}
	}

	return result
}
