package bridge

import (
	"context"
	"encoding/json"
)

// PublishDeviceState fetches a device's current status and publishes it.
//
// The canonical state document is encoded with sorted keys and no
// incidental whitespace, so identical attribute sets always encode
// identically regardless of map iteration order. The full document,
// changed per-attribute sub-documents and the online marker are published
// only when the encoding differs from the cached one, unless force is set,
// in which case everything republishes.
//
// On any fetch failure the device is marked offline and the caches are
// left untouched, so the next successful fetch compares against the last
// known-good state.
func (b *Bridge) PublishDeviceState(ctx context.Context, deviceID string, force bool) {
	status, err := b.api.DeviceStatus(ctx, deviceID)
	if err != nil {
		b.logger.Error("status fetch failed", "device_id", deviceID, "error", err)
		b.publishString(b.topics.Availability(deviceID), AvailabilityOffline)
		return
	}

	attrs := ExtractAttributes(status)
	encoded, err := b.encodeState(deviceID, attrs)
	if err != nil {
		b.logger.Error("encoding state failed", "device_id", deviceID, "error", err)
		return
	}

	last, _ := b.store.LastState(deviceID)
	if !force && last == encoded {
		return
	}

	b.publishString(b.topics.State(deviceID), encoded)
	b.publishChangedAttributes(deviceID, attrs, force)
	b.publishString(b.topics.Availability(deviceID), AvailabilityOnline)
	b.store.SetLastState(deviceID, encoded)

	device, _ := b.store.Device(deviceID)
	b.publishDiscovery(deviceID, device, attrs)
	b.recordMetrics(deviceID, attrs)
}

// encodeState builds the canonical per-device state document.
//
// Main-component attributes additionally appear under a flat
// capability.attribute alias, kept for consumers predating component
// scoping, and only when that key is not already taken.
func (b *Bridge) encodeState(deviceID string, attrs map[string]Attribute) (string, error) {
	name := deviceID
	if device, ok := b.store.Device(deviceID); ok {
		name = device.DisplayName()
	}

	doc := map[string]any{
		"device_id":  deviceID,
		"name":       name,
		"updated_at": b.now().Unix(),
	}
	for key, attr := range attrs {
		doc[key] = attr.Value.Raw()
		if attr.Component == defaultComponent {
			if _, taken := doc[attr.legacyKey()]; !taken {
				doc[attr.legacyKey()] = attr.Value.Raw()
			}
		}
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// publishChangedAttributes refreshes per-attribute sub-topics. Each
// attribute compares against its own cache entry, so one attribute
// changing does not republish unrelated sub-topics.
func (b *Bridge) publishChangedAttributes(deviceID string, attrs map[string]Attribute, force bool) {
	for _, attr := range attrs {
		encoded, err := json.Marshal(attr.Value.Raw())
		if err != nil {
			b.logger.Error("encoding attribute failed",
				"device_id", deviceID, "attribute", attr.Key(), "error", err)
			continue
		}

		cacheKey := attrCacheKey(deviceID, attr.Component, attr.Capability, attr.Attribute)
		if last, ok := b.store.LastAttribute(cacheKey); !force && ok && last == string(encoded) {
			continue
		}

		topic := b.topics.AttributeState(deviceID, attr.Component, attr.Capability, attr.Attribute)
		b.publishString(topic, string(encoded))
		b.store.SetLastAttribute(cacheKey, string(encoded))
	}
}

// recordMetrics forwards numeric attribute values to the metrics sink.
func (b *Bridge) recordMetrics(deviceID string, attrs map[string]Attribute) {
	if b.metrics == nil {
		return
	}
	for _, attr := range attrs {
		if attr.Value.Kind != KindNumber {
			continue
		}
		err := b.metrics.WriteAttributeMetric(
			deviceID, attr.Component, attr.Capability, attr.Attribute, attr.Value.Number)
		if err != nil {
			b.logger.Warn("writing attribute metric failed",
				"device_id", deviceID, "attribute", attr.Key(), "error", err)
		}
	}
}

// publishString publishes a retained payload, logging rather than
// propagating failures: broker hiccups must not abort a poll cycle.
func (b *Bridge) publishString(topic, payload string) {
	if err := b.mqtt.PublishRetained(topic, []byte(payload)); err != nil {
		b.logger.Error("publish failed", "topic", topic, "error", err)
	}
}
