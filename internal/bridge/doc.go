// Package bridge is the engine that mirrors SmartThings device state onto
// MQTT and routes MQTT commands back to the SmartThings cloud API.
//
// A periodic poll cycle flattens each device's nested status document into
// attributes, encodes a canonical state document, and publishes it only
// when the encoding changed since the last publish. Per-attribute
// sub-topics are change-gated independently. Successful refreshes also
// synthesize Home Assistant auto-discovery documents, each emitted at most
// once per process lifetime.
//
// Inbound MQTT messages on the set/command topics are translated from
// several payload shapes (free text, shorthand JSON, full envelopes, bare
// numbers) into a single canonical command envelope, submitted to the API,
// and followed by a forced state refresh.
//
// All caches live in an explicit Store; there is no persistence, so a
// restart republishes everything.
package bridge
