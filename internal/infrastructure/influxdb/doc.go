// Package influxdb provides an optional time-series sink for numeric
// device attribute values.
//
// When enabled, every numeric attribute observed during a state refresh is
// written as a point tagged with device, component, capability and
// attribute. The bridge only ever writes; nothing reads telemetry back, so
// InfluxDB being down degrades history without affecting state publishing.
//
// Writes use the non-blocking batched WriteAPI. Async write errors are
// delivered through the SetOnError callback.
package influxdb
