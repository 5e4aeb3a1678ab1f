package influxdb

import "errors"

// Sentinel errors for InfluxDB operations.
var (
	// ErrDisabled indicates InfluxDB support is disabled in config.
	ErrDisabled = errors.New("influxdb disabled")

	// ErrNotConnected indicates the client is not connected.
	ErrNotConnected = errors.New("influxdb not connected")

	// ErrConnectionFailed indicates the initial connection failed.
	ErrConnectionFailed = errors.New("influxdb connection failed")

	// ErrInvalidPoint indicates a write was attempted with missing tags.
	ErrInvalidPoint = errors.New("invalid metric point")
)
