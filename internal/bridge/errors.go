package bridge

import "errors"

// Sentinel errors for bridge construction and lifecycle.
var (
	// ErrNilMQTTClient indicates New was called without an MQTT client.
	ErrNilMQTTClient = errors.New("bridge: nil mqtt client")

	// ErrNilDeviceAPI indicates New was called without a device API.
	ErrNilDeviceAPI = errors.New("bridge: nil device api")

	// ErrAlreadyStarted indicates Start was called twice.
	ErrAlreadyStarted = errors.New("bridge: already started")
)
