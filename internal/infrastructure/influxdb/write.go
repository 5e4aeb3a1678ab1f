package influxdb

import (
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
)

// attributeMeasurement is the measurement name for device attribute points.
const attributeMeasurement = "device_attribute"

// WriteAttributeMetric records a numeric attribute value as a time-series
// point. Writes are batched and non-blocking; failures surface through the
// SetOnError callback.
func (c *Client) WriteAttributeMetric(deviceID, component, capability, attribute string, value float64) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	if deviceID == "" || attribute == "" {
		return ErrInvalidPoint
	}

	point := influxdb2.NewPoint(
		attributeMeasurement,
		map[string]string{
			"device_id":  deviceID,
			"component":  component,
			"capability": capability,
			"attribute":  attribute,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)

	return nil
}

// Flush forces all pending writes to be sent immediately.
//
// Normally writes are batched; call this when immediate persistence matters,
// such as during shutdown.
func (c *Client) Flush() {
	if c.writeAPI != nil {
		c.writeAPI.Flush()
	}
}
