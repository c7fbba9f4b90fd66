package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Point schema for mirrored pin values.
const (
	// measurementPins is the measurement holding one field per pin name.
	measurementPins = "vpin"

	// tagDeviceEUI identifies the publishing device.
	tagDeviceEUI = "device_eui"
)

// WritePins records one published pin set as a single point: the device
// EUI as a tag and each pin name as a float field.
//
// The write is non-blocking; empty sets and writes on a closed client are
// dropped.
//
// Example:
//
//	client.WritePins("a1b2c3", map[string]float64{"temperature": 21.5, "V3": 1})
func (c *Client) WritePins(deviceEUI string, pins map[string]float64) {
	if len(pins) == 0 || !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(pinsPoint(deviceEUI, pins, time.Now()))
}

// pinsPoint builds the point written by WritePins.
func pinsPoint(deviceEUI string, pins map[string]float64, at time.Time) *write.Point {
	fields := make(map[string]interface{}, len(pins))
	for name, value := range pins {
		fields[name] = value
	}

	return write.NewPoint(
		measurementPins,
		map[string]string{tagDeviceEUI: deviceEUI},
		fields,
		at,
	)
}
