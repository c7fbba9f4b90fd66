// Package influxdb mirrors device pin telemetry into InfluxDB.
//
// It wraps the official influxdb-client-go v2 library. Every pin set the
// device runtime publishes over MQTT can also be written here as one point
// in the "vpin" measurement, tagged with the device EUI, so that a device
// with a local InfluxDB keeps its own history.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // mirror not configured
//	}
//	defer client.Close()
//
//	client.WritePins("a1b2c3", map[string]float64{"temperature": 21.5})
//
// # Error Handling
//
// Writes are non-blocking and batched; their errors are delivered to the
// SetOnError callback. Connection and health check errors are returned
// directly.
package influxdb
