// Package mqtt provides the device's MQTT transport.
//
// This package manages:
//   - Single, bounded connection attempts (no background reconnect)
//   - QoS 0 publishing and the device's command subscription
//   - A bounded inbound queue drained synchronously by Loop
//   - Last Will and a graceful offline marker on the status topic
//
// # Architecture
//
//	device runtime ── Poll ──► Client.Loop ──► command handler
//	                 └───────► Client.Publish ──► broker
//
// paho's network goroutines only enqueue inbound messages. Everything the
// runtime reacts to happens inside its own poll call, which keeps the
// runtime single-threaded.
//
// # Topics
//
// Each device owns three topics derived from its EUI:
//
//	device/<eui>/data      telemetry
//	device/<eui>/command   control (subscribed)
//	device/<eui>/status    online marker, heartbeats, will
//
// # Security Considerations
//
//   - Enable TLS (cfg.Broker.TLS=true) for anything beyond a local broker
//   - An empty username connects anonymously
package mqtt
