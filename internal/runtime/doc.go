// Package runtime implements the miniiot device runtime: a single-threaded,
// poll-driven bridge between a fixed set of virtual pins and an MQTT broker.
//
// One call to Runtime.Poll performs, in order:
//
//  1. Connection maintenance (loss detection, cooldown-gated reconnect)
//  2. Transport servicing (queued commands dispatched to the pin store)
//  3. Interval-gated publication of dirty pins
//  4. Interval-gated heartbeat
//
// Nothing in the runtime is safe for concurrent use. The host calls Poll,
// the pin API and the hook registration methods from one goroutine, usually
// via Run. Transport implementations deliver inbound messages only from
// inside Loop, which Poll calls.
//
// Failures never surface as errors from Poll or the pin API. They are logged,
// and connectivity is exposed through Connected, State and the connection
// hooks.
package runtime
