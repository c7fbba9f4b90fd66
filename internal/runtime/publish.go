package runtime

import (
	"math"
	"strconv"

	"github.com/nerrad567/miniiot/internal/vpin"
)

// SendData publishes pending pin values now if connected.
//
// With auto-send enabled only dirty pins are sent, and nothing is published
// when no pin is dirty. With auto-send disabled every pin is sent.
func (r *Runtime) SendData() {
	if !r.Connected() {
		r.logDebug("send skipped, not connected")
		return
	}

	var pins map[string]float64
	if r.autoSend {
		pins = r.pins.DrainDirty()
	} else {
		pins = r.pins.DrainAll()
	}
	if len(pins) == 0 {
		return
	}

	r.publishPins(pins)
}

// Flush is SendData.
func (r *Runtime) Flush() {
	r.SendData()
}

// SendPins publishes the current values of the listed pins, leaving their
// dirty flags alone. It does not check the connection; a failed publish is
// only logged. Out-of-range pins are skipped.
func (r *Runtime) SendPins(pins ...int) {
	r.publishPins(r.pins.Snapshot(pins...))
}

// SyncAll marks every pin dirty and publishes immediately, bypassing the
// auto-send interval.
func (r *Runtime) SyncAll() {
	r.pins.MarkAllDirty()
	r.SendData()
}

// SyncVirtual marks pin dirty and, if connected, publishes that pin alone
// immediately. While disconnected the pin stays dirty for a later send.
// Out-of-range pins are ignored.
func (r *Runtime) SyncVirtual(pin int) {
	if !r.pinInRange(pin) {
		return
	}

	r.pins.MarkDirty(pin)
	if !r.Connected() {
		return
	}
	r.publishPins(r.pins.DrainPin(pin))
}

// SendHeartbeat publishes {deviceEui, uptime, freeHeap} on the status topic
// if connected.
func (r *Runtime) SendHeartbeat() {
	if !r.Connected() {
		return
	}

	msg := HeartbeatMessage{
		DeviceEUI: r.eui,
		Uptime:    r.uptimeMillis(),
	}
	if r.probe != nil {
		msg.FreeHeap = r.probe.FreeMemory()
	}

	payload, err := r.codec.Marshal(msg)
	if err != nil {
		r.logError("encode heartbeat failed", err)
		return
	}
	if err := r.transport.Publish(r.topics.Status(), payload); err != nil {
		r.logError("publish heartbeat failed", err)
		return
	}
	r.logDebug("heartbeat sent", "uptime_ms", msg.Uptime, "free_heap", msg.FreeHeap)
}

// publishPins sends one data message and mirrors it to telemetry on success.
// NaN and ±Inf values cannot be encoded and are dropped with a warning.
func (r *Runtime) publishPins(pins map[string]float64) {
	selected := len(pins)
	for name, v := range pins {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			r.logWarn("dropping non-finite pin value", "pin", name, "value", strconv.FormatFloat(v, 'g', -1, 64))
			delete(pins, name)
		}
	}
	if selected > 0 && len(pins) == 0 {
		return
	}

	msg := DataMessage{
		DeviceEUI: r.eui,
		Timestamp: r.uptimeMillis(),
		Pins:      pins,
	}

	payload, err := r.codec.Marshal(msg)
	if err != nil {
		r.logError("encode data message failed", err)
		return
	}
	if err := r.transport.Publish(r.topics.Data(), payload); err != nil {
		r.logError("publish data failed", err, "pins", len(pins))
		return
	}

	r.logDebug("data sent", "pins", len(pins))

	if r.telemetry != nil && len(pins) > 0 {
		r.telemetry.WritePins(r.eui, pins)
	}
}

// pinInRange logs out-of-range pin references from the public API.
func (r *Runtime) pinInRange(pin int) bool {
	if vpin.InRange(pin) {
		return true
	}
	r.logDebug("pin out of range", "pin", pin)
	return false
}
