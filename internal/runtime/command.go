package runtime

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nerrad567/miniiot/internal/vpin"
)

// HandleMessage dispatches one inbound command payload. The transport calls
// it from Loop; tests may call it directly.
//
// A payload may carry a pin write ({"pin": 3, "value": 42} or a value list),
// a sync request ({"sync": "all"} or {"sync": 3}), or both. The pin write
// runs first. Undecodable payloads are logged and dropped.
func (r *Runtime) HandleMessage(topic string, payload []byte) {
	var cmd map[string]any
	if err := r.codec.Unmarshal(payload, &cmd); err != nil {
		r.logWarn("dropping undecodable command", "topic", topic, "error", err)
		return
	}
	if cmd == nil {
		r.logWarn("dropping empty command", "topic", topic)
		return
	}

	r.logDebug("command received", "topic", topic)

	if raw, ok := cmd[fieldPin]; ok {
		r.handlePinWrite(raw, cmd[fieldValue])
	}

	if raw, ok := cmd[fieldSync]; ok {
		r.handleSync(raw)
	}
}

// handlePinWrite stores the first value on the pin and runs its write hook
// with the full parameter list.
func (r *Runtime) handlePinWrite(rawPin, rawValue any) {
	pin, ok := pinIndex(rawPin)
	if !ok || !vpin.InRange(pin) {
		r.logWarn("ignoring write to invalid pin", "pin", rawPin)
		return
	}

	if !finiteValue(rawValue) {
		r.logWarn("ignoring non-finite write", "pin", pin, "value", fmt.Sprint(rawValue))
		return
	}

	param := vpin.DecodeParam(rawValue)
	r.Write(pin, param.AsFloat())

	if hook := r.writeHooks[pin]; hook != nil {
		hook(pin, param)
	}
}

// handleSync serves a sync request for every pin or a single pin.
func (r *Runtime) handleSync(raw any) {
	if s, ok := raw.(string); ok && s == syncAll {
		r.SyncAll()
		return
	}

	pin, ok := pinIndex(raw)
	if !ok {
		r.logWarn("ignoring invalid sync request", "sync", raw)
		return
	}
	r.SyncVirtual(pin)
}

// finiteValue reports whether a decoded value field, or every entry of a
// value list, is free of NaN and ±Inf.
func finiteValue(raw any) bool {
	list, ok := raw.([]any)
	if !ok {
		return vpin.IsFinite(raw)
	}
	for _, v := range list {
		if !vpin.IsFinite(v) {
			return false
		}
	}
	return true
}

// pinIndex converts a decoded pin reference to an index. Integral numbers
// of any width and integer strings are accepted.
func pinIndex(raw any) (int, bool) {
	switch v := raw.(type) {
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
	default:
		return 0, false
	}

	f := vpin.Number(raw)
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
