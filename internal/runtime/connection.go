package runtime

import "time"

// State is the runtime's view of the broker connection.
type State int

const (
	// Disconnected is the initial state, and the state after any loss.
	Disconnected State = iota

	// Connected means the last attempt succeeded and the transport still
	// reports a live connection.
	Connected
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// connection holds the state machine's bookkeeping.
type connection struct {
	state State

	// wasConnected tracks the hook edge. It survives a dropped link, so a
	// drop followed by a successful reconnect fires neither hook.
	wasConnected bool

	// attempted is false until the first connection attempt, so the first
	// attempt after start is not held back by the cooldown.
	attempted   bool
	lastAttempt time.Duration
}

// State returns the current connection state.
func (r *Runtime) State() State {
	return r.conn.state
}

// Connected reports whether the runtime is connected and the transport
// agrees.
func (r *Runtime) Connected() bool {
	return r.conn.state == Connected && r.transport.IsConnected()
}

// maintainConnection is the first step of every Poll.
//
// If the transport has dropped a connection the runtime still believes is
// up, the state falls to Disconnected without firing a hook. While
// disconnected, one attempt is made per cooldown period.
func (r *Runtime) maintainConnection() {
	if r.transport.IsConnected() {
		return
	}

	if r.conn.state == Connected {
		r.conn.state = Disconnected
		r.logWarn("broker connection lost", "device_eui", r.eui)
	}

	r.reconnect()
}

// reconnect makes one attempt unless the cooldown since the previous
// attempt is still running.
func (r *Runtime) reconnect() {
	now := r.clock.Now()
	if r.conn.attempted && now-r.conn.lastAttempt < r.reconnectCooldown {
		return
	}
	r.conn.attempted = true
	r.conn.lastAttempt = now

	clientID := clientIDPrefix + r.eui
	r.logDebug("connecting to broker", "client_id", clientID)

	username, password := "", ""
	if r.username != "" {
		username, password = r.username, r.password
	}

	if err := r.transport.Connect(clientID, username, password); err != nil {
		r.logError("broker connection failed", err, "client_id", clientID)
		r.conn.state = Disconnected
		r.setEdge(false)
		return
	}

	topic := r.topics.Command()
	if err := r.transport.Subscribe(topic); err != nil {
		r.logError("command subscription failed", err, "topic", topic)
	} else {
		r.logDebug("subscribed", "topic", topic)
	}

	r.publishStatusMarker(statusOnline)

	r.logInfo("connected to broker", "device_eui", r.eui)
	r.conn.state = Connected
	r.setEdge(true)
}

// setEdge records the outcome of an attempt and fires the hook when it
// differs from the previous outcome.
func (r *Runtime) setEdge(connected bool) {
	prev := r.conn.wasConnected
	r.conn.wasConnected = connected
	if prev == connected {
		return
	}

	if connected {
		if r.onConnected != nil {
			r.onConnected()
		}
		return
	}
	if r.onDisconnected != nil {
		r.onDisconnected()
	}
}

// publishStatusMarker publishes the fixed-shape status payload.
func (r *Runtime) publishStatusMarker(status string) {
	payload, err := r.codec.Marshal(StatusMarker{Status: status})
	if err != nil {
		r.logError("encode status marker failed", err)
		return
	}
	if err := r.transport.Publish(r.topics.Status(), payload); err != nil {
		r.logError("publish status marker failed", err, "status", status)
	}
}
