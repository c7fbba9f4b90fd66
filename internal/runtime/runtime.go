package runtime

import (
	"context"
	"errors"
	"time"

	"github.com/nerrad567/miniiot/internal/codec"
	"github.com/nerrad567/miniiot/internal/infrastructure/mqtt"
	"github.com/nerrad567/miniiot/internal/vpin"
)

// Default intervals applied when Options leaves them zero.
const (
	// DefaultSendInterval is the auto-send period.
	DefaultSendInterval = 5 * time.Second

	// DefaultHeartbeatInterval is the heartbeat period.
	DefaultHeartbeatInterval = 60 * time.Second

	// DefaultReconnectCooldown is the minimum gap between connection attempts.
	DefaultReconnectCooldown = 5 * time.Second

	// clientIDPrefix is prepended to the device EUI to form the MQTT client id.
	clientIDPrefix = "miniiot-"
)

// Transport is the broker connection the runtime drives.
// This interface is satisfied by *mqtt.Client and by test fakes.
type Transport interface {
	// Connect makes one bounded connection attempt.
	Connect(clientID, username, password string) error

	// IsConnected reports whether the broker connection is live.
	IsConnected() bool

	// Subscribe subscribes to a topic. Messages are delivered by Loop.
	Subscribe(topic string) error

	// Publish sends a payload to a topic.
	Publish(topic string, payload []byte) error

	// Loop delivers queued inbound messages to the handler and returns
	// how many were delivered. It must not block.
	Loop() int

	// SetMessageHandler sets the receiver used by Loop.
	SetMessageHandler(handler func(topic string, payload []byte))
}

// ResourceProbe reports the free-memory figure carried in heartbeats.
type ResourceProbe interface {
	FreeMemory() uint64
}

// TelemetrySink receives a copy of every successfully published pin set.
type TelemetrySink interface {
	WritePins(deviceEUI string, pins map[string]float64)
}

// Logger is the structured logger used by the runtime.
// Compatible with *logging.Logger and *slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// WriteHook runs after a remote command writes a pin. It receives the pin
// index and every value carried by the command.
type WriteHook func(pin int, param vpin.Param)

// Options configures a Runtime.
type Options struct {
	// DeviceEUI is embedded in topics, the client id and every message. Required.
	DeviceEUI string

	// Transport is the broker connection. Required.
	Transport Transport

	// Username and Password are sent on connect when Username is non-empty.
	Username string
	Password string

	// AutoSend enables interval-driven publication of dirty pins.
	AutoSend bool

	// SendInterval is the auto-send period. Zero means DefaultSendInterval.
	SendInterval time.Duration

	// HeartbeatInterval is the heartbeat period. Zero disables heartbeats;
	// use DefaultHeartbeatInterval for the standard cadence.
	HeartbeatInterval time.Duration

	// ReconnectCooldown is the minimum gap between connection attempts.
	// Zero means DefaultReconnectCooldown.
	ReconnectCooldown time.Duration

	// Codec encodes outbound and decodes inbound payloads. Nil means JSON.
	Codec codec.Codec

	// Clock drives every interval gate. Nil means a SystemClock started now.
	Clock Clock

	// Probe supplies the heartbeat free-memory figure. Nil reports zero.
	Probe ResourceProbe

	// Telemetry optionally mirrors published pins.
	Telemetry TelemetrySink

	// Logger is optional.
	Logger Logger
}

// Runtime is one device instance. See the package documentation for the
// poll cycle and threading rules.
type Runtime struct {
	eui       string
	topics    mqtt.Topics
	transport Transport
	codec     codec.Codec
	clock     Clock
	probe     ResourceProbe
	telemetry TelemetrySink
	logger    Logger

	username string
	password string

	autoSend          bool
	sendInterval      time.Duration
	heartbeatInterval time.Duration
	reconnectCooldown time.Duration

	pins       *vpin.Store
	writeHooks [vpin.Capacity]WriteHook

	onConnected    func()
	onDisconnected func()

	conn connection

	// lastSend and lastHeartbeat gate the scheduled publications.
	lastSend      time.Duration
	lastHeartbeat time.Duration
}

// New creates a disconnected runtime. Every pin starts at zero, clean and
// named "V<index>". New installs the runtime as the transport's message
// handler; the first connection attempt happens on the first Poll.
func New(opts Options) (*Runtime, error) {
	if opts.Transport == nil {
		return nil, ErrNoTransport
	}
	if opts.DeviceEUI == "" {
		return nil, ErrNoDeviceEUI
	}

	r := &Runtime{
		eui:               opts.DeviceEUI,
		topics:            mqtt.NewTopics(opts.DeviceEUI),
		transport:         opts.Transport,
		codec:             opts.Codec,
		clock:             opts.Clock,
		probe:             opts.Probe,
		telemetry:         opts.Telemetry,
		logger:            opts.Logger,
		username:          opts.Username,
		password:          opts.Password,
		autoSend:          opts.AutoSend,
		sendInterval:      opts.SendInterval,
		heartbeatInterval: opts.HeartbeatInterval,
		reconnectCooldown: opts.ReconnectCooldown,
	}

	if r.codec == nil {
		r.codec = codec.JSON{}
	}
	if r.clock == nil {
		r.clock = NewSystemClock()
	}
	if r.sendInterval <= 0 {
		r.sendInterval = DefaultSendInterval
	}
	if r.reconnectCooldown <= 0 {
		r.reconnectCooldown = DefaultReconnectCooldown
	}

	r.pins = vpin.NewStore(r.clock.Now)

	start := r.clock.Now()
	r.lastSend = start
	r.lastHeartbeat = start

	r.transport.SetMessageHandler(r.HandleMessage)

	return r, nil
}

// DeviceEUI returns the device identifier.
func (r *Runtime) DeviceEUI() string { return r.eui }

// Topics returns the device's data, command and status topics.
func (r *Runtime) Topics() mqtt.Topics { return r.topics }

// Poll runs one non-blocking cycle: connection maintenance, transport
// servicing, auto-send, heartbeat. A command delivered during servicing
// lands in the dirty set before the auto-send check of the same cycle.
func (r *Runtime) Poll() {
	r.maintainConnection()

	if n := r.transport.Loop(); n > 0 {
		r.logDebug("serviced inbound messages", "count", n)
	}

	now := r.clock.Now()

	if r.autoSend && r.Connected() && now-r.lastSend > r.sendInterval {
		r.SendData()
		r.lastSend = now
	}

	if r.heartbeatInterval > 0 && r.Connected() && now-r.lastHeartbeat > r.heartbeatInterval {
		r.SendHeartbeat()
		r.lastHeartbeat = now
	}
}

// Run calls Poll every interval until ctx is cancelled.
func (r *Runtime) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = 50 * time.Millisecond
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	r.Poll()
	for {
		select {
		case <-ctx.Done():
			r.logInfo("runtime stopped", "device_eui", r.eui)
			return
		case <-ticker.C:
			r.Poll()
		}
	}
}

// SetAutoSend changes the auto-send mode and period. A non-positive interval
// keeps the current one.
func (r *Runtime) SetAutoSend(enabled bool, interval time.Duration) {
	r.autoSend = enabled
	if interval > 0 {
		r.sendInterval = interval
	}
	r.logDebug("auto-send configured", "enabled", enabled, "interval", r.sendInterval)
}

// SetHeartbeat changes the heartbeat period. Zero disables heartbeats.
func (r *Runtime) SetHeartbeat(interval time.Duration) {
	if interval < 0 {
		interval = 0
	}
	r.heartbeatInterval = interval
	r.logDebug("heartbeat configured", "interval", interval)
}

// Pin API

// VirtualWrite stores v on pin. Only the first component of a pair or
// triple is retained as the pin value. Out-of-range pins are ignored.
func (r *Runtime) VirtualWrite(pin int, v vpin.Value) {
	if !vpin.InRange(pin) {
		return
	}
	r.pins.Write(pin, v.First())
	r.logDebug("pin written", "pin", r.pins.Name(pin), "value", v.String())
}

// Write stores a scalar on pin. Out-of-range pins are ignored.
func (r *Runtime) Write(pin int, value float64) {
	r.VirtualWrite(pin, vpin.Scalar(value))
}

// TryWrite is Write but reports vpin.ErrPinOutOfRange.
func (r *Runtime) TryWrite(pin int, value float64) error {
	if err := r.pins.TryWrite(pin, value); err != nil {
		return err
	}
	r.logDebug("pin written", "pin", r.pins.Name(pin), "value", value)
	return nil
}

// Read returns the pin value after running its read hook, or 0 for an
// out-of-range pin.
func (r *Runtime) Read(pin int) float64 {
	return r.pins.Read(pin)
}

// SetPinName renames a pin. Out-of-range pins are ignored, and a name
// already held by another pin is refused with a warning.
func (r *Runtime) SetPinName(pin int, name string) {
	if err := r.pins.TryRename(pin, name); errors.Is(err, vpin.ErrDuplicatePinName) {
		r.logWarn("pin rename refused", "pin", pin, "error", err)
	}
}

// PinName returns the pin's name, or "" for an out-of-range pin.
func (r *Runtime) PinName(pin int) string {
	return r.pins.Name(pin)
}

// Pin returns a copy of the pin state.
func (r *Runtime) Pin(pin int) (vpin.Pin, bool) {
	return r.pins.Lookup(pin)
}

// Hooks

// OnRead registers a hook run before every Read of pin. The hook may call
// Write to refresh the value being read.
func (r *Runtime) OnRead(pin int, hook func()) {
	r.pins.OnRead(pin, hook)
}

// OnWrite registers a hook run after a remote command writes pin.
func (r *Runtime) OnWrite(pin int, hook WriteHook) {
	if vpin.InRange(pin) {
		r.writeHooks[pin] = hook
	}
}

// OnConnected registers the hook fired on each disconnected→connected edge.
func (r *Runtime) OnConnected(hook func()) {
	r.onConnected = hook
}

// OnDisconnected registers the hook fired on each connected→disconnected edge.
func (r *Runtime) OnDisconnected(hook func()) {
	r.onDisconnected = hook
}

// uptimeMillis is the clock reading in whole milliseconds.
func (r *Runtime) uptimeMillis() int64 {
	return r.clock.Now().Milliseconds()
}

// logInfo logs an info message if logger is set.
func (r *Runtime) logInfo(msg string, keysAndValues ...any) {
	if r.logger != nil {
		r.logger.Info(msg, keysAndValues...)
	}
}

// logWarn logs a warning if logger is set.
func (r *Runtime) logWarn(msg string, keysAndValues ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, keysAndValues...)
	}
}

// logError logs an error message if logger is set.
func (r *Runtime) logError(msg string, err error, keysAndValues ...any) {
	if r.logger != nil {
		r.logger.Error(msg, append([]any{"error", err}, keysAndValues...)...)
	}
}

// logDebug logs a debug message if logger is set.
func (r *Runtime) logDebug(msg string, keysAndValues ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, keysAndValues...)
	}
}
