package runtime

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testEUI = "dev01"

var errFakeRefused = errors.New("connection refused")

// fakeClock is a manually advanced Clock.
type fakeClock struct {
	now time.Duration
}

func (c *fakeClock) Now() time.Duration { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now += d }

type connectCall struct {
	clientID string
	username string
	password string
}

type publishedMessage struct {
	topic   string
	payload []byte
}

// fakeTransport records every call and delivers injected messages from Loop.
type fakeTransport struct {
	connected   bool
	failConnect bool
	publishErr  error

	connects   []connectCall
	subscribed []string
	published  []publishedMessage

	inbound []publishedMessage
	handler func(topic string, payload []byte)
}

func (f *fakeTransport) Connect(clientID, username, password string) error {
	f.connects = append(f.connects, connectCall{clientID, username, password})
	if f.failConnect {
		return errFakeRefused
	}
	f.connected = true
	return nil
}

func (f *fakeTransport) IsConnected() bool { return f.connected }

func (f *fakeTransport) Subscribe(topic string) error {
	f.subscribed = append(f.subscribed, topic)
	return nil
}

func (f *fakeTransport) Publish(topic string, payload []byte) error {
	f.published = append(f.published, publishedMessage{topic, payload})
	if !f.connected {
		return errors.New("not connected")
	}
	return f.publishErr
}

func (f *fakeTransport) Loop() int {
	pending := f.inbound
	f.inbound = nil
	for _, msg := range pending {
		f.handler(msg.topic, msg.payload)
	}
	return len(pending)
}

func (f *fakeTransport) SetMessageHandler(handler func(topic string, payload []byte)) {
	f.handler = handler
}

func (f *fakeTransport) inject(payload string) {
	f.inbound = append(f.inbound, publishedMessage{"device/" + testEUI + "/command", []byte(payload)})
}

// drop simulates the broker going away.
func (f *fakeTransport) drop() {
	f.connected = false
	f.failConnect = true
}

// on returns the messages published to topic, clearing nothing.
func (f *fakeTransport) on(topic string) []publishedMessage {
	var out []publishedMessage
	for _, m := range f.published {
		if m.topic == topic {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeTransport) reset() { f.published = nil }

// dataMessages decodes everything published on the data topic.
func (f *fakeTransport) dataMessages(t *testing.T) []DataMessage {
	t.Helper()
	var out []DataMessage
	for _, m := range f.on("device/" + testEUI + "/data") {
		var msg DataMessage
		require.NoError(t, json.Unmarshal(m.payload, &msg))
		out = append(out, msg)
	}
	return out
}

type fakeProbe struct{ free uint64 }

func (p fakeProbe) FreeMemory() uint64 { return p.free }

type fakeSink struct {
	writes []map[string]float64
}

func (s *fakeSink) WritePins(_ string, pins map[string]float64) {
	s.writes = append(s.writes, pins)
}

// newTestRuntime builds a runtime on fakes with auto-send on and heartbeats off.
func newTestRuntime(t *testing.T, mutate ...func(*Options)) (*Runtime, *fakeTransport, *fakeClock) {
	t.Helper()

	transport := &fakeTransport{}
	clock := &fakeClock{}
	opts := Options{
		DeviceEUI:         testEUI,
		Transport:         transport,
		AutoSend:          true,
		SendInterval:      5 * time.Second,
		ReconnectCooldown: 5 * time.Second,
		Clock:             clock,
	}
	for _, m := range mutate {
		m(&opts)
	}

	rt, err := New(opts)
	require.NoError(t, err)
	return rt, transport, clock
}

// connectedRuntime is newTestRuntime after one successful Poll, with the
// connect traffic cleared.
func connectedRuntime(t *testing.T, mutate ...func(*Options)) (*Runtime, *fakeTransport, *fakeClock) {
	t.Helper()

	rt, transport, clock := newTestRuntime(t, mutate...)
	rt.Poll()
	require.True(t, rt.Connected())
	transport.reset()
	return rt, transport, clock
}
