package mqtt

import (
	"context"
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/miniiot/internal/infrastructure/config"
)

// Client wraps paho.mqtt.golang as the device transport.
//
// Unlike a long-lived service client it never reconnects on its own: each
// call to Connect is one bounded attempt, and the caller decides when to
// try again. Inbound messages are not handed to the caller from paho's
// goroutines. They are queued and delivered synchronously by Loop.
//
// Thread Safety:
//   - Connect, Publish, Subscribe, Loop and Close are meant to be called
//     from the goroutine that drives the device runtime.
//   - The paho network goroutines only touch the inbound queue and the
//     connection flag, both of which are synchronised.
type Client struct {
	cfg    config.MQTTConfig
	topics Topics

	client   pahomqtt.Client
	clientMu sync.RWMutex

	// inbound is the single-producer queue filled by paho, drained by Loop.
	inbound chan Message

	handler MessageHandler

	// connected tracks current connection state.
	connected bool
	connMu    sync.RWMutex

	// logger for error/panic logging (optional, set via SetLogger).
	logger   Logger
	loggerMu sync.RWMutex
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
}

// Message is one inbound publish waiting for Loop.
type Message struct {
	Topic   string
	Payload []byte
}

// MessageHandler receives messages delivered by Loop.
type MessageHandler func(topic string, payload []byte)

// New creates a disconnected client for the device identified by topics.
// The status topic carries the client's last will.
func New(cfg config.MQTTConfig, topics Topics) *Client {
	size := cfg.QueueSize
	if size < 1 {
		size = 1
	}
	return &Client{
		cfg:     cfg,
		topics:  topics,
		inbound: make(chan Message, size),
	}
}

// Connect makes one connection attempt, waiting at most cfg.ConnectTimeout.
// An empty username connects anonymously. Failures wrap ErrConnectionFailed.
func (c *Client) Connect(clientID, username, password string) error {
	if clientID == "" {
		return ErrInvalidClientID
	}

	opts := buildClientOptions(c.cfg, clientID, username, password, c.topics.Status())
	opts.SetDefaultPublishHandler(func(_ pahomqtt.Client, msg pahomqtt.Message) {
		c.enqueue(msg.Topic(), msg.Payload())
	})
	opts.SetConnectionLostHandler(c.handleDisconnect)

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(c.cfg.ConnectTimeout) {
		client.Disconnect(0)
		return fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, c.cfg.ConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c.clientMu.Lock()
	c.client = client
	c.clientMu.Unlock()

	c.connMu.Lock()
	c.connected = true
	c.connMu.Unlock()

	return nil
}

// handleDisconnect is called by paho when lost drops its connection.
// Events from a client other than the current one are ignored: a late
// callback from an earlier attempt must not clear the newer link's flag.
func (c *Client) handleDisconnect(lost pahomqtt.Client, err error) {
	if c.getClient() != lost {
		return
	}

	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	if logger := c.getLogger(); logger != nil {
		logger.Warn("MQTT connection lost", "error", err)
	}
}

// IsConnected returns the current connection state.
func (c *Client) IsConnected() bool {
	c.connMu.RLock()
	connected := c.connected
	c.connMu.RUnlock()
	if !connected {
		return false
	}

	client := c.getClient()
	return client != nil && client.IsConnected()
}

// Subscribe subscribes to topic. Matching messages are queued for Loop.
func (c *Client) Subscribe(topic string) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.getClient().Subscribe(topic, qos, nil)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}
	return nil
}

// Publish sends payload to topic at QoS 0, not retained.
func (c *Client) Publish(topic string, payload []byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.getClient().Publish(topic, qos, false, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// SetMessageHandler sets the receiver for messages delivered by Loop.
func (c *Client) SetMessageHandler(handler func(topic string, payload []byte)) {
	c.handler = handler
}

// Loop delivers the messages queued since the last call and returns how
// many were handed to the handler. It never blocks: messages arriving
// while Loop runs wait for the next call.
func (c *Client) Loop() int {
	pending := len(c.inbound)
	delivered := 0
	for i := 0; i < pending; i++ {
		msg := <-c.inbound
		if c.handler == nil {
			continue
		}
		c.deliver(msg)
		delivered++
	}
	return delivered
}

// Pending returns the number of queued inbound messages.
func (c *Client) Pending() int {
	return len(c.inbound)
}

// enqueue is the paho-side producer. A full queue drops the message.
func (c *Client) enqueue(topic string, payload []byte) {
	msg := Message{Topic: topic, Payload: append([]byte(nil), payload...)}
	select {
	case c.inbound <- msg:
	default:
		if logger := c.getLogger(); logger != nil {
			logger.Warn("MQTT inbound queue full, message dropped",
				"topic", topic,
				"queue_size", cap(c.inbound),
			)
		}
	}
}

// deliver runs the handler with panic recovery.
func (c *Client) deliver(msg Message) {
	defer func() {
		if r := recover(); r != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Error("MQTT handler panic recovered",
					"topic", msg.Topic,
					"panic", r,
				)
			}
		}
	}()

	c.handler(msg.Topic, msg.Payload)
}

// Close publishes the graceful offline marker and disconnects.
// It is safe to call on a client that never connected.
func (c *Client) Close() error {
	client := c.getClient()
	if client == nil {
		return nil
	}

	if c.IsConnected() {
		token := client.Publish(c.topics.Status(), qos, false, []byte(offlinePayload))
		token.WaitTimeout(defaultPublishTimeout)
	}

	client.Disconnect(defaultDisconnectQuiesce)

	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	return nil
}

// HealthCheck reports ErrNotConnected when the client has no live connection.
func (c *Client) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("mqtt health check: %w", ctx.Err())
	default:
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// SetLogger sets a logger for error and panic logging.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

func (c *Client) getClient() pahomqtt.Client {
	c.clientMu.RLock()
	defer c.clientMu.RUnlock()
	return c.client
}
