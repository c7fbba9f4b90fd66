package mqtt

import (
	"crypto/tls"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/miniiot/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultPublishTimeout bounds the wait for a publish or subscribe token.
	defaultPublishTimeout = 2 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 250 // milliseconds

	// defaultKeepAlive is the keepalive interval for the connection.
	defaultKeepAlive = 15 * time.Second

	// qos is the only QoS level the device uses.
	qos byte = 0

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12
)

// offlinePayload is the last will and the graceful shutdown marker.
const offlinePayload = `{"status":"offline"}`

// buildClientOptions creates paho MQTT options for one connection attempt.
//
// This configures:
//   - Broker URL (tcp:// or ssl:// based on TLS setting)
//   - Client ID and optional credentials
//   - Clean session, no automatic reconnect (the runtime owns retries)
//   - Last Will on the status topic
//   - TLS configuration (if enabled)
func buildClientOptions(cfg config.MQTTConfig, clientID, username, password, willTopic string) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port))

	opts.SetClientID(clientID)

	// Authentication (anonymous when no username)
	if username != "" {
		opts.SetUsername(username)
		opts.SetPassword(password)
	}

	opts.SetCleanSession(true)

	// Reconnect is driven by the runtime's cooldown-gated state machine.
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)

	opts.SetConnectTimeout(cfg.ConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	if willTopic != "" {
		opts.SetWill(willTopic, offlinePayload, qos, false)
	}

	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{
			MinVersion: tlsMinVersion,
		})
	}

	return opts
}
