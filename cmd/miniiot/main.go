// miniiot - device runtime bridging virtual pins to an MQTT broker.
//
// The process connects to the configured broker, publishes pin values on
// device/<eui>/data, heartbeats on device/<eui>/status, and applies
// commands received on device/<eui>/command. It runs until SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nerrad567/miniiot/internal/codec"
	"github.com/nerrad567/miniiot/internal/infrastructure/config"
	"github.com/nerrad567/miniiot/internal/infrastructure/influxdb"
	"github.com/nerrad567/miniiot/internal/infrastructure/logging"
	"github.com/nerrad567/miniiot/internal/infrastructure/mqtt"
	"github.com/nerrad567/miniiot/internal/infrastructure/sysinfo"
	"github.com/nerrad567/miniiot/internal/runtime"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the device and polls it until ctx is cancelled.
// Broker unavailability is not an error: the runtime keeps retrying.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting miniiot",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"level", cfg.Logging.Level,
		"debug", cfg.Logging.Debug,
	)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	eui := cfg.Device.ResolveEUI(hostname)
	log = log.With("device_eui", eui)

	msgCodec, err := codec.ByName(strings.ToLower(cfg.Codec))
	if err != nil {
		return fmt.Errorf("selecting codec: %w", err)
	}

	mqttClient := mqtt.New(cfg.MQTT, mqtt.NewTopics(eui))
	mqttClient.SetLogger(log)
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()

	opts := runtime.Options{
		DeviceEUI:         eui,
		Transport:         mqttClient,
		Username:          cfg.MQTT.Auth.Username,
		Password:          cfg.MQTT.Auth.Password,
		AutoSend:          cfg.Runtime.AutoSend.Enabled,
		SendInterval:      cfg.Runtime.AutoSend.Interval,
		HeartbeatInterval: cfg.Runtime.HeartbeatInterval,
		ReconnectCooldown: cfg.Runtime.ReconnectCooldown,
		Codec:             msgCodec,
		Probe:             sysinfo.NewMemoryProbe(log),
		Logger:            log,
	}

	influxClient, err := connectTelemetry(ctx, cfg.InfluxDB, log)
	if err != nil {
		return err
	}
	if influxClient != nil {
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		opts.Telemetry = influxClient
	}

	device, err := runtime.New(opts)
	if err != nil {
		return fmt.Errorf("creating runtime: %w", err)
	}

	for _, p := range cfg.Device.Pins {
		device.SetPinName(p.Index, p.Name)
	}

	device.OnConnected(func() {
		log.Info("device online", "broker", cfg.MQTT.BrokerAddress())
	})
	device.OnDisconnected(func() {
		log.Warn("device offline", "broker", cfg.MQTT.BrokerAddress())
	})

	log.Info("miniiot started",
		"broker", cfg.MQTT.BrokerAddress(),
		"codec", msgCodec.Name(),
		"auto_send", cfg.Runtime.AutoSend.Enabled,
		"poll_interval", cfg.Runtime.PollInterval,
	)

	device.Run(ctx, cfg.Runtime.PollInterval)

	log.Info("shutdown signal received")
	return nil
}

// connectTelemetry opens the optional InfluxDB mirror. It returns nil when
// the mirror is disabled.
func connectTelemetry(ctx context.Context, cfg config.InfluxDBConfig, log *logging.Logger) (*influxdb.Client, error) {
	client, err := influxdb.Connect(ctx, cfg)
	if errors.Is(err, influxdb.ErrDisabled) {
		log.Info("InfluxDB disabled")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to InfluxDB: %w", err)
	}

	client.SetOnError(func(err error) {
		log.Error("InfluxDB write error", "error", err)
	})
	log.Info("InfluxDB connected",
		"url", cfg.URL,
		"org", cfg.Org,
		"bucket", cfg.Bucket,
	)
	return client, nil
}

// getConfigPath returns the configuration file path.
// Checks MINIIOT_CONFIG environment variable first, falls back to default.
func getConfigPath() string {
	if path := os.Getenv("MINIIOT_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
