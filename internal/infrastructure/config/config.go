package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// AutoEUI asks the loader to derive the device EUI from the host name.
const AutoEUI = "auto"

// maxPins mirrors vpin.Capacity; config does not import domain packages.
const maxPins = 32

// Config is the root configuration structure for a miniiot device.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Device   DeviceConfig   `yaml:"device"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Runtime  RuntimeConfig  `yaml:"runtime"`
	Codec    string         `yaml:"codec"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DeviceConfig identifies the device and labels its pins.
type DeviceConfig struct {
	// EUI is the device's unique identifier. It is embedded in every topic.
	// "auto" derives a stable identifier from the host name.
	EUI string `yaml:"eui"`

	// Pins renames virtual pins at startup. Unlisted pins keep "V<index>".
	Pins []PinConfig `yaml:"pins"`
}

// PinConfig names one virtual pin.
type PinConfig struct {
	Index int    `yaml:"index"`
	Name  string `yaml:"name"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker MQTTBrokerConfig `yaml:"broker"`
	Auth   MQTTAuthConfig   `yaml:"auth"`

	// ConnectTimeout bounds a single connection attempt.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// QueueSize is the number of inbound messages buffered between polls.
	QueueSize int `yaml:"queue_size"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	TLS  bool   `yaml:"tls"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
// An empty username connects anonymously.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// RuntimeConfig controls the poll loop's scheduled work.
type RuntimeConfig struct {
	AutoSend AutoSendConfig `yaml:"auto_send"`

	// HeartbeatInterval is the status publication period. Zero disables heartbeats.
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`

	// ReconnectCooldown is the minimum gap between connection attempts.
	ReconnectCooldown time.Duration `yaml:"reconnect_cooldown"`

	// PollInterval is how often the host loop calls Poll.
	PollInterval time.Duration `yaml:"poll_interval"`
}

// AutoSendConfig controls interval-driven publication of dirty pins.
type AutoSendConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// InfluxDBConfig contains InfluxDB connection settings for the optional
// telemetry mirror.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`

	// Debug forces debug level regardless of Level.
	Debug bool `yaml:"debug"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: MINIIOT_SECTION_KEY
// For example: MINIIOT_MQTT_HOST, MINIIOT_DEVICE_EUI
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with the device defaults: auto-send every
// 5s, heartbeat every 60s, reconnect at most every 5s.
func defaultConfig() *Config {
	return &Config{
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host: "localhost",
				Port: 1883,
			},
			ConnectTimeout: 3 * time.Second,
			QueueSize:      32,
		},
		Runtime: RuntimeConfig{
			AutoSend: AutoSendConfig{
				Enabled:  true,
				Interval: 5 * time.Second,
			},
			HeartbeatInterval: 60 * time.Second,
			ReconnectCooldown: 5 * time.Second,
			PollInterval:      50 * time.Millisecond,
		},
		Codec: "json",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: MINIIOT_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Device
	if v := os.Getenv("MINIIOT_DEVICE_EUI"); v != "" {
		cfg.Device.EUI = v
	}

	// MQTT
	if v := os.Getenv("MINIIOT_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("MINIIOT_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("MINIIOT_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("MINIIOT_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("MINIIOT_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("MINIIOT_DEBUG"); v != "" {
		if debug, err := strconv.ParseBool(v); err == nil {
			cfg.Logging.Debug = debug
		}
	}
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	// Device validation
	if strings.TrimSpace(c.Device.EUI) == "" {
		errs = append(errs, "device.eui is required (or \"auto\")")
	}
	if strings.ContainsAny(c.Device.EUI, "/+#") {
		errs = append(errs, "device.eui must not contain MQTT topic separators or wildcards")
	}
	seen := make(map[int]bool, len(c.Device.Pins))
	for _, p := range c.Device.Pins {
		if p.Index < 0 || p.Index >= maxPins {
			errs = append(errs, fmt.Sprintf("device.pins: index %d out of range [0, %d)", p.Index, maxPins))
			continue
		}
		if seen[p.Index] {
			errs = append(errs, fmt.Sprintf("device.pins: index %d listed twice", p.Index))
		}
		seen[p.Index] = true
		if p.Name == "" {
			errs = append(errs, fmt.Sprintf("device.pins: index %d has an empty name", p.Index))
		}
	}
	errs = append(errs, duplicatePinNames(c.Device.Pins)...)

	// MQTT validation
	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.ConnectTimeout <= 0 {
		errs = append(errs, "mqtt.connect_timeout must be positive")
	}
	if c.MQTT.QueueSize < 1 {
		errs = append(errs, "mqtt.queue_size must be at least 1")
	}

	// Runtime validation
	if c.Runtime.AutoSend.Enabled && c.Runtime.AutoSend.Interval < 0 {
		errs = append(errs, "runtime.auto_send.interval must not be negative")
	}
	if c.Runtime.HeartbeatInterval < 0 {
		errs = append(errs, "runtime.heartbeat_interval must not be negative (0 disables)")
	}
	if c.Runtime.ReconnectCooldown < 0 {
		errs = append(errs, "runtime.reconnect_cooldown must not be negative")
	}
	if c.Runtime.PollInterval <= 0 {
		errs = append(errs, "runtime.poll_interval must be positive")
	}

	// Codec validation
	switch strings.ToLower(c.Codec) {
	case "", "json", "cbor":
	default:
		errs = append(errs, fmt.Sprintf("codec %q is not supported (json, cbor)", c.Codec))
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required when influxdb is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// ResolveEUI returns the configured EUI, deriving one from hostname when
// the EUI is "auto". The derived value is a name-based UUID, so it is the
// same on every start without being stored on the device.
func (d DeviceConfig) ResolveEUI(hostname string) string {
	if !strings.EqualFold(strings.TrimSpace(d.EUI), AutoEUI) {
		return d.EUI
	}
	id := uuid.NewSHA1(uuid.NameSpaceDNS, []byte(hostname))
	return strings.ReplaceAll(id.String(), "-", "")
}

// BrokerAddress returns "host:port" for logging.
func (m MQTTConfig) BrokerAddress() string {
	return fmt.Sprintf("%s:%d", m.Broker.Host, m.Broker.Port)
}

// duplicatePinNames reports configured names that would collide in data
// messages, which key pins by name. A name may not repeat, nor take the
// V<n> default of another pin, since names are applied one at a time.
func duplicatePinNames(pins []PinConfig) []string {
	var errs []string
	owner := make(map[string]int, len(pins))
	for _, p := range pins {
		if p.Index < 0 || p.Index >= maxPins || p.Name == "" {
			continue
		}
		if first, ok := owner[p.Name]; ok && first != p.Index {
			errs = append(errs, fmt.Sprintf("device.pins: name %q used by index %d and %d", p.Name, first, p.Index))
			continue
		}
		owner[p.Name] = p.Index

		if k, ok := defaultPinIndex(p.Name); ok && k != p.Index {
			errs = append(errs, fmt.Sprintf("device.pins: name %q is the default name of index %d", p.Name, k))
		}
	}
	return errs
}

// defaultPinIndex returns n when name is exactly the default "V<n>" of an
// in-range pin.
func defaultPinIndex(name string) (int, bool) {
	digits, ok := strings.CutPrefix(name, "V")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || strconv.Itoa(n) != digits || n < 0 || n >= maxPins {
		return 0, false
	}
	return n, true
}
