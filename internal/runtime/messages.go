package runtime

// Command payload field names.
const (
	fieldPin   = "pin"
	fieldValue = "value"
	fieldSync  = "sync"

	// syncAll is the sync token requesting every pin.
	syncAll = "all"
)

// Status marker values.
const (
	statusOnline = "online"
)

// DataMessage is published on device/<eui>/data.
type DataMessage struct {
	// DeviceEUI identifies the publishing device.
	DeviceEUI string `json:"deviceEui" cbor:"deviceEui"`

	// Timestamp is the runtime uptime in milliseconds.
	Timestamp int64 `json:"timestamp" cbor:"timestamp"`

	// Pins maps pin name to value.
	Pins map[string]float64 `json:"pins" cbor:"pins"`
}

// HeartbeatMessage is published on device/<eui>/status at the heartbeat interval.
type HeartbeatMessage struct {
	DeviceEUI string `json:"deviceEui" cbor:"deviceEui"`

	// Uptime is the runtime uptime in milliseconds.
	Uptime int64 `json:"uptime" cbor:"uptime"`

	// FreeHeap is the free memory reported by the resource probe, in bytes.
	FreeHeap uint64 `json:"freeHeap" cbor:"freeHeap"`
}

// StatusMarker is the minimal payload published on device/<eui>/status
// after every successful connect.
type StatusMarker struct {
	Status string `json:"status" cbor:"status"`
}
