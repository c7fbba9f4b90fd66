package runtime

import "errors"

// Construction errors returned by New.
var (
	// ErrNoTransport is returned when Options.Transport is nil.
	ErrNoTransport = errors.New("runtime: transport is required")

	// ErrNoDeviceEUI is returned when Options.DeviceEUI is empty.
	ErrNoDeviceEUI = errors.New("runtime: device EUI is required")
)
