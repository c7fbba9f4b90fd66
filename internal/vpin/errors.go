package vpin

import "errors"

var (
	// ErrPinOutOfRange is returned by the Try* operations when the index is
	// outside [0, Capacity).
	ErrPinOutOfRange = errors.New("vpin: pin index out of range")

	// ErrDuplicatePinName is returned by TryRename when another pin already
	// carries the name.
	ErrDuplicatePinName = errors.New("vpin: pin name already in use")
)
