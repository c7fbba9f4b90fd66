// Package vpin holds the device's virtual pins.
//
// A virtual pin is a named, indexed numeric slot that is decoupled from any
// physical hardware pin. The Store owns a fixed-capacity array of pins and
// tracks which of them changed since they were last published (the dirty
// set), which drives incremental telemetry.
//
// # Bounds
//
// Every pin operation takes an integer index. Indices outside [0, Capacity)
// are ignored: writes and renames do nothing, reads return 0 and names
// return "". Callers that need to know about the ignored case use the
// Try* variants, which return ErrPinOutOfRange.
//
// # Params
//
// Commands from the broker carry a value field that is either a scalar or a
// list. DecodeParam turns it into a Param of at most MaxParams numbers.
// Only the first number becomes the pin value; the rest are visible to the
// write hook for the duration of the command.
//
// # Thread Safety
//
// Store is not safe for concurrent use. It is owned by a single runtime and
// mutated only from its poll goroutine. Read hooks run synchronously and may
// call Write on the same store.
package vpin
