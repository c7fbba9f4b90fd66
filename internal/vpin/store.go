package vpin

import (
	"fmt"
	"strconv"
	"time"
)

// Capacity is the number of virtual pins a device exposes.
const Capacity = 32

// Pin is a snapshot of one virtual pin.
type Pin struct {
	// Index is the pin's position in the store. It never changes.
	Index int

	// Name is the label used as the key in published messages.
	// Defaults to "V<index>".
	Name string

	// Value is the current value. Multi-value writes keep only the first
	// component here.
	Value float64

	// Dirty is true when Value changed since the publish that last included it.
	Dirty bool

	// LastUpdate is the store clock reading at the last write.
	LastUpdate time.Duration
}

// ReadHook is invoked by Store.Read before the value is returned.
// It may refresh the pin by calling Write.
type ReadHook func()

// Store is the fixed-capacity collection of virtual pins.
type Store struct {
	pins      [Capacity]Pin
	readHooks [Capacity]ReadHook
	now       func() time.Duration
}

// NewStore creates a store with every pin zeroed, clean and named "V<index>".
//
// now supplies the timestamp recorded on writes; nil records zero.
func NewStore(now func() time.Duration) *Store {
	if now == nil {
		now = func() time.Duration { return 0 }
	}

	s := &Store{now: now}
	for i := range s.pins {
		s.pins[i] = Pin{
			Index: i,
			Name:  DefaultName(i),
		}
	}
	return s
}

// DefaultName returns the name a pin carries until it is renamed.
func DefaultName(index int) string {
	return "V" + strconv.Itoa(index)
}

// InRange reports whether index addresses a pin.
func InRange(index int) bool {
	return index >= 0 && index < Capacity
}

func checkRange(index int) error {
	if !InRange(index) {
		return fmt.Errorf("%w: %d", ErrPinOutOfRange, index)
	}
	return nil
}

// Write sets the pin value, marks it dirty and stamps the update time.
// Out-of-range indices are ignored.
func (s *Store) Write(index int, value float64) {
	_ = s.TryWrite(index, value)
}

// TryWrite is Write but reports an out-of-range index.
func (s *Store) TryWrite(index int, value float64) error {
	if err := checkRange(index); err != nil {
		return err
	}

	p := &s.pins[index]
	p.Value = value
	p.Dirty = true
	p.LastUpdate = s.now()
	return nil
}

// Read returns the pin value, running the pin's read hook first if one is
// registered. Out-of-range indices return 0.
func (s *Store) Read(index int) float64 {
	if !InRange(index) {
		return 0
	}
	if hook := s.readHooks[index]; hook != nil {
		hook()
	}
	return s.pins[index].Value
}

// Value returns the stored value without running the read hook.
func (s *Store) Value(index int) float64 {
	if !InRange(index) {
		return 0
	}
	return s.pins[index].Value
}

// OnRead registers (or with nil, clears) the read hook for a pin.
func (s *Store) OnRead(index int, hook ReadHook) {
	if InRange(index) {
		s.readHooks[index] = hook
	}
}

// Rename changes the pin's published name. Out-of-range indices and names
// held by another pin are ignored.
func (s *Store) Rename(index int, name string) {
	_ = s.TryRename(index, name)
}

// TryRename is Rename but reports why a rename was refused. Names are
// unique across the store because the drains key their results by name.
func (s *Store) TryRename(index int, name string) error {
	if err := checkRange(index); err != nil {
		return err
	}
	for i := range s.pins {
		if i != index && s.pins[i].Name == name {
			return fmt.Errorf("%w: %q is pin %d", ErrDuplicatePinName, name, i)
		}
	}
	s.pins[index].Name = name
	return nil
}

// Name returns the pin's name, or "" for an out-of-range index.
func (s *Store) Name(index int) string {
	if !InRange(index) {
		return ""
	}
	return s.pins[index].Name
}

// Lookup returns a copy of the pin at index.
func (s *Store) Lookup(index int) (Pin, bool) {
	if !InRange(index) {
		return Pin{}, false
	}
	return s.pins[index], true
}

// MarkDirty flags one pin for the next publish. Out-of-range indices are ignored.
func (s *Store) MarkDirty(index int) {
	if InRange(index) {
		s.pins[index].Dirty = true
	}
}

// MarkAllDirty flags every pin for the next publish.
func (s *Store) MarkAllDirty() {
	for i := range s.pins {
		s.pins[i].Dirty = true
	}
}

// DirtyCount returns the number of pins waiting to be published.
func (s *Store) DirtyCount() int {
	n := 0
	for i := range s.pins {
		if s.pins[i].Dirty {
			n++
		}
	}
	return n
}

// DrainDirty returns name→value for every dirty pin and clears their flags.
// The result is empty (never nil) when nothing is dirty.
func (s *Store) DrainDirty() map[string]float64 {
	out := make(map[string]float64)
	for i := range s.pins {
		p := &s.pins[i]
		if !p.Dirty {
			continue
		}
		out[p.Name] = p.Value
		p.Dirty = false
	}
	return out
}

// DrainAll returns name→value for every pin and clears all dirty flags.
func (s *Store) DrainAll() map[string]float64 {
	out := make(map[string]float64, Capacity)
	for i := range s.pins {
		p := &s.pins[i]
		out[p.Name] = p.Value
		p.Dirty = false
	}
	return out
}

// DrainPin returns name→value for one pin and clears its dirty flag.
// The result is empty for an out-of-range index.
func (s *Store) DrainPin(index int) map[string]float64 {
	out := make(map[string]float64, 1)
	if !InRange(index) {
		return out
	}
	p := &s.pins[index]
	out[p.Name] = p.Value
	p.Dirty = false
	return out
}

// Snapshot returns name→value for the selected pins without touching their
// dirty flags. Out-of-range indices are skipped.
func (s *Store) Snapshot(indices ...int) map[string]float64 {
	out := make(map[string]float64, len(indices))
	for _, i := range indices {
		if !InRange(i) {
			continue
		}
		out[s.pins[i].Name] = s.pins[i].Value
	}
	return out
}
