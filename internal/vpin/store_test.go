package vpin

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(d time.Duration) func() time.Duration {
	return func() time.Duration { return d }
}

func TestNewStore_Defaults(t *testing.T) {
	s := NewStore(nil)

	for i := 0; i < Capacity; i++ {
		p, ok := s.Lookup(i)
		require.True(t, ok)
		assert.Equal(t, i, p.Index)
		assert.Equal(t, DefaultName(i), p.Name)
		assert.Zero(t, p.Value)
		assert.False(t, p.Dirty)
	}
	assert.Equal(t, "V7", s.Name(7))
	assert.Zero(t, s.DirtyCount())
}

func TestWriteThenRead(t *testing.T) {
	s := NewStore(fixedClock(1500 * time.Millisecond))

	values := []float64{0, 1, -1, 42, 3.14159, 1e9, -273.15}
	for i := 0; i < Capacity; i++ {
		v := values[i%len(values)]
		s.Write(i, v)
		assert.Equal(t, v, s.Read(i), "pin %d", i)

		p, _ := s.Lookup(i)
		assert.True(t, p.Dirty)
		assert.Equal(t, 1500*time.Millisecond, p.LastUpdate)
	}
}

func TestOutOfRange_NoOp(t *testing.T) {
	indices := []int{-1, -100, Capacity, Capacity + 1, 1 << 20}

	for _, idx := range indices {
		s := NewStore(nil)
		before := s.Snapshot(allIndices()...)

		s.Write(idx, 99)
		s.Rename(idx, "boom")
		s.MarkDirty(idx)
		s.OnRead(idx, func() { t.Fatal("hook must not be stored") })

		assert.Zero(t, s.Read(idx))
		assert.Zero(t, s.Value(idx))
		assert.Equal(t, "", s.Name(idx))
		_, ok := s.Lookup(idx)
		assert.False(t, ok)
		assert.Empty(t, s.DrainPin(idx))
		assert.Equal(t, before, s.Snapshot(allIndices()...))
		assert.Zero(t, s.DirtyCount())
	}
}

func TestTryVariants_ReportOutOfRange(t *testing.T) {
	s := NewStore(nil)

	err := s.TryWrite(Capacity, 1)
	assert.True(t, errors.Is(err, ErrPinOutOfRange))

	err = s.TryRename(-1, "x")
	assert.True(t, errors.Is(err, ErrPinOutOfRange))

	require.NoError(t, s.TryWrite(0, 5))
	require.NoError(t, s.TryRename(0, "temp"))
	assert.Equal(t, "temp", s.Name(0))
	assert.Equal(t, 5.0, s.Value(0))
}

func TestRename_DuplicateNameRefused(t *testing.T) {
	s := NewStore(nil)
	require.NoError(t, s.TryRename(3, "temp"))

	err := s.TryRename(5, "temp")
	assert.ErrorIs(t, err, ErrDuplicatePinName)
	assert.Equal(t, "V5", s.Name(5))

	assert.ErrorIs(t, s.TryRename(6, "V7"), ErrDuplicatePinName)

	s.Rename(5, "temp")
	assert.Equal(t, "V5", s.Name(5))

	require.NoError(t, s.TryRename(3, "temp"), "a pin may keep its own name")

	s.Write(3, 1)
	s.Write(5, 2)
	assert.Len(t, s.DrainDirty(), 2, "distinct names keep both values")
}

func TestRead_InvokesHook(t *testing.T) {
	s := NewStore(nil)
	calls := 0
	s.OnRead(4, func() {
		calls++
		s.Write(4, 21.5)
	})

	assert.Equal(t, 21.5, s.Read(4))
	assert.Equal(t, 1, calls)

	// Value skips the hook.
	assert.Equal(t, 21.5, s.Value(4))
	assert.Equal(t, 1, calls)

	s.OnRead(4, nil)
	s.Read(4)
	assert.Equal(t, 1, calls)
}

func TestDrainDirty_ClearsExactlyOnce(t *testing.T) {
	s := NewStore(nil)
	s.Write(1, 10)
	s.Write(2, 20)
	s.Rename(2, "humidity")

	first := s.DrainDirty()
	assert.Equal(t, map[string]float64{"V1": 10, "humidity": 20}, first)

	second := s.DrainDirty()
	assert.NotNil(t, second)
	assert.Empty(t, second)
}

func TestDrainDirty_CoalescesWrites(t *testing.T) {
	s := NewStore(nil)
	s.Write(3, 1)
	s.Write(3, 2)
	s.Write(3, 3)

	assert.Equal(t, map[string]float64{"V3": 3}, s.DrainDirty())
}

func TestMarkAllDirty_DrainsEveryPin(t *testing.T) {
	s := NewStore(nil)
	s.Write(0, 1)
	s.MarkAllDirty()

	assert.Equal(t, Capacity, s.DirtyCount())
	got := s.DrainDirty()
	assert.Len(t, got, Capacity)
	assert.Equal(t, 1.0, got["V0"])
	assert.Zero(t, s.DirtyCount())
}

func TestDrainAll(t *testing.T) {
	s := NewStore(nil)
	s.Write(5, 7)

	got := s.DrainAll()
	assert.Len(t, got, Capacity)
	assert.Equal(t, 7.0, got["V5"])
	assert.Zero(t, s.DirtyCount())
}

func TestDrainPin_LeavesOthersDirty(t *testing.T) {
	s := NewStore(nil)
	s.Write(1, 1)
	s.Write(2, 2)

	assert.Equal(t, map[string]float64{"V2": 2}, s.DrainPin(2))
	assert.Equal(t, 1, s.DirtyCount())
	assert.Equal(t, map[string]float64{"V1": 1}, s.DrainDirty())
}

func TestSnapshot_KeepsDirtyFlags(t *testing.T) {
	s := NewStore(nil)
	s.Write(1, 1)

	got := s.Snapshot(1, 2, -1, Capacity)
	assert.Equal(t, map[string]float64{"V1": 1, "V2": 0}, got)
	assert.Equal(t, 1, s.DirtyCount())
}

func allIndices() []int {
	out := make([]int, Capacity)
	for i := range out {
		out[i] = i
	}
	return out
}
