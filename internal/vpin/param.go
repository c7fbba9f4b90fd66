package vpin

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// MaxParams is the most values a single command can carry.
const MaxParams = 8

// Param is the ordered list of numbers carried by one inbound command.
// It is rebuilt for every command and never retained across commands.
type Param struct {
	values [MaxParams]float64
	n      int
}

// NewParam builds a Param from values, dropping anything past MaxParams.
func NewParam(values ...float64) Param {
	var p Param
	for _, v := range values {
		p.Add(v)
	}
	return p
}

// Add appends v. Values past MaxParams are dropped.
func (p *Param) Add(v float64) {
	if p.n < MaxParams {
		p.values[p.n] = v
		p.n++
	}
}

// Len returns the number of values held.
func (p Param) Len() int { return p.n }

// At returns the i-th value, or 0 when i is out of range.
func (p Param) At(i int) float64 {
	if i < 0 || i >= p.n {
		return 0
	}
	return p.values[i]
}

// AsFloat returns the first value, or 0 when empty.
func (p Param) AsFloat() float64 { return p.At(0) }

// AsInt returns the first value truncated toward zero.
func (p Param) AsInt() int { return int(p.AsFloat()) }

// AsString returns the first value formatted with two decimals.
func (p Param) AsString() string {
	return strconv.FormatFloat(p.AsFloat(), 'f', 2, 64)
}

// Values returns a copy of the held values.
func (p Param) Values() []float64 {
	out := make([]float64, p.n)
	copy(out, p.values[:p.n])
	return out
}

// DecodeParam converts a decoded value field into a Param.
//
// raw is whatever the message codec produced for the field: a number of any
// width, a bool, a numeric string, nil, or a list of those. A scalar yields a
// one-element Param; a list yields one element per entry, truncated to
// MaxParams. A nil raw (field absent) yields an empty Param.
func DecodeParam(raw any) Param {
	var p Param
	switch v := raw.(type) {
	case nil:
	case []any:
		for _, e := range v {
			p.Add(Number(e))
		}
	default:
		p.Add(Number(v))
	}
	return p
}

// Number converts a single decoded scalar into a float64.
// Values that are not numeric, and NaN or ±Inf, convert to 0.
func Number(v any) float64 {
	f := number(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// IsFinite reports whether v is a finite number, a string holding one, or
// a non-numeric value. It is false for NaN and ±Inf in any representation.
func IsFinite(v any) bool {
	f := number(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case bool:
		if n {
			return 1
		}
		return 0
	case string:
		// Out-of-range strings parse to ±Inf and are caught by the callers.
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0
		}
		return f
	default:
		return 0
	}
}
