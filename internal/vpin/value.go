package vpin

import (
	"strconv"
	"strings"
)

// Shape identifies how many components a Value carries.
type Shape uint8

const (
	// ShapeScalar is a single number.
	ShapeScalar Shape = iota + 1
	// ShapePair is two numbers, e.g. a coordinate.
	ShapePair
	// ShapeTriple is three numbers, e.g. an RGB colour.
	ShapeTriple
)

// Value is what the host writes to a pin: a scalar, a pair or a triple.
// Only the first component is stored on the pin.
type Value struct {
	shape Shape
	c     [3]float64
}

// Scalar returns a one-component value.
func Scalar(v float64) Value { return Value{shape: ShapeScalar, c: [3]float64{v}} }

// Pair returns a two-component value.
func Pair(a, b float64) Value { return Value{shape: ShapePair, c: [3]float64{a, b}} }

// Triple returns a three-component value.
func Triple(a, b, c float64) Value { return Value{shape: ShapeTriple, c: [3]float64{a, b, c}} }

// Shape returns the value's shape. The zero Value reports ShapeScalar.
func (v Value) Shape() Shape {
	if v.shape == 0 {
		return ShapeScalar
	}
	return v.shape
}

// First returns the component stored on the pin.
func (v Value) First() float64 { return v.c[0] }

// Components returns the value's components in order.
func (v Value) Components() []float64 {
	n := int(v.Shape())
	out := make([]float64, n)
	copy(out, v.c[:n])
	return out
}

// String renders a scalar as "x" and other shapes as "[x, y(, z)]".
func (v Value) String() string {
	parts := v.Components()
	if len(parts) == 1 {
		return strconv.FormatFloat(parts[0], 'f', -1, 64)
	}
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = strconv.FormatFloat(p, 'f', -1, 64)
	}
	return "[" + strings.Join(s, ", ") + "]"
}
