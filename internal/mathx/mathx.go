// Package mathx holds small generic numeric helpers shared by the computers.
package mathx

import "golang.org/x/exp/constraints"

// Number is any ordered numeric type.
type Number interface {
	constraints.Integer | constraints.Float
}

// Clamp constrains v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MapRange maps v linearly from [fromMin, fromMax] onto [toMin, toMax].
// The result is not clamped.
func MapRange[T Number](v, fromMin, fromMax, toMin, toMax T) T {
	return (v-fromMin)*(toMax-toMin)/(fromMax-fromMin) + toMin
}

// Abs returns the absolute value of v.
func Abs[T constraints.Signed | constraints.Float](v T) T {
	if v < 0 {
		return -v
	}
	return v
}
