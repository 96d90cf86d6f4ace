// Package filter holds the small numeric helpers shared by the control core
// and its collaborators: clamps, range mapping and blending filters.
package filter

import "golang.org/x/exp/constraints"

// Number is any integer or floating point type.
type Number interface {
	constraints.Integer | constraints.Float
}

// Constrain limits value to [lo, hi].
func Constrain[T Number](value, lo, hi T) T {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// ConstrainAbs limits value to [-limit, +limit]. limit must not be negative.
func ConstrainAbs[T constraints.Signed | constraints.Float](value, limit T) T {
	return Constrain(value, -limit, limit)
}

// Abs returns the absolute value of a signed integer or float.
func Abs[T constraints.Signed | constraints.Float](value T) T {
	if value < 0 {
		return -value
	}
	return value
}

// MapRange maps value linearly from [fromMin, fromMax] to [toMin, toMax].
// The result is not clamped.
func MapRange[T constraints.Float](value, fromMin, fromMax, toMin, toMax T) T {
	return (value-fromMin)/(fromMax-fromMin)*(toMax-toMin) + toMin
}
