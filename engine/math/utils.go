package math

import (
	gomath "math"

	"golang.org/x/exp/constraints"
)

const TwoPi = float32(2 * gomath.Pi)

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// Wrap maps f into [0, period), counting negative values back from period.
func Wrap[T constraints.Float](f, period T) T {
	r := T(gomath.Mod(float64(f), float64(period)))
	if r < 0 {
		r += period
	}
	// Adding period to a tiny negative remainder can round up to period itself.
	if r >= period {
		r = 0
	}
	return r
}
