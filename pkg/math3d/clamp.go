package math3d

import "golang.org/x/exp/constraints"

// Clamp returns v limited to the range [low, high].
func Clamp[T constraints.Ordered](v, low, high T) T {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
