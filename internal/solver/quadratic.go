// Package solver provides the numerical root finders used to invert
// projection and distortion equations that lack closed forms.
package solver

import "math"

// QuadraticRoots returns the real roots of a*x^2 + b*x + c = 0.
//
// The stable form q = -(b + sign(b)*sqrt(b^2-4ac))/2 is used so that b and
// the square root never cancel. sign(0) is taken as positive. ok is false
// when the discriminant is negative.
func QuadraticRoots(a, b, c float64) (r1, r2 float64, ok bool) {
	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return 0, 0, false
	}

	sign := 1.0
	if b < 0 {
		sign = -1
	}

	q := -(b + sign*math.Sqrt(discriminant)) / 2

	return q / a, c / q, true
}

// AlmostEqual reports whether a and b are within ulps units in the last
// place of each other, scaled by their magnitude.
func AlmostEqual(a, b float64, ulps int) bool {
	diff := math.Abs(a - b)
	return diff <= epsilon*math.Abs(a+b)*float64(ulps) || diff < minNormal
}

// AlmostZero reports whether x is within ulps machine epsilons of zero.
func AlmostZero(x float64, ulps int) bool {
	return math.Abs(x) <= epsilon*float64(ulps)
}

const (
	epsilon   = 2.220446049250313e-16 // 2^-52
	minNormal = 2.2250738585072014e-308
)
