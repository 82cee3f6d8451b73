package solver

import (
	"errors"
	"math"
)

var (
	// ErrNotBracketed is returned when f(xl)-y and f(xh)-y have the same sign.
	ErrNotBracketed = errors.New("no root in bracket")
	// ErrNoConvergence is returned when an iteration budget is exhausted.
	ErrNoConvergence = errors.New("root finder did not converge")
)

const (
	// DefaultULPs is the tolerance used by Bracketed and Secant.
	DefaultULPs = 2

	bracketedMaxIterations = 1100
	secantMaxIterations    = 100
)

// Bracketed finds x in [xl, xh] with f(x) = y. The bracket may be given in
// either order but f(xl)-y and f(xh)-y must straddle zero.
//
// Illinois false position is used while it keeps shrinking the bracket;
// whenever a step fails to halve it the next step bisects instead, which
// bounds the work to that of plain bisection.
func Bracketed(f func(float64) float64, y, xl, xh float64) (float64, error) {
	gl := f(xl) - y
	gh := f(xh) - y

	switch {
	case gl == 0:
		return xl, nil
	case gh == 0:
		return xh, nil
	case math.Signbit(gl) == math.Signbit(gh):
		return 0, ErrNotBracketed
	}

	side := 0
	prev := math.Inf(1)

	for i := 0; i < bracketedMaxIterations; i++ {
		cur := math.Abs(xh - xl)

		var x float64
		if cur > prev/2 {
			x = xl + (xh-xl)/2
		} else {
			x = xh - gh*(xh-xl)/(gh-gl)
			if !(x > math.Min(xl, xh) && x < math.Max(xl, xh)) {
				x = xl + (xh-xl)/2
			}
		}
		prev = cur

		g := f(x) - y
		if g == 0 {
			return x, nil
		}

		if math.Signbit(g) == math.Signbit(gh) {
			xh, gh = x, g
			if side == 1 {
				gl /= 2
			}
			side = 1
		} else {
			xl, gl = x, g
			if side == -1 {
				gh /= 2
			}
			side = -1
		}

		if converged(xl, xh, DefaultULPs) {
			if math.Abs(gl) < math.Abs(gh) {
				return xl, nil
			}
			return xh, nil
		}
	}

	return 0, ErrNoConvergence
}

// Secant finds x near x0 with f(x) = y using the secant method. No
// convergence is promised for functions that misbehave near x0; the search
// gives up after a fixed number of iterations.
func Secant(f func(float64) float64, y, x0 float64) (float64, error) {
	h := 1e-4
	if x0 != 0 {
		h = math.Abs(x0) * 1e-4
	}

	x1 := x0 + h
	g0 := f(x0) - y
	if g0 == 0 {
		return x0, nil
	}
	g1 := f(x1) - y

	for i := 0; i < secantMaxIterations; i++ {
		if g1 == 0 {
			return x1, nil
		}
		if g1 == g0 {
			if AlmostEqual(x0, x1, DefaultULPs) {
				return x1, nil
			}
			return 0, ErrNoConvergence
		}

		x2 := x1 - g1*(x1-x0)/(g1-g0)
		if math.IsNaN(x2) || math.IsInf(x2, 0) {
			return 0, ErrNoConvergence
		}

		if AlmostEqual(x2, x1, DefaultULPs) {
			return x2, nil
		}

		x0, g0 = x1, g1
		x1, g1 = x2, f(x2)-y
	}

	return 0, ErrNoConvergence
}

func converged(xl, xh float64, ulps int) bool {
	scale := math.Max(math.Abs(xl), math.Abs(xh))
	return math.Abs(xh-xl) <= float64(ulps)*epsilon*scale
}
