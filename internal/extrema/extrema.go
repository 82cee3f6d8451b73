// Package extrema tracks admissible and observed value ranges for the
// numeric element types a map can be written in.
package extrema

import (
	"fmt"
	"math"
	"sync"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Number is any fixed width numeric type a map buffer may hold.
type Number interface {
	constraints.Integer | constraints.Float
}

// IsFloat reports whether T is a floating point type.
func IsFloat[T Number]() bool {
	half := 0.5
	return T(half) != 0
}

// Lowest returns the most negative finite value of T.
func Lowest[T Number]() T {
	var zero T
	bits := unsafe.Sizeof(zero) * 8

	if IsFloat[T]() {
		v := -math.MaxFloat64
		if bits == 32 {
			v = -math.MaxFloat32
		}
		return T(v)
	}

	if zero-1 > 0 {
		return 0
	}

	return -Highest[T]() - 1
}

// Highest returns the largest finite value of T.
func Highest[T Number]() T {
	var zero T
	bits := unsafe.Sizeof(zero) * 8

	if IsFloat[T]() {
		v := math.MaxFloat64
		if bits == 32 {
			v = math.MaxFloat32
		}
		return T(v)
	}

	if zero-1 > 0 {
		return T(^uint64(0) >> (64 - bits))
	}

	return T(uint64(1)<<(bits-1) - 1)
}

// InRange reports whether v is representable as T without overflow.
func InRange[T Number](v float64) bool {
	if math.IsNaN(v) {
		return IsFloat[T]()
	}
	if IsFloat[T]() && math.IsInf(v, 0) {
		return true
	}

	lo, hi := float64(Lowest[T]()), float64(Highest[T]())
	if v < lo || v > hi {
		return false
	}

	// The upper bound of 64 bit integers rounds up to a power of two that
	// does not fit.
	if !IsFloat[T]() && v == hi && float64(Highest[T]()-1) == hi {
		return false
	}

	return true
}

// Narrow converts v to T, rounding to the nearest integer for integral
// types and clamping into T's range.
func Narrow[T Number](v float64) T {
	if IsFloat[T]() {
		return T(v)
	}

	v = math.Round(v)
	if v <= float64(Lowest[T]()) {
		return Lowest[T]()
	}
	if v >= float64(Highest[T]()) {
		return Highest[T]()
	}

	return T(v)
}

// Extrema is an inclusive range of T values.
type Extrema[T Number] struct {
	Minimum T
	Maximum T
}

// Full returns the range spanning every finite value of T.
func Full[T Number]() Extrema[T] {
	return Extrema[T]{Minimum: Lowest[T](), Maximum: Highest[T]()}
}

// New builds a range from optional bounds. Missing bounds default to T's
// limits and given bounds are clamped into them.
func New[T Number](minimum, maximum *float64) (Extrema[T], error) {
	e := Full[T]()

	if minimum != nil {
		if math.IsNaN(*minimum) {
			return e, fmt.Errorf("minimum is not a number")
		}
		if *minimum > float64(e.Minimum) {
			e.Minimum = Narrow[T](*minimum)
		}
	}

	if maximum != nil {
		if math.IsNaN(*maximum) {
			return e, fmt.Errorf("maximum is not a number")
		}
		if *maximum < float64(e.Maximum) {
			e.Maximum = Narrow[T](*maximum)
		}
	}

	if e.Minimum > e.Maximum {
		return e, fmt.Errorf("minimum %v is greater than maximum %v", e.Minimum, e.Maximum)
	}

	return e, nil
}

// Contains reports whether v lies inside the range.
func (e Extrema[T]) Contains(v float64) bool {
	return v >= float64(e.Minimum) && v <= float64(e.Maximum)
}

// Tracker folds values into an observed range. It is safe for concurrent
// use; min and max are order independent so any fold order gives the same
// result.
type Tracker[T Number] struct {
	mu    sync.Mutex
	e     Extrema[T]
	valid bool
}

// Update folds v into the observed range.
func (t *Tracker[T]) Update(v T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fold(v, v)
}

// Merge folds a range observed elsewhere, such as by a single worker.
func (t *Tracker[T]) Merge(e Extrema[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fold(e.Minimum, e.Maximum)
}

// Reset forgets every observed value.
func (t *Tracker[T]) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.valid = false
	t.e = Extrema[T]{}
}

// Extrema returns the observed range and whether anything was observed.
func (t *Tracker[T]) Extrema() (Extrema[T], bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.e, t.valid
}

func (t *Tracker[T]) fold(lo, hi T) {
	if !t.valid {
		t.e = Extrema[T]{Minimum: lo, Maximum: hi}
		t.valid = true
		return
	}

	t.e.Minimum = min(t.e.Minimum, lo)
	t.e.Maximum = max(t.e.Maximum, hi)
}

// Local is an unsynchronised observed range for a single goroutine.
type Local[T Number] struct {
	Extrema[T]
	Valid bool
}

// Update folds v into the range.
func (l *Local[T]) Update(v T) {
	if !l.Valid {
		l.Minimum, l.Maximum, l.Valid = v, v, true
		return
	}

	l.Minimum = min(l.Minimum, v)
	l.Maximum = max(l.Maximum, v)
}
