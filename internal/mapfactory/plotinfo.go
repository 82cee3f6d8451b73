package mapfactory

import (
	"fmt"
	"math"

	"github.com/woozymasta/remap/internal/extrema"
)

// PlotInfo configures a single map run and collects what was observed.
type PlotInfo[T extrema.Number] struct {
	Samples int
	Lines   int

	// Blank is the value written to cells without data. It must be
	// representable as T. When nil, integral maps use 0 and floating
	// point maps use NaN.
	Blank *float64

	// Minimum and Maximum restrict the accepted data. Used by Plot.
	Minimum *float64
	Maximum *float64

	// Scan requests area integrated reads from sources that support them.
	Scan bool

	// Workers > 1 resamples rows concurrently.
	Workers int

	Notifier Notifier

	observed extrema.Tracker[T]
}

// NewPlotInfo returns a PlotInfo for a samples x lines map.
func NewPlotInfo[T extrema.Number](samples, lines int) *PlotInfo[T] {
	return &PlotInfo[T]{Samples: samples, Lines: lines}
}

// Observed returns the range of values stored by the last run, and false
// if no cell was stored.
func (p *PlotInfo[T]) Observed() (extrema.Extrema[T], bool) {
	return p.observed.Extrema()
}

// BlankValue resolves the blank sentinel.
func (p *PlotInfo[T]) BlankValue() (T, error) {
	if p.Blank == nil {
		if extrema.IsFloat[T]() {
			return T(math.NaN()), nil
		}
		return 0, nil
	}

	if !extrema.InRange[T](*p.Blank) {
		return 0, fmt.Errorf("%w: %v", ErrBlankOutOfRange, *p.Blank)
	}

	return extrema.Narrow[T](*p.Blank), nil
}

func (p *PlotInfo[T]) notifier() Notifier {
	if p.Notifier == nil {
		return nopNotifier{}
	}
	return p.Notifier
}
