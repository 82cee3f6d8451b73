package source

import (
	"fmt"
	"math"
)

// Grid is a row-major raster of samples x lines values.
type Grid struct {
	Samples int
	Lines   int
	Data    []float64

	// NoData marks cells without a valid value. NaN cells are always
	// invalid.
	NoData *float64
}

// NewGrid allocates a zeroed grid.
func NewGrid(samples, lines int) *Grid {
	return &Grid{Samples: samples, Lines: lines, Data: make([]float64, samples*lines)}
}

// Validate checks that Data matches the dimensions.
func (g *Grid) Validate() error {
	if g.Samples <= 0 || g.Lines <= 0 {
		return fmt.Errorf("invalid grid dimensions %dx%d", g.Samples, g.Lines)
	}
	if len(g.Data) != g.Samples*g.Lines {
		return fmt.Errorf("grid holds %d values, want %d", len(g.Data), g.Samples*g.Lines)
	}
	return nil
}

// Set stores v at integral cell coordinates.
func (g *Grid) Set(line, sample int, v float64) {
	g.Data[line*g.Samples+sample] = v
}

// At returns the value of a cell and whether it is valid.
func (g *Grid) At(line, sample int) (float64, bool) {
	if line < 0 || line >= g.Lines || sample < 0 || sample >= g.Samples {
		return 0, false
	}
	v := g.Data[line*g.Samples+sample]
	if math.IsNaN(v) || (g.NoData != nil && v == *g.NoData) {
		return 0, false
	}
	return v, true
}

// Contains reports whether a fractional position, measured in cells with
// integral values at cell centres, lies on the grid.
func (g *Grid) Contains(line, sample float64) bool {
	return line >= -0.5 && line < float64(g.Lines)-0.5 &&
		sample >= -0.5 && sample < float64(g.Samples)-0.5
}

// Nearest returns the cell containing a fractional position.
func (g *Grid) Nearest(line, sample float64) (float64, bool) {
	if !g.Contains(line, sample) {
		return 0, false
	}
	return g.At(int(math.Floor(line+0.5)), int(math.Floor(sample+0.5)))
}

// Bilinear interpolates between the four cells around a fractional
// position. Invalid neighbours are skipped and the remaining weights
// renormalised.
func (g *Grid) Bilinear(line, sample float64) (float64, bool) {
	if !g.Contains(line, sample) {
		return 0, false
	}

	line = clamp(line, 0, float64(g.Lines-1))
	sample = clamp(sample, 0, float64(g.Samples-1))

	l0, s0 := int(math.Floor(line)), int(math.Floor(sample))
	fl, fs := line-float64(l0), sample-float64(s0)

	var sum, weight float64
	for _, n := range [4]struct {
		l, s int
		w    float64
	}{
		{l0, s0, (1 - fl) * (1 - fs)},
		{l0, s0 + 1, (1 - fl) * fs},
		{l0 + 1, s0, fl * (1 - fs)},
		{l0 + 1, s0 + 1, fl * fs},
	} {
		if n.w == 0 {
			continue
		}
		v, ok := g.At(n.l, n.s)
		if !ok {
			continue
		}
		sum += v * n.w
		weight += n.w
	}

	if weight == 0 {
		return 0, false
	}

	return sum / weight, true
}

// Mean averages the valid cells in the (2r+1)^2 window around the cell
// containing a fractional position. count is the number of cells averaged.
func (g *Grid) Mean(line, sample float64, r int) (mean float64, count int) {
	if !g.Contains(line, sample) {
		return 0, 0
	}

	cl, cs := int(math.Floor(line+0.5)), int(math.Floor(sample+0.5))

	var sum float64
	for l := cl - r; l <= cl+r; l++ {
		for s := cs - r; s <= cs+r; s++ {
			if v, ok := g.At(l, s); ok {
				sum += v
				count++
			}
		}
	}

	if count == 0 {
		return 0, 0
	}

	return sum / float64(count), count
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
